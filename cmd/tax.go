package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxfolio/date"
	"github.com/etnz/taxfolio/renderer"
	"github.com/etnz/taxfolio/tax"
	"github.com/google/subcommands"
)

type taxCmd struct {
	year         int
	jurisdiction string
	method       string
}

func (*taxCmd) Name() string     { return "tax" }
func (*taxCmd) Synopsis() string { return "estimate the capital gains tax of a year" }
func (*taxCmd) Usage() string {
	return `tfolio tax [-y <year>] [-j <code>] [-method <fifo|average>]

  Estimates the tax owed on the realized gains and the income of a calendar
  year, with the rules of a jurisdiction (AT, DE).
`
}

func (c *taxCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", date.Today().Year()-1, "Tax year")
	f.StringVar(&c.jurisdiction, "j", "", "Jurisdiction code, defaults to the configured one")
	f.StringVar(&c.method, "method", "", "Cost basis method (fifo, average), defaults to the configured one")
}

func (c *taxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := newSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	code := c.jurisdiction
	if code == "" {
		code = s.config.Jurisdiction
	}
	calc, err := tax.Lookup(code)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	year := date.Year(c.year)
	book, err := s.book(year.To, c.method, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(renderer.TaxMarkdown(calc.Liability(book.EventsInYear(c.year), c.year)))
	return subcommands.ExitSuccess
}
