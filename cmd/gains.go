package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxfolio/date"
	"github.com/etnz/taxfolio/renderer"
	"github.com/etnz/taxfolio/taxlot"
	"github.com/google/subcommands"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	period string
	start  string
	end    string
	method string
	income bool
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized gains over a period" }
func (*gainsCmd) Usage() string {
	return `tfolio gains [-p <period>] [-s <date>] [-d <date>] [-method <fifo|average>] [-income=false]

  Lists the realized events of the period: sales matched against their lots,
  and dividends and interest unless -income=false.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "year", "Predefined period (day, week, month, quarter, year), empty for all time")
	f.StringVar(&c.start, "s", "", "Start date of the reporting period, overrides -p")
	f.StringVar(&c.end, "d", date.Today().String(), "End date of the reporting period")
	f.StringVar(&c.method, "method", "", "Cost basis method (fifo, average), defaults to the configured one")
	f.BoolVar(&c.income, "income", true, "Include dividends and interest")
}

func (c *gainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := parseRange(c.period, c.start, c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	s, err := newSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	book, err := s.book(r.To, c.method, c.income)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(renderer.GainsMarkdown(book.Method(), r, taxlot.Filter(book.Events(), r)))
	return subcommands.ExitSuccess
}
