package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/taxfolio/date"
	"github.com/etnz/taxfolio/renderer"
	"github.com/etnz/taxfolio/taxlot"
	"github.com/google/subcommands"
)

type lotsCmd struct {
	date   string
	method string
	ticker string
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "list the open tax lots" }
func (*lotsCmd) Usage() string {
	return `tfolio lots [-d <date>] [-method <fifo|average>] [-t <ticker>]

  Lists the lots still open on a date, as matched by the cost basis method.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the lots inventory")
	f.StringVar(&c.method, "method", "", "Cost basis method (fifo, average), defaults to the configured one")
	f.StringVar(&c.ticker, "t", "", "Only list the lots of this ticker")
}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	s, err := newSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	book, err := s.book(on, c.method, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	lots := book.AllOpenLots()
	if c.ticker != "" {
		var selected []taxlot.Lot
		for _, l := range lots {
			if strings.EqualFold(l.Ticker, c.ticker) {
				selected = append(selected, l)
			}
		}
		lots = selected
	}
	printMarkdown(renderer.LotsMarkdown(book.Method(), lots))
	return subcommands.ExitSuccess
}
