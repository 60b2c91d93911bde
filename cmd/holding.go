package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxfolio/date"
	"github.com/etnz/taxfolio/renderer"
	"github.com/google/subcommands"
)

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct {
	date string
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display open positions and cash on a date" }
func (*holdingCmd) Usage() string {
	return `tfolio holding [-d <date>]

  Displays the open positions, valued with the known prices, and the cash on
  a given date. Positions without a price are valued at their average cost.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date for the holdings report (YYYY-MM-DD or 'today')")
}

func (c *holdingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	prices, err := pricesOn(on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}

	h, err := renderer.NewHolding(on, s.engine(on).Build(), prices, s.config.FXRates())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating holding report: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.HoldingMarkdown(h))
	return subcommands.ExitSuccess
}
