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

type historyCmd struct {
	period string
	start  string
	end    string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "daily series of net deposits, value and cost basis" }
func (*historyCmd) Usage() string {
	return `tfolio history [-p <period>] [-s <date>] [-d <date>]

  Replays the ledger day by day and prints the net deposits, the market value
  and the cost basis of every day, valued with the price history.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "month", "Predefined period (day, week, month, quarter, year), empty for all time")
	f.StringVar(&c.start, "s", "", "Start date, overrides -p")
	f.StringVar(&c.end, "d", date.Today().String(), "End date")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	history, err := DecodePriceHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading price history: %v\n", err)
		return subcommands.ExitFailure
	}
	points, err := s.engine(r.To).HistoricalSeries(history, s.config.FXRates(), r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing history: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.HistoryMarkdown(points))
	return subcommands.ExitSuccess
}
