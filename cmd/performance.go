package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxfolio"
	"github.com/etnz/taxfolio/date"
	"github.com/etnz/taxfolio/renderer"
	"github.com/google/subcommands"
)

type performanceCmd struct {
	date     string
	riskFree float64
}

func (*performanceCmd) Name() string     { return "performance" }
func (*performanceCmd) Synopsis() string { return "returns and risk metrics of the portfolio" }
func (*performanceCmd) Usage() string {
	return `tfolio performance [-d <date>] [-rf <rate>]

  Computes the absolute return and the XIRR of the portfolio on a date.
  With a price history, it also computes the annualized volatility, the
  Sharpe ratio and the maximum drawdown of the daily value series.
`
}

func (c *performanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Valuation date")
	f.Float64Var(&c.riskFree, "rf", -1, "Annual risk free rate for the Sharpe ratio, defaults to the configured one")
}

func (c *performanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	riskFree := s.config.RiskFreeRate
	if c.riskFree >= 0 {
		riskFree = c.riskFree
	}

	prices, err := pricesOn(on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}
	fx := s.config.FXRates()
	engine := s.engine(on)
	state := engine.Build()
	value, err := state.ValueAt(prices, fx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	var points []taxfolio.Point
	history, err := DecodePriceHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading price history: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(history) > 0 {
		if points, err = engine.HistoricalSeries(history, fx, date.Range{To: on}); err != nil {
			fmt.Fprintf(os.Stderr, "Error computing history: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	printMarkdown(renderer.PerformanceMarkdown(renderer.NewPerformance(on, state, value, points, riskFree)))
	return subcommands.ExitSuccess
}
