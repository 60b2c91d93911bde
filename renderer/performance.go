package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/taxfolio"
	"github.com/etnz/taxfolio/date"
	"github.com/etnz/taxfolio/returns"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
)

// Performance gathers the return metrics of a portfolio on a day.
type Performance struct {
	Date   date.Date
	Value  decimal.Decimal
	Totals taxfolio.Totals

	AbsoluteReturn decimal.Decimal
	ReturnPercent  decimal.Decimal
	XIRR           decimal.Decimal
	HasXIRR        bool

	// Risk metrics, only set when a daily series was available.
	Volatility     float64
	HasVolatility  bool
	Sharpe         float64
	HasSharpe      bool
	MaxDrawdown    float64
	HasMaxDrawdown bool
}

// NewPerformance computes the performance of s valued at value on day on.
// points is the daily series used by the risk metrics, it can be empty.
func NewPerformance(on date.Date, s *taxfolio.State, value decimal.Decimal, points []taxfolio.Point, riskFree float64) *Performance {
	p := &Performance{Date: on, Value: value, Totals: s.Totals}
	p.AbsoluteReturn, p.ReturnPercent = returns.AbsoluteReturn(s.Totals.Invested, s.Totals.Withdrawn, value)

	dates, amounts := returns.BuildCashFlows(s.CashFlows, value, on)
	p.XIRR, p.HasXIRR = returns.XIRR(dates, amounts, returns.DefaultGuess)

	values := returns.Values(points)
	p.Volatility, p.HasVolatility = returns.Volatility(values, true)
	p.Sharpe, p.HasSharpe = returns.SharpeRatio(values, riskFree)
	p.MaxDrawdown, p.HasMaxDrawdown = returns.MaxDrawdown(values)
	return p
}

// PerformanceMarkdown renders the performance report.
func PerformanceMarkdown(p *Performance) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Performance on %s", p.Date))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Current Value"), md.Bold(eur(p.Value))},
		Rows: [][]string{
			{"Invested", eur(p.Totals.Invested)},
			{"Withdrawn", eur(p.Totals.Withdrawn)},
			{"Net Deposits", eur(p.Totals.NetDeposits)},
			{"Dividends", eur(p.Totals.Dividends)},
			{"Interest", eur(p.Totals.Interest)},
			{"Fees", eur(p.Totals.Fees)},
			{"Realized Gains (broker)", signedEUR(p.Totals.RealizedGains)},
		},
	})

	doc.H2("Returns")
	xirr := "n/a"
	if p.HasXIRR {
		xirr = signedPercent(p.XIRR.Shift(2))
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Metric", "Value"},
		Rows: [][]string{
			{"Absolute Return", signedEUR(p.AbsoluteReturn)},
			{"Return", signedPercent(p.ReturnPercent)},
			{"XIRR (annualized)", xirr},
		},
	})

	if p.HasVolatility || p.HasSharpe || p.HasMaxDrawdown {
		doc.H2("Risk")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Metric", "Value"},
			Rows:      [][]string{},
		}
		if p.HasVolatility {
			table.Rows = append(table.Rows, []string{"Volatility (annualized)", fmt.Sprintf("%.2f%%", p.Volatility*100)})
		}
		if p.HasSharpe {
			table.Rows = append(table.Rows, []string{"Sharpe Ratio", fmt.Sprintf("%.2f", p.Sharpe)})
		}
		if p.HasMaxDrawdown {
			table.Rows = append(table.Rows, []string{"Max Drawdown", fmt.Sprintf("%.2f%%", p.MaxDrawdown*100)})
		}
		doc.Table(table)
	}
	return doc.String()
}
