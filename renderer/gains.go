package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/taxfolio/date"
	"github.com/etnz/taxfolio/taxlot"
	"github.com/shopspring/decimal"
	md "github.com/nao1215/markdown"
)

// GainsMarkdown renders the realized events of a period, one row per event,
// followed by the totals of sales and income.
func GainsMarkdown(method taxlot.Method, r date.Range, events []taxlot.Event) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Realized Gains %s", rangeTitle(r)))
	doc.PlainText(fmt.Sprintf("Method: %s", method))

	var sales, income []taxlot.Event
	for _, e := range events {
		if e.IsIncome() {
			income = append(income, e)
		} else {
			sales = append(sales, e)
		}
	}

	if len(sales) > 0 {
		doc.H2("Sales")
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignLeft,
				md.AlignLeft,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
			},
			Header: []string{"Sold", "Ticker", "Acquired", "Quantity", "Proceeds", "Cost Basis", "Gain/Loss", "Days"},
			Rows:   [][]string{},
		}
		for _, e := range sales {
			table.Rows = append(table.Rows, []string{
				e.Sold.String(),
				e.Ticker,
				e.Acquired.String(),
				quantity(e.Quantity),
				eur(e.Proceeds),
				eur(e.CostBasis),
				signedEUR(e.Gain),
				fmt.Sprint(e.HoldingDays),
			})
		}
		doc.Table(table)
	}

	if len(income) > 0 {
		doc.H2("Income")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
			Header:    []string{"Date", "Ticker", "Type", "Amount"},
			Rows:      [][]string{},
		}
		for _, e := range income {
			table.Rows = append(table.Rows, []string{e.Sold.String(), e.Ticker, e.Notes, eur(e.Gain)})
		}
		doc.Table(table)
	}

	if len(events) == 0 {
		doc.PlainText("No realized event.")
		return doc.String()
	}

	doc.H2("Totals")
	proceeds, cost := decimal.Zero, decimal.Zero
	for _, e := range sales {
		proceeds = proceeds.Add(e.Proceeds)
		cost = cost.Add(e.CostBasis)
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Total", "Amount"},
		Rows: [][]string{
			{"Proceeds", eur(proceeds)},
			{"Cost Basis", eur(cost)},
			{"Realized Gain/Loss", signedEUR(taxlot.TotalGain(sales))},
			{"Income", eur(taxlot.TotalGain(income))},
			{md.Bold("Net"), md.Bold(signedEUR(taxlot.TotalGain(events)))},
		},
	})
	return doc.String()
}

func rangeTitle(r date.Range) string {
	switch {
	case r.From.IsZero() && r.To.IsZero():
		return "(all time)"
	case r.From.IsZero():
		return fmt.Sprintf("until %s", r.To)
	case r.To.IsZero():
		return fmt.Sprintf("since %s", r.From)
	}
	if _, ok := r.Period(); ok {
		return r.Identifier()
	}
	return fmt.Sprintf("from %s to %s", r.From, r.To)
}
