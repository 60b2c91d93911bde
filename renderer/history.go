package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/taxfolio"
	md "github.com/nao1215/markdown"
)

// HistoryMarkdown renders a daily series, one row per point.
func HistoryMarkdown(points []taxfolio.Point) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	if len(points) == 0 {
		doc.H1("History")
		doc.PlainText("No transaction in the period.")
		return doc.String()
	}
	doc.H1(fmt.Sprintf("History from %s to %s", points[0].Date, points[len(points)-1].Date))

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Date", "Net Deposits", "Cost Basis", "Value", "Gain/Loss"},
		Rows:   [][]string{},
	}
	for _, p := range points {
		table.Rows = append(table.Rows, []string{
			p.Date.String(),
			eur(p.NetDeposits),
			eur(p.CostBasis),
			eur(p.Value),
			signedEUR(p.Value.Sub(p.NetDeposits)),
		})
	}
	doc.Table(table)
	return doc.String()
}
