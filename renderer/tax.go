package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/taxfolio/tax"
	md "github.com/nao1215/markdown"
)

// TaxMarkdown renders a tax liability with its breakdown.
func TaxMarkdown(l tax.Liability) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Tax %d, %s", l.Year, l.Jurisdiction))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Tax Owed"), md.Bold(eur(l.TaxOwed))},
		Rows: [][]string{
			{"Total Realized Gain", signedEUR(l.TotalRealizedGain)},
			{"Taxable Gain", signedEUR(l.TaxableGain)},
		},
	})

	if len(l.Breakdown) > 0 {
		doc.H2("Breakdown")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Item", "Amount"},
			Rows:      [][]string{},
		}
		for _, line := range l.Breakdown {
			table.Rows = append(table.Rows, []string{line.Label, eur(line.Amount)})
		}
		doc.Table(table)
	}
	if l.Notes != "" {
		doc.H2("Notes")
		doc.PlainText(l.Notes)
	}
	if len(l.Assumptions) > 0 {
		doc.H2("Assumptions")
		doc.BulletList(l.Assumptions...)
	}
	return doc.String()
}
