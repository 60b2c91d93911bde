package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/taxfolio/taxlot"
	md "github.com/nao1215/markdown"
)

// LotsMarkdown renders the open tax lots, grouped by asset in the given order.
func LotsMarkdown(method taxlot.Method, lots []taxlot.Lot) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Open Tax Lots")
	doc.PlainText(fmt.Sprintf("Method: %s", method))
	if len(lots) == 0 {
		doc.PlainText("No open lot.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Asset", "Ticker", "Acquired", "Quantity", "Original", "Remaining Cost", "Lot"},
		Rows:   [][]string{},
	}
	for _, lot := range lots {
		table.Rows = append(table.Rows, []string{
			lot.AssetKey,
			lot.Ticker,
			lot.Acquired.String(),
			quantity(lot.Quantity),
			quantity(lot.OriginalQuantity),
			eur(lot.RemainingCost()),
			shortID(lot.ID),
		})
	}
	doc.Table(table)
	return doc.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
