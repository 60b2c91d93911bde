package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
)

// HoldingMarkdown renders the open positions and the totals of a holding.
func HoldingMarkdown(h *Holding) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Holding on %s", h.Date))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Total Value"), md.Bold(eur(h.Value))},
		Rows: [][]string{
			{"Securities", eur(h.Securities)},
			{"Cash", eur(h.Cash)},
		},
	})

	if len(h.Positions) == 0 {
		doc.PlainText("No open position.")
		return doc.String()
	}

	doc.H2("Positions")
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
			md.AlignRight,
		},
		Header: []string{"Ticker", "Name", "Type", "Shares", "Avg Cost", "Price", "Market Value", "Gain/Loss", "Allocation"},
		Rows:   [][]string{},
	}
	unpriced := 0
	for _, p := range h.Positions {
		price := formatNative(p.Price, p.Currency)
		if !p.Priced {
			price += "*"
			unpriced++
		}
		table.Rows = append(table.Rows, []string{
			p.Ticker,
			p.Name,
			p.AssetType.String(),
			quantity(p.Shares),
			formatNative(p.AverageCost, p.Currency),
			price,
			eur(p.MarketValue),
			fmt.Sprintf("%s (%s)", signedEUR(p.UnrealizedGain), signedPercent(p.GainPercent())),
			percent(p.Allocation),
		})
	}
	doc.Table(table)
	if unpriced > 0 {
		doc.PlainText(fmt.Sprintf("Prices marked with * are unknown, %d position(s) valued at average cost.", unpriced))
	}
	return doc.String()
}
