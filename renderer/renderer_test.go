package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/taxfolio"
	"github.com/etnz/taxfolio/date"
	"github.com/etnz/taxfolio/tax"
	"github.com/etnz/taxfolio/taxlot"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// document is the structure of a rendered markdown report.
type document struct {
	headings []string
	// tables holds every table as rows of cells, header row first.
	tables [][][]string
}

// parse parses src as GitHub flavored markdown, failing on any table whose
// rows do not all have the header's width.
func parse(t *testing.T, src string) document {
	t.Helper()
	source := []byte(src)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(source))

	var doc document
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			doc.headings = append(doc.headings, string(n.Text(source)))
		case *east.Table:
			var rows [][]string
			for r := n.FirstChild(); r != nil; r = r.NextSibling() {
				var row []string
				for c := r.FirstChild(); c != nil; c = c.NextSibling() {
					row = append(row, strings.TrimSpace(string(c.Text(source))))
				}
				if len(rows) > 0 && len(row) != len(rows[0]) {
					t.Errorf("table row %v has %d cells, want %d", row, len(row), len(rows[0]))
				}
				rows = append(rows, row)
			}
			doc.tables = append(doc.tables, rows)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("walking markdown: %v", err)
	}
	return doc
}

func TestHoldingMarkdown(t *testing.T) {
	on := date.New(2024, time.June, 1)
	state := taxfolio.NewEngine([]taxfolio.Transaction{
		taxfolio.NewBuy(date.New(2024, time.March, 1), "AAPL", 10, 1500).In("USD", 0.9),
		taxfolio.NewBuy(date.New(2024, time.March, 2), "SAP", 5, 500),
	}).Build()

	h, err := NewHolding(on, state, taxfolio.Prices{"AAPL": decimal.NewNullDecimal(d("170"))}, taxfolio.FXRates{"USDEUR": d("0.9")})
	if err != nil {
		t.Fatalf("NewHolding() error = %v", err)
	}
	if !h.Securities.Equal(d("2030")) || !h.Value.Equal(d("2030")) {
		t.Errorf("NewHolding() securities, value = %v, %v, want 2030, 2030", h.Securities, h.Value)
	}
	aapl := h.Positions[0]
	if aapl.Ticker != "AAPL" || !aapl.MarketValue.Equal(d("1530")) || !aapl.UnrealizedGain.Equal(d("180")) {
		t.Errorf("first position = %s %v %v, want AAPL 1530 180", aapl.Ticker, aapl.MarketValue, aapl.UnrealizedGain)
	}
	if h.Positions[1].Priced {
		t.Errorf("SAP should be valued at average cost")
	}

	doc := parse(t, HoldingMarkdown(h))
	if diff := cmp.Diff([]string{"Holding on 2024-06-01", "Positions"}, doc.headings); diff != "" {
		t.Errorf("HoldingMarkdown() headings mismatch (-want +got):\n%s", diff)
	}
	if len(doc.tables) != 2 || len(doc.tables[1]) != 3 {
		t.Fatalf("HoldingMarkdown() tables = %v, want totals and 2 positions", doc.tables)
	}
	if got := doc.tables[1][2][5]; !strings.HasSuffix(got, "*") {
		t.Errorf("unpriced price cell = %q, want a trailing *", got)
	}
	if got := doc.tables[1][1][2]; got != "Stock" {
		t.Errorf("AAPL type = %q, want Stock", got)
	}
}

func TestHoldingMarkdown_Empty(t *testing.T) {
	h, err := NewHolding(date.New(2024, 1, 1), taxfolio.NewEngine(nil).Build(), nil, nil)
	if err != nil {
		t.Fatalf("NewHolding() error = %v", err)
	}
	if out := HoldingMarkdown(h); !strings.Contains(out, "No open position.") {
		t.Errorf("HoldingMarkdown() = %q, want the empty message", out)
	}
}

func TestGainsAndLotsMarkdown(t *testing.T) {
	book := taxlot.Process([]taxfolio.Transaction{
		taxfolio.NewBuy(date.New(2024, 1, 1), "X", 10, 100),
		taxfolio.NewBuy(date.New(2024, 2, 1), "X", 10, 200),
		taxfolio.NewSell(date.New(2024, 3, 1), "X", 15, 450),
		taxfolio.NewDividend(date.New(2024, 4, 1), "X", 12),
	}, taxlot.FIFOStrategy{}, taxlot.WithIncomeEvents())

	doc := parse(t, GainsMarkdown(book.Method(), date.Year(2024), book.EventsInYear(2024)))
	if diff := cmp.Diff([]string{"Realized Gains 2024", "Sales", "Income", "Totals"}, doc.headings); diff != "" {
		t.Errorf("GainsMarkdown() headings mismatch (-want +got):\n%s", diff)
	}
	if len(doc.tables) != 3 {
		t.Fatalf("GainsMarkdown() has %d tables, want 3", len(doc.tables))
	}
	if got := len(doc.tables[0]); got != 3 {
		t.Errorf("sales table has %d rows, want header and 2 events", got)
	}
	if got := doc.tables[1][1][2]; got != "DIVIDEND" {
		t.Errorf("income type = %q, want DIVIDEND", got)
	}

	doc = parse(t, LotsMarkdown(book.Method(), book.AllOpenLots()))
	if len(doc.tables) != 1 || len(doc.tables[0]) != 2 {
		t.Fatalf("LotsMarkdown() tables = %v, want one open lot", doc.tables)
	}
	if got := doc.tables[0][1][3]; got != "5" {
		t.Errorf("lot quantity = %q, want 5", got)
	}

	empty := GainsMarkdown(taxlot.FIFO, date.Range{}, nil)
	if !strings.Contains(empty, "(all time)") || !strings.Contains(empty, "No realized event.") {
		t.Errorf("GainsMarkdown(nil) = %q", empty)
	}
}

func TestPerformanceMarkdown(t *testing.T) {
	state := taxfolio.NewEngine([]taxfolio.Transaction{
		taxfolio.NewDeposit(date.New(2023, 1, 1), 1000),
	}).Build()
	p := NewPerformance(date.New(2024, 1, 1), state, d("1100"), nil, 0.02)
	if !p.HasXIRR || p.HasVolatility {
		t.Fatalf("NewPerformance() HasXIRR, HasVolatility = %v, %v, want true, false", p.HasXIRR, p.HasVolatility)
	}
	if !p.AbsoluteReturn.Equal(d("100")) {
		t.Errorf("AbsoluteReturn = %v, want 100", p.AbsoluteReturn)
	}

	doc := parse(t, PerformanceMarkdown(p))
	if diff := cmp.Diff([]string{"Performance on 2024-01-01", "Returns"}, doc.headings); diff != "" {
		t.Errorf("PerformanceMarkdown() headings mismatch (-want +got):\n%s", diff)
	}
	want := [][]string{
		{"Metric", "Value"},
		{"Absolute Return", taxfolio.FormatSignedMoney(d("100"), "EUR")},
		{"Return", "+10.00%"},
		{"XIRR (annualized)", "+10.00%"},
	}
	if diff := cmp.Diff(want, doc.tables[1]); diff != "" {
		t.Errorf("PerformanceMarkdown() returns mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryMarkdown(t *testing.T) {
	points := []taxfolio.Point{
		{Date: date.New(2024, 1, 1), NetDeposits: d("1000"), Value: d("1000"), CostBasis: d("1000")},
		{Date: date.New(2024, 1, 2), NetDeposits: d("1000"), Value: d("990"), CostBasis: d("1000")},
	}
	doc := parse(t, HistoryMarkdown(points))
	if diff := cmp.Diff([]string{"History from 2024-01-01 to 2024-01-02"}, doc.headings); diff != "" {
		t.Errorf("HistoryMarkdown() headings mismatch (-want +got):\n%s", diff)
	}
	if got := doc.tables[0][2][4]; got != taxfolio.FormatSignedMoney(d("-10"), "EUR") {
		t.Errorf("gain cell = %q, want -10", got)
	}
}

func TestTaxMarkdown(t *testing.T) {
	events := []taxlot.Event{{Ticker: "X", Sold: date.New(2024, 5, 1), Quantity: d("1"), Gain: d("1000"), AssetType: taxfolio.Stock}}
	l := tax.Austria{}.Liability(events, 2024)

	doc := parse(t, TaxMarkdown(l))
	if diff := cmp.Diff([]string{"Tax 2024, Austria (AT) - E1kv", "Breakdown", "Assumptions"}, doc.headings); diff != "" {
		t.Errorf("TaxMarkdown() headings mismatch (-want +got):\n%s", diff)
	}
	if got := doc.tables[0][0][1]; got != taxfolio.FormatMoney(d("275"), "EUR") {
		t.Errorf("tax owed cell = %q, want 275", got)
	}
	if got := len(doc.tables[1]); got != len(l.Breakdown)+1 {
		t.Errorf("breakdown table has %d rows, want %d", got, len(l.Breakdown)+1)
	}
}
