package taxfolio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/etnz/taxfolio/date"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// decimalComparer compares decimals by value, and dates, whose fields are unexported.
var decimalComparer = cmp.Options{
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b date.Date) bool { return a == b }),
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(m time.Month, dd int) date.Date { return date.New(2024, m, dd) }

func TestEngine_Idempotence(t *testing.T) {
	ledger := []Transaction{
		NewDeposit(day(1, 1), 10000).At("flatex"),
		NewBuy(day(1, 2), "AAPL", 10, 1500).In("USD", 0.9).At("flatex"),
		NewBuy(day(1, 3), "SAP", 7, 1000).At("flatex").WithFees(1.5),
		NewSell(day(2, 1), "AAPL", 4, 700).In("USD", 0.92).At("flatex"),
		NewDividend(day(3, 1), "SAP", 12.34).At("flatex"),
	}
	e := NewEngine(ledger)
	first, second := e.Build(), e.Build()

	opts := cmp.Options{decimalComparer, cmpopts.IgnoreUnexported(State{})}
	if diff := cmp.Diff(first, second, opts); diff != "" {
		t.Errorf("Build() is not idempotent (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first, NewEngine(ledger).Build(), opts); diff != "" {
		t.Errorf("a fresh engine gives a different state (-first +fresh):\n%s", diff)
	}
}

func TestEngine_StableSort(t *testing.T) {
	ledger := []Transaction{
		NewSell(day(1, 5), "X", 5, 60),
		NewBuy(day(1, 3), "X", 10, 100),
		NewBuy(day(1, 5), "X", 10, 200),
	}
	got := NewEngine(ledger).Transactions()
	want := []TransactionType{Buy, Sell, Buy}
	for i, tx := range got {
		if tx.Type != want[i] {
			t.Errorf("Transactions()[%d].Type = %v, want %v", i, tx.Type, want[i])
		}
	}
}

func TestEngine_USDScenario(t *testing.T) {
	ledger := []Transaction{
		NewBuy(day(3, 1), "AAPL", 10, 1500).In("USD", 0.9),
		NewSell(day(4, 1), "AAPL", 5, 800).In("USD", 0.9),
	}
	s := NewEngine(ledger).Build()
	pos, ok := s.Positions["AAPL"]
	if !ok {
		t.Fatalf("Build().Positions has no AAPL")
	}
	if !pos.Shares.Equal(d("5")) {
		t.Errorf("AAPL shares = %v, want 5", pos.Shares)
	}
	if !pos.CostBasis.Equal(d("750")) {
		t.Errorf("AAPL cost basis = %v, want 750 (half of the native cost)", pos.CostBasis)
	}
	if pos.Currency != "USD" {
		t.Errorf("AAPL currency = %q, want USD", pos.Currency)
	}
}

func TestEngine_TickerWhitespace(t *testing.T) {
	s := NewEngine([]Transaction{
		NewBuy(day(1, 1), "AAPL ", 2, 200),
		NewBuy(day(1, 2), " AAPL", 3, 300),
	}).Build()
	if got := s.Tickers(); !cmp.Equal(got, []string{"AAPL"}) {
		t.Fatalf("Build().Tickers() = %v, want [AAPL]", got)
	}
	if pos := s.Positions["AAPL"]; !pos.Shares.Equal(d("5")) || !pos.CostBasis.Equal(d("500")) {
		t.Errorf("AAPL = %v shares for %v, want 5 shares for 500", pos.Shares, pos.CostBasis)
	}
}

func TestEngine_OverSellClamp(t *testing.T) {
	var buf bytes.Buffer
	e := NewEngine(nil, WithLogger(zerolog.New(&buf)))
	s := e.newState()
	s.apply(NewBuy(day(1, 1), "X", 10, 100))
	s.apply(NewSell(day(1, 2), "X", 15, 150))

	pos := s.Positions["X"]
	if !pos.Shares.IsZero() || !pos.CostBasis.IsZero() {
		t.Errorf("after over-sell shares, cost = %v, %v, want 0, 0", pos.Shares, pos.CostBasis)
	}
	if !strings.Contains(buf.String(), "clamping position to zero") {
		t.Errorf("over-sell did not log a warning, log = %q", buf.String())
	}
}

func TestEngine_Conservation(t *testing.T) {
	ledger := []Transaction{
		NewBuy(day(1, 1), "X", 3, 100),
		NewBuy(day(1, 2), "X", 7, 333.33),
		NewSell(day(1, 3), "X", 4, 180),
		NewBuy(day(1, 4), "X", 1, 49.99),
		NewSell(day(1, 5), "X", 2.5, 130),
		NewSell(day(1, 6), "X", 4.5, 240),
	}
	s := NewEngine(ledger).newState()
	added, removed := decimal.Zero, decimal.Zero
	for _, tx := range ledger {
		before := decimal.Zero
		if p, ok := s.Positions["X"]; ok {
			before = p.CostBasis
		}
		s.apply(tx)
		after := s.Positions["X"].CostBasis
		if tx.Type == Buy {
			added = added.Add(after.Sub(before))
		} else {
			removed = removed.Add(before.Sub(after))
		}
		if after.IsNegative() {
			t.Fatalf("cost basis negative after %v: %v", tx.Date, after)
		}
		if removed.Sub(added).GreaterThan(d("0.000001")) {
			t.Fatalf("removed cost %v exceeds added cost %v", removed, added)
		}
	}
	if !s.Positions["X"].CostBasis.IsZero() {
		t.Errorf("fully sold position keeps cost basis %v", s.Positions["X"].CostBasis)
	}
}

func TestEngine_CashGating(t *testing.T) {
	testCases := []struct {
		name string
		tx   Transaction
		want decimal.Decimal
	}{
		{"ticketed transfer in", NewTransferIn(day(1, 1), "AAPL", 5, 0).At("flatex"), decimal.Zero},
		{"cash transfer in", NewTransferIn(day(1, 1), "", 0, 1000).At("flatex"), d("1000")},
		{"cash transfer out", NewTransferOut(day(1, 1), "", 0, 300).At("flatex"), d("-300")},
		{"untracked broker", NewDeposit(day(1, 1), 1000).At("comdirect"), decimal.Zero},
		{"broker label normalization", NewDeposit(day(1, 1), 500).At("Scalable Capital"), d("500")},
		{"buy reduces cash", NewBuy(day(1, 1), "SAP", 2, 250).At("trade_republic"), d("-250")},
		{"crypto excluded", func() Transaction {
			tx := NewBuy(day(1, 1), "BTC-EUR", 1, 40000).At("flatex")
			tx.AssetType = Crypto
			return tx
		}(), decimal.Zero},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewEngine([]Transaction{tc.tx}).Build()
			if !s.Cash.Equal(tc.want) {
				t.Errorf("Cash = %v, want %v", s.Cash, tc.want)
			}
		})
	}
}

func TestEngine_CashFlowsAndTotals(t *testing.T) {
	sell := NewSell(day(2, 1), "X", 5, 600)
	sell.RealizedGain = decimal.NewNullDecimal(d("42"))
	ledger := []Transaction{
		NewDeposit(day(1, 1), 1000),
		NewBuy(day(1, 2), "X", 10, 1000).WithFees(2),
		NewTransferIn(day(1, 3), "Y", 3, 0),
		NewDividend(day(1, 4), "X", 50),
		NewInterest(day(1, 5), 5),
		NewCost(day(1, 6), 10),
		NewWithdrawal(day(1, 7), 200),
		NewTransferOut(day(1, 8), "", 0, 100),
		sell,
	}
	s := NewEngine(ledger).Build()

	wantFlows := []CashFlow{
		{day(1, 1), d("-1000")},
		{day(1, 4), d("50")},
		{day(1, 5), d("5")},
		{day(1, 6), d("-10")},
		{day(1, 7), d("200")},
		{day(1, 8), d("100")},
	}
	if diff := cmp.Diff(wantFlows, s.CashFlows, decimalComparer); diff != "" {
		t.Errorf("CashFlows mismatch (-want +got):\n%s", diff)
	}

	wantTotals := Totals{
		Invested:      d("1000"),
		Withdrawn:     d("300"),
		Dividends:     d("50"),
		Fees:          d("12"),
		Interest:      d("5"),
		RealizedGains: d("42"),
		NetDeposits:   d("700"),
	}
	if diff := cmp.Diff(wantTotals, s.Totals, decimalComparer); diff != "" {
		t.Errorf("Totals mismatch (-want +got):\n%s", diff)
	}

	if got := s.Tickers(); !cmp.Equal(got, []string{"X", "Y"}) {
		t.Errorf("Tickers() = %v, want [X Y]", got)
	}
}

func TestEngine_ClosedPositionsDropped(t *testing.T) {
	s := NewEngine([]Transaction{
		NewBuy(day(1, 1), "X", 1, 10),
		NewSell(day(1, 2), "X", d("0.9999995"), 10),
		NewBuy(day(1, 1), "Y", 1, 10),
	}).Build()
	if _, ok := s.Positions["X"]; ok {
		t.Errorf("position below tolerance is still visible")
	}
	if _, ok := s.Positions["Y"]; !ok {
		t.Errorf("open position Y is missing")
	}
}

func TestEngine_SuspiciousFXWarning(t *testing.T) {
	var buf bytes.Buffer
	NewEngine([]Transaction{
		NewBuy(day(1, 1), "X", 1, 10).In("EUR", 0.9),
	}, WithLogger(zerolog.New(&buf))).Build()
	if !strings.Contains(buf.String(), "suspicious exchange rate") {
		t.Errorf("no warning for a EUR transaction with fx 0.9, log = %q", buf.String())
	}
}

func TestEngine_AssetTypeBackfill(t *testing.T) {
	withName := NewBuy(day(1, 1), "VWCE", 1, 100)
	withName.Name = "Vanguard FTSE All-World UCITS ETF"
	s := NewEngine([]Transaction{
		withName,
		NewBuy(day(1, 1), "US0378331005", 1, 100),
		NewBuy(day(1, 1), "BTCEUR", 1, 100),
	}).Build()

	want := map[string]AssetType{"VWCE": ETF, "US0378331005": Stock, "BTCEUR": Crypto}
	for ticker, asset := range want {
		if got := s.Positions[ticker].AssetType; got != asset {
			t.Errorf("%s asset type = %v, want %v", ticker, got, asset)
		}
	}
}

func TestState_ValueAt(t *testing.T) {
	s := NewEngine([]Transaction{
		NewDeposit(day(1, 1), 100).At("flatex"),
		NewBuy(day(3, 1), "AAPL", 10, 1500).In("USD", 0.9),
		NewSell(day(4, 1), "AAPL", 5, 800).In("USD", 0.9),
		NewBuy(day(4, 1), "SAP", 2, 300),
	}).Build()
	fx := FXRates{"USDEUR": d("0.9")}

	testCases := []struct {
		name   string
		prices Prices
		want   decimal.Decimal
	}{
		{"priced", Prices{"AAPL": decimal.NewNullDecimal(d("170")), "SAP": decimal.NewNullDecimal(d("160"))}, d("1185")},
		{"missing price falls back to average cost", Prices{"SAP": decimal.NewNullDecimal(d("160"))}, d("1095")},
		{"null price falls back to average cost", Prices{"AAPL": {}, "SAP": {}}, d("1075")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.ValueAt(tc.prices, fx)
			if err != nil {
				t.Fatalf("ValueAt() error = %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("ValueAt() = %v, want %v", got, tc.want)
			}
		})
	}

	if _, err := s.ValueAt(nil, FXRates{}); err == nil {
		t.Errorf("ValueAt() without USD rate should fail")
	}
}

func TestEngine_HistoricalSeries(t *testing.T) {
	ledger := []Transaction{
		NewDeposit(day(1, 2), 1000).At("flatex"),
		NewBuy(day(1, 3), "X", 10, 1000).At("flatex"),
	}
	history := make(PriceHistory)
	history.Append("X", day(1, 3), d("100"))
	history.Append("X", day(1, 5), d("110"))

	e := NewEngine(ledger, WithClock(func() date.Date { return day(1, 10) }))
	got, err := e.HistoricalSeries(history, nil, date.Range{From: day(1, 1), To: day(1, 5)})
	if err != nil {
		t.Fatalf("HistoricalSeries() error = %v", err)
	}
	want := []Point{
		{Date: day(1, 2), NetDeposits: d("1000"), Value: d("1000"), CostBasis: decimal.Zero},
		{Date: day(1, 3), NetDeposits: d("1000"), Value: d("1000"), CostBasis: d("1000")},
		{Date: day(1, 4), NetDeposits: d("1000"), Value: d("1000"), CostBasis: d("1000")},
		{Date: day(1, 5), NetDeposits: d("1000"), Value: d("1100"), CostBasis: d("1000")},
	}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Errorf("HistoricalSeries() mismatch (-want +got):\n%s", diff)
	}

	capped := NewEngine(ledger, WithClock(func() date.Date { return day(1, 3) }))
	got, err = capped.HistoricalSeries(history, nil, date.Range{})
	if err != nil {
		t.Fatalf("HistoricalSeries() error = %v", err)
	}
	if len(got) != 2 || got[len(got)-1].Date != day(1, 3) {
		t.Errorf("HistoricalSeries() capped to today = %v, want 2 points ending on 2024-01-03", got)
	}
}

func TestEngine_HistoricalSeriesForeignCurrency(t *testing.T) {
	ledger := []Transaction{
		NewBuy(day(1, 2), "SAP", 2, 300),
		NewBuy(day(1, 3), "AAPL", 10, 1500).In("USD", 0.9),
	}
	history := make(PriceHistory)
	history.Append("SAP", day(1, 2), d("150"))
	history.Append("AAPL", day(1, 3), d("150"))
	fx := FXRates{"USDEUR": d("0.9")}

	e := NewEngine(ledger, WithClock(func() date.Date { return day(1, 10) }))
	got, err := e.HistoricalSeries(history, fx, date.Range{From: day(1, 2), To: day(1, 3)})
	if err != nil {
		t.Fatalf("HistoricalSeries() error = %v", err)
	}
	want := map[date.Date]decimal.Decimal{
		day(1, 2): d("300"),
		day(1, 3): d("1650"), // 300 EUR + 1500 USD at 0.9
	}
	if len(got) != len(want) {
		t.Fatalf("HistoricalSeries() = %d points, want %d", len(got), len(want))
	}
	for _, p := range got {
		if !p.CostBasis.Equal(want[p.Date]) {
			t.Errorf("cost basis on %v = %v, want %v", p.Date, p.CostBasis, want[p.Date])
		}
		if !p.Value.Equal(want[p.Date]) {
			t.Errorf("value on %v = %v, want %v", p.Date, p.Value, want[p.Date])
		}
	}

	if _, err := e.HistoricalSeries(history, FXRates{}, date.Range{From: day(1, 2), To: day(1, 3)}); err == nil {
		t.Errorf("HistoricalSeries() without USD rate should fail")
	}
}

func TestState_CostBasis(t *testing.T) {
	s := NewEngine([]Transaction{
		NewBuy(day(1, 1), "SAP", 2, 300),
		NewBuy(day(1, 2), "AAPL", 10, 1500).In("USD", 0.9),
	}).Build()
	got, err := s.CostBasis(FXRates{"USDEUR": d("0.9")})
	if err != nil {
		t.Fatalf("CostBasis() error = %v", err)
	}
	if !got.Equal(d("1650")) {
		t.Errorf("CostBasis() = %v, want 1650", got)
	}
	if _, err := s.CostBasis(nil); err == nil {
		t.Errorf("CostBasis(nil) with a USD position should fail")
	}
}
