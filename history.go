package taxfolio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/taxfolio/date"
	"github.com/shopspring/decimal"
)

// PriceHistory is a date indexed price table per ticker.
type PriceHistory map[string]*date.History[decimal.Decimal]

// Append records the price of ticker on a day.
func (h PriceHistory) Append(ticker string, on date.Date, price decimal.Decimal) {
	series, ok := h[ticker]
	if !ok {
		series = new(date.History[decimal.Decimal])
		h[ticker] = series
	}
	series.Append(on, price)
}

// PricesAsOf returns the latest known price of every ticker on day.
func (h PriceHistory) PricesAsOf(day date.Date) Prices {
	prices := make(Prices, len(h))
	for ticker, series := range h {
		if price, ok := series.ValueAsOf(day); ok {
			prices[ticker] = decimal.NewNullDecimal(price)
		}
	}
	return prices
}

// Point is the portfolio on a given day.
type Point struct {
	Date        date.Date
	NetDeposits decimal.Decimal
	Value       decimal.Decimal
	CostBasis   decimal.Decimal
}

// HistoricalSeries replays the ledger day by day over r and records a Point per
// calendar day, starting on the first day with at least one transaction.
//
// A zero r.From starts at the first transaction, the end is capped to today.
// Transactions are applied through a single forward cursor.
func (e *Engine) HistoricalSeries(history PriceHistory, fx FXConverter, r date.Range) ([]Point, error) {
	if len(e.txs) == 0 {
		return nil, nil
	}
	if r.From.IsZero() {
		r.From = e.txs[0].Date
	}
	if today := e.today(); r.To.IsZero() || r.To.After(today) {
		r.To = today
	}

	s := e.newState()
	var points []Point
	cursor := 0
	for day := range r.Days() {
		for cursor < len(e.txs) && !e.txs[cursor].Date.After(day) {
			s.apply(e.txs[cursor])
			cursor++
		}
		if cursor == 0 {
			continue
		}
		value, err := s.ValueAt(history.PricesAsOf(day), fx)
		if err != nil {
			return nil, fmt.Errorf("valuing portfolio on %v: %w", day, err)
		}
		cost, err := s.CostBasis(fx)
		if err != nil {
			return nil, fmt.Errorf("cost basis on %v: %w", day, err)
		}
		points = append(points, Point{
			Date:        day,
			NetDeposits: s.Totals.NetDeposits,
			Value:       value,
			CostBasis:   cost,
		})
	}
	return points, nil
}

// DecodePriceHistory reads JSONL lines of {"date", "ticker", "price"}.
func DecodePriceHistory(r io.Reader) (PriceHistory, error) {
	type jprice struct {
		Date   date.Date       `json:"date"`
		Ticker string          `json:"ticker"`
		Price  decimal.Decimal `json:"price"`
	}
	h := make(PriceHistory)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		txt := strings.TrimSpace(scanner.Text())
		if txt == "" {
			continue
		}
		var jp jprice
		if err := json.Unmarshal([]byte(txt), &jp); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if jp.Ticker == "" {
			return nil, fmt.Errorf("line %d: missing ticker", line)
		}
		h.Append(jp.Ticker, jp.Date, jp.Price)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading price history: %w", err)
	}
	return h, nil
}
