package taxlot

import (
	"maps"
	"slices"
	"sort"

	"github.com/etnz/taxfolio"
	"github.com/etnz/taxfolio/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Book is the result of matching a ledger: the lots still open and the
// realized events, in the order they happened.
type Book struct {
	method Method
	open   map[string][]*Lot
	events []Event
}

// Option configures Process.
type Option func(*processor)

type processor struct {
	log    zerolog.Logger
	income bool
}

// WithLogger sets the logger receiving orphaned sell warnings.
func WithLogger(l zerolog.Logger) Option { return func(p *processor) { p.log = l } }

// WithIncomeEvents also records dividends and interest as zero quantity events.
func WithIncomeEvents() Option { return func(p *processor) { p.income = true } }

// Process replays txs in date order, equal dates in input order, and matches
// every sale with strategy. It never fails: sales without matching lots are
// logged and skipped.
func Process(txs []taxfolio.Transaction, strategy Strategy, opts ...Option) *Book {
	p := processor{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&p)
	}
	sorted := slices.Clone(txs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	b := &Book{method: strategy.Method(), open: make(map[string][]*Lot)}
	for i, tx := range sorted {
		switch tx.Type {
		case taxfolio.Buy:
			if !tx.Shares.IsPositive() {
				continue
			}
			key := tx.AssetKey()
			b.open[key] = strategy.HandleBuy(newLot(tx, i), b.open[key])

		case taxfolio.Sell:
			key := tx.AssetKey()
			events, unmatched := strategy.MatchSell(tx, b.open[key])
			b.events = append(b.events, events...)
			if unmatched.IsPositive() {
				p.log.Warn().Str("ticker", tx.Ticker).Str("asset", key).Str("date", tx.Date.String()).
					Str("sold", tx.Shares.String()).Str("unmatched", unmatched.String()).
					Msg("orphaned sell, selling more shares than available in open lots")
			}
			b.open[key] = slices.DeleteFunc(b.open[key], (*Lot).Exhausted)
			if len(b.open[key]) == 0 {
				delete(b.open, key)
			}

		case taxfolio.Dividend, taxfolio.Interest:
			if p.income {
				b.events = append(b.events, incomeEvent(tx, b.method))
			}
		}
	}
	p.log.Debug().Str("method", string(b.method)).Int("events", len(b.events)).Msg("tax lots matched")
	return b
}

func incomeEvent(tx taxfolio.Transaction, method Method) Event {
	amount := tx.BaseAmount().Abs()
	return Event{
		Ticker:    tx.Ticker,
		ISIN:      tx.ISIN,
		Name:      tx.Name,
		AssetType: tx.AssetType,
		Sold:      tx.Date,
		Acquired:  tx.Date,
		Proceeds:  amount,
		Gain:      amount,
		Method:    method,
		Currency:  tx.OriginalCurrency(),
		FXRate:    tx.FXRate,
		Notes:     tx.Type.String(),
	}
}

// Method returns the lot matching method used to build the book.
func (b *Book) Method() Method { return b.method }

// OpenLots returns a copy of the open lots of an asset key, oldest first.
func (b *Book) OpenLots(assetKey string) []Lot {
	lots := make([]Lot, 0, len(b.open[assetKey]))
	for _, lot := range b.open[assetKey] {
		lots = append(lots, *lot)
	}
	slices.SortStableFunc(lots, func(x, y Lot) int { return x.Acquired.Compare(y.Acquired) })
	return lots
}

// AssetKeys returns the keys of the assets with open lots, sorted.
func (b *Book) AssetKeys() []string { return slices.Sorted(maps.Keys(b.open)) }

// AllOpenLots returns every open lot, by asset key then acquisition date.
func (b *Book) AllOpenLots() []Lot {
	var lots []Lot
	for _, key := range b.AssetKeys() {
		lots = append(lots, b.OpenLots(key)...)
	}
	return lots
}

// Events returns a copy of all the events.
func (b *Book) Events() []Event { return slices.Clone(b.events) }

// RealizedEvents returns the events sold between from and to, inclusive.
// A zero date leaves that side open.
func (b *Book) RealizedEvents(from, to date.Date) []Event {
	return Filter(b.events, date.Range{From: from, To: to})
}

// EventsInYear returns the events sold during a calendar year.
func (b *Book) EventsInYear(year int) []Event { return Filter(b.events, date.Year(year)) }

// Filter returns the events whose sale date is in r.
func Filter(events []Event, r date.Range) []Event {
	var out []Event
	for _, e := range events {
		if r.Contains(e.Sold) {
			out = append(out, e)
		}
	}
	return out
}

// TotalGain sums the gain of events.
func TotalGain(events []Event) decimal.Decimal {
	total := decimal.Zero
	for _, e := range events {
		total = total.Add(e.Gain)
	}
	return total
}

// Years returns the distinct years with events, ascending.
func Years(events []Event) []int {
	var years []int
	for _, e := range events {
		if y := e.Sold.Year(); !slices.Contains(years, y) {
			years = append(years, y)
		}
	}
	slices.Sort(years)
	return years
}
