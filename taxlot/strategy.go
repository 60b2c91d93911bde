package taxlot

import (
	"slices"
	"strings"

	"github.com/etnz/taxfolio"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Strategy decides how purchases become lots and how sales consume them.
//
// open always holds the open lots of a single asset. Strategies mutate the
// quantity of the lots they consume; the engine prunes exhausted lots.
type Strategy interface {
	Method() Method
	// HandleBuy returns the open lots once lot is acquired.
	HandleBuy(lot *Lot, open []*Lot) []*Lot
	// MatchSell consumes open lots for sell and returns the realized events,
	// and the quantity no lot could match.
	MatchSell(sell taxfolio.Transaction, open []*Lot) (events []Event, unmatched decimal.Decimal)
}

// NewStrategy returns the strategy for a method name.
// An unknown name is a configuration error.
func NewStrategy(name string) (Strategy, error) {
	m, err := ParseMethod(name)
	if err != nil {
		return nil, err
	}
	switch m {
	case WeightedAverage:
		return WeightedAverageStrategy{}, nil
	default:
		return FIFOStrategy{}, nil
	}
}

// proceedsOf returns the EUR proceeds of qty shares out of a sale.
func proceedsOf(sell taxfolio.Transaction, qty decimal.Decimal) decimal.Decimal {
	if sell.Shares.IsZero() {
		return decimal.Zero
	}
	return qty.Div(sell.Shares).Mul(sell.BaseAmount().Abs())
}

// FIFOStrategy keeps every purchase as a discrete lot and sells the oldest first.
type FIFOStrategy struct{}

func (FIFOStrategy) Method() Method { return FIFO }

func (FIFOStrategy) HandleBuy(lot *Lot, open []*Lot) []*Lot { return append(open, lot) }

// MatchSell emits one event per consumed lot. The cost of each event is pro
// rata of the lot's original quantity.
func (FIFOStrategy) MatchSell(sell taxfolio.Transaction, open []*Lot) ([]Event, decimal.Decimal) {
	sorted := slices.Clone(open)
	slices.SortStableFunc(sorted, func(a, b *Lot) int { return a.Acquired.Compare(b.Acquired) })

	remaining := sell.Shares
	var events []Event
	for _, lot := range sorted {
		if !remaining.IsPositive() {
			break
		}
		if lot.Exhausted() {
			continue
		}
		qty := decimal.Min(lot.Quantity, remaining)
		events = append(events, newSaleEvent(sell, FIFO, lot.Acquired, qty, proceedsOf(sell, qty), lot.costOf(qty), lot.ID))
		lot.Quantity = lot.Quantity.Sub(qty)
		remaining = remaining.Sub(qty)
	}
	return events, decimal.Max(remaining, decimal.Zero)
}

// WeightedAverageStrategy pools every purchase of an asset into a single lot
// at the average cost. The pooled lot keeps the earliest acquisition date.
type WeightedAverageStrategy struct{}

func (WeightedAverageStrategy) Method() Method { return WeightedAverage }

// HandleBuy pools the purchase, its fees included, with the open lots.
func (WeightedAverageStrategy) HandleBuy(lot *Lot, open []*Lot) []*Lot {
	return []*Lot{mergeLots(append(slices.Clone(open), lot))}
}

// MatchSell emits a single event against the pooled lot. Selling more than
// the pool holds sells the pool and reports the rest as unmatched.
func (WeightedAverageStrategy) MatchSell(sell taxfolio.Transaction, open []*Lot) ([]Event, decimal.Decimal) {
	var pool *Lot
	switch len(open) {
	case 0:
		return nil, sell.Shares
	case 1:
		pool = open[0]
	default:
		// Several lots only come from buys that were not pooled, pool them now.
		merged := mergeLots(open)
		for _, lot := range open[1:] {
			lot.Quantity = decimal.Zero
		}
		*open[0] = *merged
		pool = open[0]
	}

	qty := decimal.Min(sell.Shares, pool.Quantity)
	if !qty.IsPositive() {
		return nil, sell.Shares
	}
	event := newSaleEvent(sell, WeightedAverage, pool.Acquired, qty, proceedsOf(sell, qty), pool.costOf(qty), pool.ID)
	event.Notes = "weighted average cost basis"
	pool.Quantity = pool.Quantity.Sub(qty)
	return []Event{event}, sell.Shares.Sub(qty)
}

// mergeLots pools lots into one EUR lot. Quantity and cost are what remains of
// each lot, fees included, and the acquisition date is the earliest one.
func mergeLots(lots []*Lot) *Lot {
	quantity, cost := decimal.Zero, decimal.Zero
	acquired := lots[0].Acquired
	ids := make([]string, 0, len(lots))
	for _, lot := range lots {
		quantity = quantity.Add(lot.Quantity)
		cost = cost.Add(lot.RemainingCost()).Add(lot.remainingFees())
		if lot.Acquired.Before(acquired) {
			acquired = lot.Acquired
		}
		ids = append(ids, lot.ID)
	}
	first := lots[0]
	return &Lot{
		ID:               uuid.NewSHA1(lotNamespace, []byte(strings.Join(ids, "+"))).String(),
		AssetKey:         first.AssetKey,
		Ticker:           first.Ticker,
		ISIN:             first.ISIN,
		Name:             first.Name,
		AssetType:        first.AssetType,
		Acquired:         acquired,
		Quantity:         quantity,
		OriginalQuantity: quantity,
		CostBasis:        cost,
		Fees:             decimal.Zero,
		FXRate:           decimal.NewFromInt(1),
		Currency:         taxfolio.BaseCurrency,
	}
}
