// Package taxlot tracks tax lots and the realized events produced by matching
// sales against them.
//
// A Lot is created by every purchase and keeps its EUR cost basis fixed for its
// whole life; only its remaining quantity decreases. Sales are matched against
// open lots by a Strategy and produce append-only Events.
package taxlot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/taxfolio"
	"github.com/etnz/taxfolio/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method names a lot matching method.
type Method string

const (
	FIFO            Method = "FIFO"
	WeightedAverage Method = "WeightedAverage"
)

// ErrUnknownMethod is returned for a lot matching method that does not exist.
var ErrUnknownMethod = errors.New("unknown lot matching method")

// ParseMethod parses a method name, case insensitive.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo":
		return FIFO, nil
	case "weightedaverage", "weighted-average", "weighted_average", "average":
		return WeightedAverage, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// lotNamespace seeds deterministic lot identifiers.
var lotNamespace = uuid.MustParse("5f0c7f5e-4a0b-4c43-9d57-3e1f6b2a9c10")

// Lot is a single acquisition of a security.
type Lot struct {
	ID        string
	AssetKey  string
	Ticker    string
	ISIN      string
	Name      string
	AssetType taxfolio.AssetType
	Acquired  date.Date
	// Quantity still held, never increases.
	Quantity         decimal.Decimal
	OriginalQuantity decimal.Decimal
	// CostBasis in EUR for OriginalQuantity, fixed at creation.
	CostBasis decimal.Decimal
	Fees      decimal.Decimal // EUR
	FXRate    decimal.Decimal
	Currency  string
}

// newLot builds the lot acquired by a purchase. ordinal is the purchase's
// position in the sorted ledger and makes the ID deterministic.
func newLot(tx taxfolio.Transaction, ordinal int) *Lot {
	key := tx.AssetKey()
	return &Lot{
		ID:               uuid.NewSHA1(lotNamespace, fmt.Appendf(nil, "%s/%s/%d", key, tx.Date, ordinal)).String(),
		AssetKey:         key,
		Ticker:           tx.Ticker,
		ISIN:             tx.ISIN,
		Name:             tx.Name,
		AssetType:        tx.AssetType,
		Acquired:         tx.Date,
		Quantity:         tx.Shares,
		OriginalQuantity: tx.Shares,
		CostBasis:        tx.BaseAmount().Abs(),
		Fees:             tx.BaseFees(),
		FXRate:           tx.FXRate,
		Currency:         tx.OriginalCurrency(),
	}
}

// Exhausted reports whether nothing is left in the lot.
func (l *Lot) Exhausted() bool { return !l.Quantity.IsPositive() }

// costOf returns the cost of qty shares, pro rata of the original quantity.
func (l *Lot) costOf(qty decimal.Decimal) decimal.Decimal {
	if l.OriginalQuantity.IsZero() {
		return decimal.Zero
	}
	return qty.Div(l.OriginalQuantity).Mul(l.CostBasis)
}

// RemainingCost is the EUR cost of the shares still held.
func (l *Lot) RemainingCost() decimal.Decimal { return l.costOf(l.Quantity) }

// remainingFees is the share of the fees attached to the shares still held.
func (l *Lot) remainingFees() decimal.Decimal {
	if l.OriginalQuantity.IsZero() {
		return decimal.Zero
	}
	return l.Quantity.Div(l.OriginalQuantity).Mul(l.Fees)
}

// Event is a realized disposal matched against one or more lots, or an income
// payment when Quantity is zero. Amounts are in EUR.
type Event struct {
	Ticker      string
	ISIN        string
	Name        string
	AssetType   taxfolio.AssetType
	Sold        date.Date
	Acquired    date.Date
	Quantity    decimal.Decimal
	Proceeds    decimal.Decimal
	CostBasis   decimal.Decimal
	Gain        decimal.Decimal
	HoldingDays int
	Method      Method
	LotIDs      []string
	Currency    string // of the sale
	FXRate      decimal.Decimal
	Notes       string
}

// IsIncome reports whether the event is a dividend or interest payment.
func (e Event) IsIncome() bool { return e.Quantity.IsZero() }

// IsLongTerm reports whether the disposed shares were held more than days.
func (e Event) IsLongTerm(days int) bool { return !e.IsIncome() && e.HoldingDays > days }

// newSaleEvent fills the sale side of an event.
func newSaleEvent(sell taxfolio.Transaction, method Method, acquired date.Date, qty, proceeds, cost decimal.Decimal, lotIDs ...string) Event {
	return Event{
		Ticker:      sell.Ticker,
		ISIN:        sell.ISIN,
		Name:        sell.Name,
		AssetType:   sell.AssetType,
		Sold:        sell.Date,
		Acquired:    acquired,
		Quantity:    qty,
		Proceeds:    proceeds,
		CostBasis:   cost,
		Gain:        proceeds.Sub(cost),
		HoldingDays: sell.Date.Sub(acquired),
		Method:      method,
		LotIDs:      lotIDs,
		Currency:    sell.OriginalCurrency(),
		FXRate:      sell.FXRate,
	}
}
