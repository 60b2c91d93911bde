package renderer

import (
	"sort"

	"github.com/etnz/taxfolio"
	"github.com/etnz/taxfolio/date"
	"github.com/shopspring/decimal"
)

// Holding is the valued content of the portfolio on a day.
// Amounts are in EUR unless stated otherwise.
type Holding struct {
	Date date.Date
	// Value is the total portfolio value, securities and cash.
	Value      decimal.Decimal
	Securities decimal.Decimal
	Cash       decimal.Decimal
	// Positions are sorted by decreasing market value.
	Positions []HoldingPosition
}

// HoldingPosition is a single open position.
type HoldingPosition struct {
	Ticker    string
	Name      string
	AssetType taxfolio.AssetType
	Currency  string
	Shares    decimal.Decimal
	// AverageCost and Price are in the position currency.
	AverageCost decimal.Decimal
	Price       decimal.Decimal
	// Priced is false when Price fell back to the average cost.
	Priced         bool
	MarketValue    decimal.Decimal
	UnrealizedGain decimal.Decimal
	// Allocation is the percentage of the securities value.
	Allocation decimal.Decimal
}

// GainPercent is the unrealized gain relative to the cost.
func (p HoldingPosition) GainPercent() decimal.Decimal {
	cost := p.MarketValue.Sub(p.UnrealizedGain)
	if cost.IsZero() {
		return decimal.Zero
	}
	return p.UnrealizedGain.Div(cost).Mul(decimal.NewFromInt(100))
}

// NewHolding values every open position of s with prices and fx.
func NewHolding(on date.Date, s *taxfolio.State, prices taxfolio.Prices, fx taxfolio.FXConverter) (*Holding, error) {
	h := &Holding{Date: on, Cash: s.Cash}
	for _, ticker := range s.Tickers() {
		pos := s.Positions[ticker]
		price, priced := prices.Price(ticker)
		if !priced {
			price = pos.AverageCost()
		}
		value, err := taxfolio.Convert(fx, pos.MarketValue(price), pos.Currency)
		if err != nil {
			return nil, err
		}
		gain, err := taxfolio.Convert(fx, pos.UnrealizedGain(price), pos.Currency)
		if err != nil {
			return nil, err
		}
		h.Positions = append(h.Positions, HoldingPosition{
			Ticker:         ticker,
			Name:           pos.Name,
			AssetType:      pos.AssetType,
			Currency:       pos.Currency,
			Shares:         pos.Shares,
			AverageCost:    pos.AverageCost(),
			Price:          price,
			Priced:         priced,
			MarketValue:    value,
			UnrealizedGain: gain,
		})
		h.Securities = h.Securities.Add(value)
	}
	h.Value = h.Securities.Add(h.Cash)

	if !h.Securities.IsZero() {
		for i := range h.Positions {
			h.Positions[i].Allocation = h.Positions[i].MarketValue.Div(h.Securities).Mul(decimal.NewFromInt(100))
		}
	}
	sort.SliceStable(h.Positions, func(i, j int) bool {
		return h.Positions[i].MarketValue.GreaterThan(h.Positions[j].MarketValue)
	})
	return h, nil
}
