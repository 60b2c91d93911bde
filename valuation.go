package taxfolio

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Prices maps a ticker to its latest price in the position currency.
// An invalid entry means the market data collaborator had no price.
type Prices map[string]decimal.NullDecimal

// Price returns the price of ticker if known.
func (p Prices) Price(ticker string) (decimal.Decimal, bool) {
	v, ok := p[ticker]
	if !ok || !v.Valid {
		return decimal.Zero, false
	}
	return v.Decimal, true
}

// ValueAt returns the EUR value of the portfolio: every position at its price,
// converted with fx when priced in another currency, plus cash.
//
// A position without price is valued at its average cost.
func (s *State) ValueAt(prices Prices, fx FXConverter) (decimal.Decimal, error) {
	total := s.Cash
	for _, ticker := range s.Tickers() {
		value, err := s.positionValue(s.Positions[ticker], prices, fx)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(value)
	}
	return total, nil
}

// PositionValue returns the EUR value of the position for ticker.
func (s *State) PositionValue(ticker string, prices Prices, fx FXConverter) (decimal.Decimal, error) {
	pos, ok := s.Positions[ticker]
	if !ok {
		return decimal.Zero, nil
	}
	return s.positionValue(pos, prices, fx)
}

func (s *State) positionValue(pos *Position, prices Prices, fx FXConverter) (decimal.Decimal, error) {
	if !pos.Shares.IsPositive() {
		return decimal.Zero, nil
	}
	price, ok := prices.Price(pos.Ticker)
	if !ok {
		price = pos.AverageCost()
		s.log.Debug().Str("ticker", pos.Ticker).Str("price", price.String()).Msg("no price, valuing at average cost")
	}
	value, err := Convert(fx, pos.MarketValue(price), pos.Currency)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot value %s: %w", pos.Ticker, err)
	}
	return value, nil
}
