package taxfolio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ErrNoRate is returned when no exchange rate is known for a currency pair.
var ErrNoRate = errors.New("no exchange rate")

// FXConverter provides the rate to convert one unit of from into to.
//
// Rates are pre-fetched by the caller, the engines never look them up lazily.
type FXConverter interface {
	Rate(from, to string) (decimal.Decimal, error)
}

// FXFunc adapts a function to the FXConverter interface.
type FXFunc func(from, to string) (decimal.Decimal, error)

func (f FXFunc) Rate(from, to string) (decimal.Decimal, error) { return f(from, to) }

// FXRates is a static table of rates keyed by pair, like "USDEUR".
//
// A pair missing from the table is looked up inverted, so storing "USDEUR"
// also answers EUR to USD.
type FXRates map[string]decimal.Decimal

// Rate implements FXConverter.
func (r FXRates) Rate(from, to string) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to || from == "" {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := r[from+to]; ok {
		return rate, nil
	}
	inverse, ok := r[to+from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w for %s to %s", ErrNoRate, from, to)
	}
	if inverse.IsZero() {
		return decimal.Zero, fmt.Errorf("inverse exchange rate %s%s is zero, cannot convert", to, from)
	}
	return decimal.NewFromInt(1).DivRound(inverse, 10), nil
}

// Convert converts amount in currency into EUR with fx.
func Convert(fx FXConverter, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	if currency == "" || currency == BaseCurrency {
		return amount, nil
	}
	if fx == nil {
		return decimal.Zero, fmt.Errorf("%w for %s to %s: no converter", ErrNoRate, currency, BaseCurrency)
	}
	rate, err := fx.Rate(currency, BaseCurrency)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// ValidCurrency reports whether code is a known ISO 4217 currency.
func ValidCurrency(code string) bool {
	return money.GetCurrency(strings.ToUpper(code)) != nil
}

// FormatMoney formats amount in currency with the currency's symbol and precision.
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

// FormatSignedMoney is like FormatMoney with an explicit plus sign.
// Zero is rendered as "-".
func FormatSignedMoney(amount decimal.Decimal, currency string) string {
	switch {
	case amount.IsZero():
		return "-"
	case amount.IsPositive():
		return "+" + FormatMoney(amount, currency)
	default:
		return FormatMoney(amount, currency)
	}
}
