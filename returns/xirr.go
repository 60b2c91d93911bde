// Package returns computes money weighted performance and risk metrics from
// the cash flows and daily values produced by a portfolio replay.
package returns

import (
	"errors"
	"fmt"
	"math"

	"github.com/etnz/taxfolio/date"
	"github.com/shopspring/decimal"
)

// ErrLengthMismatch is returned when dates and amounts are not paired.
var ErrLengthMismatch = errors.New("dates and amounts have different lengths")

const (
	maxIterations = 100
	tolerance     = 1e-6
	minRate       = -0.99
	maxRate       = 10.0
	// DefaultGuess is the usual starting rate.
	DefaultGuess = 0.1
)

// XIRR returns the annualized rate solving NPV = 0 over irregularly dated
// flows, or false when it is undefined.
//
// Years are counted as days/365 from the earliest date. The rate is undefined
// with less than two flows, without both a negative and a positive flow, when
// Newton-Raphson does not converge, or when the result falls outside
// [-0.99, 10].
func XIRR(dates []date.Date, amounts []decimal.Decimal, guess float64) (decimal.Decimal, bool) {
	rate, ok, err := XIRRFlows(dates, amounts, guess)
	if err != nil {
		return decimal.Zero, false
	}
	return rate, ok
}

// XIRRFlows is XIRR reporting mismatched inputs as an error.
func XIRRFlows(dates []date.Date, amounts []decimal.Decimal, guess float64) (decimal.Decimal, bool, error) {
	if len(dates) != len(amounts) {
		return decimal.Zero, false, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(dates), len(amounts))
	}
	if len(dates) < 2 {
		return decimal.Zero, false, nil
	}

	var hasNeg, hasPos bool
	base := dates[0]
	for i, amount := range amounts {
		hasNeg = hasNeg || amount.IsNegative()
		hasPos = hasPos || amount.IsPositive()
		if dates[i].Before(base) {
			base = dates[i]
		}
	}
	if !hasNeg || !hasPos {
		return decimal.Zero, false, nil
	}

	years := make([]float64, len(dates))
	flows := make([]float64, len(amounts))
	for i := range dates {
		years[i] = float64(dates[i].Sub(base)) / 365
		flows[i] = amounts[i].InexactFloat64()
	}

	rate, ok := newton(flows, years, guess)
	if !ok || rate < minRate || rate > maxRate {
		return decimal.Zero, false, nil
	}
	return decimal.NewFromFloat(rate), true, nil
}

// newton iterates until the step is below tolerance.
func newton(flows, years []float64, rate float64) (float64, bool) {
	for range maxIterations {
		npv, dnpv := 0.0, 0.0
		for i, f := range flows {
			discount := math.Pow(1+rate, years[i])
			npv += f / discount
			dnpv -= years[i] * f / (discount * (1 + rate))
		}
		if dnpv == 0 || math.IsNaN(npv) || math.IsNaN(dnpv) {
			return 0, false
		}
		next := rate - npv/dnpv
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return 0, false
		}
		if math.Abs(next-rate) < tolerance {
			return next, true
		}
		rate = next
	}
	return 0, false
}
