package returns

import (
	"math"

	"github.com/etnz/taxfolio"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TradingDays annualizes daily metrics.
const TradingDays = 252

// Values extracts the daily portfolio values of a historical series.
func Values(points []taxfolio.Point) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value.InexactFloat64()
	}
	return values
}

// activeValues drops the leading zero values, before anything was invested.
// It returns nil when fewer than two non zero values exist.
func activeValues(values []float64) []float64 {
	nonZero, first := 0, -1
	for i, v := range values {
		if v != 0 {
			nonZero++
			if first < 0 {
				first = i
			}
		}
	}
	if nonZero < 2 {
		return nil
	}
	return values[first:]
}

// dailyReturns returns the day over day returns, skipping undefined ones.
func dailyReturns(values []float64) []float64 {
	var rets []float64
	for i := 1; i < len(values); i++ {
		r := (values[i] - values[i-1]) / values[i-1]
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		rets = append(rets, r)
	}
	return rets
}

// Volatility is the population standard deviation of the daily returns,
// times √252 when annualize is set. It needs two returns.
func Volatility(values []float64, annualize bool) (float64, bool) {
	rets := dailyReturns(activeValues(values))
	if len(rets) < 2 {
		return 0, false
	}
	_, std := stat.PopMeanStdDev(rets, nil)
	if annualize {
		std *= math.Sqrt(TradingDays)
	}
	return std, true
}

// SharpeRatio is the annualized excess daily return over riskFree, an annual
// rate, per unit of volatility. It is zero when the returns do not vary.
func SharpeRatio(values []float64, riskFree float64) (float64, bool) {
	rets := dailyReturns(activeValues(values))
	if len(rets) < 1 {
		return 0, false
	}
	mean, std := stat.PopMeanStdDev(rets, nil)
	if std == 0 {
		return 0, true
	}
	dailyRF := math.Pow(1+riskFree, 1.0/TradingDays) - 1
	return (mean - dailyRF) / std * math.Sqrt(TradingDays), true
}

// MaxDrawdown is the worst relative fall from a running peak, zero or negative.
func MaxDrawdown(values []float64) (float64, bool) {
	active := activeValues(values)
	if active == nil {
		return 0, false
	}
	var drawdowns []float64
	peak := active[0]
	for _, v := range active {
		peak = math.Max(peak, v)
		dd := (v - peak) / peak
		if math.IsNaN(dd) || math.IsInf(dd, 0) {
			continue
		}
		drawdowns = append(drawdowns, dd)
	}
	if len(drawdowns) == 0 {
		return 0, true
	}
	return floats.Min(drawdowns), true
}
