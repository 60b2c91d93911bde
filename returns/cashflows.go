package returns

import (
	"maps"
	"slices"

	"github.com/etnz/taxfolio"
	"github.com/etnz/taxfolio/date"
	"github.com/shopspring/decimal"
)

// BuildCashFlows prepares the XIRR input from raw external flows.
//
// Flows are summed per day and each day is rounded half to even to cents.
// currentValue is appended on today as the terminal liquidation flow, added to
// any flow already on that day.
func BuildCashFlows(raw []taxfolio.CashFlow, currentValue decimal.Decimal, today date.Date) ([]date.Date, []decimal.Decimal) {
	perDay := make(map[date.Date]decimal.Decimal)
	for _, cf := range raw {
		perDay[cf.Date] = perDay[cf.Date].Add(cf.Amount)
	}
	for day, sum := range perDay {
		perDay[day] = sum.RoundBank(2)
	}
	perDay[today] = perDay[today].Add(currentValue.RoundBank(2))

	dates := slices.SortedFunc(maps.Keys(perDay), date.Date.Compare)
	amounts := make([]decimal.Decimal, len(dates))
	for i, day := range dates {
		amounts[i] = perDay[day]
	}
	return dates, amounts
}

// AbsoluteReturn returns the gain current + withdrawn - invested and its
// percentage of invested. Both are zero when nothing was invested.
func AbsoluteReturn(invested, withdrawn, current decimal.Decimal) (abs, pct decimal.Decimal) {
	if invested.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	abs = current.Add(withdrawn).Sub(invested)
	pct = abs.Div(invested).Mul(decimal.NewFromInt(100))
	return abs, pct
}
