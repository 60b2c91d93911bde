package date

import (
	"fmt"
	"strings"
)

// Period is a standard calendar period used to select report ranges.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
	Quarterly
	Yearly
)

// periodNames holds the adjective and the noun of each period, in order.
var periodNames = [...][2]string{
	Daily:     {"daily", "day"},
	Weekly:    {"weekly", "week"},
	Monthly:   {"monthly", "month"},
	Quarterly: {"quarterly", "quarter"},
	Yearly:    {"yearly", "year"},
}

func (p Period) String() string {
	if p < 0 || int(p) >= len(periodNames) {
		panic(fmt.Sprintf("unknown period %d", p))
	}
	return periodNames[p][0]
}

// Range returns the Range for the period containing d.
// Yearly ranges are the tax years.
func (p Period) Range(d Date) Range { return NewRange(d, p) }

// ToDate returns the period containing d cut at d, e.g. year to date.
func (p Period) ToDate(d Date) Range {
	r := p.Range(d)
	r.To = d
	return r
}

// PeriodNames returns the short period names accepted by ParsePeriod.
func PeriodNames() []string {
	names := make([]string, len(periodNames))
	for i, n := range periodNames {
		names[i] = n[1]
	}
	return names
}

// ParsePeriod parses a period name, noun or adjective form, case insensitive.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, n := range periodNames {
		if s == n[0] || s == n[1] {
			return Period(p), nil
		}
	}
	return Daily, fmt.Errorf("unknown period %q, want one of %s", s, strings.Join(PeriodNames(), ", "))
}
