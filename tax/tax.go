// Package tax turns realized events into a jurisdiction specific tax liability.
//
// Calculators register themselves under an ISO country code and are looked up
// by the code configured for the portfolio.
package tax

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/etnz/taxfolio/taxlot"
	"github.com/shopspring/decimal"
)

// Calculator computes the tax owed for a calendar year.
type Calculator interface {
	// Code is the ISO code of the jurisdiction, e.g. "AT".
	Code() string
	// Jurisdiction is the human readable name.
	Jurisdiction() string
	// Liability computes the tax for year. events may span several years,
	// calculators only consider the ones sold during year.
	Liability(events []taxlot.Event, year int) Liability
}

// Line is one labelled amount of a liability breakdown.
type Line struct {
	Label  string
	Amount decimal.Decimal
}

// Liability is the outcome of a tax calculation, in EUR.
type Liability struct {
	Jurisdiction      string
	Year              int
	TotalRealizedGain decimal.Decimal
	TaxableGain       decimal.Decimal
	TaxOwed           decimal.Decimal
	Breakdown         []Line
	Notes             string
	Assumptions       []string
}

// Amount returns the amount of the breakdown line labelled label.
func (l Liability) Amount(label string) (decimal.Decimal, bool) {
	for _, line := range l.Breakdown {
		if line.Label == label {
			return line.Amount, true
		}
	}
	return decimal.Zero, false
}

// ErrUnknownJurisdiction is returned by Lookup for a code without calculator.
var ErrUnknownJurisdiction = errors.New("unknown tax jurisdiction")

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Calculator)
)

// Register makes a calculator available under code. It panics if code is
// registered twice.
func Register(code string, factory func() Calculator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	code = strings.ToUpper(code)
	if _, dup := registry[code]; dup {
		panic("tax: Register called twice for " + code)
	}
	registry[code] = factory
}

// Lookup returns a new calculator for code, case insensitive.
func Lookup(code string) (Calculator, error) {
	registryMu.RLock()
	factory, ok := registry[strings.ToUpper(strings.TrimSpace(code))]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q, available: %s", ErrUnknownJurisdiction, code, strings.Join(Codes(), ", "))
	}
	return factory(), nil
}

// Codes returns the registered jurisdiction codes, sorted.
func Codes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}

// FilterYear returns the events sold during year.
func FilterYear(events []taxlot.Event, year int) []taxlot.Event {
	var out []taxlot.Event
	for _, e := range events {
		if e.Sold.Year() == year {
			out = append(out, e)
		}
	}
	return out
}

// TotalGain sums the gain of events.
func TotalGain(events []taxlot.Event) decimal.Decimal { return taxlot.TotalGain(events) }
