package tax

import (
	"fmt"
	"strings"

	"github.com/etnz/taxfolio"
	"github.com/etnz/taxfolio/taxlot"
	"github.com/shopspring/decimal"
)

func init() { Register("DE", func() Calculator { return NewGermany() }) }

var (
	// GermanyRate is the flat Abgeltungssteuer rate.
	GermanyRate = decimal.RequireFromString("0.25")
	// SolidarityRate is the Solidaritätszuschlag, applied to the tax itself.
	SolidarityRate = decimal.RequireFromString("0.055")
	// GermanyAllowance is the yearly Sparer-Pauschbetrag.
	GermanyAllowance = decimal.NewFromInt(1000)
)

// cryptoHoldingDays is the holding period after which crypto gains are tax free.
const cryptoHoldingDays = 365

var cryptoTickers = []string{"BTC", "ETH", "USDT", "BNB", "XRP", "ADA", "SOL", "DOGE"}

// Germany computes the Abgeltungssteuer with solidarity surcharge.
// Crypto held more than a year is tax free, other crypto is taxed like
// securities.
type Germany struct {
	Allowance  decimal.Decimal
	Solidarity bool
}

// NewGermany returns the calculator with the standard allowance and surcharge.
func NewGermany() Germany { return Germany{Allowance: GermanyAllowance, Solidarity: true} }

func (Germany) Code() string         { return "DE" }
func (Germany) Jurisdiction() string { return "Germany" }

func (g Germany) Liability(events []taxlot.Event, year int) Liability {
	l := Liability{
		Jurisdiction: fmt.Sprintf("%s (%s)", g.Jurisdiction(), g.Code()),
		Year:         year,
		Assumptions: []string{
			fmt.Sprintf("Capital gains tax rate: %s%%", GermanyRate.Shift(2)),
			fmt.Sprintf("Annual tax-free allowance: %s", taxfolio.FormatMoney(g.Allowance, taxfolio.BaseCurrency)),
			fmt.Sprintf("Crypto tax-free holding period: %d days", cryptoHoldingDays),
		},
	}
	if g.Solidarity {
		l.Assumptions = append(l.Assumptions, fmt.Sprintf("Solidarity surcharge: %s%% of tax", SolidarityRate.Shift(2)))
	}

	yearEvents := FilterYear(events, year)
	if len(yearEvents) == 0 {
		l.TotalRealizedGain, l.TaxableGain, l.TaxOwed = decimal.Zero, decimal.Zero, decimal.Zero
		l.Notes = "No taxable events in this period"
		return l
	}

	regular, cryptoShort, cryptoLong := decimal.Zero, decimal.Zero, decimal.Zero
	exempt := 0
	for _, e := range yearEvents {
		switch {
		case !isCrypto(e):
			regular = regular.Add(e.Gain)
		case e.HoldingDays > cryptoHoldingDays:
			cryptoLong = cryptoLong.Add(e.Gain)
			exempt++
		default:
			cryptoShort = cryptoShort.Add(e.Gain)
		}
	}

	beforeAllowance := regular.Add(cryptoShort)
	taxable := decimal.Max(decimal.Zero, beforeAllowance.Sub(g.Allowance))
	base := taxable.Mul(GermanyRate)
	soli := decimal.Zero
	if g.Solidarity {
		soli = base.Mul(SolidarityRate)
	}
	total := regular.Add(cryptoShort).Add(cryptoLong)

	l.TotalRealizedGain = total
	l.TaxableGain = taxable
	l.TaxOwed = base.Add(soli)
	l.Breakdown = []Line{
		{"Regular realized gain", regular},
		{"Crypto short-term gain", cryptoShort},
		{"Crypto long-term gain", cryptoLong},
		{"Total realized gain", total},
		{"Taxable gain before allowance", beforeAllowance},
		{"Allowance used", decimal.Max(decimal.Zero, decimal.Min(g.Allowance, beforeAllowance))},
		{"Taxable gain after allowance", taxable},
		{"Capital gains tax", base},
		{"Solidarity surcharge", soli},
		{"Tax owed", l.TaxOwed},
	}

	var notes []string
	if exempt > 0 {
		notes = append(notes, fmt.Sprintf("%d crypto event(s) excluded (held > 1 year)", exempt))
	}
	if beforeAllowance.IsNegative() {
		notes = append(notes, "Net loss cannot be carried forward to next year for capital gains")
	}
	l.Notes = strings.Join(notes, " | ")
	return l
}

func isCrypto(e taxlot.Event) bool {
	if e.AssetType == taxfolio.Crypto {
		return true
	}
	for _, t := range cryptoTickers {
		if strings.EqualFold(e.Ticker, t) {
			return true
		}
	}
	return false
}
