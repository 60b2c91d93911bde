package tax

import (
	"fmt"

	"github.com/etnz/taxfolio"
	"github.com/etnz/taxfolio/taxlot"
	"github.com/shopspring/decimal"
)

func init() { Register("AT", func() Calculator { return Austria{} }) }

// Austrian E1kv reporting fields (Kennzahlen) for foreign income.
const (
	Kz863 = "Kz 863 (Dividends/Interest Foreign)"
	Kz898 = "Kz 898 (Fund Distributions Foreign)"
	Kz994 = "Kz 994 (Realized Gains Foreign)"
	Kz892 = "Kz 892 (Realized Losses Foreign)"
	Kz995 = "Kz 995 (Derivative Gains Foreign)"
	Kz896 = "Kz 896 (Derivative Losses Foreign)"
)

// AustriaRate is the flat capital gains tax (KESt).
var AustriaRate = decimal.RequireFromString("0.275")

// Austria computes the KESt owed on a foreign depot, reported as E1kv fields.
//
// Income goes to Kz 863, or Kz 898 for funds. Sales go to Kz 994 and Kz 892,
// or Kz 995 and Kz 896 for derivatives. Losses are reported as positive
// amounts. Gains and losses of the year are netted and only a positive net
// is taxed. Fees never reduce the taxable gain.
type Austria struct{}

func (Austria) Code() string         { return "AT" }
func (Austria) Jurisdiction() string { return "Austria" }

func (a Austria) Liability(events []taxlot.Event, year int) Liability {
	yearEvents := FilterYear(events, year)
	if len(yearEvents) == 0 {
		return Liability{
			Jurisdiction:      fmt.Sprintf("%s (%s)", a.Jurisdiction(), a.Code()),
			Year:              year,
			TotalRealizedGain: decimal.Zero,
			TaxableGain:       decimal.Zero,
			TaxOwed:           decimal.Zero,
			Notes:             "No taxable events",
		}
	}

	pots := map[string]decimal.Decimal{}
	gains, losses := decimal.Zero, decimal.Zero
	for _, e := range yearEvents {
		amount := e.Gain
		if e.IsIncome() {
			if e.AssetType.IsFund() {
				pots[Kz898] = pots[Kz898].Add(amount)
			} else {
				pots[Kz863] = pots[Kz863].Add(amount)
			}
			gains = gains.Add(amount)
			continue
		}

		gainKz, lossKz := Kz994, Kz892
		if e.AssetType.IsDerivative() {
			gainKz, lossKz = Kz995, Kz896
		}
		if amount.IsNegative() {
			pots[lossKz] = pots[lossKz].Add(amount.Abs())
			losses = losses.Add(amount.Abs())
		} else {
			pots[gainKz] = pots[gainKz].Add(amount)
			gains = gains.Add(amount)
		}
	}

	net := gains.Sub(losses)
	owed := decimal.Zero
	if net.IsPositive() {
		owed = net.Mul(AustriaRate)
	}

	l := Liability{
		Jurisdiction:      fmt.Sprintf("%s (%s) - E1kv", a.Jurisdiction(), a.Code()),
		Year:              year,
		TotalRealizedGain: net,
		TaxableGain:       net,
		TaxOwed:           owed,
		Assumptions: []string{
			fmt.Sprintf("Capital gains tax rate (KESt): %s%%", AustriaRate.Shift(2)),
			"Report maps to Form E1kv (foreign depot) only",
			"Losses offset gains within the same tax year",
			"FX gains are included through the EUR proceeds and cost of each event",
		},
	}
	for _, kz := range []string{Kz863, Kz898, Kz994, Kz892, Kz995, Kz896} {
		l.Breakdown = append(l.Breakdown, Line{kz, pots[kz]})
	}
	l.Breakdown = append(l.Breakdown,
		Line{"Total gains", gains},
		Line{"Total losses", losses},
		Line{"Net taxable gain", net},
		Line{"Tax owed", owed},
	)
	if net.IsNegative() {
		l.Notes = fmt.Sprintf("Net loss of %s remaining.", taxfolio.FormatMoney(net.Abs(), taxfolio.BaseCurrency))
	}
	return l
}
