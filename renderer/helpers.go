package renderer

import (
	"github.com/etnz/taxfolio"
	"github.com/shopspring/decimal"
)

func eur(v decimal.Decimal) string { return taxfolio.FormatMoney(v, taxfolio.BaseCurrency) }

func signedEUR(v decimal.Decimal) string {
	return taxfolio.FormatSignedMoney(v, taxfolio.BaseCurrency)
}

// percent formats a percentage already multiplied by 100.
func percent(v decimal.Decimal) string { return v.StringFixed(2) + "%" }

func signedPercent(v decimal.Decimal) string {
	if v.IsPositive() {
		return "+" + percent(v)
	}
	return percent(v)
}

// quantity trims useless trailing zeros of share counts.
func quantity(v decimal.Decimal) string { return v.Round(6).String() }

// formatNative formats an amount in the currency of a position.
func formatNative(v decimal.Decimal, currency string) string {
	if currency == "" {
		currency = taxfolio.BaseCurrency
	}
	return taxfolio.FormatMoney(v, currency)
}
