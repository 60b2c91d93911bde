package taxfolio

import (
	"strings"

	"github.com/etnz/taxfolio/date"
	"github.com/shopspring/decimal"
)

// BaseCurrency is the currency every aggregate is reported in.
const BaseCurrency = "EUR"

// Transaction is a single validated, split-adjusted ledger entry.
//
// Total is the signed net cash flow in the original currency: negative for
// money leaving the account (buys, costs), positive for money coming in.
// FXRate converts the original currency into EUR.
type Transaction struct {
	Date      date.Date
	Type      TransactionType
	Ticker    string
	ISIN      string
	Name      string
	AssetType AssetType
	Shares    decimal.Decimal
	Price     decimal.Decimal
	Fees      decimal.Decimal
	Total     decimal.Decimal
	Currency  string
	FXRate    decimal.Decimal
	Broker    string
	// RealizedGain is the broker reported gain of a SELL, if any.
	RealizedGain decimal.NullDecimal
	Memo         string
}

// BaseAmount is the transaction total in EUR.
func (t Transaction) BaseAmount() decimal.Decimal { return t.Total.Mul(t.rate()) }

// BaseFees is the transaction fees in EUR.
func (t Transaction) BaseFees() decimal.Decimal { return t.Fees.Mul(t.rate()) }

// rate treats an unset rate as identity so that hand built transactions stay usable.
func (t Transaction) rate() decimal.Decimal {
	if t.FXRate.IsZero() && t.Currency == "" {
		return decimal.NewFromInt(1)
	}
	return t.FXRate
}

// HasTicker reports whether the transaction references a security.
func (t Transaction) HasTicker() bool { return strings.TrimSpace(t.Ticker) != "" }

// IsStockTransfer reports whether the transaction moves shares, not cash, across the boundary.
func (t Transaction) IsStockTransfer() bool { return t.Type.IsTransfer() && t.HasTicker() }

// AssetKey identifies the security for lot tracking: ISIN when known, ticker otherwise.
func (t Transaction) AssetKey() string {
	if isin := strings.TrimSpace(t.ISIN); isin != "" {
		return "ISIN:" + isin
	}
	return "TICKER:" + strings.TrimSpace(t.Ticker)
}

// OriginalCurrency returns the currency of Total, EUR when unset.
func (t Transaction) OriginalCurrency() string {
	if t.Currency == "" {
		return BaseCurrency
	}
	return t.Currency
}

// SuspiciousFX reports a rate that cannot be right: zero on a non zero amount,
// or different from one on a EUR amount.
func (t Transaction) SuspiciousFX() bool {
	if t.FXRate.IsZero() {
		return !t.Total.IsZero() && t.Currency != ""
	}
	return t.OriginalCurrency() == BaseCurrency && !t.FXRate.Equal(decimal.NewFromInt(1))
}
