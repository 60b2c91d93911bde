package taxfolio

import (
	"fmt"
	"strings"
)

// TransactionType is the closed set of transaction kinds the engines understand.
type TransactionType int

const (
	Buy TransactionType = iota + 1
	Sell
	Dividend
	Interest
	TransferIn
	TransferOut
	Deposit
	Withdrawal
	StockDividend
	Cost
	// Fee is a standalone fee. The engines treat it exactly like Cost.
	Fee
)

var transactionTypeNames = map[TransactionType]string{
	Buy:           "BUY",
	Sell:          "SELL",
	Dividend:      "DIVIDEND",
	Interest:      "INTEREST",
	TransferIn:    "TRANSFER_IN",
	TransferOut:   "TRANSFER_OUT",
	Deposit:       "DEPOSIT",
	Withdrawal:    "WITHDRAWAL",
	StockDividend: "STOCK_DIVIDEND",
	Cost:          "COST",
	Fee:           "FEE",
}

// transactionTypeLookup maps normalized broker labels to a TransactionType.
// Keys are upper case without spaces, dashes or underscores.
var transactionTypeLookup = map[string]TransactionType{
	"BUY":               Buy,
	"PURCHASE":          Buy,
	"KAUF":              Buy,
	"SELL":              Sell,
	"SALE":              Sell,
	"VERKAUF":           Sell,
	"DIVIDEND":          Dividend,
	"DIVIDENDQUALIFIED": Dividend,
	"DIVIDENDORDINARY":  Dividend,
	"DIVIDENDE":         Dividend,
	"AUSSCHÜTTUNG":      Dividend,
	"DISTRIBUTION":      Dividend,
	"INTEREST":          Interest,
	"ZINSEN":            Interest,
	"TRANSFERIN":        TransferIn,
	"EINBUCHUNG":        TransferIn,
	"TRANSFEROUT":       TransferOut,
	"AUSBUCHUNG":        TransferOut,
	"DEPOSIT":           Deposit,
	"EINZAHLUNG":        Deposit,
	"WITHDRAWAL":        Withdrawal,
	"AUSZAHLUNG":        Withdrawal,
	"STOCKDIVIDEND":     StockDividend,
	"COST":              Cost,
	"FEE":               Fee,
	"GEBÜHR":            Fee,
	"GEBÜHREN":          Fee,
}

func (t TransactionType) String() string {
	if name, ok := transactionTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TransactionType(%d)", int(t))
}

// IsFee reports whether t is a standalone cost.
func (t TransactionType) IsFee() bool { return t == Cost || t == Fee }

// IsTransfer reports whether t moves something across the portfolio boundary without a trade.
func (t TransactionType) IsTransfer() bool { return t == TransferIn || t == TransferOut }

// ParseTransactionType normalizes a free text label into a TransactionType.
//
// Case, spaces, dashes and underscores are ignored. Unknown labels return an
// *UnrecognizedTypeError.
func ParseTransactionType(s string) (TransactionType, error) {
	if t, ok := transactionTypeLookup[normalizeTypeLabel(s)]; ok {
		return t, nil
	}
	return 0, &UnrecognizedTypeError{Kind: "transaction type", Value: s}
}

func normalizeTypeLabel(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}

func (t TransactionType) MarshalText() ([]byte, error) {
	if _, ok := transactionTypeNames[t]; !ok {
		return nil, fmt.Errorf("cannot marshal %v", t)
	}
	return []byte(t.String()), nil
}

func (t *TransactionType) UnmarshalText(text []byte) error {
	v, err := ParseTransactionType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// UnrecognizedTypeError reports a free text label that no lookup table maps.
type UnrecognizedTypeError struct {
	Kind  string // "transaction type" or "asset type"
	Value string
}

func (e *UnrecognizedTypeError) Error() string {
	return fmt.Sprintf("unrecognized %s %q", e.Kind, e.Value)
}
