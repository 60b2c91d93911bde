package taxfolio

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/taxfolio/date"
	"github.com/shopspring/decimal"
)

func init() {
	// Numbers in the ledger are written as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// jtransaction is the on-disk form of a Transaction, one per line.
type jtransaction struct {
	Date         date.Date           `json:"date"`
	Type         string              `json:"type"`
	Ticker       string              `json:"ticker"`
	ISIN         string              `json:"isin"`
	Name         string              `json:"name"`
	AssetType    string              `json:"assetType"`
	Shares       decimal.Decimal     `json:"shares"`
	Price        decimal.Decimal     `json:"price"`
	Fees         decimal.Decimal     `json:"fees"`
	Total        decimal.Decimal     `json:"total"`
	Currency     string              `json:"currency"`
	FXRate       decimal.NullDecimal `json:"fxRate"`
	Broker       string              `json:"broker"`
	RealizedGain decimal.NullDecimal `json:"realizedGain"`
	Memo         string              `json:"memo"`
}

// MarshalJSON writes the transaction with a stable field order, omitting empty fields.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", t.Date)
	w.Append("type", t.Type)
	w.Optional("ticker", t.Ticker)
	w.Optional("isin", t.ISIN)
	w.Optional("name", t.Name)
	if t.AssetType != Unknown {
		w.Append("assetType", t.AssetType)
	}
	w.Decimal("shares", t.Shares)
	w.Decimal("price", t.Price)
	w.Decimal("fees", t.Fees)
	w.Append("total", t.Total)
	w.Append("currency", t.OriginalCurrency())
	w.Append("fxRate", t.rate())
	w.Optional("broker", t.Broker)
	if t.RealizedGain.Valid {
		w.Append("realizedGain", t.RealizedGain.Decimal)
	}
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

// UnmarshalJSON reads a transaction, defaulting currency to EUR and fxRate to 1.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var jt jtransaction
	if err := json.Unmarshal(data, &jt); err != nil {
		return err
	}
	typ, err := ParseTransactionType(jt.Type)
	if err != nil {
		return err
	}
	asset, err := ParseAssetType(jt.AssetType)
	if err != nil {
		return err
	}
	currency := strings.ToUpper(strings.TrimSpace(jt.Currency))
	if currency == "" {
		currency = BaseCurrency
	}
	rate := decimal.NewFromInt(1)
	if jt.FXRate.Valid {
		rate = jt.FXRate.Decimal
	}
	switch {
	case jt.Date.IsZero():
		return errors.New("missing date")
	case jt.Shares.IsNegative():
		return fmt.Errorf("negative shares %v", jt.Shares)
	case jt.Fees.IsNegative():
		return fmt.Errorf("negative fees %v", jt.Fees)
	case rate.IsNegative():
		return fmt.Errorf("negative fxRate %v", rate)
	}
	*t = Transaction{
		Date:         jt.Date,
		Type:         typ,
		Ticker:       strings.TrimSpace(jt.Ticker),
		ISIN:         strings.TrimSpace(jt.ISIN),
		Name:         jt.Name,
		AssetType:    asset,
		Shares:       jt.Shares,
		Price:        jt.Price,
		Fees:         jt.Fees,
		Total:        jt.Total,
		Currency:     currency,
		FXRate:       rate,
		Broker:       strings.TrimSpace(jt.Broker),
		RealizedGain: jt.RealizedGain,
		Memo:         jt.Memo,
	}
	return nil
}

// DecodeTransactions reads a JSONL ledger. Blank lines are skipped.
// Errors carry the 1-based line number and wrap the underlying cause, so that
// an *UnrecognizedTypeError can still be extracted with errors.As.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		txt := strings.TrimSpace(scanner.Text())
		if txt == "" {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal([]byte(txt), &tx); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	return txs, nil
}

// DecodeTransactionsFile opens and decodes a JSONL ledger file.
func DecodeTransactionsFile(filename string) ([]Transaction, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger %q: %w", filename, err)
	}
	defer f.Close()
	txs, err := DecodeTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return txs, nil
}

// EncodeTransactions writes transactions as JSONL, one per line.
func EncodeTransactions(w io.Writer, txs ...Transaction) error {
	for _, tx := range txs {
		b, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("cannot encode transaction on %v: %w", tx.Date, err)
		}
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}
