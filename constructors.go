package taxfolio

import (
	"github.com/etnz/taxfolio/date"
	"github.com/shopspring/decimal"
)

// Number is any numeric value accepted by the transaction constructors.
type Number interface {
	float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal
}

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T Number](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

func newTrade[S, A Number](on date.Date, typ TransactionType, ticker string, shares S, amount A, sign int64) Transaction {
	q, total := newDecimal(shares), newDecimal(amount).Abs()
	tx := Transaction{
		Date:     on,
		Type:     typ,
		Ticker:   ticker,
		Shares:   q,
		Total:    total.Mul(decimal.NewFromInt(sign)),
		Currency: BaseCurrency,
		FXRate:   decimal.NewFromInt(1),
	}
	if !q.IsZero() {
		tx.Price = total.DivRound(q, 8)
	}
	return tx
}

// NewBuy returns a EUR purchase of shares for a total amount paid.
func NewBuy[S, A Number](on date.Date, ticker string, shares S, amount A) Transaction {
	return newTrade(on, Buy, ticker, shares, amount, -1)
}

// NewSell returns a EUR sale of shares for a total amount received.
func NewSell[S, A Number](on date.Date, ticker string, shares S, amount A) Transaction {
	return newTrade(on, Sell, ticker, shares, amount, 1)
}

// NewTransferIn returns an inbound transfer. Without ticker it is a cash deposit.
func NewTransferIn[S, A Number](on date.Date, ticker string, shares S, amount A) Transaction {
	return newTrade(on, TransferIn, ticker, shares, amount, 1)
}

// NewTransferOut returns an outbound transfer. Without ticker it is a cash withdrawal.
func NewTransferOut[S, A Number](on date.Date, ticker string, shares S, amount A) Transaction {
	return newTrade(on, TransferOut, ticker, shares, amount, -1)
}

// NewDeposit returns a cash deposit of amount EUR.
func NewDeposit[A Number](on date.Date, amount A) Transaction {
	return newTrade(on, Deposit, "", 0, amount, 1)
}

// NewWithdrawal returns a cash withdrawal of amount EUR.
func NewWithdrawal[A Number](on date.Date, amount A) Transaction {
	return newTrade(on, Withdrawal, "", 0, amount, -1)
}

// NewDividend returns a cash dividend of amount EUR paid by ticker.
func NewDividend[A Number](on date.Date, ticker string, amount A) Transaction {
	return newTrade(on, Dividend, ticker, 0, amount, 1)
}

// NewInterest returns an interest payment of amount EUR.
func NewInterest[A Number](on date.Date, amount A) Transaction {
	return newTrade(on, Interest, "", 0, amount, 1)
}

// NewCost returns a standalone cost of amount EUR.
func NewCost[A Number](on date.Date, amount A) Transaction {
	return newTrade(on, Cost, "", 0, amount, -1)
}

// In returns a copy of t denominated in currency, converted to EUR at rate.
func (t Transaction) In(currency string, rate float64) Transaction {
	t.Currency = currency
	t.FXRate = decimal.NewFromFloat(rate)
	return t
}

// At returns a copy of t booked at broker.
func (t Transaction) At(broker string) Transaction {
	t.Broker = broker
	return t
}

// WithISIN returns a copy of t identified by isin.
func (t Transaction) WithISIN(isin string) Transaction {
	t.ISIN = isin
	return t
}

// WithFees returns a copy of t with fees in the transaction currency.
func (t Transaction) WithFees(fees float64) Transaction {
	t.Fees = decimal.NewFromFloat(fees)
	return t
}
