package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/taxfolio"
	"github.com/etnz/taxfolio/date"
	"github.com/google/subcommands"
)

// appendTransaction appends a transaction to the ledger file, creating it if needed.
func appendTransaction(filename string, tx taxfolio.Transaction) error {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error opening ledger file %q: %w", filename, err)
	}
	defer f.Close()
	return taxfolio.EncodeTransactions(f, tx)
}

// addCmd records a transaction in the ledger.
type addCmd struct {
	date     string
	ticker   string
	isin     string
	shares   float64
	amount   float64
	fees     float64
	currency string
	rate     float64
	broker   string
	memo     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "append a transaction to the ledger" }
func (*addCmd) Usage() string {
	return `tfolio add <type> [-d <date>] [-t <ticker>] [-q <shares>] -a <amount> [-c <currency> -fx <rate>] [-fees <fees>] [-b <broker>] [-m <memo>]

  Appends a transaction to the ledger. <type> is one of BUY, SELL, DIVIDEND,
  INTEREST, DEPOSIT, WITHDRAWAL, TRANSFER_IN, TRANSFER_OUT or COST.

  The amount is always positive, its sign follows the type.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.ticker, "t", "", "Security ticker")
	f.StringVar(&c.isin, "isin", "", "Security ISIN")
	f.Float64Var(&c.shares, "q", 0, "Number of shares")
	f.Float64Var(&c.amount, "a", 0, "Total amount in the transaction currency")
	f.Float64Var(&c.fees, "fees", 0, "Fees in the transaction currency, included in the amount")
	f.StringVar(&c.currency, "c", taxfolio.BaseCurrency, "Transaction currency")
	f.Float64Var(&c.rate, "fx", 1, "Exchange rate from the transaction currency to EUR")
	f.StringVar(&c.broker, "b", "", "Broker holding the account")
	f.StringVar(&c.memo, "m", "", "An optional note for the transaction")
}

func (c *addCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	typ, err := taxfolio.ParseTransactionType(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	tx, err := c.transaction(typ, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := appendTransaction(*ledgerFile, tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing transaction: %v\n", err)
		return subcommands.ExitFailure
	}
	log := Logger()
	log.Info().Str("file", *ledgerFile).Stringer("type", typ).Msg("transaction appended")
	return subcommands.ExitSuccess
}

// transaction builds the transaction described by the flags.
func (c *addCmd) transaction(typ taxfolio.TransactionType, on date.Date) (taxfolio.Transaction, error) {
	if c.amount <= 0 {
		return taxfolio.Transaction{}, fmt.Errorf("amount must be positive, got %v", c.amount)
	}
	if c.fees < 0 || c.rate <= 0 {
		return taxfolio.Transaction{}, fmt.Errorf("fees must not be negative and rate must be positive")
	}
	currency := strings.ToUpper(c.currency)
	if !taxfolio.ValidCurrency(currency) {
		return taxfolio.Transaction{}, fmt.Errorf("unknown currency %q", c.currency)
	}

	needsShares := func() error {
		if c.ticker == "" || c.shares <= 0 {
			return fmt.Errorf("%v needs a ticker and a positive number of shares", typ)
		}
		return nil
	}
	var tx taxfolio.Transaction
	switch typ {
	case taxfolio.Buy, taxfolio.Sell:
		if err := needsShares(); err != nil {
			return tx, err
		}
		if typ == taxfolio.Buy {
			tx = taxfolio.NewBuy(on, c.ticker, c.shares, c.amount)
		} else {
			tx = taxfolio.NewSell(on, c.ticker, c.shares, c.amount)
		}
	case taxfolio.TransferIn:
		tx = taxfolio.NewTransferIn(on, c.ticker, c.shares, c.amount)
	case taxfolio.TransferOut:
		tx = taxfolio.NewTransferOut(on, c.ticker, c.shares, c.amount)
	case taxfolio.Dividend:
		if c.ticker == "" {
			return tx, fmt.Errorf("%v needs a ticker", typ)
		}
		tx = taxfolio.NewDividend(on, c.ticker, c.amount)
	case taxfolio.Deposit:
		tx = taxfolio.NewDeposit(on, c.amount)
	case taxfolio.Withdrawal:
		tx = taxfolio.NewWithdrawal(on, c.amount)
	case taxfolio.Interest:
		tx = taxfolio.NewInterest(on, c.amount)
	case taxfolio.Cost:
		tx = taxfolio.NewCost(on, c.amount)
	default:
		return tx, fmt.Errorf("%v transactions cannot be added from the command line", typ)
	}

	tx = tx.In(currency, c.rate).At(c.broker).WithISIN(c.isin).WithFees(c.fees)
	tx.Memo = c.memo
	return tx, nil
}
