package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/taxfolio"
	"github.com/google/subcommands"
)

type formatLedgerCmd struct {
	output string
}

func (*formatLedgerCmd) Name() string     { return "format-ledger" }
func (*formatLedgerCmd) Synopsis() string { return "formats the ledger file into a canonical form" }
func (*formatLedgerCmd) Usage() string {
	return `format-ledger [-o <file>]:
  formats the ledger file into a canonical form: upper case types, stable
  field order, explicit currency and exchange rate.

  By default the ledger file is rewritten in place. Use -o - for stdout.
`
}

func (c *formatLedgerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file, '-' for stdout (default: the ledger file itself)")
}

func (c *formatLedgerCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	txs, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	output := c.output
	if output == "" {
		output = *ledgerFile
	}
	if err := writeLedger(output, txs); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if output != "-" {
		log := Logger()
		log.Info().Str("file", output).Int("transactions", len(txs)).Msg("ledger formatted")
	}
	return subcommands.ExitSuccess
}

// writeLedger writes txs to filename, or stdout for "-".
func writeLedger(filename string, txs []taxfolio.Transaction) error {
	var w io.Writer = os.Stdout
	if filename != "-" {
		f, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("error opening ledger file %q for writing: %w", filename, err)
		}
		defer f.Close()
		w = f
	}
	return taxfolio.EncodeTransactions(w, txs...)
}
