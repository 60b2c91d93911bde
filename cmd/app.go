// Package cmd implements the CLI application reporting on a portfolio ledger.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/taxfolio"
	"github.com/etnz/taxfolio/date"
	"github.com/etnz/taxfolio/taxlot"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Commands are the subcommands of the application, registered by main.
var Commands = []subcommands.Command{
	&holdingCmd{},
	&lotsCmd{},
	&gainsCmd{},
	&performanceCmd{},
	&historyCmd{},
	&taxCmd{},
	&addCmd{},
	&formatLedgerCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	ledgerFile  = flag.String("ledger", envOr(EnvLedgerFile, "transactions.jsonl"), "Path to the ledger file containing transactions (JSONL format)")
	quotesFile  = flag.String("quotes", os.Getenv(EnvQuotesFile), "Path to a JSON document with the latest prices")
	quotesPath  = flag.String("quotes-path", envOr(EnvQuotesPath, "$"), "JSONPath selecting the ticker to price object inside the quotes document")
	historyFile = flag.String("history", os.Getenv(EnvHistoryFile), "Path to the daily price history (JSONL format)")
	configFile  = flag.String("config", envOr(EnvConfigFile, "taxfolio.toml"), "Path to the TOML configuration file")
	Verbose     = flag.Bool("v", envBool(EnvVerbose), "Log debug information on stderr")
	plain       = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}

// Logger returns the application logger, writing warnings to stderr, and
// debug information as well when verbose.
func Logger() zerolog.Logger {
	level := zerolog.WarnLevel
	if *Verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// DecodeLedger decodes the transactions of the app ledger file.
func DecodeLedger() ([]taxfolio.Transaction, error) {
	return taxfolio.DecodeTransactionsFile(*ledgerFile)
}

// DecodeQuotes decodes the latest prices, if a quotes file is set.
func DecodeQuotes() (taxfolio.Prices, error) {
	if *quotesFile == "" {
		return taxfolio.Prices{}, nil
	}
	f, err := os.Open(*quotesFile)
	if err != nil {
		return nil, fmt.Errorf("cannot open quotes %q: %w", *quotesFile, err)
	}
	defer f.Close()
	return taxfolio.DecodeQuotes(f, *quotesPath)
}

// DecodePriceHistory decodes the daily prices, if a history file is set and exists.
func DecodePriceHistory() (taxfolio.PriceHistory, error) {
	if *historyFile == "" {
		return taxfolio.PriceHistory{}, nil
	}
	f, err := os.Open(*historyFile)
	if errors.Is(err, fs.ErrNotExist) {
		log := Logger()
		log.Warn().Str("file", *historyFile).Msg("price history does not exist, using no history")
		return taxfolio.PriceHistory{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open price history %q: %w", *historyFile, err)
	}
	defer f.Close()
	return taxfolio.DecodePriceHistory(f)
}

// pricesOn returns the prices known on a day: the price history, overridden
// by the latest quotes when on is today.
func pricesOn(on date.Date) (taxfolio.Prices, error) {
	history, err := DecodePriceHistory()
	if err != nil {
		return nil, err
	}
	prices := history.PricesAsOf(on)
	if on == date.Today() {
		quotes, err := DecodeQuotes()
		if err != nil {
			return nil, err
		}
		maps.Copy(prices, quotes)
	}
	return prices, nil
}

// until returns the transactions dated on or before on.
func until(txs []taxfolio.Transaction, on date.Date) []taxfolio.Transaction {
	var out []taxfolio.Transaction
	for _, tx := range txs {
		if !tx.Date.After(on) {
			out = append(out, tx)
		}
	}
	return out
}

// session is the state shared by every report: configuration and ledger.
type session struct {
	config *Config
	log    zerolog.Logger
	txs    []taxfolio.Transaction
}

func newSession() (*session, error) {
	config, err := LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	txs, err := DecodeLedger()
	if err != nil {
		return nil, fmt.Errorf("error loading ledger: %w", err)
	}
	return &session{config: config, log: Logger(), txs: txs}, nil
}

// engine returns the portfolio engine over the transactions up to on.
func (s *session) engine(on date.Date) *taxfolio.Engine {
	return taxfolio.NewEngine(until(s.txs, on),
		taxfolio.WithLogger(s.log),
		taxfolio.WithCashTrackingBrokers(s.config.CashTrackingBrokers...),
	)
}

// book matches the transactions up to on with method, or the configured one.
func (s *session) book(on date.Date, method string, income bool) (*taxlot.Book, error) {
	strategy, err := s.config.Strategy(method)
	if err != nil {
		return nil, err
	}
	opts := []taxlot.Option{taxlot.WithLogger(s.log)}
	if income {
		opts = append(opts, taxlot.WithIncomeEvents())
	}
	return taxlot.Process(until(s.txs, on), strategy, opts...), nil
}

// parseRange builds the report range from the usual -p, -s and -d flags.
// start wins over period; an empty period means since the beginning.
func parseRange(period, start, end string) (date.Range, error) {
	to, err := date.Parse(end)
	if err != nil {
		return date.Range{}, fmt.Errorf("invalid end date: %w", err)
	}
	if start != "" {
		from, err := date.Parse(start)
		if err != nil {
			return date.Range{}, fmt.Errorf("invalid start date: %w", err)
		}
		if from.After(to) {
			return date.Range{}, fmt.Errorf("start date %s is after end date %s", from, to)
		}
		return date.Range{From: from, To: to}, nil
	}
	if period == "" {
		return date.Range{To: to}, nil
	}
	p, err := date.ParsePeriod(period)
	if err != nil {
		return date.Range{}, err
	}
	return p.ToDate(to), nil
}

// printMarkdown renders doc for the terminal, falling back to raw markdown.
func printMarkdown(doc string) {
	if *plain {
		fmt.Print(doc)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err == nil {
		var out string
		if out, err = r.Render(doc); err == nil {
			fmt.Print(out)
			return
		}
	}
	log := Logger()
	log.Debug().Err(err).Msg("cannot render markdown, printing it raw")
	fmt.Print(doc)
}
