package taxfolio

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/etnz/taxfolio/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultCashTrackingBrokers are the brokers whose exports carry every cash movement.
// Cash balances of other brokers are not reconstructed.
var DefaultCashTrackingBrokers = []string{"scalable_capital", "trade_republic", "interactive_brokers", "flatex"}

// CashFlow is an external investor cash movement in EUR.
// Negative amounts go into the portfolio, positive ones come out.
type CashFlow struct {
	Date   date.Date
	Amount decimal.Decimal
}

// Totals are the running aggregates of a replay, all in EUR.
type Totals struct {
	Invested      decimal.Decimal
	Withdrawn     decimal.Decimal
	Dividends     decimal.Decimal
	Fees          decimal.Decimal
	Interest      decimal.Decimal
	RealizedGains decimal.Decimal // broker reported, never reconciled with lot matching
	NetDeposits   decimal.Decimal
}

// Engine replays a ledger into portfolio state.
//
// The engine owns a sorted copy of the transactions and holds no other state:
// every call replays from scratch.
type Engine struct {
	txs         []Transaction
	cashBrokers map[string]bool
	log         zerolog.Logger
	today       func() date.Date
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger receiving data quality warnings.
func WithLogger(l zerolog.Logger) EngineOption { return func(e *Engine) { e.log = l } }

// WithCashTrackingBrokers replaces the cash tracking broker allow-list.
func WithCashTrackingBrokers(brokers ...string) EngineOption {
	return func(e *Engine) {
		e.cashBrokers = make(map[string]bool, len(brokers))
		for _, b := range brokers {
			e.cashBrokers[normalizeBroker(b)] = true
		}
	}
}

// WithClock sets the function returning today's date, used to cap historical series.
func WithClock(today func() date.Date) EngineOption { return func(e *Engine) { e.today = today } }

// NewEngine returns an Engine over a copy of txs sorted by date.
// Transactions on the same day keep their input order.
func NewEngine(txs []Transaction, opts ...EngineOption) *Engine {
	e := &Engine{
		txs:   slices.Clone(txs),
		log:   zerolog.Nop(),
		today: date.Today,
	}
	WithCashTrackingBrokers(DefaultCashTrackingBrokers...)(e)
	for _, opt := range opts {
		opt(e)
	}
	sort.SliceStable(e.txs, func(i, j int) bool { return e.txs[i].Date.Before(e.txs[j].Date) })
	return e
}

// Transactions returns the sorted transactions.
func (e *Engine) Transactions() []Transaction { return slices.Clone(e.txs) }

// State is the portfolio reconstructed by a replay.
type State struct {
	// Positions by ticker. After Build only open positions remain.
	Positions map[string]*Position
	Cash      decimal.Decimal
	Totals    Totals
	CashFlows []CashFlow

	log     zerolog.Logger
	brokers map[string]bool
}

// Build replays every transaction once and returns the final state.
// Positions holding less than a millionth of a share are dropped.
func (e *Engine) Build() *State {
	s := e.newState()
	for _, tx := range e.txs {
		s.apply(tx)
	}
	maps.DeleteFunc(s.Positions, func(_ string, p *Position) bool { return !p.IsOpen() })
	e.log.Debug().Int("transactions", len(e.txs)).Int("positions", len(s.Positions)).Msg("portfolio rebuilt")
	return s
}

func (e *Engine) newState() *State {
	return &State{
		Positions: make(map[string]*Position),
		log:       e.log,
		brokers:   e.cashBrokers,
	}
}

// Tickers returns the tickers of the positions, sorted.
func (s *State) Tickers() []string { return slices.Sorted(maps.Keys(s.Positions)) }

// CostBasis returns the EUR cost basis of every position, each converted with fx
// from its own currency.
func (s *State) CostBasis(fx FXConverter) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, ticker := range s.Tickers() {
		p := s.Positions[ticker]
		if p.CostBasis.IsZero() {
			continue
		}
		cost, err := Convert(fx, p.CostBasis, p.Currency)
		if err != nil {
			return decimal.Zero, fmt.Errorf("cannot convert cost basis of %s: %w", ticker, err)
		}
		total = total.Add(cost)
	}
	return total, nil
}

func normalizeBroker(b string) string {
	b = strings.ToLower(strings.TrimSpace(b))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(b)
}

// tracksCash reports whether tx moves this portfolio's reconstructed cash.
func (s *State) tracksCash(tx Transaction) bool {
	if tx.IsStockTransfer() {
		return false
	}
	return s.brokers[normalizeBroker(tx.Broker)] && tx.AssetType != Crypto
}

// apply is the single state transition of a replay.
func (s *State) apply(tx Transaction) {
	base := tx.BaseAmount()
	s.Totals.Fees = s.Totals.Fees.Add(tx.BaseFees())
	if tx.SuspiciousFX() {
		s.log.Warn().Str("date", tx.Date.String()).Str("type", tx.Type.String()).
			Str("currency", tx.OriginalCurrency()).Str("fxRate", tx.FXRate.String()).
			Msg("suspicious exchange rate")
	}

	if s.tracksCash(tx) {
		if tx.Type == TransferOut && !tx.HasTicker() {
			s.Cash = s.Cash.Sub(base.Abs())
		} else {
			s.Cash = s.Cash.Add(base)
		}
	}

	s.recordCashFlow(tx, base)

	if tx.HasTicker() {
		s.updatePosition(tx)
	}
}

// recordCashFlow books the external investor flows.
func (s *State) recordCashFlow(tx Transaction, base decimal.Decimal) {
	amount := base.Abs()
	switch {
	case tx.Type == Deposit, tx.Type == TransferIn && !tx.HasTicker():
		s.addFlow(tx.Date, amount.Neg())
		s.Totals.Invested = s.Totals.Invested.Add(amount)
		s.Totals.NetDeposits = s.Totals.NetDeposits.Add(amount)
	case tx.Type == Withdrawal, tx.Type == TransferOut && !tx.HasTicker():
		s.addFlow(tx.Date, amount)
		s.Totals.Withdrawn = s.Totals.Withdrawn.Add(amount)
		s.Totals.NetDeposits = s.Totals.NetDeposits.Sub(amount)
	case tx.Type == Dividend:
		s.addFlow(tx.Date, amount)
		s.Totals.Dividends = s.Totals.Dividends.Add(amount)
	case tx.Type == Interest:
		s.addFlow(tx.Date, amount)
		s.Totals.Interest = s.Totals.Interest.Add(amount)
	case tx.Type.IsFee():
		s.addFlow(tx.Date, amount.Neg())
		s.Totals.Fees = s.Totals.Fees.Add(amount)
	}
}

func (s *State) addFlow(on date.Date, amount decimal.Decimal) {
	s.CashFlows = append(s.CashFlows, CashFlow{Date: on, Amount: amount})
}

func (s *State) updatePosition(tx Transaction) {
	ticker := strings.TrimSpace(tx.Ticker)
	pos, ok := s.Positions[ticker]
	if !ok {
		pos = &Position{Ticker: ticker, Currency: tx.OriginalCurrency()}
		s.Positions[ticker] = pos
	}
	pos.backfill(tx)

	switch tx.Type {
	case Buy, TransferIn, StockDividend:
		pos.Shares = pos.Shares.Add(tx.Shares)
		if tx.Type != StockDividend {
			pos.CostBasis = pos.CostBasis.Add(tx.Total.Abs())
		}

	case Sell, TransferOut:
		before := pos.Shares
		switch {
		case !before.IsPositive():
		case tx.Shares.GreaterThanOrEqual(before):
			pos.CostBasis = decimal.Zero
		default:
			removed := pos.CostBasis.Div(before).Mul(tx.Shares)
			pos.CostBasis = pos.CostBasis.Sub(removed)
		}
		pos.Shares = before.Sub(tx.Shares)
		if tx.Type == Sell && tx.RealizedGain.Valid {
			s.Totals.RealizedGains = s.Totals.RealizedGains.Add(tx.RealizedGain.Decimal)
		}
		if pos.Shares.IsNegative() {
			s.log.Warn().Str("ticker", tx.Ticker).Str("date", tx.Date.String()).
				Str("sold", tx.Shares.String()).Str("held", before.String()).
				Msg("disposing of more shares than held, clamping position to zero")
			pos.Shares = decimal.Zero
			pos.CostBasis = decimal.Zero
		}
	}
}
