package taxfolio

import (
	"github.com/shopspring/decimal"
)

// holdingTolerance is the share count under which a position is considered closed.
var holdingTolerance = decimal.New(1, -6)

// Position accumulates the holding of a single ticker during replay.
//
// CostBasis is the aggregate native amount paid for the shares still held.
type Position struct {
	Ticker    string
	ISIN      string
	Name      string
	Currency  string
	AssetType AssetType
	Shares    decimal.Decimal
	CostBasis decimal.Decimal
}

// IsOpen reports whether the position holds more than a rounding residue.
func (p *Position) IsOpen() bool { return p.Shares.Abs().GreaterThan(holdingTolerance) }

// AverageCost is the native cost per share, zero when nothing is held.
func (p *Position) AverageCost() decimal.Decimal {
	if !p.Shares.IsPositive() {
		return decimal.Zero
	}
	return p.CostBasis.Div(p.Shares)
}

// MarketValue is the native value of the position at price.
func (p *Position) MarketValue(price decimal.Decimal) decimal.Decimal { return p.Shares.Mul(price) }

// UnrealizedGain is the native gain of the position at price.
func (p *Position) UnrealizedGain(price decimal.Decimal) decimal.Decimal {
	return p.MarketValue(price).Sub(p.CostBasis)
}

// backfill completes the descriptive fields from a transaction.
// Asset type comes from the transaction, else from the name, else from the ticker.
func (p *Position) backfill(tx Transaction) {
	if p.Name == "" && tx.Name != "" {
		p.Name = tx.Name
	}
	if p.ISIN == "" && tx.ISIN != "" {
		p.ISIN = tx.ISIN
	}
	switch {
	case tx.AssetType != Unknown:
		p.AssetType = tx.AssetType
	case p.AssetType != Unknown:
	default:
		if a, ok := InferAssetTypeFromName(p.Name); ok {
			p.AssetType = a
		} else {
			p.AssetType = InferAssetTypeFromTicker(tx.Ticker)
		}
	}
}
