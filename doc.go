// Package taxfolio reconstructs an investment portfolio from its transaction
// ledger. It is a pure computation over an in-memory list of transactions:
// no network, no persistence beyond the JSONL codecs, no hidden caches.
//
// The core functionalities include:
//   - Ledger model: Transaction with closed TransactionType and AssetType
//     enums, decoded from free text broker labels through lookup tables.
//   - Replay: Engine sorts the ledger by date (stable on ties) and reduces it
//     in a single forward pass into positions, cash balance, totals and the
//     external cash-flow series used for money weighted returns.
//   - Valuation: State.ValueAt prices the positions, converting with an
//     FXConverter, and Engine.HistoricalSeries walks the calendar day by day.
//
// Tax lot matching lives in package taxlot, returns in package returns and
// jurisdiction rules in package tax. They all consume the same ledger.
//
// This package serves as the foundational logic for the `tfolio` command-line
// tool.
package taxfolio
