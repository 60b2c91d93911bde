package taxfolio

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// AssetType classifies a security for tax purposes.
type AssetType int

const (
	Unknown AssetType = iota
	Stock
	ETF
	MutualFund
	Bond
	Option
	Future
	Warrant
	Crypto
	Cash
	Commodity
	Index
)

var assetTypeNames = map[AssetType]string{
	Unknown:    "Unknown",
	Stock:      "Stock",
	ETF:        "ETF",
	MutualFund: "MutualFund",
	Bond:       "Bond",
	Option:     "Option",
	Future:     "Future",
	Warrant:    "Warrant",
	Crypto:     "Crypto",
	Cash:       "Cash",
	Commodity:  "Commodity",
	Index:      "Index",
}

// assetTypeLookup maps upper case broker labels, English and German, to an AssetType.
var assetTypeLookup = map[string]AssetType{
	"UNKNOWN":        Unknown,
	"STOCK":          Stock,
	"STOCKS":         Stock,
	"SHARE":          Stock,
	"SHARES":         Stock,
	"EQUITY":         Stock,
	"EQUITIES":       Stock,
	"COMMON STOCK":   Stock,
	"AKTIE":          Stock,
	"AKTIEN":         Stock,
	"SECURITY":       Stock,
	"WERTPAPIER":     Stock,
	"ETF":            ETF,
	"ETFS":           ETF,
	"ETC":            ETF,
	"ETN":            ETF,
	"INDEX FUND":     ETF,
	"BOND":           Bond,
	"BONDS":          Bond,
	"ANLEIHE":        Bond,
	"ANLEIHEN":       Bond,
	"OPTION":         Option,
	"OPTIONS":        Option,
	"CALL":           Option,
	"PUT":            Option,
	"WARRANT":        Warrant,
	"WARRANTS":       Warrant,
	"OPTIONSSCHEIN":  Warrant,
	"FUTURE":         Future,
	"FUTURES":        Future,
	"CRYPTO":         Crypto,
	"CRYPTOCURRENCY": Crypto,
	"KRYPTO":         Crypto,
	"MUTUAL FUND":    MutualFund,
	"MUTUALFUND":     MutualFund,
	"FUND":           MutualFund,
	"FONDS":          MutualFund,
	"CASH":           Cash,
	"MONEY MARKET":   Cash,
	"COMMODITY":      Commodity,
	"COMMODITIES":    Commodity,
	"INDEX":          Index,
}

func (a AssetType) String() string {
	if name, ok := assetTypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("AssetType(%d)", int(a))
}

// IsFund reports whether a is a pooled investment vehicle.
func (a AssetType) IsFund() bool { return a == ETF || a == MutualFund }

// IsDerivative reports whether a is a derivative instrument.
func (a AssetType) IsDerivative() bool { return a == Option || a == Future || a == Warrant }

// ParseAssetType maps a broker label to an AssetType.
//
// An empty label is Unknown. Any other label missing from the lookup table
// returns an *UnrecognizedTypeError.
func ParseAssetType(s string) (AssetType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unknown, nil
	}
	key := strings.ToUpper(strings.NewReplacer("-", " ", "_", " ").Replace(s))
	if a, ok := assetTypeLookup[key]; ok {
		return a, nil
	}
	return Unknown, &UnrecognizedTypeError{Kind: "asset type", Value: s}
}

func (a AssetType) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *AssetType) UnmarshalText(text []byte) error {
	v, err := ParseAssetType(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// nameKeywords are checked in order against the upper cased security name.
var nameKeywords = []struct {
	keyword string
	asset   AssetType
}{
	{"UCITS", ETF},
	{"ETF", ETF},
	{"ETC", ETF},
	{"ETN", ETF},
	{"ISHARES", ETF},
	{"XTRACKERS", ETF},
	{"VANGUARD", ETF},
	{"FONDS", MutualFund},
	{"FUND", MutualFund},
	{"ANLEIHE", Bond},
	{"BOND", Bond},
	{"TREASURY", Bond},
	{"OPTIONSSCHEIN", Warrant},
	{"TURBO", Warrant},
	{"BITCOIN", Crypto},
	{"ETHEREUM", Crypto},
}

// InferAssetTypeFromName guesses the asset type from keywords in a security name.
func InferAssetTypeFromName(name string) (AssetType, bool) {
	upper := strings.ToUpper(name)
	for _, words := range strings.FieldsFunc(upper, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		for _, k := range nameKeywords {
			if words == k.keyword {
				return k.asset, true
			}
		}
	}
	return Unknown, false
}

// InferAssetTypeFromTicker guesses the asset type from the shape of a ticker symbol.
// It never fails: anything unrecognised is a Stock.
func InferAssetTypeFromTicker(ticker string) AssetType {
	if ticker == "" {
		return Unknown
	}
	upper := strings.ToUpper(ticker)
	if looksLikeISIN(ticker) {
		return Stock
	}
	if hasAnySuffix(upper, ".L", ".DE", ".PA") && containsAny(upper, "ETF", "ETC", "ETN") {
		return ETF
	}
	if hasCryptoToken(upper) {
		return Crypto
	}
	if len(ticker) > 15 && strings.ContainsFunc(ticker, unicode.IsDigit) {
		return Option
	}
	return Stock
}

// looksLikeISIN matches two letters followed by ten alphanumerics.
func looksLikeISIN(s string) bool {
	if len(s) != 12 {
		return false
	}
	for i, r := range s {
		switch {
		case i < 2 && !unicode.IsLetter(r):
			return false
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			return false
		}
	}
	return true
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, x := range suffixes {
		if strings.HasSuffix(s, x) {
			return true
		}
	}
	return false
}

var (
	cryptoSymbols = []string{"BTC", "ETH", "USDT", "USDC"}
	cryptoQuotes  = []string{"", "EUR", "USD", "USDT", "USDC"}
)

// hasCryptoToken reports whether a token of s is a crypto symbol, alone or
// glued to its quote currency as in "BTCEUR".
func hasCryptoToken(s string) bool {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, token := range tokens {
		for _, sym := range cryptoSymbols {
			rest, ok := strings.CutPrefix(token, sym)
			if ok && slices.Contains(cryptoQuotes, rest) {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, x := range subs {
		if strings.Contains(s, x) {
			return true
		}
	}
	return false
}
