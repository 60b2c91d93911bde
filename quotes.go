package taxfolio

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// DecodeQuotes reads latest prices from a JSON document.
//
// path is a JSONPath expression selecting the quotes inside the document, "$"
// or empty for the root. The selection is either an object of ticker to price,
// or a list of objects with "ticker" and "price" attributes. Prices can be
// numbers, strings (a decimal comma is accepted) or null for unknown.
func DecodeQuotes(r io.Reader, path string) (Prices, error) {
	var jobj any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("quotes are not valid json: %w", err)
	}
	if path != "" && path != "$" {
		jval, err := jsonpath.Get(path, jobj)
		if err != nil {
			return nil, fmt.Errorf("error evaluating %q: %w", path, err)
		}
		jobj = jval
	}

	prices := make(Prices)
	switch v := jobj.(type) {
	case map[string]any:
		for ticker, jprice := range v {
			price, err := quoteValue(jprice)
			if err != nil {
				return nil, fmt.Errorf("cannot read price of %q: %w", ticker, err)
			}
			prices[ticker] = price
		}
	case []any:
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("quote #%d is not an object", i)
			}
			ticker, _ := obj["ticker"].(string)
			if ticker == "" {
				return nil, fmt.Errorf("quote #%d has no ticker", i)
			}
			price, err := quoteValue(obj["price"])
			if err != nil {
				return nil, fmt.Errorf("cannot read price of %q: %w", ticker, err)
			}
			prices[ticker] = price
		}
	default:
		return nil, fmt.Errorf("quotes selected by %q are neither an object nor a list: %T", path, jobj)
	}
	return prices, nil
}

func quoteValue(jval any) (decimal.NullDecimal, error) {
	switch v := jval.(type) {
	case nil:
		return decimal.NullDecimal{}, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		return decimal.NewNullDecimal(d), nil
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(v)), nil
	case string:
		// some feeds publish "./." or "" for no trade
		s := strings.ReplaceAll(strings.TrimSpace(v), " ", "")
		if s == "" || s == "./." {
			return decimal.NullDecimal{}, nil
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
		if err != nil {
			return decimal.NullDecimal{}, fmt.Errorf("invalid string %q: %w", v, err)
		}
		return decimal.NewNullDecimal(d), nil
	default:
		return decimal.NullDecimal{}, fmt.Errorf("unsupported value %v", jval)
	}
}
