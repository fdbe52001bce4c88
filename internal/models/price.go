package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is used when a raw price carries no recognized
// currency prefix.
const DefaultCurrencySymbol = "₹"

var currencySymbols = []string{"₹", "$", "€", "£"}

// ParsePrice converts a raw price string from a configuration document into
// an exact amount and its currency symbol. The raw value may be
// currency-prefixed ("₹1,299.00") or bare ("1299"). An unparseable numeric
// part yields zero with the detected (or default) symbol.
func ParsePrice(raw string) (decimal.Decimal, string) {
	s := strings.TrimSpace(raw)
	symbol := DefaultCurrencySymbol

	for _, sym := range currencySymbols {
		if strings.HasPrefix(s, sym) {
			symbol = sym
			s = strings.TrimPrefix(s, sym)
			break
		}
	}

	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, symbol
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, symbol
	}
	return amount, symbol
}
