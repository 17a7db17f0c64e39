package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Monetary values are stored as minor-unit integer cents. Arithmetic happens
// on decimals and is rounded to two places only when a value crosses back to
// cents or display text, never between intermediate steps.

var centsFactor = decimal.NewFromInt(100)

// FromCents converts stored cents into a major-unit decimal.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsFactor)
}

// ToCents rounds a major-unit decimal to currency precision and converts it
// into cents.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(centsFactor).IntPart()
}

// Format renders cents with exactly two decimal places and no symbol.
// Currency symbols are a display concern layered on by callers.
func Format(cents int64) string {
	return FromCents(cents).StringFixed(2)
}

// FormatWithSymbol prefixes the formatted amount with a currency symbol.
func FormatWithSymbol(cents int64, symbol string) string {
	return symbol + Format(cents)
}

// ParseAmount extracts a numeric value from display text. Legacy records
// stored prices as prefixed strings like "Rs.70,000". Everything before the
// first digit is treated as a symbol prefix and dropped (the dot in "Rs." is
// not a decimal point); after that, digit grouping characters are stripped.
func ParseAmount(value string) (decimal.Decimal, error) {
	start := strings.IndexFunc(value, func(r rune) bool {
		return r >= '0' && r <= '9'
	})
	if start < 0 {
		return decimal.Zero, fmt.Errorf("no numeric value in %q", value)
	}
	negative := start > 0 && value[start-1] == '-'

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for _, r := range value[start:] {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, fmt.Errorf("no numeric value in %q", value)
	}
	parsed, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", value, err)
	}
	return parsed, nil
}
