package payments

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for amounts.
const Scale = 4

// ParseAmount parses an optional transaction amount. A blank string is an
// absent amount. Amounts are rounded to Scale fractional digits and must not be
// negative.
func ParseAmount(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return normalizeAmount(decimal.NewNullDecimal(d))
}

func normalizeAmount(a decimal.NullDecimal) (decimal.NullDecimal, error) {
	if !a.Valid {
		return a, nil
	}
	if a.Decimal.IsNegative() {
		return decimal.NullDecimal{}, errors.New("amount must not be negative, got " + a.Decimal.String())
	}
	a.Decimal = a.Decimal.Round(Scale)
	return a, nil
}

// FormatAmount formats a balance with exactly Scale fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}
