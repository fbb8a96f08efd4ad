// Package core provides the ledger domain: records, category
// classification, filtering/sorting, and totals aggregation. Everything
// here is pure data shaping with no rendering or transport dependency.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-supplied amount string to a decimal.
// Thousands separators and surrounding whitespace are tolerated.
// Non-numeric, negative, and zero amounts are rejected: amounts are
// stored as non-negative quantities and a zero entry is meaningless.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.Sign() < 0 {
		return decimal.Zero, ErrNegativeAmount
	}
	if d.Sign() == 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatYen renders an amount as a yen string with thousands grouping,
// e.g. "¥12,000". Both the web views and the CLI reports use this, so
// the two surfaces always agree on amount formatting.
func FormatYen(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().Truncate(0).String()
	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString("¥")
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
