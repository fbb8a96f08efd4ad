package gas

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/channkenn/pta-kaikei/internal/core"
)

// The wire keeps records as positional tuples:
// (rowNum, date, item, details, amount, payee, memo).
// Only this codec knows the order; the rest of the code uses the named
// struct. Numbers may arrive as JSON numbers or strings, and dates in a
// few layouts, depending on how the spreadsheet formats cells.

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
}

func decodeTuple(tuple []any) (core.Record, error) {
	if len(tuple) < 5 {
		return core.Record{}, fmt.Errorf("expected 7 fields, got %d", len(tuple))
	}
	// Pad optional trailing fields (payee, memo).
	for len(tuple) < 7 {
		tuple = append(tuple, "")
	}

	rowNum, err := asInt64(tuple[0])
	if err != nil {
		return core.Record{}, fmt.Errorf("rowNum: %w", err)
	}
	date, err := asDate(tuple[1])
	if err != nil {
		return core.Record{}, fmt.Errorf("date: %w", err)
	}
	amount, err := asDecimal(tuple[4])
	if err != nil {
		return core.Record{}, fmt.Errorf("amount: %w", err)
	}
	if amount.Sign() < 0 {
		return core.Record{}, fmt.Errorf("amount: negative value %s", amount)
	}

	return core.Record{
		RowNum:   rowNum,
		Date:     date,
		Category: asString(tuple[2]),
		Details:  asString(tuple[3]),
		Amount:   amount,
		Payee:    asString(tuple[5]),
		Memo:     asString(tuple[6]),
	}, nil
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func asDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("not a number: %q", n)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported type %T", v)
	}
}

func asDate(v any) (time.Time, error) {
	s := asString(v)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
