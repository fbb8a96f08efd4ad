package sheets

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/channkenn/pta-kaikei/internal/core"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	time.RFC3339,
}

// parseRow converts one sheet row into a record. The second return is
// false for rows that are blank or not yet filled in; those are
// skipped, not errors, because the sheet tail usually holds empty
// filler rows.
func parseRow(row []any, rowNum int64) (core.Record, bool) {
	cols := make([]string, 6)
	for i := 0; i < len(cols) && i < len(row); i++ {
		cols[i] = strings.TrimSpace(fmt.Sprint(row[i]))
	}
	if cols[0] == "" && cols[1] == "" && cols[3] == "" {
		return core.Record{}, false
	}

	date, ok := parseDate(cols[0])
	if !ok {
		return core.Record{}, false
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(cols[3], ",", ""))
	if err != nil || amount.Sign() < 0 {
		return core.Record{}, false
	}

	return core.Record{
		RowNum:   rowNum,
		Date:     date,
		Category: cols[1],
		Details:  cols[2],
		Amount:   amount,
		Payee:    cols[4],
		Memo:     cols[5],
	}, true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
