package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one ledger entry. RowNum is assigned by the remote store and
// is only meaningful for deletion; it is never generated on this side.
// Amount is always non-negative: whether a record is income or expense is
// decided by its category, not by the sign.
type Record struct {
	RowNum   int64
	Date     time.Time
	Category string
	Details  string
	Amount   decimal.Decimal
	Payee    string
	Memo     string
}

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyCategory  = errors.New("empty category")
	ErrNegativeAmount = errors.New("negative amount")
)

// ValidateNew checks the fields a user supplies for a new entry.
// RowNum is ignored, payee and memo are optional.
func (r Record) ValidateNew() error {
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if r.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
