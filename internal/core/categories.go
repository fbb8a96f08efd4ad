package core

import "strings"

// CategorySet holds the two statically configured lists of category
// names. Membership in the income list is the sole classification
// signal: a name absent from both lists is treated as expense in totals
// and filtering, but gets no row in the category summary.
type CategorySet struct {
	income  []string
	expense []string
	inc     map[string]struct{}
}

// NewCategorySet builds a set from the configured name lists,
// deduplicating while preserving order.
func NewCategorySet(income, expense []string) *CategorySet {
	s := &CategorySet{
		income:  dedupe(income),
		expense: dedupe(expense),
	}
	s.inc = make(map[string]struct{}, len(s.income))
	for _, name := range s.income {
		s.inc[name] = struct{}{}
	}
	return s
}

// DefaultCategorySet returns the standard PTA chart of accounts used
// when no category configuration is provided.
func DefaultCategorySet() *CategorySet {
	return NewCategorySet(
		[]string{"前年度繰越金", "本年度会費", "利息", "雑収入"},
		[]string{"会議費", "事務費", "通信費", "印刷費", "備品・消耗品費", "行事費", "慶弔費", "渉外費", "予備費"},
	)
}

// IsIncome reports whether the category name belongs to the income
// list. Unrecognized names are not income.
func (s *CategorySet) IsIncome(name string) bool {
	_, ok := s.inc[name]
	return ok
}

// Income returns the configured income category names in order.
func (s *CategorySet) Income() []string {
	return append([]string(nil), s.income...)
}

// Expense returns the configured expense category names in order.
func (s *CategorySet) Expense() []string {
	return append([]string(nil), s.expense...)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
