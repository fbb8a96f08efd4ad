package core

import "sort"

// Filter sentinels. Anything else is an exact match on the category
// name, so an unknown key simply matches nothing.
const (
	FilterAll          = "_ALL_"
	FilterIncomeOnly   = "_INCOME_ONLY_"
	FilterExpensesOnly = "_EXPENSES_ONLY_"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterAndSort returns a new slice holding the records that pass the
// filter, ordered by date. The input slice is never mutated. Expense-only
// is the complement of the income set, so an unrecognized category
// counts as expense here.
func FilterAndSort(records []Record, filterKey string, order SortOrder, set *CategorySet) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		switch filterKey {
		case FilterAll:
			out = append(out, r)
		case FilterIncomeOnly:
			if set.IsIncome(r.Category) {
				out = append(out, r)
			}
		case FilterExpensesOnly:
			if !set.IsIncome(r.Category) {
				out = append(out, r)
			}
		default:
			if r.Category == filterKey {
				out = append(out, r)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order == SortDesc {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
