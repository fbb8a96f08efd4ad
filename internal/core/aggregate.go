package core

import "github.com/shopspring/decimal"

// SelectionEntry pairs a record's amount with its classification and
// the checkbox state driving the selection totals.
type SelectionEntry struct {
	Amount  decimal.Decimal
	Income  bool
	Checked bool
}

// Totals holds the selection totals. Balance is always Income minus
// Expense.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// SumSelection adds up the checked entries. Unchecked entries are
// omitted entirely. The sum is commutative, so re-running it on every
// checkbox toggle is safe regardless of entry order.
func SumSelection(entries []SelectionEntry) Totals {
	t := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, e := range entries {
		if !e.Checked {
			continue
		}
		if e.Income {
			t.Income = t.Income.Add(e.Amount)
		} else {
			t.Expense = t.Expense.Add(e.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// CategoryTotal is one summary row.
type CategoryTotal struct {
	Name  string
	Total decimal.Decimal
}

// Summary is the category report over the full record set: one row per
// configured category name, in configuration order, plus grand totals.
type Summary struct {
	Income       []CategoryTotal
	Expense      []CategoryTotal
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	FinalBalance decimal.Decimal
}

// Summarize buckets every record's amount under its category name.
// Buckets exist for exactly the configured names, initialized to zero,
// so the report layout is stable no matter what order records arrive
// in. A record whose category is in neither list contributes to neither
// bucket nor to the grand totals.
func Summarize(records []Record, set *CategorySet) Summary {
	incomeNames := set.Income()
	expenseNames := set.Expense()

	incomeIdx := make(map[string]int, len(incomeNames))
	expenseIdx := make(map[string]int, len(expenseNames))

	s := Summary{
		Income:       make([]CategoryTotal, len(incomeNames)),
		Expense:      make([]CategoryTotal, len(expenseNames)),
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for i, name := range incomeNames {
		s.Income[i] = CategoryTotal{Name: name, Total: decimal.Zero}
		incomeIdx[name] = i
	}
	for i, name := range expenseNames {
		s.Expense[i] = CategoryTotal{Name: name, Total: decimal.Zero}
		expenseIdx[name] = i
	}

	for _, r := range records {
		if i, ok := incomeIdx[r.Category]; ok {
			s.Income[i].Total = s.Income[i].Total.Add(r.Amount)
			s.TotalIncome = s.TotalIncome.Add(r.Amount)
			continue
		}
		if i, ok := expenseIdx[r.Category]; ok {
			s.Expense[i].Total = s.Expense[i].Total.Add(r.Amount)
			s.TotalExpense = s.TotalExpense.Add(r.Amount)
		}
		// Categories outside both lists are dropped from the summary.
	}

	s.FinalBalance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}
