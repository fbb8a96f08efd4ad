package http

import (
	"github.com/channkenn/pta-kaikei/internal/core"
	"github.com/channkenn/pta-kaikei/internal/session"
)

// recordRow is one rendered table line. Income and Expense carry the
// formatted amount in exactly one of the two columns, mirroring the
// paper ledger layout.
type recordRow struct {
	RowNum   int64
	Date     string
	Category string
	Details  string
	Income   string
	Expense  string
	Payee    string
	Memo     string
}

type filterOption struct {
	Value    string
	Label    string
	Selected bool
}

type totalsView struct {
	Income  string
	Expense string
	Balance string
	Count   int
}

type ledgerView struct {
	Year     string
	Editable bool
	Filter   string
	Order    string
	OrderAsc bool

	FilterOptions     []filterOption
	IncomeCategories  []string
	ExpenseCategories []string

	Rows   []recordRow
	Totals totalsView
}

// buildLedgerView assembles the ledger page model: the filtered and
// sorted rows plus the totals over all of them, since every row starts
// out checked.
func (s *Server) buildLedgerView(sess *session.Session, filterKey string, order core.SortOrder) ledgerView {
	records := core.FilterAndSort(sess.Records(), filterKey, order, s.categories)

	v := ledgerView{
		Year:              sess.Year,
		Editable:          sess.Editable(),
		Filter:            filterKey,
		Order:             string(order),
		OrderAsc:          order == core.SortAsc,
		IncomeCategories:  s.categories.Income(),
		ExpenseCategories: s.categories.Expense(),
	}

	v.FilterOptions = append(v.FilterOptions,
		filterOption{Value: core.FilterAll, Label: "すべて", Selected: filterKey == core.FilterAll},
		filterOption{Value: core.FilterIncomeOnly, Label: "収入のみ", Selected: filterKey == core.FilterIncomeOnly},
		filterOption{Value: core.FilterExpensesOnly, Label: "支出のみ", Selected: filterKey == core.FilterExpensesOnly},
	)
	for _, name := range s.categories.Income() {
		v.FilterOptions = append(v.FilterOptions, filterOption{Value: name, Label: name, Selected: filterKey == name})
	}
	for _, name := range s.categories.Expense() {
		v.FilterOptions = append(v.FilterOptions, filterOption{Value: name, Label: name, Selected: filterKey == name})
	}

	entries := make([]core.SelectionEntry, 0, len(records))
	for _, rec := range records {
		income := s.categories.IsIncome(rec.Category)
		row := recordRow{
			RowNum:   rec.RowNum,
			Date:     rec.Date.Format("2006-01-02"),
			Category: rec.Category,
			Details:  rec.Details,
			Payee:    rec.Payee,
			Memo:     rec.Memo,
		}
		if income {
			row.Income = core.FormatYen(rec.Amount)
		} else {
			row.Expense = core.FormatYen(rec.Amount)
		}
		v.Rows = append(v.Rows, row)
		entries = append(entries, core.SelectionEntry{Amount: rec.Amount, Income: income, Checked: true})
	}

	v.Totals = buildTotalsView(core.SumSelection(entries), len(entries))
	return v
}

func buildTotalsView(t core.Totals, count int) totalsView {
	return totalsView{
		Income:  core.FormatYen(t.Income),
		Expense: core.FormatYen(t.Expense),
		Balance: core.FormatYen(t.Balance),
		Count:   count,
	}
}

type summaryRow struct {
	Name  string
	Total string
}

type summaryView struct {
	Year         string
	Income       []summaryRow
	Expense      []summaryRow
	TotalIncome  string
	TotalExpense string
	FinalBalance string
}

func buildSummaryView(year string, sum core.Summary) summaryView {
	v := summaryView{
		Year:         year,
		TotalIncome:  core.FormatYen(sum.TotalIncome),
		TotalExpense: core.FormatYen(sum.TotalExpense),
		FinalBalance: core.FormatYen(sum.FinalBalance),
	}
	for _, row := range sum.Income {
		v.Income = append(v.Income, summaryRow{Name: row.Name, Total: core.FormatYen(row.Total)})
	}
	for _, row := range sum.Expense {
		v.Expense = append(v.Expense, summaryRow{Name: row.Name, Total: core.FormatYen(row.Total)})
	}
	return v
}
