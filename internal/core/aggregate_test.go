package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSumSelection(t *testing.T) {
	entries := []SelectionEntry{
		{Amount: amt("5000"), Income: true, Checked: true},
		{Amount: amt("2000"), Income: false, Checked: true},
		{Amount: amt("999"), Income: false, Checked: false}, // omitted
	}
	got := SumSelection(entries)
	if !got.Income.Equal(amt("5000")) || !got.Expense.Equal(amt("2000")) {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if !got.Balance.Equal(amt("3000")) {
		t.Fatalf("balance = %s, want 3000", got.Balance)
	}
}

func TestSumSelectionToggleAffectsOneTotal(t *testing.T) {
	entries := []SelectionEntry{
		{Amount: amt("5000"), Income: true, Checked: true},
		{Amount: amt("2000"), Income: false, Checked: true},
		{Amount: amt("700"), Income: false, Checked: true},
	}
	before := SumSelection(entries)

	entries[2].Checked = false
	after := SumSelection(entries)

	if !before.Income.Equal(after.Income) {
		t.Fatalf("income changed by toggling an expense entry: %s -> %s", before.Income, after.Income)
	}
	if !before.Expense.Sub(after.Expense).Equal(amt("700")) {
		t.Fatalf("expense should drop by exactly 700: %s -> %s", before.Expense, after.Expense)
	}
	if !after.Balance.Equal(after.Income.Sub(after.Expense)) {
		t.Fatalf("balance invariant broken: %+v", after)
	}
}

func TestSumSelectionOrderIndependent(t *testing.T) {
	a := []SelectionEntry{
		{Amount: amt("10"), Income: true, Checked: true},
		{Amount: amt("20"), Income: false, Checked: true},
		{Amount: amt("30"), Income: true, Checked: true},
	}
	b := []SelectionEntry{a[2], a[0], a[1]}
	ta, tb := SumSelection(a), SumSelection(b)
	if !ta.Income.Equal(tb.Income) || !ta.Expense.Equal(tb.Expense) || !ta.Balance.Equal(tb.Balance) {
		t.Fatalf("selection totals depend on order: %+v vs %+v", ta, tb)
	}
}

func TestSumSelectionEmpty(t *testing.T) {
	got := SumSelection(nil)
	if !got.Income.IsZero() || !got.Expense.IsZero() || !got.Balance.IsZero() {
		t.Fatalf("expected zero totals, got %+v", got)
	}
}

func TestSummarizeScenario(t *testing.T) {
	records := []Record{
		rec(1, "2024-05-01", "本年度会費", "5000"),
		rec(2, "2024-05-02", "備品・消耗品費", "2000"),
	}
	s := Summarize(records, testSet())
	if !s.TotalIncome.Equal(amt("5000")) {
		t.Fatalf("TotalIncome = %s, want 5000", s.TotalIncome)
	}
	if !s.TotalExpense.Equal(amt("2000")) {
		t.Fatalf("TotalExpense = %s, want 2000", s.TotalExpense)
	}
	if !s.FinalBalance.Equal(amt("3000")) {
		t.Fatalf("FinalBalance = %s, want 3000", s.FinalBalance)
	}
}

func TestSummarizeBucketsMatchTotals(t *testing.T) {
	records := []Record{
		rec(1, "2024-05-01", "本年度会費", "5000"),
		rec(2, "2024-05-02", "利息", "12"),
		rec(3, "2024-05-03", "備品・消耗品費", "2000"),
		rec(4, "2024-05-04", "会議費", "800"),
		rec(5, "2024-05-05", "会議費", "200"),
	}
	s := Summarize(records, testSet())

	sumIncome := decimal.Zero
	for _, ct := range s.Income {
		sumIncome = sumIncome.Add(ct.Total)
	}
	if !sumIncome.Equal(s.TotalIncome) {
		t.Fatalf("income rows sum to %s, total says %s", sumIncome, s.TotalIncome)
	}
	sumExpense := decimal.Zero
	for _, ct := range s.Expense {
		sumExpense = sumExpense.Add(ct.Total)
	}
	if !sumExpense.Equal(s.TotalExpense) {
		t.Fatalf("expense rows sum to %s, total says %s", sumExpense, s.TotalExpense)
	}
}

func TestSummarizeUnknownCategoryDropped(t *testing.T) {
	records := []Record{
		rec(1, "2024-05-01", "本年度会費", "5000"),
		rec(2, "2024-05-02", "謎の科目", "9999"),
	}
	s := Summarize(records, testSet())
	if !s.TotalIncome.Equal(amt("5000")) || !s.TotalExpense.IsZero() {
		t.Fatalf("unknown category leaked into totals: %+v", s)
	}
	for _, ct := range append(s.Income, s.Expense...) {
		if ct.Name == "謎の科目" {
			t.Fatalf("unknown category got a summary row")
		}
	}
}

func TestSummarizeRowOrderFollowsConfiguration(t *testing.T) {
	// Records arrive in an order unrelated to the configured lists.
	records := []Record{
		rec(1, "2024-05-01", "会議費", "1"),
		rec(2, "2024-05-02", "利息", "1"),
		rec(3, "2024-05-03", "本年度会費", "1"),
		rec(4, "2024-05-04", "備品・消耗品費", "1"),
	}
	s := Summarize(records, testSet())
	if s.Income[0].Name != "本年度会費" || s.Income[1].Name != "利息" {
		t.Fatalf("income rows out of configured order: %+v", s.Income)
	}
	if s.Expense[0].Name != "備品・消耗品費" || s.Expense[1].Name != "会議費" {
		t.Fatalf("expense rows out of configured order: %+v", s.Expense)
	}
}

func TestSummarizeEmptyRecordsStillListsCategories(t *testing.T) {
	s := Summarize(nil, testSet())
	if len(s.Income) != 2 || len(s.Expense) != 2 {
		t.Fatalf("expected zero-initialized buckets for every configured name: %+v", s)
	}
	for _, ct := range append(s.Income, s.Expense...) {
		if !ct.Total.IsZero() {
			t.Fatalf("bucket %q not initialized to zero", ct.Name)
		}
	}
}
