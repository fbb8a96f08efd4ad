package core

import "testing"

func TestIsIncome(t *testing.T) {
	set := NewCategorySet([]string{"本年度会費", "利息"}, []string{"事務費"})

	cases := []struct {
		name string
		want bool
	}{
		{"本年度会費", true},
		{"利息", true},
		{"事務費", false},
		{"謎の科目", false}, // not in either list
		{"", false},
	}
	for i, tc := range cases {
		if got := set.IsIncome(tc.name); got != tc.want {
			t.Fatalf("case %d: IsIncome(%q)=%v want %v", i, tc.name, got, tc.want)
		}
	}
}

func TestCategorySetDedupeAndOrder(t *testing.T) {
	set := NewCategorySet([]string{"A", "B", "A", " ", "C"}, []string{"X", "X"})
	inc := set.Income()
	if len(inc) != 3 || inc[0] != "A" || inc[1] != "B" || inc[2] != "C" {
		t.Fatalf("unexpected income list: %v", inc)
	}
	if exp := set.Expense(); len(exp) != 1 || exp[0] != "X" {
		t.Fatalf("unexpected expense list: %v", exp)
	}

	// Returned slices are copies
	inc[0] = "mutated"
	if set.Income()[0] != "A" {
		t.Fatalf("Income() leaked internal slice")
	}
}

func TestDefaultCategorySetScenarioNames(t *testing.T) {
	set := DefaultCategorySet()
	if !set.IsIncome("本年度会費") {
		t.Fatalf("本年度会費 should classify as income")
	}
	if set.IsIncome("備品・消耗品費") {
		t.Fatalf("備品・消耗品費 should classify as expense")
	}
}
