// Package report renders ledger data as plain text for the CLI.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/channkenn/pta-kaikei/internal/core"
)

// WriteDetail writes the record list as a table, one line per record,
// with the amount in the income or expense column by classification.
func WriteDetail(w io.Writer, year string, records []core.Record, set *core.CategorySet) error {
	fmt.Fprintf(w, "%s年度 出納帳\n\n", year)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "日付\t科目\t摘要\t収入\t支出\t支払先\t備考")

	var entries []core.SelectionEntry
	for _, rec := range records {
		income := set.IsIncome(rec.Category)
		inCol, outCol := "", ""
		if income {
			inCol = core.FormatYen(rec.Amount)
		} else {
			outCol = core.FormatYen(rec.Amount)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.Date.Format("2006-01-02"), rec.Category, rec.Details, inCol, outCol, rec.Payee, rec.Memo)
		entries = append(entries, core.SelectionEntry{Amount: rec.Amount, Income: income, Checked: true})
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	totals := core.SumSelection(entries)
	fmt.Fprintf(w, "\n収入合計: %s\n支出合計: %s\n差引残高: %s\n",
		core.FormatYen(totals.Income), core.FormatYen(totals.Expense), core.FormatYen(totals.Balance))
	return nil
}

// WriteSummary writes the per-category report in configuration order.
func WriteSummary(w io.Writer, year string, sum core.Summary) error {
	fmt.Fprintf(w, "%s年度 集計表\n\n", year)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "【収入の部】\t")
	for _, row := range sum.Income {
		fmt.Fprintf(tw, "%s\t%s\n", row.Name, core.FormatYen(row.Total))
	}
	fmt.Fprintf(tw, "収入合計\t%s\n", core.FormatYen(sum.TotalIncome))
	fmt.Fprintln(tw, "\t")
	fmt.Fprintln(tw, "【支出の部】\t")
	for _, row := range sum.Expense {
		fmt.Fprintf(tw, "%s\t%s\n", row.Name, core.FormatYen(row.Total))
	}
	fmt.Fprintf(tw, "支出合計\t%s\n", core.FormatYen(sum.TotalExpense))
	fmt.Fprintln(tw, "\t")
	fmt.Fprintf(tw, "差引残高\t%s\n", core.FormatYen(sum.FinalBalance))
	return tw.Flush()
}
