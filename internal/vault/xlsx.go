package vault

import (
	"fmt"
	"io"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/brightpath-mortgage/intake-api/internal/format"
)

// WriteXLSX renders a snapshot as an Excel workbook with Summary,
// Categories, and Accounts sheets.
func WriteXLSX(w io.Writer, snap Snapshot) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "vault: add summary sheet")
	}
	addRow(summary, "Metric", "Amount")
	addRow(summary, "Total Revenue", format.USD(snap.Totals.Revenue))
	addRow(summary, "Total Expense", format.USD(snap.Totals.Expense))
	addRow(summary, "Net Income", format.USD(snap.NetIncome))
	addRow(summary, "Revenue Variance", format.USD(snap.Totals.RevenueVariance()))
	addRow(summary, "Expense Variance", format.USD(snap.Totals.ExpenseVariance()))

	categories, err := f.AddSheet("Categories")
	if err != nil {
		return eris.Wrap(err, "vault: add categories sheet")
	}
	addRow(categories, "Type", "Category", "Actual", "Budget", "Variance")
	for _, c := range snap.Categories {
		addRow(categories, string(c.Type), c.Category,
			format.USD(c.Actual), format.USD(c.Budget), format.USD(c.Variance))
	}

	accounts, err := f.AddSheet("Accounts")
	if err != nil {
		return eris.Wrap(err, "vault: add accounts sheet")
	}
	addRow(accounts, "Account", "Actual", "Budget")
	for _, a := range snap.Accounts {
		addRow(accounts, a.Account, format.USD(a.Actual), format.USD(a.Budget))
	}

	if len(snap.YearTotals) > 0 {
		years, err := f.AddSheet("Years")
		if err != nil {
			return eris.Wrap(err, "vault: add years sheet")
		}
		addRow(years, "Year", "Revenue", "Expense", "Net Income")
		for _, y := range sortedYears(snap.YearTotals) {
			t := snap.YearTotals[y]
			addRow(years, fmt.Sprintf("%d", y),
				format.USD(t.Revenue), format.USD(t.Expense), format.USD(t.NetIncome()))
		}
	}

	return eris.Wrap(f.Write(w), "vault: write workbook")
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}

func sortedYears(m map[int]Totals) []int {
	years := make([]int, 0, len(m))
	for y := range m {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
