package vault

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath-mortgage/intake-api/internal/model"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func sampleEntries() []model.LedgerEntry {
	return []model.LedgerEntry{
		{ID: "1", Date: date("2024-01-01"), Type: model.EntryTypeRevenue, Category: "origination", Account: "operating", Amount: 100, Budget: 90},
		{ID: "2", Date: date("2024-06-01"), Type: model.EntryTypeExpense, Category: "marketing", Account: "operating", Amount: 50, Budget: 60},
	}
}

func TestBuild_YearMode(t *testing.T) {
	snap := Build(sampleEntries(), Period{Mode: model.ViewModeYear, Year: 2024})

	assert.Equal(t, 100.0, snap.Totals.Revenue)
	assert.Equal(t, 50.0, snap.Totals.Expense)
	assert.Equal(t, 50.0, snap.NetIncome)
	assert.Equal(t, 10.0, snap.Totals.RevenueVariance())
	assert.Equal(t, 10.0, snap.Totals.ExpenseVariance())
}

func TestBuild_VarianceSignConvention(t *testing.T) {
	// Positive variance always means favorable: revenue over budget,
	// expense under budget.
	entries := []model.LedgerEntry{
		{Date: date("2024-02-01"), Type: model.EntryTypeRevenue, Category: "origination", Account: "a", Amount: 80, Budget: 100},
		{Date: date("2024-02-01"), Type: model.EntryTypeExpense, Category: "payroll", Account: "a", Amount: 120, Budget: 100},
	}
	snap := Build(entries, Period{Mode: model.ViewModeYear, Year: 2024})

	assert.Equal(t, -20.0, snap.Totals.RevenueVariance())
	assert.Equal(t, -20.0, snap.Totals.ExpenseVariance())

	require.Len(t, snap.Categories, 2)
	for _, c := range snap.Categories {
		assert.Equal(t, -20.0, c.Variance, "category %s", c.Category)
	}
}

func TestFilter_YTD(t *testing.T) {
	now := date("2024-06-15")
	entries := []model.LedgerEntry{
		{ID: "in", Date: date("2024-03-01"), Type: model.EntryTypeRevenue, Amount: 1},
		{ID: "future", Date: date("2024-09-01"), Type: model.EntryTypeRevenue, Amount: 1},
		{ID: "lastyear", Date: date("2023-03-01"), Type: model.EntryTypeRevenue, Amount: 1},
	}

	kept := Filter(entries, Period{Mode: model.ViewModeYTD, Now: now})
	require.Len(t, kept, 1)
	assert.Equal(t, "in", kept[0].ID)
}

func TestFilter_MTD(t *testing.T) {
	now := date("2024-06-15")
	entries := []model.LedgerEntry{
		{ID: "in", Date: date("2024-06-10"), Type: model.EntryTypeExpense, Amount: 1},
		{ID: "later", Date: date("2024-06-20"), Type: model.EntryTypeExpense, Amount: 1},
		{ID: "lastmonth", Date: date("2024-05-10"), Type: model.EntryTypeExpense, Amount: 1},
	}

	kept := Filter(entries, Period{Mode: model.ViewModeMTD, Now: now})
	require.Len(t, kept, 1)
	assert.Equal(t, "in", kept[0].ID)
}

func TestFilter_YearNoUpperBound(t *testing.T) {
	// Year mode keeps the whole selected year, including dates after
	// "today".
	entries := []model.LedgerEntry{
		{ID: "dec", Date: date("2024-12-31"), Type: model.EntryTypeRevenue, Amount: 1},
	}
	kept := Filter(entries, Period{Mode: model.ViewModeYear, Year: 2024, Now: date("2024-06-15")})
	assert.Len(t, kept, 1)
}

func TestBuild_CompareMode(t *testing.T) {
	entries := []model.LedgerEntry{
		{Date: date("2023-04-01"), Type: model.EntryTypeRevenue, Category: "origination", Account: "a", Amount: 200, Budget: 180},
		{Date: date("2024-04-01"), Type: model.EntryTypeRevenue, Category: "origination", Account: "a", Amount: 300, Budget: 250},
		{Date: date("2022-04-01"), Type: model.EntryTypeRevenue, Category: "origination", Account: "a", Amount: 999, Budget: 0},
	}

	snap := Build(entries, Period{Mode: model.ViewModeCompare, Years: []int{2023, 2024}})
	require.Len(t, snap.YearTotals, 2)
	assert.Equal(t, 200.0, snap.YearTotals[2023].Revenue)
	assert.Equal(t, 300.0, snap.YearTotals[2024].Revenue)
	assert.Equal(t, 500.0, snap.Totals.Revenue)
}

func TestBuild_Breakdowns(t *testing.T) {
	entries := []model.LedgerEntry{
		{Date: date("2024-01-01"), Type: model.EntryTypeRevenue, Category: "origination", Account: "operating", Amount: 100, Budget: 90},
		{Date: date("2024-02-01"), Type: model.EntryTypeRevenue, Category: "origination", Account: "trust", Amount: 40, Budget: 50},
		{Date: date("2024-03-01"), Type: model.EntryTypeExpense, Category: "marketing", Account: "operating", Amount: 30, Budget: 35},
	}
	snap := Build(entries, Period{Mode: model.ViewModeYear, Year: 2024})

	require.Len(t, snap.Categories, 2)
	assert.Equal(t, "origination", snap.Categories[0].Category) // revenue sorts first
	assert.Equal(t, 140.0, snap.Categories[0].Actual)
	assert.Equal(t, "marketing", snap.Categories[1].Category)

	require.Len(t, snap.Accounts, 2)
	assert.Equal(t, "operating", snap.Accounts[0].Account)
	assert.Equal(t, 130.0, snap.Accounts[0].Actual)
	assert.Equal(t, "trust", snap.Accounts[1].Account)
	assert.Equal(t, 40.0, snap.Accounts[1].Actual)
}

func TestWriteXLSX(t *testing.T) {
	snap := Build(sampleEntries(), Period{Mode: model.ViewModeYear, Year: 2024})

	var buf bytes.Buffer
	err := WriteXLSX(&buf, snap)
	require.NoError(t, err)
	assert.Greater(t, buf.Len(), 0)
	// XLSX files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, buf.Bytes()[:2])
}
