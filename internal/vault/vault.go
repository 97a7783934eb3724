// Package vault computes the Vault/Snapshot reporting aggregations over
// ledger entries: period filtering, totals by type, and per-category and
// per-account breakdowns.
package vault

import (
	"sort"
	"time"

	"github.com/brightpath-mortgage/intake-api/internal/model"
)

// Period selects which ledger entries a snapshot covers. Now is the
// reference "today" for the ytd and mtd modes so reports are reproducible
// in tests.
type Period struct {
	Mode  model.ViewMode
	Now   time.Time
	Year  int   // year mode
	Years []int // compare mode
}

// Contains reports whether a ledger date falls inside the period.
func (p Period) Contains(d time.Time) bool {
	switch p.Mode {
	case model.ViewModeYTD:
		return d.Year() == p.Now.Year() && !d.After(p.Now)
	case model.ViewModeMTD:
		return d.Year() == p.Now.Year() && d.Month() == p.Now.Month() && !d.After(p.Now)
	case model.ViewModeYear:
		return d.Year() == p.Year
	case model.ViewModeCompare:
		for _, y := range p.Years {
			if d.Year() == y {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Filter returns the entries inside the period, preserving order.
func Filter(entries []model.LedgerEntry, p Period) []model.LedgerEntry {
	var out []model.LedgerEntry
	for _, e := range entries {
		if p.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// Totals holds actual and budget sums by entry type.
type Totals struct {
	Revenue       float64 `json:"revenue"`
	Expense       float64 `json:"expense"`
	RevenueBudget float64 `json:"revenue_budget"`
	ExpenseBudget float64 `json:"expense_budget"`
}

// NetIncome is revenue minus expense.
func (t Totals) NetIncome() float64 { return t.Revenue - t.Expense }

// RevenueVariance is actual minus budget; positive means favorable.
func (t Totals) RevenueVariance() float64 { return t.Revenue - t.RevenueBudget }

// ExpenseVariance is budget minus actual; positive means favorable. The
// sign convention flips between types so favorable is always positive.
func (t Totals) ExpenseVariance() float64 { return t.ExpenseBudget - t.Expense }

// CategoryLine is an aggregated (type, category) row.
type CategoryLine struct {
	Type     model.EntryType `json:"type"`
	Category string          `json:"category"`
	Actual   float64         `json:"actual"`
	Budget   float64         `json:"budget"`
	Variance float64         `json:"variance"`
}

// AccountLine is an aggregated per-account row.
type AccountLine struct {
	Account string  `json:"account"`
	Actual  float64 `json:"actual"`
	Budget  float64 `json:"budget"`
}

// Snapshot is the full aggregation for a period. YearTotals is populated
// only in compare mode.
type Snapshot struct {
	Mode       model.ViewMode `json:"mode"`
	Totals     Totals         `json:"totals"`
	NetIncome  float64        `json:"net_income"`
	Categories []CategoryLine `json:"categories"`
	Accounts   []AccountLine  `json:"accounts"`
	YearTotals map[int]Totals `json:"year_totals,omitempty"`
}

type catKey struct {
	typ      model.EntryType
	category string
}

// Build filters entries by the period and computes the snapshot.
func Build(entries []model.LedgerEntry, p Period) Snapshot {
	kept := Filter(entries, p)

	snap := Snapshot{Mode: p.Mode}
	cats := map[catKey]*CategoryLine{}
	accts := map[string]*AccountLine{}

	for _, e := range kept {
		switch e.Type {
		case model.EntryTypeRevenue:
			snap.Totals.Revenue += e.Amount
			snap.Totals.RevenueBudget += e.Budget
		case model.EntryTypeExpense:
			snap.Totals.Expense += e.Amount
			snap.Totals.ExpenseBudget += e.Budget
		}

		ck := catKey{e.Type, e.Category}
		if cats[ck] == nil {
			cats[ck] = &CategoryLine{Type: e.Type, Category: e.Category}
		}
		cats[ck].Actual += e.Amount
		cats[ck].Budget += e.Budget

		if accts[e.Account] == nil {
			accts[e.Account] = &AccountLine{Account: e.Account}
		}
		accts[e.Account].Actual += e.Amount
		accts[e.Account].Budget += e.Budget
	}

	for _, c := range cats {
		if c.Type == model.EntryTypeExpense {
			c.Variance = c.Budget - c.Actual
		} else {
			c.Variance = c.Actual - c.Budget
		}
		snap.Categories = append(snap.Categories, *c)
	}
	sort.Slice(snap.Categories, func(i, j int) bool {
		a, b := snap.Categories[i], snap.Categories[j]
		if a.Type != b.Type {
			return a.Type == model.EntryTypeRevenue
		}
		return a.Category < b.Category
	})

	for _, a := range accts {
		snap.Accounts = append(snap.Accounts, *a)
	}
	sort.Slice(snap.Accounts, func(i, j int) bool {
		return snap.Accounts[i].Account < snap.Accounts[j].Account
	})

	snap.NetIncome = snap.Totals.NetIncome()

	if p.Mode == model.ViewModeCompare {
		snap.YearTotals = map[int]Totals{}
		for _, e := range kept {
			yt := snap.YearTotals[e.Date.Year()]
			switch e.Type {
			case model.EntryTypeRevenue:
				yt.Revenue += e.Amount
				yt.RevenueBudget += e.Budget
			case model.EntryTypeExpense:
				yt.Expense += e.Amount
				yt.ExpenseBudget += e.Budget
			}
			snap.YearTotals[e.Date.Year()] = yt
		}
	}

	return snap
}
