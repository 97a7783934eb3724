package main

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brightpath-mortgage/intake-api/internal/model"
)

var (
	seedUsername string
	seedPassword string
)

// seedCategories defines the sample ledger shape: monthly amounts and
// budgets per (type, category, account).
var seedCategories = []struct {
	typ      model.EntryType
	category string
	account  string
	amount   float64
	budget   float64
}{
	{model.EntryTypeRevenue, "Loan Origination", "Operating", 42000, 40000},
	{model.EntryTypeRevenue, "Refinance Fees", "Operating", 18000, 20000},
	{model.EntryTypeRevenue, "Servicing Income", "Escrow", 6500, 6000},
	{model.EntryTypeExpense, "Payroll", "Operating", 31000, 32000},
	{model.EntryTypeExpense, "Marketing", "Operating", 8000, 7500},
	{model.EntryTypeExpense, "Office & Software", "Operating", 4200, 4500},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample ledger data and an admin user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		var entries []model.LedgerEntry
		now := time.Now().UTC()
		for year := now.Year() - 1; year <= now.Year(); year++ {
			for month := time.January; month <= time.December; month++ {
				date := time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
				if date.After(now) {
					continue
				}
				for _, c := range seedCategories {
					entries = append(entries, model.LedgerEntry{
						ID:       uuid.New().String(),
						Date:     date,
						Type:     c.typ,
						Category: c.category,
						Account:  c.account,
						Amount:   c.amount,
						Budget:   c.budget,
					})
				}
			}
		}

		if err := st.InsertLedgerEntries(ctx, entries); err != nil {
			return err
		}

		sum := sha256.Sum256([]byte(seedPassword))
		user := &model.User{
			ID:       uuid.New().String(),
			Username: seedUsername,
			Password: hex.EncodeToString(sum[:]),
		}
		if err := st.CreateUser(ctx, user); err != nil {
			return err
		}

		zap.L().Info("seed complete",
			zap.Int("ledger_entries", len(entries)),
			zap.String("username", seedUsername),
		)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedUsername, "username", "admin", "admin console username")
	seedCmd.Flags().StringVar(&seedPassword, "password", "changeme", "admin console password")
	rootCmd.AddCommand(seedCmd)
}
