package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brightpath-mortgage/intake-api/internal/model"
	"github.com/brightpath-mortgage/intake-api/internal/vault"
)

var (
	exportOut   string
	exportView  string
	exportYear  int
	exportYears string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a Vault snapshot as an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mode, ok := model.ParseViewMode(exportView)
		if !ok {
			return eris.Errorf("unknown view %q", exportView)
		}

		now := time.Now().UTC()
		p := vault.Period{Mode: mode, Now: now, Year: exportYear}
		if p.Year == 0 {
			p.Year = now.Year()
		}
		if mode == model.ViewModeCompare {
			if exportYears == "" {
				return eris.New("compare view requires --years")
			}
			for _, part := range strings.Split(exportYears, ",") {
				year, err := strconv.Atoi(strings.TrimSpace(part))
				if err != nil {
					return eris.Errorf("invalid --years value %q", exportYears)
				}
				p.Years = append(p.Years, year)
			}
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		entries, err := st.ListLedgerEntries(ctx)
		if err != nil {
			return err
		}
		snap := vault.Build(entries, p)

		f, err := os.Create(exportOut)
		if err != nil {
			return eris.Wrapf(err, "create %s", exportOut)
		}
		defer f.Close() //nolint:errcheck

		if err := vault.WriteXLSX(f, snap); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("file", exportOut),
			zap.String("view", exportView),
			zap.Int("categories", len(snap.Categories)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "vault-snapshot.xlsx", "output file")
	exportCmd.Flags().StringVar(&exportView, "view", "ytd", "view mode: ytd, mtd, year, compare")
	exportCmd.Flags().IntVar(&exportYear, "year", 0, "year for the year view (default current)")
	exportCmd.Flags().StringVar(&exportYears, "years", "", "comma-separated years for compare view")
	rootCmd.AddCommand(exportCmd)
}
