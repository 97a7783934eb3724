package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/brightpath-mortgage/intake-api/internal/model"
	"github.com/brightpath-mortgage/intake-api/internal/vault"
)

// snapshotPeriod builds the reporting period from query parameters.
// view defaults to ytd; year defaults to the current year; years is a
// comma-separated list for compare mode.
func (s *Server) snapshotPeriod(r *http.Request) (vault.Period, error) {
	q := r.URL.Query()

	view := q.Get("view")
	if view == "" {
		view = string(model.ViewModeYTD)
	}
	mode, ok := model.ParseViewMode(view)
	if !ok {
		return vault.Period{}, fmt.Errorf("unknown view %q", view)
	}

	now := s.now()
	p := vault.Period{Mode: mode, Now: now, Year: now.Year()}

	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return vault.Period{}, fmt.Errorf("invalid year %q", raw)
		}
		p.Year = year
	}

	if mode == model.ViewModeCompare {
		raw := q.Get("years")
		if raw == "" {
			return vault.Period{}, fmt.Errorf("compare view requires years")
		}
		for _, part := range strings.Split(raw, ",") {
			year, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return vault.Period{}, fmt.Errorf("invalid years %q", raw)
			}
			p.Years = append(p.Years, year)
		}
	}

	return p, nil
}

func (s *Server) buildSnapshot(r *http.Request) (vault.Snapshot, int, error) {
	p, err := s.snapshotPeriod(r)
	if err != nil {
		return vault.Snapshot{}, http.StatusBadRequest, err
	}

	entries, err := s.store.ListLedgerEntries(r.Context())
	if err != nil {
		zap.L().Error("server: list ledger entries", zap.Error(err))
		return vault.Snapshot{}, http.StatusInternalServerError, fmt.Errorf("could not load ledger")
	}

	return vault.Build(entries, p), 0, nil
}

func (s *Server) handleVaultSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, status, err := s.buildSnapshot(r)
	if err != nil {
		respondError(w, status, err.Error())
		return
	}
	respondData(w, http.StatusOK, snap)
}

func (s *Server) handleVaultExport(w http.ResponseWriter, r *http.Request) {
	snap, status, err := s.buildSnapshot(r)
	if err != nil {
		respondError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="vault-snapshot.xlsx"`)
	if err := vault.WriteXLSX(w, snap); err != nil {
		zap.L().Error("server: write xlsx export", zap.Error(err))
	}
}
