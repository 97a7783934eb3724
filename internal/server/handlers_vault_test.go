package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath-mortgage/intake-api/internal/model"
	"github.com/brightpath-mortgage/intake-api/internal/vault"
)

func seedLedger(t *testing.T, srv *Server) {
	t.Helper()
	entries := []model.LedgerEntry{
		{ID: "e1", Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Type: model.EntryTypeRevenue,
			Category: "Loan Origination", Account: "Operating", Amount: 100, Budget: 90},
		{ID: "e2", Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Type: model.EntryTypeExpense,
			Category: "Marketing", Account: "Operating", Amount: 50, Budget: 60},
		{ID: "e3", Date: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), Type: model.EntryTypeRevenue,
			Category: "Loan Origination", Account: "Operating", Amount: 80, Budget: 80},
	}
	require.NoError(t, srv.store.InsertLedgerEntries(context.Background(), entries))
}

func TestVaultSnapshotYear(t *testing.T) {
	srv, _, h := newTestServer(t)
	seedLedger(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/api/vault/snapshot?view=year&year=2024", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool           `json:"success"`
		Data    vault.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 100.0, env.Data.Totals.Revenue)
	assert.Equal(t, 50.0, env.Data.Totals.Expense)
	assert.Equal(t, 50.0, env.Data.NetIncome)
}

func TestVaultSnapshotDefaultsToYTD(t *testing.T) {
	srv, _, h := newTestServer(t)
	seedLedger(t, srv)
	srv.now = func() time.Time { return time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC) }

	req := httptest.NewRequest(http.MethodGet, "/api/vault/snapshot", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data vault.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, model.ViewModeYTD, env.Data.Mode)
	assert.Equal(t, 100.0, env.Data.Totals.Revenue)
}

func TestVaultSnapshotCompare(t *testing.T) {
	srv, _, h := newTestServer(t)
	seedLedger(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/api/vault/snapshot?view=compare&years=2023,2024", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data vault.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data.YearTotals, 2)
	assert.Equal(t, 80.0, env.Data.YearTotals[2023].Revenue)
}

func TestVaultSnapshotBadView(t *testing.T) {
	_, _, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/vault/snapshot?view=quarterly", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVaultSnapshotCompareRequiresYears(t *testing.T) {
	_, _, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/vault/snapshot?view=compare", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVaultExportStreamsWorkbook(t *testing.T) {
	srv, _, h := newTestServer(t)
	seedLedger(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/api/vault/export?view=year&year=2024", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	// XLSX files are zip archives.
	body := rec.Body.Bytes()
	require.Greater(t, len(body), 2)
	assert.Equal(t, []byte("PK"), body[:2])
}
