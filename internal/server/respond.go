package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/brightpath-mortgage/intake-api/internal/validate"
)

// envelope is the JSON response shape shared by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    any             `json:"data,omitempty"`
	Errors  map[string]bool `json:"errors,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: write response", zap.Error(err))
	}
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func respondOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, envelope{Success: true})
}

// respondValidation reports missing required fields as a per-field flag
// map with HTTP 422.
func respondValidation(w http.ResponseWriter, errs map[string]bool) {
	writeJSON(w, http.StatusUnprocessableEntity, envelope{Success: false, Errors: errs})
}

// fieldErrors flattens field sets into a flag map, prefixing names so the
// borrower and co-borrower forms cannot collide.
func fieldErrors(app validate.FieldSet, co validate.FieldSet) map[string]bool {
	errs := make(map[string]bool, len(app)+len(co))
	for name := range app {
		errs[name] = true
	}
	for name := range co {
		errs["coBorrower."+name] = true
	}
	return errs
}

func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}
