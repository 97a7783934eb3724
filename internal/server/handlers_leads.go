package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/brightpath-mortgage/intake-api/internal/format"
	"github.com/brightpath-mortgage/intake-api/internal/metrics"
	"github.com/brightpath-mortgage/intake-api/internal/model"
	"github.com/brightpath-mortgage/intake-api/internal/store"
	"github.com/brightpath-mortgage/intake-api/internal/validate"
)

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var lead model.ContactLead
	if !decodeBody(w, r, &lead) {
		return
	}
	lead.Phone = format.PhoneNumber(lead.Phone)
	s.submitLead(w, r, model.LeadKindContact, lead.Fields(), lead)
}

func (s *Server) handleScheduleCall(w http.ResponseWriter, r *http.Request) {
	var lead model.ScheduleCallLead
	if !decodeBody(w, r, &lead) {
		return
	}
	lead.Phone = format.PhoneNumber(lead.Phone)
	s.submitLead(w, r, model.LeadKindScheduleCall, lead.Fields(), lead)
}

func (s *Server) handleRateTracker(w http.ResponseWriter, r *http.Request) {
	var lead model.RateTrackerLead
	if !decodeBody(w, r, &lead) {
		return
	}
	lead.Phone = format.PhoneNumber(lead.Phone)
	s.submitLead(w, r, model.LeadKindRateTracker, lead.Fields(), lead)
}

// submitLead validates, persists and acknowledges one lead submission.
// Nothing is persisted on a validation failure.
func (s *Server) submitLead(w http.ResponseWriter, r *http.Request, kind model.LeadKind, fields map[string]string, payload any) {
	if missing := validate.LeadFields(kind, fields); !missing.Empty() {
		metrics.SubmissionsTotal.WithLabelValues(string(kind), "invalid").Inc()
		respondValidation(w, fieldErrors(missing, nil))
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "encode submission")
		return
	}

	lead, err := s.store.CreateLead(r.Context(), kind, raw)
	if err != nil {
		zap.L().Error("server: persist lead", zap.String("kind", string(kind)), zap.Error(err))
		metrics.SubmissionsTotal.WithLabelValues(string(kind), "error").Inc()
		respondError(w, http.StatusInternalServerError, "could not save submission")
		return
	}

	metrics.SubmissionsTotal.WithLabelValues(string(kind), "accepted").Inc()
	respondData(w, http.StatusCreated, map[string]string{"id": lead.ID})
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	filter := store.LeadFilter{
		Limit:  queryInt(r, "limit", 100),
		Offset: queryInt(r, "offset", 0),
	}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		filter.Kind = model.LeadKind(kind)
	}

	leads, err := s.store.ListLeads(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: list leads", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not list leads")
		return
	}
	respondData(w, http.StatusOK, leads)
}

// decodeBody decodes a JSON request body, answering 400 on garbage.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
