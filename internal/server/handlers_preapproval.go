package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/brightpath-mortgage/intake-api/internal/format"
	"github.com/brightpath-mortgage/intake-api/internal/metrics"
	"github.com/brightpath-mortgage/intake-api/internal/model"
	"github.com/brightpath-mortgage/intake-api/internal/validate"
)

// preApprovalRequest matches the payload the application form posts.
type preApprovalRequest struct {
	PreApprovalData model.PreApprovalApplication `json:"preApprovalData"`
	CoBorrowerData  *model.CoBorrower            `json:"coBorrowerData,omitempty"`
}

func (s *Server) handlePreApproval(w http.ResponseWriter, r *http.Request) {
	var req preApprovalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	app := req.PreApprovalData
	app.Phone = format.PhoneNumber(app.Phone)

	// A co-borrower payload only counts when the form opted in.
	co := req.CoBorrowerData
	if app.AddCoBorrower != "yes" {
		co = nil
	}
	if co != nil {
		co.Phone = format.PhoneNumber(co.Phone)
		if co.SameAsBorrowerAddress {
			co.CopyBorrowerAddress(app)
		}
	}

	appMissing, coMissing := validate.PreApproval(app, co)
	if !appMissing.Empty() || !coMissing.Empty() {
		metrics.SubmissionsTotal.WithLabelValues("pre-approval", "invalid").Inc()
		respondValidation(w, fieldErrors(appMissing, coMissing))
		return
	}

	stored, err := s.store.CreatePreApproval(r.Context(), app, co)
	if err != nil {
		zap.L().Error("server: persist pre-approval", zap.Error(err))
		metrics.SubmissionsTotal.WithLabelValues("pre-approval", "error").Inc()
		respondError(w, http.StatusInternalServerError, "could not save application")
		return
	}

	metrics.SubmissionsTotal.WithLabelValues("pre-approval", "accepted").Inc()
	respondData(w, http.StatusCreated, map[string]string{"id": stored.ID})
}

func (s *Server) handleListPreApprovals(w http.ResponseWriter, r *http.Request) {
	apps, err := s.store.ListPreApprovals(r.Context(), queryInt(r, "limit", 100), queryInt(r, "offset", 0))
	if err != nil {
		zap.L().Error("server: list pre-approvals", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not list applications")
		return
	}
	respondData(w, http.StatusOK, apps)
}
