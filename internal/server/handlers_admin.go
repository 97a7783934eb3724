package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brightpath-mortgage/intake-api/internal/model"
	"github.com/brightpath-mortgage/intake-api/internal/validate"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if missing := validate.Required(map[string]string{
		"username": req.Username,
		"password": req.Password,
	}); !missing.Empty() {
		respondValidation(w, fieldErrors(missing, nil))
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		zap.L().Error("server: load user", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not check credentials")
		return
	}

	sum := sha256.Sum256([]byte(req.Password))
	hashed := hex.EncodeToString(sum[:])
	if user == nil || subtle.ConstantTimeCompare([]byte(user.Password), []byte(hashed)) != 1 {
		respondError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	respondData(w, http.StatusOK, map[string]string{
		"id":       user.ID,
		"username": user.Username,
	})
}

type attachmentRequest struct {
	TransactionID   string `json:"transactionId"`
	TransactionType string `json:"transactionType"`
	FileName        string `json:"fileName"`
	FileType        string `json:"fileType"`
	FileSize        int64  `json:"fileSize"`
	FileData        string `json:"fileData"` // base64
}

func (s *Server) handleCreateAttachment(w http.ResponseWriter, r *http.Request) {
	var req attachmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if missing := validate.Required(map[string]string{
		"transactionId":   req.TransactionID,
		"transactionType": req.TransactionType,
		"fileName":        req.FileName,
		"fileData":        req.FileData,
	}); !missing.Empty() {
		respondValidation(w, fieldErrors(missing, nil))
		return
	}

	att := &model.TransactionAttachment{
		ID:              uuid.New().String(),
		TransactionID:   req.TransactionID,
		TransactionType: req.TransactionType,
		FileName:        req.FileName,
		FileType:        req.FileType,
		FileSize:        req.FileSize,
		FileData:        req.FileData,
		UploadedAt:      time.Now().UTC(),
	}
	if err := s.store.CreateAttachment(r.Context(), att); err != nil {
		zap.L().Error("server: persist attachment", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not save attachment")
		return
	}
	respondData(w, http.StatusCreated, att)
}

func (s *Server) handleListAttachments(w http.ResponseWriter, r *http.Request) {
	transactionID := r.URL.Query().Get("transactionId")
	if transactionID == "" {
		respondValidation(w, map[string]bool{"transactionId": true})
		return
	}

	atts, err := s.store.ListAttachments(r.Context(), transactionID)
	if err != nil {
		zap.L().Error("server: list attachments", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not list attachments")
		return
	}
	respondData(w, http.StatusOK, atts)
}
