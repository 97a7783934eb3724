package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brightpath-mortgage/intake-api/internal/model"
)

var pdfMagic = []byte("%PDF")

func (s *Server) handlePDFUpload(w http.ResponseWriter, r *http.Request) {
	if s.pipeline == nil {
		respondError(w, http.StatusServiceUnavailable, "document processing is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	docType, ok := model.ParseDocumentType(r.FormValue("documentType"))
	if !ok {
		respondValidation(w, map[string]bool{"documentType": true})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondValidation(w, map[string]bool{"file": true})
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read file")
		return
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		respondError(w, http.StatusUnsupportedMediaType, "only PDF files are accepted")
		return
	}

	doc := &model.PDFDocument{
		ID:           uuid.New().String(),
		FileName:     header.Filename,
		FileSize:     int64(len(data)),
		UploadDate:   time.Now().UTC(),
		DocumentType: docType,
		ClientID:     r.FormValue("clientId"),
		Status:       model.DocumentStatusProcessing,
	}
	if err := s.store.CreateDocument(r.Context(), doc); err != nil {
		zap.L().Error("server: persist document", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not save document")
		return
	}

	// Extraction runs detached from the request lifecycle; the client
	// polls the document status.
	go s.pipeline.Process(context.Background(), doc, data)

	respondData(w, http.StatusAccepted, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListDocuments(r.Context())
	if err != nil {
		zap.L().Error("server: list documents", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not list documents")
		return
	}
	respondData(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		zap.L().Error("server: get document", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not load document")
		return
	}
	if doc == nil {
		respondError(w, http.StatusNotFound, "document not found")
		return
	}
	respondData(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.store.DeleteDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		zap.L().Error("server: delete document", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not delete document")
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "document not found")
		return
	}
	respondOK(w)
}
