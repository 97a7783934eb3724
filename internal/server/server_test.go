package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath-mortgage/intake-api/internal/config"
	"github.com/brightpath-mortgage/intake-api/internal/extract"
	"github.com/brightpath-mortgage/intake-api/internal/model"
	"github.com/brightpath-mortgage/intake-api/internal/store"
)

type fakeOCR struct{ text string }

func (f *fakeOCR) ExtractText(_ context.Context, _ []byte) (string, error) {
	return f.text, nil
}

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		AllowedOrigins: []string{"*"},
		SubmitRPS:      100,
		SubmitBurst:    100,
	}
}

func newTestServer(t *testing.T) (*Server, store.Store, http.Handler) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "server_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	pipeline, err := extract.NewPipeline(st, &fakeOCR{text: "statement text"}, nil, extract.Opts{})
	require.NoError(t, err)

	srv := New(st, pipeline, 0)
	return srv, st, srv.Router(testConfig())
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func validContact() model.ContactLead {
	return model.ContactLead{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Phone:   "5551234567",
		Message: "Interested in a 30-year fixed",
	}
}

func TestHealth(t *testing.T) {
	_, _, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContactMissingFieldsRejected(t *testing.T) {
	_, st, h := newTestServer(t)

	rec := postJSON(t, h, "/api/contact", model.ContactLead{Name: "Jane Doe"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.True(t, env.Errors["email"])
	assert.True(t, env.Errors["phone"])
	assert.True(t, env.Errors["message"])
	assert.False(t, env.Errors["name"])

	// Nothing persisted.
	leads, err := st.ListLeads(context.Background(), store.LeadFilter{})
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestContactAcceptedAndPersisted(t *testing.T) {
	_, st, h := newTestServer(t)

	rec := postJSON(t, h, "/api/contact", validContact())
	require.Equal(t, http.StatusCreated, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	data, _ := env.Data.(map[string]any)
	assert.NotEmpty(t, data["id"])

	leads, err := st.ListLeads(context.Background(), store.LeadFilter{})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, model.LeadKindContact, leads[0].Kind)

	// Phone was normalized on the way in.
	var stored model.ContactLead
	require.NoError(t, json.Unmarshal(leads[0].Payload, &stored))
	assert.Equal(t, "(555) 123-4567", stored.Phone)
}

func TestContactBadJSON(t *testing.T) {
	_, _, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader([]byte("{nope")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleCallAccepted(t *testing.T) {
	_, _, h := newTestServer(t)
	rec := postJSON(t, h, "/api/schedule-call", model.ScheduleCallLead{
		Name: "Jane Doe", Email: "jane@example.com", Phone: "5551234567",
		PreferredDate: "2026-09-01", PreferredTime: "10:00", TimeZone: "America/Denver",
		CallReason: "pre-approval questions",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRateTrackerMissingFields(t *testing.T) {
	_, _, h := newTestServer(t)
	rec := postJSON(t, h, "/api/rate-tracker", model.RateTrackerLead{
		FullName: "Jane Doe", Email: "jane@example.com",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Errors["loanPurpose"])
	assert.True(t, env.Errors["state"])
}

func TestListLeads(t *testing.T) {
	_, _, h := newTestServer(t)
	postJSON(t, h, "/api/contact", validContact())

	req := httptest.NewRequest(http.MethodGet, "/api/leads?kind=contact", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	items, _ := env.Data.([]any)
	assert.Len(t, items, 1)
}

func TestSubmitRateLimit(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "rate_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	srv := New(st, nil, 0)
	h := srv.Router(config.ServerConfig{
		AllowedOrigins: []string{"*"},
		SubmitRPS:      0.01,
		SubmitBurst:    1,
	})

	first := postJSON(t, h, "/api/contact", validContact())
	assert.Equal(t, http.StatusCreated, first.Code)

	second := postJSON(t, h, "/api/contact", validContact())
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func uploadPDF(t *testing.T, h http.Handler, docType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("documentType", docType))
	fw, err := mw.CreateFormFile("file", "statement.pdf")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/pdf/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPDFUploadAccepted(t *testing.T) {
	_, st, h := newTestServer(t)

	rec := uploadPDF(t, h, "bank-statement", []byte("%PDF-1.4 fake content"))
	require.Equal(t, http.StatusAccepted, rec.Code)

	env := decodeEnvelope(t, rec)
	doc, _ := env.Data.(map[string]any)
	assert.Equal(t, "processing", doc["status"])
	assert.Equal(t, "statement.pdf", doc["fileName"])

	// The row exists; the async pipeline may have finished already.
	id, _ := doc["id"].(string)
	stored, err := st.GetDocument(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Contains(t, []model.DocumentStatus{
		model.DocumentStatusProcessing, model.DocumentStatusCompleted,
	}, stored.Status)
}

func TestPDFUploadUnknownType(t *testing.T) {
	_, _, h := newTestServer(t)
	rec := uploadPDF(t, h, "crypto-wallet", []byte("%PDF-1.4"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Errors["documentType"])
}

func TestPDFUploadRejectsNonPDF(t *testing.T) {
	_, _, h := newTestServer(t)
	rec := uploadPDF(t, h, "w2", []byte("GIF89a not a pdf"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestDeleteDocument(t *testing.T) {
	_, st, h := newTestServer(t)

	doc := &model.PDFDocument{
		ID: "doc-1", FileName: "w2.pdf", FileSize: 10,
		UploadDate: time.Now().UTC(), DocumentType: model.DocumentTypeW2,
		Status: model.DocumentStatusCompleted,
	}
	require.NoError(t, st.CreateDocument(context.Background(), doc))

	req := httptest.NewRequest(http.MethodDelete, "/api/pdf/documents/doc-1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/pdf/documents/doc-1", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDocumentNotFound(t *testing.T) {
	_, _, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/pdf/documents/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
