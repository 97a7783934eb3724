package extract

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath-mortgage/intake-api/internal/model"
	"github.com/brightpath-mortgage/intake-api/internal/store"
	"github.com/brightpath-mortgage/intake-api/pkg/anthropic"
)

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) ExtractText(_ context.Context, _ []byte) (string, error) {
	return f.text, f.err
}

type fakeClient struct {
	resp *anthropic.MessageResponse
	err  error
	got  anthropic.MessageRequest
}

func (f *fakeClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.got = req
	return f.resp, f.err
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "extract_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func newTestDoc(t *testing.T, st store.Store, docType model.DocumentType) *model.PDFDocument {
	t.Helper()
	doc := &model.PDFDocument{
		ID:           uuid.New().String(),
		FileName:     "statement.pdf",
		FileSize:     1024,
		UploadDate:   time.Now().UTC(),
		DocumentType: docType,
		Status:       model.DocumentStatusProcessing,
	}
	require.NoError(t, st.CreateDocument(context.Background(), doc))
	return doc
}

func TestLoadSchemas(t *testing.T) {
	schemas, err := LoadSchemas()
	require.NoError(t, err)

	for _, dt := range []model.DocumentType{
		model.DocumentTypeBankStatement,
		model.DocumentTypePayStub,
		model.DocumentTypeTaxReturn,
		model.DocumentTypeW2,
	} {
		s, ok := schemas[dt]
		require.True(t, ok, "missing schema for %s", dt)
		assert.NotEmpty(t, s.Fields)
	}
}

func TestSchemaFieldList(t *testing.T) {
	schemas, err := LoadSchemas()
	require.NoError(t, err)

	list := schemas[model.DocumentTypeW2].FieldList()
	assert.Contains(t, list, "wagesTipsOther (number)")
	assert.Contains(t, list, "employerEIN")
}

func TestProcessCompleted(t *testing.T) {
	st := newTestStore(t)
	doc := newTestDoc(t, st, model.DocumentTypeBankStatement)

	client := &fakeClient{resp: textResponse("```json\n{\"bankName\": \"First National\", \"endingBalance\": 4520.10}\n```")}
	p, err := NewPipeline(st, &fakeOCR{text: "FIRST NATIONAL BANK\nEnding balance $4,520.10"}, client, Opts{Model: "claude-haiku-4-5-20251001"})
	require.NoError(t, err)

	p.Process(context.Background(), doc, []byte("%PDF-1.4"))

	stored, err := st.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.DocumentStatusCompleted, stored.Status)
	assert.Contains(t, stored.ExtractedText, "FIRST NATIONAL")

	var data map[string]any
	require.NoError(t, json.Unmarshal(stored.StructuredData, &data))
	assert.Equal(t, "First National", data["bankName"])

	// Prompt carried the OCR text and schema fields.
	require.Len(t, client.got.Messages, 1)
	assert.Contains(t, client.got.Messages[0].Content, "Ending balance")
	assert.Contains(t, client.got.Messages[0].Content, "endingBalance")
}

func TestProcessOCRFailureMarksFailed(t *testing.T) {
	st := newTestStore(t)
	doc := newTestDoc(t, st, model.DocumentTypePayStub)

	p, err := NewPipeline(st, &fakeOCR{err: assert.AnError}, &fakeClient{}, Opts{})
	require.NoError(t, err)

	p.Process(context.Background(), doc, []byte("%PDF-1.4"))

	stored, err := st.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusFailed, stored.Status)
	assert.Nil(t, stored.StructuredData)
}

func TestProcessInvalidJSONMarksFailed(t *testing.T) {
	st := newTestStore(t)
	doc := newTestDoc(t, st, model.DocumentTypeW2)

	client := &fakeClient{resp: textResponse("I could not read this document.")}
	p, err := NewPipeline(st, &fakeOCR{text: "blurry scan"}, client, Opts{})
	require.NoError(t, err)

	p.Process(context.Background(), doc, []byte("%PDF-1.4"))

	stored, err := st.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusFailed, stored.Status)
}

func TestProcessWithoutClientKeepsTextOnly(t *testing.T) {
	st := newTestStore(t)
	doc := newTestDoc(t, st, model.DocumentTypeTaxReturn)

	p, err := NewPipeline(st, &fakeOCR{text: "Form 1040"}, nil, Opts{})
	require.NoError(t, err)

	p.Process(context.Background(), doc, []byte("%PDF-1.4"))

	stored, err := st.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusCompleted, stored.Status)
	assert.Equal(t, "Form 1040", stored.ExtractedText)
	assert.Nil(t, stored.StructuredData)
}

func TestCleanJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\": 1}\n```":      `{"a": 1}`,
		"```\n{\"a\": 1}\n```":          `{"a": 1}`,
		"Here you go: {\"a\": 1} done": `{"a": 1}`,
		`{"a": 1}`:                     `{"a": 1}`,
	}
	for input, want := range cases {
		assert.Equal(t, want, cleanJSON(input), "input %q", input)
	}
}
