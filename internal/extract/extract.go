package extract

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/brightpath-mortgage/intake-api/internal/metrics"
	"github.com/brightpath-mortgage/intake-api/internal/model"
	"github.com/brightpath-mortgage/intake-api/internal/ocr"
	"github.com/brightpath-mortgage/intake-api/internal/store"
	"github.com/brightpath-mortgage/intake-api/pkg/anthropic"
)

// Pipeline turns an uploaded PDF into extracted text and structured data.
type Pipeline struct {
	store     store.Store
	ocr       ocr.Extractor
	client    anthropic.Client
	schemas   map[model.DocumentType]*Schema
	model     string
	maxTokens int64
}

// Opts configures the extraction pipeline.
type Opts struct {
	Model     string
	MaxTokens int64
}

// NewPipeline creates an extraction pipeline. The Anthropic client may be
// nil, in which case documents get OCR text but no structured data.
func NewPipeline(st store.Store, ocrExtractor ocr.Extractor, client anthropic.Client, opts Opts) (*Pipeline, error) {
	schemas, err := LoadSchemas()
	if err != nil {
		return nil, err
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	return &Pipeline{
		store:     st,
		ocr:       ocrExtractor,
		client:    client,
		schemas:   schemas,
		model:     opts.Model,
		maxTokens: maxTokens,
	}, nil
}

// Process runs OCR and structured extraction for one document, then
// records the result. Failures mark the document failed rather than
// returning an error to the caller.
func (p *Pipeline) Process(ctx context.Context, doc *model.PDFDocument, pdf []byte) {
	log := zap.L().With(
		zap.String("document_id", doc.ID),
		zap.String("document_type", string(doc.DocumentType)),
	)
	start := time.Now()

	text, structured, err := p.run(ctx, doc, pdf)
	if err != nil {
		log.Error("extraction failed", zap.Error(err))
		metrics.ExtractionsTotal.WithLabelValues(string(doc.DocumentType), "failed").Inc()
		if updateErr := p.store.UpdateDocumentExtraction(ctx, doc.ID, model.DocumentStatusFailed, text, nil); updateErr != nil {
			log.Error("failed to record extraction failure", zap.Error(updateErr))
		}
		return
	}

	if err := p.store.UpdateDocumentExtraction(ctx, doc.ID, model.DocumentStatusCompleted, text, structured); err != nil {
		log.Error("failed to record extraction result", zap.Error(err))
		return
	}

	metrics.ExtractionsTotal.WithLabelValues(string(doc.DocumentType), "completed").Inc()
	metrics.ExtractionDuration.WithLabelValues(string(doc.DocumentType)).Observe(time.Since(start).Seconds())
	log.Info("extraction completed",
		zap.Int("text_chars", len(text)),
		zap.Bool("structured", structured != nil),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func (p *Pipeline) run(ctx context.Context, doc *model.PDFDocument, pdf []byte) (string, json.RawMessage, error) {
	text, err := p.ocr.ExtractText(ctx, pdf)
	if err != nil {
		return "", nil, eris.Wrapf(err, "extract: ocr %s", doc.ID)
	}

	if p.client == nil {
		return text, nil, nil
	}

	schema, ok := p.schemas[doc.DocumentType]
	if !ok {
		return text, nil, eris.Errorf("extract: no schema for document type %q", doc.DocumentType)
	}

	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System:    anthropic.BuildCachedSystemBlocks(systemPrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: BuildUserMessage(schema, text)},
		},
	})
	if err != nil {
		return text, nil, eris.Wrapf(err, "extract: create message %s", doc.ID)
	}
	resp.Usage.LogCost(p.model, string(doc.DocumentType))

	cleaned := cleanJSON(resp.Text())
	if !json.Valid([]byte(cleaned)) {
		return text, nil, eris.Errorf("extract: model returned invalid JSON for %s", doc.ID)
	}

	return text, json.RawMessage(cleaned), nil
}
