package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/brightpath-mortgage/intake-api/internal/model"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Kind     model.LeadKind `json:"kind,omitempty"`
	Unsynced bool           `json:"unsynced,omitempty"` // only leads not yet pushed to the CRM
	Limit    int            `json:"limit,omitempty"`
	Offset   int            `json:"offset,omitempty"`
}

// Store defines the persistence interface for the intake service.
type Store interface {
	// Leads
	CreateLead(ctx context.Context, kind model.LeadKind, payload json.RawMessage) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	MarkLeadSynced(ctx context.Context, id string, at time.Time) error

	// Pre-approvals
	CreatePreApproval(ctx context.Context, app model.PreApprovalApplication, co *model.CoBorrower) (*model.PreApproval, error)
	ListPreApprovals(ctx context.Context, limit, offset int) ([]model.PreApproval, error)

	// PDF documents
	CreateDocument(ctx context.Context, doc *model.PDFDocument) error
	GetDocument(ctx context.Context, id string) (*model.PDFDocument, error)
	ListDocuments(ctx context.Context) ([]model.PDFDocument, error)
	UpdateDocumentExtraction(ctx context.Context, id string, status model.DocumentStatus, extractedText string, structuredData json.RawMessage) error
	DeleteDocument(ctx context.Context, id string) (bool, error)

	// Transaction attachments
	CreateAttachment(ctx context.Context, att *model.TransactionAttachment) error
	ListAttachments(ctx context.Context, transactionID string) ([]model.TransactionAttachment, error)

	// Ledger
	InsertLedgerEntries(ctx context.Context, entries []model.LedgerEntry) error
	ListLedgerEntries(ctx context.Context) ([]model.LedgerEntry, error)

	// Users
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
