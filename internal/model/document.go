package model

import (
	"encoding/json"
	"time"
)

// DocumentStatus tracks a PDF through the extraction pipeline.
type DocumentStatus string

const (
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// DocumentType is the kind of financial document being uploaded.
type DocumentType string

const (
	DocumentTypeBankStatement DocumentType = "bank-statement"
	DocumentTypePayStub       DocumentType = "pay-stub"
	DocumentTypeTaxReturn     DocumentType = "tax-return"
	DocumentTypeW2            DocumentType = "w2"
)

// ParseDocumentType validates a submitted document type string.
func ParseDocumentType(s string) (DocumentType, bool) {
	switch DocumentType(s) {
	case DocumentTypeBankStatement, DocumentTypePayStub, DocumentTypeTaxReturn, DocumentTypeW2:
		return DocumentType(s), true
	default:
		return "", false
	}
}

// PDFDocument is an uploaded PDF and whatever the extraction pipeline
// pulled out of it.
type PDFDocument struct {
	ID             string          `json:"id"`
	FileName       string          `json:"fileName"`
	FileSize       int64           `json:"fileSize"`
	UploadDate     time.Time       `json:"uploadDate"`
	DocumentType   DocumentType    `json:"documentType"`
	ExtractedText  string          `json:"extractedText,omitempty"`
	StructuredData json.RawMessage `json:"structuredData,omitempty"`
	ClientID       string          `json:"clientId,omitempty"`
	Status         DocumentStatus  `json:"status"`
}

// TransactionAttachment is a file attached to a ledger transaction. The
// file content travels base64-encoded, matching how the admin console
// stores it.
type TransactionAttachment struct {
	ID              string    `json:"id"`
	TransactionID   string    `json:"transactionId"`
	TransactionType string    `json:"transactionType"`
	FileName        string    `json:"fileName"`
	FileType        string    `json:"fileType"`
	FileSize        int64     `json:"fileSize"`
	FileData        string    `json:"fileData"` // base64
	UploadedAt      time.Time `json:"uploadedAt"`
}

// User is an admin-console login.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"` // hashed
}
