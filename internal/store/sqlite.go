package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/brightpath-mortgage/intake-api/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It exists for
// local development and tests; production runs against Postgres.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS users (
	id       TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	synced_at  DATETIME
);

CREATE TABLE IF NOT EXISTS pre_approvals (
	id          TEXT PRIMARY KEY,
	application TEXT NOT NULL,
	co_borrower TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS pdf_documents (
	id              TEXT PRIMARY KEY,
	file_name       TEXT NOT NULL,
	file_size       INTEGER NOT NULL DEFAULT 0,
	upload_date     DATETIME NOT NULL DEFAULT (datetime('now')),
	document_type   TEXT NOT NULL,
	extracted_text  TEXT,
	structured_data TEXT,
	client_id       TEXT,
	status          TEXT NOT NULL DEFAULT 'processing'
);

CREATE TABLE IF NOT EXISTS transaction_attachments (
	id               TEXT PRIMARY KEY,
	transaction_id   TEXT NOT NULL,
	transaction_type TEXT NOT NULL,
	file_name        TEXT NOT NULL,
	file_type        TEXT NOT NULL,
	file_size        INTEGER NOT NULL DEFAULT 0,
	file_data        TEXT NOT NULL,
	uploaded_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS ledger_entries (
	id         TEXT PRIMARY KEY,
	entry_date DATETIME NOT NULL,
	type       TEXT NOT NULL,
	category   TEXT NOT NULL,
	account    TEXT NOT NULL,
	amount     REAL NOT NULL DEFAULT 0,
	budget     REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_leads_kind ON leads(kind);
CREATE INDEX IF NOT EXISTS idx_pdf_documents_status ON pdf_documents(status);
CREATE INDEX IF NOT EXISTS idx_attachments_transaction ON transaction_attachments(transaction_id);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_date ON ledger_entries(entry_date);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateLead(ctx context.Context, kind model.LeadKind, payload json.RawMessage) (*model.Lead, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, kind, payload, created_at) VALUES (?, ?, ?, ?)`,
		id, string(kind), string(payload), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert lead")
	}

	return &model.Lead{ID: id, Kind: kind, Payload: payload, CreatedAt: now}, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, kind, payload, created_at, synced_at FROM leads WHERE 1=1`
	args := []any{}

	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.Unsynced {
		query += ` AND synced_at IS NULL`
	}
	query += ` ORDER BY created_at DESC LIMIT ?`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		var payload string
		var syncedAt sql.NullTime
		if err := rows.Scan(&l.ID, &l.Kind, &payload, &l.CreatedAt, &syncedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		l.Payload = json.RawMessage(payload)
		if syncedAt.Valid {
			t := syncedAt.Time
			l.SyncedAt = &t
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) MarkLeadSynced(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET synced_at = ? WHERE id = ?`,
		at, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark lead synced %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("lead not found: %s", id)
	}
	return nil
}

func (s *SQLiteStore) CreatePreApproval(ctx context.Context, app model.PreApprovalApplication, co *model.CoBorrower) (*model.PreApproval, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	appJSON, err := json.Marshal(app)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal application")
	}

	var coJSON any
	if co != nil {
		b, err := json.Marshal(co)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: marshal co-borrower")
		}
		coJSON = string(b)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pre_approvals (id, application, co_borrower, created_at) VALUES (?, ?, ?, ?)`,
		id, string(appJSON), coJSON, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert pre-approval")
	}

	return &model.PreApproval{ID: id, Application: app, CoBorrower: co, CreatedAt: now}, nil
}

func (s *SQLiteStore) ListPreApprovals(ctx context.Context, limit, offset int) ([]model.PreApproval, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, application, co_borrower, created_at FROM pre_approvals
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list pre-approvals")
	}
	defer rows.Close()

	var out []model.PreApproval
	for rows.Next() {
		var pa model.PreApproval
		var appJSON string
		var coJSON sql.NullString
		if err := rows.Scan(&pa.ID, &appJSON, &coJSON, &pa.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan pre-approval")
		}
		if err := json.Unmarshal([]byte(appJSON), &pa.Application); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal application")
		}
		if coJSON.Valid && coJSON.String != "" {
			pa.CoBorrower = &model.CoBorrower{}
			if err := json.Unmarshal([]byte(coJSON.String), pa.CoBorrower); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal co-borrower")
			}
		}
		out = append(out, pa)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list pre-approvals iterate")
}

func (s *SQLiteStore) CreateDocument(ctx context.Context, doc *model.PDFDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.UploadDate.IsZero() {
		doc.UploadDate = time.Now().UTC()
	}
	if doc.Status == "" {
		doc.Status = model.DocumentStatusProcessing
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pdf_documents (id, file_name, file_size, upload_date, document_type, extracted_text, structured_data, client_id, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.FileName, doc.FileSize, doc.UploadDate, string(doc.DocumentType),
		doc.ExtractedText, string(doc.StructuredData), doc.ClientID, string(doc.Status),
	)
	return eris.Wrap(err, "sqlite: insert document")
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*model.PDFDocument, error) {
	var d model.PDFDocument
	var extractedText, structured, clientID sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, file_name, file_size, upload_date, document_type, extracted_text, structured_data, client_id, status
		 FROM pdf_documents WHERE id = ?`,
		id,
	).Scan(&d.ID, &d.FileName, &d.FileSize, &d.UploadDate, &d.DocumentType,
		&extractedText, &structured, &clientID, &d.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get document %s", id)
	}
	d.ExtractedText = extractedText.String
	if structured.Valid && structured.String != "" {
		d.StructuredData = json.RawMessage(structured.String)
	}
	d.ClientID = clientID.String
	return &d, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]model.PDFDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, file_size, upload_date, document_type, extracted_text, structured_data, client_id, status
		 FROM pdf_documents ORDER BY upload_date DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list documents")
	}
	defer rows.Close()

	var docs []model.PDFDocument
	for rows.Next() {
		var d model.PDFDocument
		var extractedText, structured, clientID sql.NullString
		if err := rows.Scan(&d.ID, &d.FileName, &d.FileSize, &d.UploadDate, &d.DocumentType,
			&extractedText, &structured, &clientID, &d.Status); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan document")
		}
		d.ExtractedText = extractedText.String
		if structured.Valid && structured.String != "" {
			d.StructuredData = json.RawMessage(structured.String)
		}
		d.ClientID = clientID.String
		docs = append(docs, d)
	}
	return docs, eris.Wrap(rows.Err(), "sqlite: list documents iterate")
}

func (s *SQLiteStore) UpdateDocumentExtraction(ctx context.Context, id string, status model.DocumentStatus, extractedText string, structuredData json.RawMessage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pdf_documents SET status = ?, extracted_text = ?, structured_data = ? WHERE id = ?`,
		string(status), extractedText, string(structuredData), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update document extraction %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("document not found: %s", id)
	}
	return nil
}

func (s *SQLiteStore) DeleteDocument(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pdf_documents WHERE id = ?`, id)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: delete document %s", id)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *SQLiteStore) CreateAttachment(ctx context.Context, att *model.TransactionAttachment) error {
	if att.ID == "" {
		att.ID = uuid.New().String()
	}
	if att.UploadedAt.IsZero() {
		att.UploadedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transaction_attachments (id, transaction_id, transaction_type, file_name, file_type, file_size, file_data, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		att.ID, att.TransactionID, att.TransactionType, att.FileName, att.FileType,
		att.FileSize, att.FileData, att.UploadedAt,
	)
	return eris.Wrap(err, "sqlite: insert attachment")
}

func (s *SQLiteStore) ListAttachments(ctx context.Context, transactionID string) ([]model.TransactionAttachment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, transaction_id, transaction_type, file_name, file_type, file_size, file_data, uploaded_at
		 FROM transaction_attachments WHERE transaction_id = ? ORDER BY uploaded_at DESC`,
		transactionID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list attachments")
	}
	defer rows.Close()

	var atts []model.TransactionAttachment
	for rows.Next() {
		var a model.TransactionAttachment
		if err := rows.Scan(&a.ID, &a.TransactionID, &a.TransactionType, &a.FileName,
			&a.FileType, &a.FileSize, &a.FileData, &a.UploadedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan attachment")
		}
		atts = append(atts, a)
	}
	return atts, eris.Wrap(rows.Err(), "sqlite: list attachments iterate")
}

func (s *SQLiteStore) InsertLedgerEntries(ctx context.Context, entries []model.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin ledger insert")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, e := range entries {
		id := e.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_entries (id, entry_date, type, category, account, amount, budget)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, e.Date, string(e.Type), e.Category, e.Account, e.Amount, e.Budget,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert ledger entry")
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit ledger insert")
}

func (s *SQLiteStore) ListLedgerEntries(ctx context.Context) ([]model.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entry_date, type, category, account, amount, budget
		 FROM ledger_entries ORDER BY entry_date`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list ledger entries")
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.Type, &e.Category, &e.Account, &e.Amount, &e.Budget); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan ledger entry")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: list ledger entries iterate")
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.Password)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get user %s", username)
	}
	return &u, nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, username, password) VALUES (?, ?, ?)`,
		user.ID, user.Username, user.Password,
	)
	return eris.Wrap(err, "sqlite: insert user")
}
