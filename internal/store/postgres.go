package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/brightpath-mortgage/intake-api/internal/db"
	"github.com/brightpath-mortgage/intake-api/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the endpoints hit on every form submission.
var preparedStatements = map[string]string{
	"insert_lead":         `INSERT INTO leads (id, kind, payload, created_at) VALUES ($1, $2, $3, $4)`,
	"insert_preapproval":  `INSERT INTO pre_approvals (id, application, co_borrower, created_at) VALUES ($1, $2, $3, $4)`,
	"insert_document":     `INSERT INTO pdf_documents (id, file_name, file_size, upload_date, document_type, extracted_text, structured_data, client_id, status) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
	"get_document":        `SELECT id, file_name, file_size, upload_date, document_type, extracted_text, structured_data, client_id, status FROM pdf_documents WHERE id = $1`,
	"mark_lead_synced":    `UPDATE leads SET synced_at = $1 WHERE id = $2`,
	"get_user_by_name":    `SELECT id, username, password FROM users WHERE username = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS users (
	id       TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	kind       TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	synced_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS pre_approvals (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	application JSONB NOT NULL,
	co_borrower JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pdf_documents (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	file_name       TEXT NOT NULL,
	file_size       BIGINT NOT NULL DEFAULT 0,
	upload_date     TIMESTAMPTZ NOT NULL DEFAULT now(),
	document_type   TEXT NOT NULL,
	extracted_text  TEXT,
	structured_data JSONB,
	client_id       TEXT,
	status          TEXT NOT NULL DEFAULT 'processing'
);

CREATE TABLE IF NOT EXISTS transaction_attachments (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	transaction_id   TEXT NOT NULL,
	transaction_type TEXT NOT NULL,
	file_name        TEXT NOT NULL,
	file_type        TEXT NOT NULL,
	file_size        BIGINT NOT NULL DEFAULT 0,
	file_data        TEXT NOT NULL,
	uploaded_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ledger_entries (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	entry_date DATE NOT NULL,
	type       TEXT NOT NULL,
	category   TEXT NOT NULL,
	account    TEXT NOT NULL,
	amount     DOUBLE PRECISION NOT NULL DEFAULT 0,
	budget     DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_leads_kind ON leads(kind);
CREATE INDEX IF NOT EXISTS idx_leads_synced_at ON leads(synced_at) WHERE synced_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_pre_approvals_created_at ON pre_approvals(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_pdf_documents_status ON pdf_documents(status);
CREATE INDEX IF NOT EXISTS idx_attachments_transaction ON transaction_attachments(transaction_id);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_date ON ledger_entries(entry_date);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateLead(ctx context.Context, kind model.LeadKind, payload json.RawMessage) (*model.Lead, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (id, kind, payload, created_at) VALUES ($1, $2, $3, $4)`,
		id, string(kind), payload, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert lead")
	}

	return &model.Lead{
		ID:        id,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: now,
	}, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, kind, payload, created_at, synced_at FROM leads WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Kind != "" {
		query += fmt.Sprintf(` AND kind = $%d`, argIdx)
		args = append(args, string(filter.Kind))
		argIdx++
	}
	if filter.Unsynced {
		query += ` AND synced_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		var payload []byte
		if err := rows.Scan(&l.ID, &l.Kind, &payload, &l.CreatedAt, &l.SyncedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		l.Payload = payload
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) MarkLeadSynced(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET synced_at = $1 WHERE id = $2`,
		at, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark lead synced %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) CreatePreApproval(ctx context.Context, app model.PreApprovalApplication, co *model.CoBorrower) (*model.PreApproval, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	appJSON, err := json.Marshal(app)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal application")
	}

	var coJSON []byte
	if co != nil {
		coJSON, err = json.Marshal(co)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: marshal co-borrower")
		}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO pre_approvals (id, application, co_borrower, created_at) VALUES ($1, $2, $3, $4)`,
		id, appJSON, coJSON, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert pre-approval")
	}

	return &model.PreApproval{
		ID:          id,
		Application: app,
		CoBorrower:  co,
		CreatedAt:   now,
	}, nil
}

func (s *PostgresStore) ListPreApprovals(ctx context.Context, limit, offset int) ([]model.PreApproval, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, application, co_borrower, created_at FROM pre_approvals
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list pre-approvals")
	}
	defer rows.Close()

	var out []model.PreApproval
	for rows.Next() {
		var pa model.PreApproval
		var appJSON []byte
		var coJSON *[]byte
		if err := rows.Scan(&pa.ID, &appJSON, &coJSON, &pa.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan pre-approval")
		}
		if err := json.Unmarshal(appJSON, &pa.Application); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal application")
		}
		if coJSON != nil && len(*coJSON) > 0 {
			pa.CoBorrower = &model.CoBorrower{}
			if err := json.Unmarshal(*coJSON, pa.CoBorrower); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal co-borrower")
			}
		}
		out = append(out, pa)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list pre-approvals iterate")
}

func (s *PostgresStore) CreateDocument(ctx context.Context, doc *model.PDFDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.UploadDate.IsZero() {
		doc.UploadDate = time.Now().UTC()
	}
	if doc.Status == "" {
		doc.Status = model.DocumentStatusProcessing
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO pdf_documents (id, file_name, file_size, upload_date, document_type, extracted_text, structured_data, client_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		doc.ID, doc.FileName, doc.FileSize, doc.UploadDate, string(doc.DocumentType),
		doc.ExtractedText, []byte(doc.StructuredData), doc.ClientID, string(doc.Status),
	)
	return eris.Wrap(err, "postgres: insert document")
}

func (s *PostgresStore) GetDocument(ctx context.Context, id string) (*model.PDFDocument, error) {
	var d model.PDFDocument
	var extractedText *string
	var structured *[]byte
	var clientID *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, file_name, file_size, upload_date, document_type, extracted_text, structured_data, client_id, status
		 FROM pdf_documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.FileName, &d.FileSize, &d.UploadDate, &d.DocumentType,
		&extractedText, &structured, &clientID, &d.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get document %s", id)
	}
	if extractedText != nil {
		d.ExtractedText = *extractedText
	}
	if structured != nil {
		d.StructuredData = *structured
	}
	if clientID != nil {
		d.ClientID = *clientID
	}
	return &d, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context) ([]model.PDFDocument, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, file_name, file_size, upload_date, document_type, extracted_text, structured_data, client_id, status
		 FROM pdf_documents ORDER BY upload_date DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list documents")
	}
	defer rows.Close()

	var docs []model.PDFDocument
	for rows.Next() {
		var d model.PDFDocument
		var extractedText *string
		var structured *[]byte
		var clientID *string
		if err := rows.Scan(&d.ID, &d.FileName, &d.FileSize, &d.UploadDate, &d.DocumentType,
			&extractedText, &structured, &clientID, &d.Status); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document")
		}
		if extractedText != nil {
			d.ExtractedText = *extractedText
		}
		if structured != nil {
			d.StructuredData = *structured
		}
		if clientID != nil {
			d.ClientID = *clientID
		}
		docs = append(docs, d)
	}
	return docs, eris.Wrap(rows.Err(), "postgres: list documents iterate")
}

func (s *PostgresStore) UpdateDocumentExtraction(ctx context.Context, id string, status model.DocumentStatus, extractedText string, structuredData json.RawMessage) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE pdf_documents SET status = $1, extracted_text = $2, structured_data = $3 WHERE id = $4`,
		string(status), extractedText, []byte(structuredData), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update document extraction %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("document not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) DeleteDocument(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM pdf_documents WHERE id = $1`, id)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: delete document %s", id)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) CreateAttachment(ctx context.Context, att *model.TransactionAttachment) error {
	if att.ID == "" {
		att.ID = uuid.New().String()
	}
	if att.UploadedAt.IsZero() {
		att.UploadedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO transaction_attachments (id, transaction_id, transaction_type, file_name, file_type, file_size, file_data, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		att.ID, att.TransactionID, att.TransactionType, att.FileName, att.FileType,
		att.FileSize, att.FileData, att.UploadedAt,
	)
	return eris.Wrap(err, "postgres: insert attachment")
}

func (s *PostgresStore) ListAttachments(ctx context.Context, transactionID string) ([]model.TransactionAttachment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, transaction_id, transaction_type, file_name, file_type, file_size, file_data, uploaded_at
		 FROM transaction_attachments WHERE transaction_id = $1 ORDER BY uploaded_at DESC`,
		transactionID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list attachments")
	}
	defer rows.Close()

	var atts []model.TransactionAttachment
	for rows.Next() {
		var a model.TransactionAttachment
		if err := rows.Scan(&a.ID, &a.TransactionID, &a.TransactionType, &a.FileName,
			&a.FileType, &a.FileSize, &a.FileData, &a.UploadedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan attachment")
		}
		atts = append(atts, a)
	}
	return atts, eris.Wrap(rows.Err(), "postgres: list attachments iterate")
}

func (s *PostgresStore) InsertLedgerEntries(ctx context.Context, entries []model.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin ledger insert")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, e := range entries {
		id := e.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO ledger_entries (id, entry_date, type, category, account, amount, budget)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, e.Date, string(e.Type), e.Category, e.Account, e.Amount, e.Budget,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert ledger entry")
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit ledger insert")
}

func (s *PostgresStore) ListLedgerEntries(ctx context.Context) ([]model.LedgerEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, entry_date, type, category, account, amount, budget
		 FROM ledger_entries ORDER BY entry_date`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list ledger entries")
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.Type, &e.Category, &e.Account, &e.Amount, &e.Budget); err != nil {
			return nil, eris.Wrap(err, "postgres: scan ledger entry")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: list ledger entries iterate")
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get user %s", username)
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, password) VALUES ($1, $2, $3)
		 ON CONFLICT (username) DO NOTHING`,
		user.ID, user.Username, user.Password,
	)
	return eris.Wrap(err, "postgres: insert user")
}
