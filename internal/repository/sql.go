package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lebenh/rfi-triage/internal/catalog"
	"github.com/lebenh/rfi-triage/internal/common"
)

// dbError tags every store failure with common.ErrDatabase so callers can
// test the class with errors.Is without matching codes.
func dbError(code, message string, cause error) error {
	return common.NewAppError(code, message, errors.Join(common.ErrDatabase, cause))
}

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL,
	local_root TEXT NOT NULL,
	out_path TEXT NOT NULL,
	documents INTEGER NOT NULL,
	requires_revision INTEGER NOT NULL,
	ocr_used INTEGER NOT NULL,
	errors INTEGER NOT NULL
)`

const createRunDocumentsTable = `
CREATE TABLE IF NOT EXISTS run_documents (
	run_id TEXT NOT NULL,
	pdf TEXT NOT NULL,
	rfi_no TEXT NOT NULL,
	method TEXT NOT NULL,
	text_len INTEGER NOT NULL,
	ocr_used INTEGER NOT NULL,
	ocr_pages INTEGER NOT NULL,
	attempts INTEGER NOT NULL,
	forced_second_attempt INTEGER NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	status TEXT NOT NULL,
	error TEXT NOT NULL
)`

// SQLStore implements RunStore over database/sql. The dialect only differs in
// placeholder style, handled by rebind.
type SQLStore struct {
	db       *sql.DB
	postgres bool
}

func NewSQLStore(db *sql.DB, postgres bool) *SQLStore {
	return &SQLStore{db: db, postgres: postgres}
}

// rebind rewrites ? placeholders to $1..$n for the Postgres driver.
func (s *SQLStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createRunsTable); err != nil {
		return dbError("DB_MIGRATE", "create runs table", err)
	}
	if _, err := s.db.ExecContext(ctx, createRunDocumentsTable); err != nil {
		return dbError("DB_MIGRATE", "create run_documents table", err)
	}
	return nil
}

func (s *SQLStore) SaveRun(ctx context.Context, run Run) error {
	query := s.rebind(`INSERT INTO runs
		(id, started_at, finished_at, local_root, out_path, documents, requires_revision, ocr_used, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		run.ID.String(), run.StartedAt, run.FinishedAt, run.LocalRoot, run.OutPath,
		run.Documents, run.RequiresRevision, run.OCRUsed, run.Errors)
	if err != nil {
		return dbError("DB_SAVE_RUN", "insert run", err)
	}
	return nil
}

// SaveAuditRecords writes the per-document audit rows of one run in a single
// transaction.
func (s *SQLStore) SaveAuditRecords(ctx context.Context, runID uuid.UUID, recs []catalog.AuditRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError("DB_SAVE_AUDIT", "begin tx", err)
	}
	query := s.rebind(`INSERT INTO run_documents
		(run_id, pdf, rfi_no, method, text_len, ocr_used, ocr_pages, attempts, forced_second_attempt, elapsed_ms, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, r := range recs {
		if _, err := tx.ExecContext(ctx, query,
			runID.String(), r.PDF, r.RfiNumber, r.Method, r.TextLen, r.OCRUsed,
			r.OCRPages, r.Attempts, r.ForcedSecondAttempt, r.ElapsedMS, r.Status, r.Error); err != nil {
			_ = tx.Rollback()
			return dbError("DB_SAVE_AUDIT", "insert audit row", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return dbError("DB_SAVE_AUDIT", "commit", err)
	}
	return nil
}

func (s *SQLStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := s.rebind(`SELECT id, started_at, finished_at, local_root, out_path,
		documents, requires_revision, ocr_used, errors
		FROM runs ORDER BY started_at DESC LIMIT ?`)
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, dbError("DB_LIST_RUNS", "query runs", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var r Run
		var id string
		if err := rows.Scan(&id, &r.StartedAt, &r.FinishedAt, &r.LocalRoot, &r.OutPath,
			&r.Documents, &r.RequiresRevision, &r.OCRUsed, &r.Errors); err != nil {
			return nil, dbError("DB_LIST_RUNS", "scan run", err)
		}
		if parsed, err := uuid.Parse(id); err == nil {
			r.ID = parsed
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("DB_LIST_RUNS", "iterate runs", err)
	}
	return out, nil
}

func (s *SQLStore) ClearRuns(ctx context.Context) (int64, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM run_documents`); err != nil {
		return 0, dbError("DB_CLEAR_RUNS", "delete run documents", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, dbError("DB_CLEAR_RUNS", "delete runs", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
