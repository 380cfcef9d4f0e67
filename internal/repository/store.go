// Package repository persists triage run summaries so successive batches can
// be compared. SQLite is the zero-setup default; a DB_URL switches the same
// store to Postgres.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lebenh/rfi-triage/internal/catalog"
)

// Run is one completed batch.
type Run struct {
	ID               uuid.UUID
	StartedAt        time.Time
	FinishedAt       time.Time
	LocalRoot        string
	OutPath          string
	Documents        int
	RequiresRevision int
	OCRUsed          int
	Errors           int
}

// RunStore records and reads back run summaries and their per-document audit
// rows.
type RunStore interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run Run) error
	SaveAuditRecords(ctx context.Context, runID uuid.UUID, recs []catalog.AuditRecord) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	ClearRuns(ctx context.Context) (int64, error)
	Close() error
}
