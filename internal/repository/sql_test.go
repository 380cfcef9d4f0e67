package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/lebenh/rfi-triage/internal/catalog"
	"github.com/lebenh/rfi-triage/internal/common"
)

func TestRebind(t *testing.T) {
	q := "INSERT INTO runs (id, documents) VALUES (?, ?)"

	sqlite := &SQLStore{postgres: false}
	if got := sqlite.rebind(q); got != q {
		t.Errorf("sqlite rebind changed the query: %q", got)
	}

	pg := &SQLStore{postgres: true}
	want := "INSERT INTO runs (id, documents) VALUES ($1, $2)"
	if got := pg.rebind(q); got != want {
		t.Errorf("postgres rebind = %q, want %q", got, want)
	}
}

func TestSaveRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	store := NewSQLStore(db, false)
	defer func() { _ = store.Close() }()

	run := Run{
		ID:               uuid.New(),
		StartedAt:        time.Now().Add(-time.Minute),
		FinishedAt:       time.Now(),
		LocalRoot:        "/data/rfis",
		OutPath:          "/data/results/catalog.xlsx",
		Documents:        12,
		RequiresRevision: 4,
		OCRUsed:          2,
		Errors:           1,
	}

	mock.ExpectExec("INSERT INTO runs").
		WithArgs(run.ID.String(), run.StartedAt, run.FinishedAt, run.LocalRoot,
			run.OutPath, run.Documents, run.RequiresRevision, run.OCRUsed, run.Errors).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.SaveRun(context.Background(), run); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestStoreFailuresTagErrDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	store := NewSQLStore(db, false)
	defer func() { _ = store.Close() }()

	mock.ExpectExec("INSERT INTO runs").WillReturnError(errors.New("disk I/O error"))

	saveErr := store.SaveRun(context.Background(), Run{ID: uuid.New()})
	if saveErr == nil {
		t.Fatal("expected an error from the failing insert")
	}
	if !errors.Is(saveErr, common.ErrDatabase) {
		t.Errorf("error %v does not match common.ErrDatabase", saveErr)
	}
	var appErr *common.AppError
	if !errors.As(saveErr, &appErr) || appErr.Code != "DB_SAVE_RUN" {
		t.Errorf("error %v does not carry the DB_SAVE_RUN code", saveErr)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSaveAuditRecords(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	store := NewSQLStore(db, false)
	defer func() { _ = store.Close() }()

	runID := uuid.New()
	recs := []catalog.AuditRecord{
		{PDF: "a.pdf", RfiNumber: "RFI-1", Method: "primary_layout_parser", TextLen: 400, Attempts: 1, ElapsedMS: 120, Status: "ok"},
		{PDF: "b.pdf", RfiNumber: "RFI-2", Method: "ocr", TextLen: 90, OCRUsed: true, OCRPages: 3, Attempts: 2, ForcedSecondAttempt: true, ElapsedMS: 8000, Status: "ok"},
	}

	mock.ExpectBegin()
	for range recs {
		mock.ExpectExec("INSERT INTO run_documents").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	if err := store.SaveAuditRecords(context.Background(), runID, recs); err != nil {
		t.Fatalf("save audit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSaveAuditRecordsEmptyIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	store := NewSQLStore(db, false)
	defer func() { _ = store.Close() }()

	if err := store.SaveAuditRecords(context.Background(), uuid.New(), nil); err != nil {
		t.Fatalf("save audit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListRuns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	store := NewSQLStore(db, false)
	defer func() { _ = store.Close() }()

	id := uuid.New()
	started := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	finished := started.Add(2 * time.Minute)

	mock.ExpectQuery("SELECT (.+) FROM runs ORDER BY started_at DESC").
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "started_at", "finished_at", "local_root", "out_path",
			"documents", "requires_revision", "ocr_used", "errors",
		}).AddRow(id.String(), started, finished, "/data/rfis", "/data/catalog.xlsx", 7, 3, 1, 0))

	runs, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].ID != id || runs[0].Documents != 7 || runs[0].RequiresRevision != 3 {
		t.Errorf("run = %+v", runs[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestClearRuns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	store := NewSQLStore(db, false)
	defer func() { _ = store.Close() }()

	mock.ExpectExec("DELETE FROM run_documents").WillReturnResult(sqlmock.NewResult(0, 9))
	mock.ExpectExec("DELETE FROM runs").WillReturnResult(sqlmock.NewResult(0, 5))

	n, err := store.ClearRuns(context.Background())
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 5 {
		t.Errorf("deleted = %d, want 5", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	store := NewSQLStore(db, false)
	defer func() { _ = store.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS runs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS run_documents").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
