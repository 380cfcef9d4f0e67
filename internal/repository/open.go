package repository

import (
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/lebenh/rfi-triage/internal/common"
)

// Open picks the backing database from configuration: a DB_URL DSN selects
// pgx, otherwise a local SQLite file at DB_PATH is used.
func Open(cfg common.DatabaseConfig) (*SQLStore, error) {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, dbError("DB_OPEN", "open postgres", err)
		}
		return NewSQLStore(db, true), nil
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, dbError("DB_OPEN", "open sqlite", err)
	}
	// the store is written from one goroutine; a single connection keeps
	// SQLite happy under the modernc driver
	db.SetMaxOpenConns(1)
	return NewSQLStore(db, false), nil
}
