// Package store persists the run log: one row per run, one row per
// document outcome. It exists for operators; the pipeline itself never
// reads it back, so callers treat store failures as warnings.
package store

import (
	"database/sql"

	"github.com/boardwatch/boardwatch/dbopen"
)

// Schema is the run-log schema, applied on open.
const Schema = `
-- One row per pipeline run
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    started_at    INTEGER NOT NULL,
    finished_at   INTEGER,
    window_start  TEXT NOT NULL,
    window_end    TEXT NOT NULL,
    backfill      INTEGER NOT NULL DEFAULT 0,
    docs_total    INTEGER NOT NULL DEFAULT 0,
    docs_matched  INTEGER NOT NULL DEFAULT 0,
    mentions_new  INTEGER NOT NULL DEFAULT 0,
    status        TEXT NOT NULL DEFAULT 'running',
    error         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

-- One row per document processed in a run
CREATE TABLE IF NOT EXISTS documents (
    id            TEXT PRIMARY KEY,
    run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    url           TEXT NOT NULL,
    title         TEXT NOT NULL DEFAULT '',
    source        TEXT NOT NULL DEFAULT 'unknown',
    outcome       TEXT NOT NULL,
    meeting_date  TEXT NOT NULL DEFAULT '',
    mentions_new  INTEGER NOT NULL DEFAULT 0,
    error         TEXT NOT NULL DEFAULT '',
    processed_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_run ON documents(run_id);
`

// Store wraps the run-log database.
type Store struct {
	DB *sql.DB
}

// Open opens (creating if needed) the run-log database at path.
func Open(path string) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// NewStore wraps an already-opened database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.DB.Close()
}
