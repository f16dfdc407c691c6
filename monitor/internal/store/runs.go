package store

import (
	"context"
	"fmt"
	"time"

	"github.com/boardwatch/boardwatch/dbopen"
)

// Run is one pipeline run, as recorded in the log.
type Run struct {
	ID          string `json:"id"`
	StartedAt   int64  `json:"started_at"`
	FinishedAt  int64  `json:"finished_at,omitempty"`
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
	Backfill    bool   `json:"backfill"`
	DocsTotal   int    `json:"docs_total"`
	DocsMatched int    `json:"docs_matched"`
	MentionsNew int    `json:"mentions_new"`
	Status      string `json:"status"` // running | ok | failed
	Error       string `json:"error,omitempty"`
}

// Document is one processed document within a run.
type Document struct {
	ID          string `json:"id"`
	RunID       string `json:"run_id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	Outcome     string `json:"outcome"`
	MeetingDate string `json:"meeting_date,omitempty"`
	MentionsNew int    `json:"mentions_new"`
	Error       string `json:"error,omitempty"`
	ProcessedAt int64  `json:"processed_at"`
}

// BeginRun records the start of a run.
func (s *Store) BeginRun(ctx context.Context, r *Run) error {
	_, err := dbopen.Exec(ctx, s.DB,
		`INSERT INTO runs (id, started_at, window_start, window_end, backfill, status)
		VALUES (?, ?, ?, ?, ?, 'running')`,
		r.ID, r.StartedAt, r.WindowStart, r.WindowEnd, boolInt(r.Backfill),
	)
	return err
}

// FinishRun records the terminal state of a run.
func (s *Store) FinishRun(ctx context.Context, r *Run) error {
	_, err := dbopen.Exec(ctx, s.DB,
		`UPDATE runs SET finished_at = ?, docs_total = ?, docs_matched = ?,
		mentions_new = ?, status = ?, error = ? WHERE id = ?`,
		time.Now().UnixMilli(), r.DocsTotal, r.DocsMatched,
		r.MentionsNew, r.Status, r.Error, r.ID,
	)
	return err
}

// InsertDocument records one document outcome.
func (s *Store) InsertDocument(ctx context.Context, d *Document) error {
	_, err := dbopen.Exec(ctx, s.DB,
		`INSERT INTO documents (id, run_id, url, title, source, outcome,
		meeting_date, mentions_new, error, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.RunID, d.URL, d.Title, d.Source, d.Outcome,
		d.MeetingDate, d.MentionsNew, d.Error, d.ProcessedAt,
	)
	return err
}

// RecentRuns returns runs newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at, 0), window_start, window_end,
		backfill, docs_total, docs_matched, mentions_new, status, error
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Run
	for rows.Next() {
		var r Run
		var backfill int
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.WindowStart,
			&r.WindowEnd, &backfill, &r.DocsTotal, &r.DocsMatched,
			&r.MentionsNew, &r.Status, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Backfill = backfill != 0
		result = append(result, &r)
	}
	return result, rows.Err()
}

// RunDocuments returns the document outcomes of one run in processing order.
func (s *Store) RunDocuments(ctx context.Context, runID string) ([]*Document, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, run_id, url, title, source, outcome, meeting_date,
		mentions_new, error, processed_at
		FROM documents WHERE run_id = ? ORDER BY processed_at, id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.RunID, &d.URL, &d.Title, &d.Source,
			&d.Outcome, &d.MeetingDate, &d.MentionsNew, &d.Error, &d.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		result = append(result, &d)
	}
	return result, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
