// Package monitor orchestrates one pipeline run: discover board documents,
// extract their text, find keyword mentions, infer a meeting date per
// document, dedupe against persisted state, and hand the surviving rows to
// the report layer.
package monitor

import "time"

// Source values for a DocumentRef.
const (
	SourceDistrict  = "district"
	SourceBoardDocs = "boarddocs"
	SourceUnknown   = "unknown"
)

// DocumentRef identifies one crawled resource. Immutable once created;
// it lives for a single pipeline pass.
type DocumentRef struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Mention is one keyword occurrence with its bounded snippet and stable
// fingerprint.
type Mention struct {
	Keyword     string `json:"keyword"`
	Snippet     string `json:"snippet"`
	Fingerprint string `json:"fingerprint"`
}

// Outcome classifies how a document fared in a run.
type Outcome string

const (
	OutcomeSkippedNoText     Outcome = "skipped_no_text"
	OutcomeSkippedMinYear    Outcome = "skipped_min_year"
	OutcomeSkippedOutOfRange Outcome = "skipped_out_of_range"
	OutcomeNoMentions        Outcome = "scanned_no_mentions"
	OutcomeMatched           Outcome = "matched"
	OutcomeDuplicatesOnly    Outcome = "scanned_duplicates_only"
	OutcomeError             Outcome = "error"
)

// DocOutcome records one document's fate for the run log and run result.
type DocOutcome struct {
	Ref         DocumentRef `json:"ref"`
	Outcome     Outcome     `json:"outcome"`
	MeetingDate string      `json:"meeting_date,omitempty"` // YYYY-MM-DD
	NewMentions int         `json:"new_mentions,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// RunResult is the summary of one completed run.
type RunResult struct {
	RunID       string       `json:"run_id"`
	Window      Window       `json:"window"`
	Outcomes    []DocOutcome `json:"outcomes"`
	DocsTotal   int          `json:"docs_total"`
	DocsMatched int          `json:"docs_matched"`
	NewMentions int          `json:"new_mentions"`
	Delivered   bool         `json:"delivered"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
}
