package monitor

import "errors"

// Fatal run errors. Per-document failures are never fatal; they become
// OutcomeError entries and the run continues.
var (
	// ErrNoSources means the config names nothing to crawl.
	ErrNoSources = errors.New("monitor: no district pages or portal URL configured")

	// ErrArtifacts means report files could not be persisted. The run
	// aborts before state save so nothing is marked seen without a report.
	ErrArtifacts = errors.New("monitor: report artifacts not persisted")

	// ErrStatePersist means the seen-state file could not be written.
	ErrStatePersist = errors.New("monitor: seen state not persisted")

	// ErrMailRequired means delivery is mandatory but the mail config is
	// incomplete or the send failed.
	ErrMailRequired = errors.New("monitor: mandatory mail delivery failed")
)
