// Package report renders run results into deliverable artifacts: an HTML
// report, a CSV export, a plain-text alternative, and optional SMTP
// delivery.
package report

import (
	"fmt"
	"time"
)

// Row is one reportable mention.
type Row struct {
	Date    string // YYYY-MM-DD, empty when no date was inferred
	Source  string // district | boarddocs | unknown
	Title   string
	URL     string
	Keyword string
	Snippet string
}

// Report is the assembled output of one run.
type Report struct {
	Rows        []Row
	WindowStart time.Time
	WindowEnd   time.Time
	Backfill    bool
	GeneratedAt time.Time
}

// Subject returns the delivery subject line: backfill runs announce the
// covered range, monthly runs name the month.
func (r *Report) Subject() string {
	if r.Backfill {
		return fmt.Sprintf("Preschool monitor — backfill %s to %s (%d findings)",
			r.WindowStart.Format("2006-01-02"), r.WindowEnd.Format("2006-01-02"), len(r.Rows))
	}
	return fmt.Sprintf("Preschool monitor — %s (%d findings)",
		r.WindowEnd.Format("January 2006"), len(r.Rows))
}
