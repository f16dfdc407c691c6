package monitor

import "time"

// BackfillEpoch is the start of the historical window covered by the very
// first run.
var BackfillEpoch = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

// Window is the date range a run reports on.
type Window struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Backfill bool      `json:"backfill"`
}

// Contains reports whether a meeting date falls inside the window.
// Boundaries are inclusive; only the calendar date matters.
func (w Window) Contains(d time.Time) bool {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(w.End.Year(), w.End.Month(), w.End.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(start) && !day.After(end)
}

// ComputeWindow derives the run window from state: the first ever run
// backfills from the epoch (zero epoch = BackfillEpoch), every later run
// covers the current month up to now.
func ComputeWindow(st *State, now, epoch time.Time) Window {
	if !st.BackfillDone {
		if epoch.IsZero() {
			epoch = BackfillEpoch
		}
		return Window{Start: epoch, End: now, Backfill: true}
	}
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Window{Start: firstOfMonth, End: now}
}
