package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// State is the cross-run memory: the set of reported mention fingerprints
// plus the backfill marker. It is grow-only; fingerprints are never
// removed.
type State struct {
	seen         map[string]struct{}
	BackfillDone bool
	LastRunEnd   string // YYYY-MM-DD of the last completed window end
}

// stateWire is the persisted JSON shape.
type stateWire struct {
	SeenHashes   []string `json:"seen_hashes"`
	BackfillDone bool     `json:"backfill_done"`
	LastRunEnd   string   `json:"last_run_end"`
}

// NewState returns an empty state.
func NewState() *State {
	return &State{seen: make(map[string]struct{})}
}

// Seen reports whether a fingerprint was reported in an earlier run.
func (s *State) Seen(fp string) bool {
	_, ok := s.seen[fp]
	return ok
}

// MarkSeen records a fingerprint. Idempotent.
func (s *State) MarkSeen(fp string) {
	s.seen[fp] = struct{}{}
}

// Size returns the number of recorded fingerprints.
func (s *State) Size() int {
	return len(s.seen)
}

// LoadState reads the state file. A missing file yields an empty state; a
// corrupt file is logged and discarded, also yielding an empty state, so
// one bad write can only cause re-reporting, never a crash loop.
func LoadState(path string, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}

	st := NewState()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("state: read failed, starting empty", "path", path, "error", err)
		}
		return st
	}

	var wire stateWire
	if err := json.Unmarshal(data, &wire); err != nil {
		logger.Warn("state: corrupt file, starting empty", "path", path, "error", err)
		return st
	}

	for _, h := range wire.SeenHashes {
		st.seen[h] = struct{}{}
	}
	st.BackfillDone = wire.BackfillDone
	st.LastRunEnd = wire.LastRunEnd
	return st
}

// Save writes the state atomically (write .tmp then rename). Hashes are
// sorted so the file diffs cleanly between runs.
func (s *State) Save(path string) error {
	wire := stateWire{
		SeenHashes:   make([]string, 0, len(s.seen)),
		BackfillDone: s.BackfillDone,
		LastRunEnd:   s.LastRunEnd,
	}
	for h := range s.seen {
		wire.SeenHashes = append(wire.SeenHashes, h)
	}
	sort.Strings(wire.SeenHashes)

	data, err := json.MarshalIndent(&wire, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("state: mkdir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("state: write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("state: rename: %w", err)
	}
	return nil
}
