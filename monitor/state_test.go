package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WHAT: state round-trips through save and load.
func TestState_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")

	st := NewState()
	st.MarkSeen("aaa")
	st.MarkSeen("bbb")
	st.MarkSeen("aaa") // idempotent
	st.BackfillDone = true
	st.LastRunEnd = "2025-06-30"

	if err := st.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := LoadState(path, nil)
	if loaded.Size() != 2 {
		t.Errorf("Size = %d, want 2", loaded.Size())
	}
	if !loaded.Seen("aaa") || !loaded.Seen("bbb") {
		t.Error("fingerprints lost")
	}
	if loaded.Seen("ccc") {
		t.Error("phantom fingerprint")
	}
	if !loaded.BackfillDone || loaded.LastRunEnd != "2025-06-30" {
		t.Errorf("flags lost: %+v", loaded)
	}
}

// WHAT: the persisted JSON uses the stable key names other tooling reads.
func TestState_WireFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	st := NewState()
	st.MarkSeen("deadbeef")
	st.BackfillDone = true
	if err := st.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"seen_hashes", "backfill_done", "last_run_end"} {
		if _, ok := wire[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}

// WHAT: a missing state file yields an empty state, not an error.
func TestLoadState_Missing(t *testing.T) {
	st := LoadState(filepath.Join(t.TempDir(), "nope.json"), nil)
	if st.Size() != 0 || st.BackfillDone {
		t.Errorf("state = %+v, want empty", st)
	}
}

// WHAT: a corrupt state file is discarded with a warning, not fatal.
// WHY: one bad write may cause re-reporting but must never wedge the
// monitor permanently.
func TestLoadState_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	st := LoadState(path, nil)
	if st.Size() != 0 || st.BackfillDone {
		t.Errorf("state = %+v, want empty", st)
	}
}

// WHAT: saving never leaves a .tmp file behind.
func TestState_SaveAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seen.json")
	st := NewState()
	st.MarkSeen("x")
	if err := st.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}
