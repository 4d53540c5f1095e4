package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testStart = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// beginTestRun inserts a run with minimal required fields.
func beginTestRun(t *testing.T, s *Store, id string) {
	t.Helper()
	err := s.BeginRun(context.Background(), RunRecord{
		ID:           id,
		StartedAt:    testStart,
		ArtifactRoot: "/srv/dry_run_output/code",
		LeafCount:    2,
	})
	if err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
}

// createTestVerdict creates a verdict record with minimal required fields.
func createTestVerdict(runID string, seq int64, check, outcome string) VerdictRecord {
	return VerdictRecord{
		RunID:     runID,
		Seq:       seq,
		Challenge: "calculator",
		Variant:   "v1",
		Iteration: "iteration_1",
		Model:     "chatgpt",
		Check:     check,
		Outcome:   outcome,
		Duration:  250 * time.Millisecond,
	}
}
