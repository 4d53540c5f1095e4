package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBeginRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	beginTestRun(t, s, "run-1")
	beginTestRun(t, s, "run-1")

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if count != 1 {
		t.Errorf("runs = %d, want 1", count)
	}
}

func TestBeginRun_RequiresID(t *testing.T) {
	s := createTestStore(t)
	if err := s.BeginRun(context.Background(), RunRecord{StartedAt: testStart}); err == nil {
		t.Error("BeginRun() with empty id should fail")
	}
}

func TestWriteVerdict_RequiresRun(t *testing.T) {
	s := createTestStore(t)

	err := s.WriteVerdict(context.Background(), createTestVerdict("ghost", 1, "2_code_length", "pass"))
	if err == nil {
		t.Error("WriteVerdict() for unknown run should violate the foreign key")
	}
}

func TestWriteVerdict_DuplicateSeqIgnored(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	beginTestRun(t, s, "run-1")

	first := createTestVerdict("run-1", 1, "2_code_length", "pass")
	second := createTestVerdict("run-1", 1, "3_modularity", "fail")
	if err := s.WriteVerdict(ctx, first); err != nil {
		t.Fatalf("first WriteVerdict() failed: %v", err)
	}
	if err := s.WriteVerdict(ctx, second); err != nil {
		t.Fatalf("duplicate WriteVerdict() failed: %v", err)
	}

	got, err := s.ListVerdicts(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListVerdicts() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("verdicts = %d, want 1", len(got))
	}
	if got[0].Check != "2_code_length" {
		t.Errorf("check = %q, want the first write to win", got[0].Check)
	}
}

func TestFinishRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	beginTestRun(t, s, "run-1")

	totals := Totals{Total: 4, Passed: 3, Failed: 1, Errors: 1, Skipped: 2}
	end := testStart.Add(90 * time.Second)
	if err := s.FinishRun(ctx, "run-1", totals, end, true); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if got.Totals != totals {
		t.Errorf("totals = %+v, want %+v", got.Totals, totals)
	}
	if !got.FinishedAt.Equal(end) {
		t.Errorf("finished_at = %v, want %v", got.FinishedAt, end)
	}
	if !got.Interrupted {
		t.Error("interrupted = false, want true")
	}
}

func TestFinishRun_UnknownRun(t *testing.T) {
	s := createTestStore(t)

	err := s.FinishRun(context.Background(), "ghost", Totals{}, testStart, false)
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("FinishRun() error = %v, want ErrRunNotFound", err)
	}
}
