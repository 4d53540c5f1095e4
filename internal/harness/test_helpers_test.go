package harness

import (
	"testing"
	"time"

	"github.com/roach88/codegrade/internal/testutil"
)

// shMatrix builds a matrix whose checks are sh scripts named <check>.sh.
func shMatrix(checks ...string) *Matrix {
	m := &Matrix{
		Models:       []string{"chatgpt", "claude", "gemini"},
		ArtifactExt:  ".py",
		StagedName:   "check_under_test",
		Interpreters: map[string][]string{".sh": {"sh"}},
	}
	for _, c := range checks {
		m.Checks = append(m.Checks, CheckCase{Name: c, Script: c + ".sh"})
	}
	return m
}

// newTestHarness wires a Harness to tr with a step clock.
func newTestHarness(t *testing.T, tr *testutil.Tree, m *Matrix) *Harness {
	t.Helper()
	results := tr.MkdirResults(t)
	clock := testutil.NewStepClock(10 * time.Millisecond)
	return New(m, tr.ChecksDir(), results, WithClock(clock.Now))
}

// recorder collects events for assertions.
type recorder struct {
	events []Event
}

func (r *recorder) Observe(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) verdicts() []Verdict {
	var out []Verdict
	for _, e := range r.events {
		if e.Kind == EventVerdict {
			out = append(out, e.Verdict)
		}
	}
	return out
}

func (r *recorder) count(kind EventKind) int {
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
