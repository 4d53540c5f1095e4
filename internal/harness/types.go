package harness

import (
	"fmt"
	"path/filepath"
	"time"
)

// Leaf is one iteration directory holding the generated artifacts of a
// single challenge/variant/iteration combination.
//
// Challenge, Variant and Iteration are NFC-normalized names; Path is the
// absolute directory as found on disk. Dir is the iteration directory's
// name exactly as stored on disk, which can differ from Iteration in its
// Unicode normalization.
type Leaf struct {
	Challenge string
	Variant   string
	Iteration string
	Dir       string
	Path      string
}

// Base returns the leaf's on-disk base name, used as the result file
// prefix. It falls back to Iteration when Dir is unset.
func (l Leaf) Base() string {
	if l.Dir != "" {
		return l.Dir
	}
	return l.Iteration
}

// String returns "challenge/variant/iteration".
func (l Leaf) String() string {
	return l.Challenge + "/" + l.Variant + "/" + l.Iteration
}

// CheckCase is a registered quality check. Script is relative to the
// per-challenge check directory.
type CheckCase struct {
	Name   string `yaml:"name"`
	Script string `yaml:"script"`
}

// Ext returns the script's file extension, including the dot.
func (c CheckCase) Ext() string {
	return filepath.Ext(c.Script)
}

// Run identifies one unit of work: a check executed against one model's
// artifact in one leaf.
type Run struct {
	Leaf  Leaf
	Model string
	Check CheckCase
}

// ResultFileName is the deterministic name of the file that captures the
// run's combined output. Re-running the same combination overwrites it.
func (r Run) ResultFileName() string {
	return fmt.Sprintf("%s_%s_%s.txt", r.Leaf.Base(), r.Check.Name, r.Model)
}

// Outcome classifies a finished run.
type Outcome int

const (
	// OutcomePass means the check exited with status 0.
	OutcomePass Outcome = iota
	// OutcomeFail means the check exited with a nonzero status.
	OutcomeFail
	// OutcomeMissingCheck means the check script was absent; nothing ran.
	OutcomeMissingCheck
	// OutcomeSpawnError means the check could not be staged or started.
	OutcomeSpawnError
)

// String returns the outcome's stable name, as stored in the ledger.
func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "pass"
	case OutcomeFail:
		return "fail"
	case OutcomeMissingCheck:
		return "missing_check"
	case OutcomeSpawnError:
		return "spawn_error"
	default:
		return "unknown"
	}
}

// IsInfraError reports whether the outcome stems from harness setup rather
// than from the check itself. Such outcomes still count as failures.
func (o Outcome) IsInfraError() bool {
	return o == OutcomeMissingCheck || o == OutcomeSpawnError
}

// Verdict is the result of a single Run.
type Verdict struct {
	Run Run

	Outcome Outcome

	// ExitCode is the child's exit status, or -1 when no status exists
	// (missing script, spawn failure, killed by a signal).
	ExitCode int

	// OutputPath is the result file holding the combined output. Empty only
	// if the file itself could not be created.
	OutputPath string

	Duration time.Duration

	// Detail is a short human-readable reason for non-pass outcomes.
	Detail string
}

// Passed reports whether the run passed.
func (v Verdict) Passed() bool {
	return v.Outcome == OutcomePass
}

// EventKind enumerates what the Runner reports to observers.
type EventKind int

const (
	EventLeafStarted EventKind = iota
	EventModelStarted
	EventModelSkipped
	EventRunStarted
	EventVerdict
)

// Event is a progress notification emitted by the Runner.
//
// Seq is set on EventVerdict only and numbers verdicts from 1 in the order
// the aggregator counted them.
type Event struct {
	Kind    EventKind
	Leaf    Leaf
	Model   string
	Run     Run
	Verdict Verdict
	Seq     int64
}

// Observer receives Runner events. Observers are always called from a
// single goroutine, so implementations need no locking.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) {
	f(e)
}
