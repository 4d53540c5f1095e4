// Package metrics exposes grading results in the Prometheus text format.
//
// A Recorder observes a run and, once the run is over, writes its
// registry to a textfile that a node exporter's textfile collector can
// scrape.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/codegrade/internal/harness"
)

const namespace = "codegrade"

// Recorder collects per-run metrics into its own registry.
type Recorder struct {
	registry *prometheus.Registry

	// checkRuns counts finished runs.
	// Labels: check, model, outcome (pass, fail, missing_check, spawn_error)
	checkRuns *prometheus.CounterVec

	// checkDuration measures how long each check took.
	// Labels: check
	checkDuration *prometheus.HistogramVec

	// skipped counts leaf/model pairs without an artifact.
	// Labels: model
	skipped *prometheus.CounterVec

	lastTotal     prometheus.Gauge
	lastPassed    prometheus.Gauge
	lastFailed    prometheus.Gauge
	lastTimestamp prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		checkRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_runs_total",
			Help:      "Check runs by check, model and outcome",
		}, []string{"check", "model", "outcome"}),
		checkDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_run_duration_seconds",
			Help:      "Wall time of a single check run in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"check"}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_artifacts_skipped_total",
			Help:      "Leaf/model pairs skipped because the artifact was absent",
		}, []string{"model"}),
		lastTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "last_run",
			Name:      "total",
			Help:      "Runs attempted by the last grading invocation",
		}),
		lastPassed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "last_run",
			Name:      "passed",
			Help:      "Runs passed in the last grading invocation",
		}),
		lastFailed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "last_run",
			Name:      "failed",
			Help:      "Runs failed in the last grading invocation",
		}),
		lastTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "last_run",
			Name:      "timestamp_seconds",
			Help:      "Unix time the last grading invocation finished",
		}),
	}
}

// Registry returns the registry the metrics live in.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe implements harness.Observer.
func (r *Recorder) Observe(e harness.Event) {
	switch e.Kind {
	case harness.EventVerdict:
		v := e.Verdict
		r.checkRuns.WithLabelValues(v.Run.Check.Name, v.Run.Model, v.Outcome.String()).Inc()
		r.checkDuration.WithLabelValues(v.Run.Check.Name).Observe(v.Duration.Seconds())
	case harness.EventModelSkipped:
		r.skipped.WithLabelValues(e.Model).Inc()
	}
}

// SetSummary records the final totals of a run finished at the given time.
func (r *Recorder) SetSummary(s *harness.Summary, finished time.Time) {
	r.lastTotal.Set(float64(s.Total))
	r.lastPassed.Set(float64(s.Passed))
	r.lastFailed.Set(float64(s.Failed))
	r.lastTimestamp.Set(float64(finished.Unix()))
}

// WriteTextfile records the summary and writes every metric to path. The
// file is replaced atomically.
func (r *Recorder) WriteTextfile(path string, s *harness.Summary, finished time.Time) error {
	r.SetSummary(s, finished)
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
