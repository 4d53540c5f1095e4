package harness

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"
)

// Runner drives a Harness over every leaf × model × check combination and
// aggregates the verdicts.
type Runner struct {
	harness   *Harness
	observers []Observer
	workers   int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithObservers registers observers notified of every event, in order.
func WithObservers(obs ...Observer) RunnerOption {
	return func(r *Runner) {
		r.observers = append(r.observers, obs...)
	}
}

// WithWorkers sets how many leaves may be graded at once. Values below 2
// select strictly sequential execution. The codegrade command always runs
// sequentially; the pool is for library callers.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		r.workers = n
	}
}

// NewRunner creates a Runner for h.
func NewRunner(h *Harness, opts ...RunnerOption) *Runner {
	r := &Runner{harness: h, workers: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run grades all leaves and returns the summary. The leaf list is taken as
// given and not re-read during the run.
//
// If ctx is cancelled no further runs start; the summary covers the runs
// that completed and ctx.Err() is returned alongside it.
func (r *Runner) Run(ctx context.Context, leaves []Leaf) (*Summary, error) {
	agg := &aggregator{summary: NewSummary(), observers: r.observers}
	if r.workers < 2 {
		for _, leaf := range leaves {
			if err := ctx.Err(); err != nil {
				return agg.summary, err
			}
			if err := r.gradeLeaf(ctx, leaf, agg.dispatch); err != nil {
				return agg.summary, err
			}
		}
		return agg.summary, nil
	}
	return r.runPool(ctx, leaves, agg)
}

// runPool grades shards of leaves concurrently. Leaves sharing a base name
// share result file names, so each shard holds all leaves with one base
// name and is graded sequentially by a single worker. That also keeps every
// leaf's staged file owned by one run at a time.
//
// Workers buffer a leaf's events and send them as one block once the leaf
// is done, so observers see each leaf contiguously, as in sequential mode.
// The calling goroutine is the sole writer of the summary and the only
// caller of observers.
func (r *Runner) runPool(ctx context.Context, leaves []Leaf, agg *aggregator) (*Summary, error) {
	blocks := make(chan []Event)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	go func() {
		for _, shard := range shardByBase(leaves) {
			shard := shard
			g.Go(func() error {
				for _, leaf := range shard {
					if err := gctx.Err(); err != nil {
						return err
					}
					var block []Event
					err := r.gradeLeaf(gctx, leaf, func(e Event) {
						block = append(block, e)
					})
					// Verdicts of an interrupted leaf are still counted.
					blocks <- block
					if err != nil {
						return err
					}
				}
				return nil
			})
		}
		// Wait's result is read again below once blocks is drained.
		_ = g.Wait()
		close(blocks)
	}()

	for block := range blocks {
		for _, e := range block {
			agg.dispatch(e)
		}
	}
	if err := g.Wait(); err != nil {
		return agg.summary, err
	}
	return agg.summary, ctx.Err()
}

// gradeLeaf runs every model and check for one leaf, emitting events in
// order. It returns early only on context cancellation.
func (r *Runner) gradeLeaf(ctx context.Context, leaf Leaf, emit func(Event)) error {
	m := r.harness.Matrix()
	emit(Event{Kind: EventLeafStarted, Leaf: leaf})

	for _, model := range m.Models {
		if !fileExists(m.ArtifactPath(leaf, model)) {
			emit(Event{Kind: EventModelSkipped, Leaf: leaf, Model: model})
			continue
		}
		emit(Event{Kind: EventModelStarted, Leaf: leaf, Model: model})

		for _, check := range m.Checks {
			if err := ctx.Err(); err != nil {
				return err
			}
			run := Run{Leaf: leaf, Model: model, Check: check}
			emit(Event{Kind: EventRunStarted, Leaf: leaf, Model: model, Run: run})
			v := r.harness.Execute(ctx, run)
			emit(Event{Kind: EventVerdict, Leaf: leaf, Model: model, Run: run, Verdict: v})
		}
	}
	return nil
}

// aggregator applies events to the summary and forwards them to observers.
type aggregator struct {
	summary   *Summary
	observers []Observer
	seq       int64
}

func (a *aggregator) dispatch(e Event) {
	switch e.Kind {
	case EventVerdict:
		a.seq++
		e.Seq = a.seq
		a.summary.Add(e.Verdict)
	case EventModelSkipped:
		a.summary.Skip()
	}
	for _, o := range a.observers {
		o.Observe(e)
	}
}

// shardByBase groups leaves by base name, keeping the input order within
// and across shards.
func shardByBase(leaves []Leaf) [][]Leaf {
	index := make(map[string]int)
	var shards [][]Leaf
	for _, leaf := range leaves {
		i, ok := index[leaf.Base()]
		if !ok {
			i = len(shards)
			index[leaf.Base()] = i
			shards = append(shards, nil)
		}
		shards[i] = append(shards[i], leaf)
	}
	return shards
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
