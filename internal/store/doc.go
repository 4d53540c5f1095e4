// Package store provides the SQLite-backed run ledger.
//
// Every grading invocation is recorded as a run; every counted verdict is
// recorded under its run with the sequence number the aggregator assigned.
// The ledger is append-only apart from FinishRun, which fills in a run's
// totals once.
//
// # Ordering
//
// Verdicts are always read back ORDER BY seq ASC. Sequence numbers are the
// logical clock of a run; wall-clock timestamps are informational only.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: A verdict must belong to a known run
package store
