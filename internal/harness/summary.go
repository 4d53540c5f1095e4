package harness

// CheckTally counts verdicts for one check.
type CheckTally struct {
	Check  string
	Total  int
	Passed int
}

// PassRate returns Passed/Total, or 0 when nothing ran.
func (t CheckTally) PassRate() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Passed) / float64(t.Total)
}

// Summary accumulates verdicts into totals. It is owned by the Runner's
// aggregating goroutine and is not safe for concurrent use.
type Summary struct {
	Total  int
	Passed int
	Failed int

	// Errors counts failed runs caused by the harness environment
	// (missing check script, spawn failure). Always <= Failed.
	Errors int

	// Skipped counts leaf/model pairs without an artifact. They are not
	// part of Total.
	Skipped int

	// ByCheck holds per-check tallies in first-seen order.
	ByCheck []CheckTally

	checkIndex map[string]int
}

// NewSummary returns an empty Summary.
func NewSummary() *Summary {
	return &Summary{checkIndex: make(map[string]int)}
}

// Add folds one verdict into the totals.
func (s *Summary) Add(v Verdict) {
	if s.checkIndex == nil {
		s.checkIndex = make(map[string]int)
	}

	s.Total++
	if v.Passed() {
		s.Passed++
	} else {
		s.Failed++
		if v.Outcome.IsInfraError() {
			s.Errors++
		}
	}

	i, ok := s.checkIndex[v.Run.Check.Name]
	if !ok {
		i = len(s.ByCheck)
		s.checkIndex[v.Run.Check.Name] = i
		s.ByCheck = append(s.ByCheck, CheckTally{Check: v.Run.Check.Name})
	}
	s.ByCheck[i].Total++
	if v.Passed() {
		s.ByCheck[i].Passed++
	}
}

// Skip records a leaf/model pair that had no artifact.
func (s *Summary) Skip() {
	s.Skipped++
}

// OK reports whether at least one run was attempted and none failed.
func (s *Summary) OK() bool {
	return s.Failed == 0 && s.Total > 0
}

// ExitCode maps the summary to the process exit status.
func (s *Summary) ExitCode() int {
	if s.OK() {
		return 0
	}
	return 1
}
