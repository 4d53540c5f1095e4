// Package report renders grading progress and the final summary for humans.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/codegrade/internal/harness"
)

const rule = "=================================================="

// Live writes one line per event as the Runner progresses.
//
// In inline mode the check name is printed when a run starts and its
// marker is appended when the verdict arrives, so a slow check shows what
// is running. Otherwise the whole line is printed at the verdict.
//
// Live expects each leaf's events to arrive as one contiguous block, which
// the Runner guarantees in both sequential and pooled mode.
type Live struct {
	out    io.Writer
	inline bool
	plain  bool

	pass   lipgloss.Style
	fail   lipgloss.Style
	muted  lipgloss.Style
	header lipgloss.Style

	open bool // an inline line is waiting for its marker
}

// Option configures a Live reporter.
type Option func(*Live)

// WithInline enables in-place progress. Use it only on terminals.
func WithInline(inline bool) Option {
	return func(l *Live) {
		l.inline = inline
	}
}

// WithPlain disables all styling.
func WithPlain() Option {
	return func(l *Live) {
		l.plain = true
	}
}

// NewLive creates a reporter writing to w. Styles follow w's color
// capabilities.
func NewLive(w io.Writer, opts ...Option) *Live {
	r := lipgloss.NewRenderer(w)
	l := &Live{
		out:    w,
		pass:   r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		fail:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		muted:  r.NewStyle().Faint(true),
		header: r.NewStyle().Bold(true),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Live) style(s lipgloss.Style, text string) string {
	if l.plain {
		return text
	}
	return s.Render(text)
}

// Banner announces the artifact root and how many leaves were found.
func (l *Live) Banner(root string, leaves int) {
	fmt.Fprintf(l.out, "Grading artifacts under %s\n", root)
	noun := "leaves"
	if leaves == 1 {
		noun = "leaf"
	}
	fmt.Fprintf(l.out, "Found %d %s\n", leaves, noun)
}

// Observe implements harness.Observer.
func (l *Live) Observe(e harness.Event) {
	switch e.Kind {
	case harness.EventLeafStarted:
		fmt.Fprintf(l.out, "\n%s\n", l.style(l.header, "["+e.Leaf.String()+"]"))
	case harness.EventModelStarted:
		fmt.Fprintf(l.out, "  %s\n", e.Model)
	case harness.EventModelSkipped:
		fmt.Fprintf(l.out, "  %s\n", l.style(l.muted, e.Model+": no artifact, skipped"))
	case harness.EventRunStarted:
		if l.inline {
			fmt.Fprintf(l.out, "    %s ... ", e.Run.Check.Name)
			l.open = true
		}
	case harness.EventVerdict:
		if !l.open {
			fmt.Fprintf(l.out, "    %s ... ", e.Run.Check.Name)
		}
		l.open = false
		fmt.Fprintln(l.out, l.marker(e.Verdict))
	}
}

func (l *Live) marker(v harness.Verdict) string {
	if v.Passed() {
		return l.style(l.pass, "PASS")
	}
	m := l.style(l.fail, "FAIL")
	if v.Detail != "" {
		m += " " + l.style(l.muted, "("+v.Detail+")")
	}
	return m
}

// Summary prints the final totals, the per-check pass rates and where the
// result files are.
func (l *Live) Summary(s *harness.Summary, resultsDir string) {
	if l.open {
		// An interrupted inline run never got its marker.
		fmt.Fprintln(l.out)
		l.open = false
	}

	fmt.Fprintf(l.out, "\n%s\n%s\n%s\n", rule, l.style(l.header, "TEST SUMMARY"), rule)
	fmt.Fprintf(l.out, "Total tests: %d\n", s.Total)
	fmt.Fprintf(l.out, "Passed:      %s\n", l.count(l.pass, s.Passed))
	fmt.Fprintf(l.out, "Failed:      %s\n", l.count(l.fail, s.Failed))
	if s.Errors > 0 {
		fmt.Fprintf(l.out, "  infrastructure errors: %d\n", s.Errors)
	}
	if s.Skipped > 0 {
		fmt.Fprintf(l.out, "Skipped (no artifact): %d\n", s.Skipped)
	}

	if len(s.ByCheck) > 0 {
		width := 0
		for _, t := range s.ByCheck {
			width = max(width, lipgloss.Width(t.Check))
		}
		fmt.Fprintf(l.out, "\nBy check:\n")
		for _, t := range s.ByCheck {
			fmt.Fprintf(l.out, "  %s  %d/%d  %5.1f%%\n", padRight(t.Check, width), t.Passed, t.Total, t.PassRate()*100)
		}
	}

	fmt.Fprintf(l.out, "\nResults directory: %s\n", resultsDir)
}

func (l *Live) count(s lipgloss.Style, n int) string {
	text := fmt.Sprint(n)
	if n == 0 {
		return text
	}
	return l.style(s, text)
}

// padRight pads s to the given display width.
func padRight(s string, width int) string {
	vw := lipgloss.Width(s)
	if vw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-vw)
}
