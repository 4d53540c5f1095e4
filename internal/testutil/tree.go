package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Check script bodies for sh-interpreted fixtures.
const (
	// PassScript exits 0.
	PassScript = "#!/bin/sh\necho ok\nexit 0\n"

	// FailScript writes to stderr and exits 3.
	FailScript = "#!/bin/sh\necho broken >&2\nexit 3\n"

	// ArtifactScript passes only if the artifact named by its argument is
	// next to it, proving the working directory is the leaf.
	ArtifactScript = "#!/bin/sh\necho \"model=$1\"\ntest -f \"$1.py\"\n"
)

// Tree is a throwaway install root with the directory layout the grader
// expects: tests/<challenge>/ for checks and dry_run_output/code/ for
// generated artifacts.
type Tree struct {
	Root string
}

// NewTree creates an empty tree under t.TempDir(), including the
// generated-artifact root.
func NewTree(t testing.TB) *Tree {
	t.Helper()
	tr := &Tree{Root: t.TempDir()}
	require.NoError(t, os.MkdirAll(tr.CodeDir(), 0o755))
	require.NoError(t, os.MkdirAll(tr.ChecksDir(), 0o755))
	return tr
}

// ChecksDir returns <root>/tests.
func (tr *Tree) ChecksDir() string {
	return filepath.Join(tr.Root, "tests")
}

// GeneratedDir returns <root>/dry_run_output.
func (tr *Tree) GeneratedDir() string {
	return filepath.Join(tr.Root, "dry_run_output")
}

// CodeDir returns <root>/dry_run_output/code.
func (tr *Tree) CodeDir() string {
	return filepath.Join(tr.GeneratedDir(), "code")
}

// ResultsDir returns <root>/dry_run_output/test_results. It is not created.
func (tr *Tree) ResultsDir() string {
	return filepath.Join(tr.GeneratedDir(), "test_results")
}

// AddLeaf creates code/<challenge>/<variant>/<iteration>/ holding one
// <model>.py artifact per model and returns the leaf path.
func (tr *Tree) AddLeaf(t testing.TB, challenge, variant, iteration string, models ...string) string {
	t.Helper()
	leaf := filepath.Join(tr.CodeDir(), challenge, variant, iteration)
	require.NoError(t, os.MkdirAll(leaf, 0o755))
	for _, m := range models {
		path := filepath.Join(leaf, m+".py")
		require.NoError(t, os.WriteFile(path, []byte("print('"+m+"')\n"), 0o644))
	}
	return leaf
}

// AddCheck writes an executable check script to tests/<challenge>/<script>
// and returns its path.
func (tr *Tree) AddCheck(t testing.TB, challenge, script, body string) string {
	t.Helper()
	dir := filepath.Join(tr.ChecksDir(), challenge)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, script)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

// MkdirResults creates the results directory and returns it.
func (tr *Tree) MkdirResults(t testing.TB) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(tr.ResultsDir(), 0o755))
	return tr.ResultsDir()
}

// ListDir returns the names in dir, failing the test on error.
func ListDir(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
