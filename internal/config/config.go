// Package config resolves the grader's filesystem layout from its install
// location and validates it before any discovery happens.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Directory names under the install root.
const (
	ChecksDirName    = "tests"
	GeneratedDirName = "dry_run_output"
	CodeDirName      = "code"
	ResultsDirName   = "test_results"
)

// ErrArtifactRootMissing is matched by the error Resolve returns when the
// generated-artifact root does not exist.
var ErrArtifactRootMissing = errors.New("generated artifact root not found")

// ArtifactRootError names the missing generated-artifact root.
type ArtifactRootError struct {
	Path string
}

func (e *ArtifactRootError) Error() string {
	return fmt.Sprintf("generated artifact root not found: %s (run a dry-run generation first to produce it)", e.Path)
}

// Is makes errors.Is(err, ErrArtifactRootMissing) succeed.
func (e *ArtifactRootError) Is(target error) bool {
	return target == ErrArtifactRootMissing
}

// Config is the resolved invocation.
type Config struct {
	// Root is the install root every other path derives from.
	Root string

	// ChecksDir holds one directory of check scripts per challenge.
	ChecksDir string

	// GeneratedDir is the generated-artifact root.
	GeneratedDir string

	// CodeDir is where discovery starts.
	CodeDir string

	// ResultsDir receives result files, the ledger and metrics.
	ResultsDir string

	// Filter restricts grading to one challenge. Empty means all.
	Filter string
}

// Resolve derives the configuration from the install root and the
// positional arguments (at most one: the challenge filter).
//
// It fails if the generated-artifact root is missing, and otherwise makes
// sure the results directory exists. Resolve is idempotent.
func Resolve(root string, args []string) (*Config, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("expected at most one challenge name, got %d arguments", len(args))
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve install root: %w", err)
	}

	cfg := &Config{
		Root:         abs,
		ChecksDir:    filepath.Join(abs, ChecksDirName),
		GeneratedDir: filepath.Join(abs, GeneratedDirName),
	}
	cfg.CodeDir = filepath.Join(cfg.GeneratedDir, CodeDirName)
	cfg.ResultsDir = filepath.Join(cfg.GeneratedDir, ResultsDirName)
	if len(args) == 1 {
		cfg.Filter = args[0]
	}

	info, err := os.Stat(cfg.GeneratedDir)
	if err != nil || !info.IsDir() {
		return nil, &ArtifactRootError{Path: cfg.GeneratedDir}
	}

	if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return cfg, nil
}

// InstallRoot returns the directory the running executable is installed
// in, with symlinks resolved. An executable inside a "bin" directory is
// taken to be installed in that directory's parent.
func InstallRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable path: %w", err)
	}
	return rootOf(filepath.Dir(exe)), nil
}

func rootOf(dir string) string {
	if filepath.Base(dir) == "bin" {
		return filepath.Dir(dir)
	}
	return dir
}
