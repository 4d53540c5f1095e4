package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_DerivesPaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dry_run_output"), 0o755))

	cfg, err := Resolve(root, nil)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, filepath.Join(root, "tests"), cfg.ChecksDir)
	assert.Equal(t, filepath.Join(root, "dry_run_output"), cfg.GeneratedDir)
	assert.Equal(t, filepath.Join(root, "dry_run_output", "code"), cfg.CodeDir)
	assert.Equal(t, filepath.Join(root, "dry_run_output", "test_results"), cfg.ResultsDir)
	assert.Empty(t, cfg.Filter)
	assert.DirExists(t, cfg.ResultsDir)
}

func TestResolve_Filter(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dry_run_output"), 0o755))

	cfg, err := Resolve(root, []string{"calculator"})
	require.NoError(t, err)
	assert.Equal(t, "calculator", cfg.Filter)
}

func TestResolve_Idempotent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dry_run_output", "test_results"), 0o755))
	marker := filepath.Join(root, "dry_run_output", "test_results", "old.txt")
	require.NoError(t, os.WriteFile(marker, []byte("keep"), 0o644))

	for i := 0; i < 3; i++ {
		_, err := Resolve(root, nil)
		require.NoError(t, err)
	}
	assert.FileExists(t, marker)
}

func TestResolve_MissingArtifactRoot(t *testing.T) {
	root := t.TempDir()

	cfg, err := Resolve(root, nil)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, ErrArtifactRootMissing))
	assert.Contains(t, err.Error(), filepath.Join(root, "dry_run_output"))
	assert.Contains(t, err.Error(), "dry-run generation")

	// Nothing is created on the failure path.
	assert.NoDirExists(t, filepath.Join(root, "dry_run_output"))
}

func TestResolve_ArtifactRootIsFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "dry_run_output"), nil, 0o644))

	_, err := Resolve(root, nil)
	assert.ErrorIs(t, err, ErrArtifactRootMissing)
}

func TestResolve_TooManyArgs(t *testing.T) {
	_, err := Resolve(t.TempDir(), []string{"calculator", "todo_list"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most one")
}

func TestRootOf(t *testing.T) {
	assert.Equal(t, filepath.Join("/opt", "codegrade"), rootOf(filepath.Join("/opt", "codegrade", "bin")))
	assert.Equal(t, filepath.Join("/opt", "codegrade"), rootOf(filepath.Join("/opt", "codegrade")))
}

func TestInstallRoot(t *testing.T) {
	root, err := InstallRoot()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(root))
}
