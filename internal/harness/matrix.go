package harness

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed matrix.yaml
var defaultMatrixYAML []byte

// Matrix is the fixed, ordered set of models and checks graded on every
// leaf, plus how checks are staged and invoked.
type Matrix struct {
	// Models are the artifact owners, in grading order.
	Models []string `yaml:"models"`

	// ArtifactExt is appended to a model name to form its artifact file.
	ArtifactExt string `yaml:"artifact_ext"`

	// StagedName is the canonical base name a check script is copied to
	// inside the leaf. The script's own extension is appended.
	StagedName string `yaml:"staged_name"`

	// Checks run against every present artifact, in order.
	Checks []CheckCase `yaml:"checks"`

	// Interpreters maps a script extension to the command prefix that
	// runs it. Extensions without an entry are executed directly.
	Interpreters map[string][]string `yaml:"interpreters"`
}

// DefaultMatrix returns the built-in matrix.
func DefaultMatrix() *Matrix {
	m, err := LoadMatrix(bytes.NewReader(defaultMatrixYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded matrix.yaml is invalid: %v", err))
	}
	return m
}

// LoadMatrix decodes and validates a matrix document. Unknown fields are
// rejected so that typos surface instead of silently dropping a check.
func LoadMatrix(r io.Reader) (*Matrix, error) {
	var m Matrix
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse matrix: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matrix: %w", err)
	}
	return &m, nil
}

// Validate checks that the matrix is usable.
func (m *Matrix) Validate() error {
	if len(m.Models) == 0 {
		return fmt.Errorf("models list is required and must be non-empty")
	}
	if len(m.Checks) == 0 {
		return fmt.Errorf("checks list is required and must be non-empty")
	}
	if m.StagedName == "" {
		return fmt.Errorf("staged_name is required")
	}
	if strings.ContainsRune(m.StagedName, filepath.Separator) {
		return fmt.Errorf("staged_name %q must be a bare file name", m.StagedName)
	}

	seenModels := make(map[string]bool, len(m.Models))
	for _, model := range m.Models {
		if model == "" || strings.ContainsRune(model, filepath.Separator) {
			return fmt.Errorf("invalid model name %q", model)
		}
		if seenModels[model] {
			return fmt.Errorf("duplicate model %q", model)
		}
		seenModels[model] = true
	}

	seenChecks := make(map[string]bool, len(m.Checks))
	for i, c := range m.Checks {
		if c.Name == "" {
			return fmt.Errorf("check %d: name is required", i)
		}
		if c.Script == "" {
			return fmt.Errorf("check %q: script is required", c.Name)
		}
		if filepath.IsAbs(c.Script) {
			return fmt.Errorf("check %q: script must be relative", c.Name)
		}
		if seenChecks[c.Name] {
			return fmt.Errorf("duplicate check %q", c.Name)
		}
		seenChecks[c.Name] = true

		staged := m.StagedFile(c)
		for _, model := range m.Models {
			if staged == model+m.ArtifactExt {
				return fmt.Errorf("check %q: staged file %q would replace the %s artifact", c.Name, staged, model)
			}
		}
	}
	return nil
}

// ArtifactPath returns where model's artifact is expected inside leaf.
func (m *Matrix) ArtifactPath(leaf Leaf, model string) string {
	return filepath.Join(leaf.Path, model+m.ArtifactExt)
}

// StagedFile returns the file name a check is staged under.
func (m *Matrix) StagedFile(c CheckCase) string {
	return m.StagedName + c.Ext()
}

// Command returns the argv that runs a staged check for model, relative to
// the leaf directory.
func (m *Matrix) Command(c CheckCase, model string) []string {
	staged := "." + string(filepath.Separator) + m.StagedFile(c)
	prefix := m.Interpreters[c.Ext()]
	argv := make([]string, 0, len(prefix)+2)
	argv = append(argv, prefix...)
	return append(argv, staged, model)
}
