package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/codegrade/internal/config"
	"github.com/roach88/codegrade/internal/harness"
)

// RootOptions holds the collaborators of the root command. Tests replace
// them; NewRootCommand uses the real ones.
type RootOptions struct {
	// InstallRoot locates the directory tests/ and dry_run_output/ live in.
	InstallRoot func() (string, error)

	// Matrix lists the models and checks to grade.
	Matrix *harness.Matrix

	// IsTerminal reports whether progress may be drawn inline on w.
	IsTerminal func(w io.Writer) bool
}

// NewRootCommand creates the codegrade command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{
		InstallRoot: config.InstallRoot,
		Matrix:      harness.DefaultMatrix(),
		IsTerminal:  isTerminal,
	})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "codegrade [challenge]",
		Short: "Grade generated code artifacts against quality checks",
		Long: `Run every registered quality check against every model's generated
artifact, for each iteration under dry_run_output/code.

Check scripts are read from tests/<challenge>/ next to the installation.
The output of each run is written to
dry_run_output/test_results/<iteration>_<check>_<model>.txt.

Exits 0 only if at least one check ran and every check passed.

Example:
  codegrade
  codegrade calculator`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return grade(cmd, opts, args)
		},
	}
}
