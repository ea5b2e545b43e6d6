package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/graphassert/packages/fixture"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file|directory>",
		Short: "Validate fixture files without applying them",
		Long: `Validate fixture files for syntax errors, unknown operations and
unknown counter names without touching a graph store.

Examples:
  graphassert validate graph.yaml
  graphassert validate ./fixtures/`,
		Args: cobra.MinimumNArgs(1),
		RunE: validateCommand,
	}
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	if len(files) == 0 {
		return withExitCode(ExitUsageError, fmt.Errorf("no .yaml or .yml fixtures found"))
	}

	hasErrors := false
	for _, file := range files {
		_, err := fixture.Load(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
		}
	}

	if hasErrors {
		return withExitCode(ExitParseError, fmt.Errorf("validation failed"))
	}

	return nil
}
