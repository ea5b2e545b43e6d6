package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const exampleFixture = `# Seed nodes, mutation steps and the query statistics they must produce.
nodes:
  - kind: PERSON
    id: 1
    properties:
      name: Alice
  - kind: COMPANY
    id: 2
    properties:
      name: Acme

steps:
  - op: set_property
    node: 1
    key: email
    value: alice@example.com
  - op: add_label
    node: 1
    label: Employee
  - op: create_relationship
    type: WORKS_AT
    from: 1
    to: 2
  - op: create_constraint
    kind: PERSON
    property: email

expect:
  updates: true
  counters:
    properties_set: 1
    labels_added: 1
    relationships_created: 1
    constraints_added: 1
`

func newInitCmd(flags *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a config file and an example fixture",
		Long: `Initialize a graphassert project in the given directory (default: the
current directory).

This creates:
  - .graphassert.json - Configuration, including any --db and --format given
  - example.yaml      - Example fixture

Examples:
  graphassert init
  graphassert init ./fixtures --db sqlite://graph.db
  graphassert init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			configFile := filepath.Join(dir, ".graphassert.json")
			exampleFile := filepath.Join(dir, "example.yaml")

			if !force {
				for _, f := range []string{configFile, exampleFile} {
					if _, err := os.Stat(f); err == nil {
						return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
					}
				}
			}

			if err := os.MkdirAll(dir, 0755); err != nil {
				return withExitCode(ExitConfigError, fmt.Errorf("failed to create %s: %w", dir, err))
			}
			if err := s.config.SaveConfig(configFile); err != nil {
				return withExitCode(ExitConfigError, fmt.Errorf("failed to create config file: %w", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)
			if s.config.IsDefault() {
				fmt.Fprintln(cmd.OutOrStdout(), "  (default settings)")
			}

			if err := os.WriteFile(exampleFile, []byte(exampleFixture), 0644); err != nil {
				return withExitCode(ExitConfigError, fmt.Errorf("failed to create example fixture: %w", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

			fmt.Fprintf(cmd.OutOrStdout(), "\nRun: graphassert stats %s\n", exampleFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	return cmd
}
