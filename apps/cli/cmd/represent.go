package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/graphassert/packages/assertions"
	"github.com/abdul-hamid-achik/graphassert/packages/fixture"
	"github.com/abdul-hamid-achik/graphassert/packages/graph"
	"github.com/abdul-hamid-achik/graphassert/packages/output"
	"github.com/spf13/cobra"
)

func newRepresentCmd(flags *globalFlags) *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "represent <file|directory>",
		Short: "Print the representations of fixture entities",
		Long: `Print the representation of every node in the given fixtures,
sorted by identity, exactly as assertion failures show them.

Examples:
  graphassert represent graph.yaml
  graphassert represent ./fixtures/ --kind PERSON`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			files, err := collectFiles(args)
			if err != nil {
				return withExitCode(ExitUsageError, err)
			}
			if len(files) == 0 {
				return withExitCode(ExitUsageError, fmt.Errorf("no .yaml or .yml fixtures found"))
			}

			formatter := s.formatter(cmd.OutOrStdout())
			for _, file := range files {
				f, err := fixture.Load(file)
				if err != nil {
					return withExitCode(ExitParseError, err)
				}
				entities, err := f.Entities()
				if err != nil {
					return withExitCode(ExitParseError, err)
				}

				var selected []graph.Identified
				for _, e := range entities {
					if kindFlag == "" || e.Kind() == graph.Kind(kindFlag) {
						selected = append(selected, e)
					}
				}
				s.logger.Debug("fixture loaded", "file", file, "entities", len(entities), "selected", len(selected))

				formatter.FormatReport(&output.Report{
					File:            file,
					Representations: assertions.Representations(selected...),
				})
			}
			return formatter.Flush()
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "", "Only print entities of this kind")
	return cmd
}
