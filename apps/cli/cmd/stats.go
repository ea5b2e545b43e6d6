package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/graphassert/packages/fixture"
	"github.com/abdul-hamid-achik/graphassert/packages/output"
	"github.com/spf13/cobra"
)

func newStatsCmd(flags *globalFlags) *cobra.Command {
	var (
		expectUpdates   bool
		expectNoUpdates bool
	)

	cmd := &cobra.Command{
		Use:   "stats <file|directory>",
		Short: "Apply fixtures to a graph store and check their query statistics",
		Long: `Seed a graph store with each fixture's nodes, run its steps and compare
the accumulated query statistics with the fixture's expect block.

Examples:
  graphassert stats graph.yaml
  graphassert stats ./fixtures/ --db sqlite://graph.db
  graphassert stats import.yaml --expect-updates`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if expectUpdates && expectNoUpdates {
				return withExitCode(ExitUsageError, fmt.Errorf("--expect-updates and --expect-no-updates are mutually exclusive"))
			}
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
			failed := false
			for _, file := range files {
				f, err := fixture.Load(file)
				if err != nil {
					return withExitCode(ExitParseError, err)
				}
				switch {
				case expectUpdates:
					f.Expect.Updates = &expectUpdates
				case expectNoUpdates:
					no := false
					f.Expect.Updates = &no
				}

				report, err := runFixture(cmd, s, file, f)
				if err != nil {
					formatter.FormatError(err)
					_ = formatter.Flush()
					return withExitCode(ExitStoreError, err)
				}
				formatter.FormatReport(report)
				if !report.Passed() {
					failed = true
				}
			}

			if err := formatter.Flush(); err != nil {
				return err
			}
			if failed {
				return withExitCode(ExitTestFailure, fmt.Errorf("query statistics did not match expectations"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&expectUpdates, "expect-updates", false, "Require the steps to report updates")
	cmd.Flags().BoolVar(&expectNoUpdates, "expect-no-updates", false, "Require the steps to report no updates")
	return cmd
}

// runFixture applies one fixture to an emptied store. File databases are
// shared across fixtures and runs, so whatever an earlier fixture left behind
// is cleared first.
func runFixture(cmd *cobra.Command, s *settings, file string, f *fixture.Fixture) (*output.Report, error) {
	ctx := cmd.Context()
	st, err := s.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if err := st.Reset(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	total, err := f.Apply(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	s.logger.Debug("fixture applied", "file", file, "steps", len(f.Steps), "stats", total.String())

	return &output.Report{
		File:       file,
		Statistics: total,
		Results:    f.Expect.Evaluate(total),
	}, nil
}
