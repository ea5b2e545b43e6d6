package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/graphassert/packages/core/config"
	"github.com/abdul-hamid-achik/graphassert/packages/output"
	"github.com/abdul-hamid-achik/graphassert/packages/store"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configFile string
	database   string
	format     string
	verbose    bool
	noColor    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "graphassert",
		Short: "Fluent assertions for graph entities and query statistics.",
		Long: `graphassert checks graph fixtures from the command line: it prints
stable entity representations and verifies the query statistics a sequence
of graph mutations produces.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "Path to config file")
	pf.StringVar(&flags.database, "db", "", "Graph store connection string (sqlite://path or memory)")
	pf.StringVarP(&flags.format, "format", "f", "", "Output format (console, json)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose output")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newInitCmd(flags))
	rootCmd.AddCommand(newRepresentCmd(flags))
	rootCmd.AddCommand(newStatsCmd(flags))
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func Execute(v, bt string) {
	version = v
	buildTime = bt

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(ExitUsageError)
	}
}

// settings is the resolved configuration of a single command invocation.
type settings struct {
	config *config.Config
	logger *slog.Logger
}

// resolve loads the config file and applies explicitly set flags over it.
func (f *globalFlags) resolve(cmd *cobra.Command) (*settings, error) {
	fileConfig, err := config.LoadConfig(f.configFile)
	if err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("failed to load config: %w", err))
	}

	override := &config.Config{
		Database: f.database,
		Format:   f.format,
	}
	if cmd.Flags().Changed("verbose") {
		override.Verbose = config.BoolPtr(f.verbose)
	}
	if cmd.Flags().Changed("no-color") {
		override.NoColor = config.BoolPtr(f.noColor)
	}
	cfg := fileConfig.Merge(override)

	switch cfg.Format {
	case "", "console", "json":
	default:
		return nil, withExitCode(ExitUsageError, fmt.Errorf("unknown output format %q", cfg.Format))
	}

	level := slog.LevelWarn
	if cfg.GetVerbose() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return &settings{config: cfg, logger: logger}, nil
}

func (s *settings) formatter(w io.Writer) output.Formatter {
	return output.New(s.config.Format, w, s.config.GetVerbose(), s.config.GetNoColor())
}

func (s *settings) openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, s.config.Database,
		store.WithLogger(s.logger),
		store.WithQueryTimeout(time.Duration(s.config.QueryTimeout)*time.Millisecond),
	)
	if err != nil {
		return nil, withExitCode(ExitStoreError, err)
	}
	return st, nil
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isFixtureFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else {
			if isFixtureFile(arg) {
				files = append(files, arg)
			}
		}
	}

	return files, nil
}

func isFixtureFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}
