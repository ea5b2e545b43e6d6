package output

import (
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/graphassert/packages/stats"
	"github.com/fatih/color"
)

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case []string:
		return fmt.Sprintf("[list with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatReport(r *Report) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	if r.File != "" {
		fmt.Fprintf(f.writer, "\n%s\n\n", bold(r.File))
	}

	for _, repr := range r.Representations {
		fmt.Fprintf(f.writer, "  %s\n", repr)
	}

	if r.Statistics != nil {
		fmt.Fprintf(f.writer, "  Statistics: %s\n", cyan(r.Statistics.String()))
		if f.verbose {
			counters := r.Statistics.Counters()
			for _, name := range stats.CounterNames {
				fmt.Fprintf(f.writer, "    %s = %d\n", name, counters[name])
			}
		}
	}

	var passed, failed int
	for _, res := range r.Results {
		if res.Passed {
			passed++
			if f.verbose {
				fmt.Fprintf(f.writer, "  %s %s\n", green("✓"), res.Operator)
			}
			continue
		}
		failed++
		fmt.Fprintf(f.writer, "  %s %s\n", red("✗"), res.Operator)
		fmt.Fprintf(f.writer, "      Expected: %s\n", formatValue(res.Expected, 100))
		fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(res.Actual, 100))
		if res.Message != "" {
			fmt.Fprintf(f.writer, "      %s\n", res.Message)
		}
	}

	if len(r.Results) > 0 {
		fmt.Fprintf(f.writer, "\nChecks: ")
		if passed > 0 {
			fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", passed)))
		}
		if failed > 0 {
			fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", failed)))
		}
		fmt.Fprintf(f.writer, "%d total\n", passed+failed)
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

// Flush is a no-op; console output is written as reports arrive.
func (f *ConsoleFormatter) Flush() error {
	return nil
}
