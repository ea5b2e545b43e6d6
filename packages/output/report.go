package output

import (
	"io"

	"github.com/abdul-hamid-achik/graphassert/packages/assertions"
	"github.com/abdul-hamid-achik/graphassert/packages/stats"
)

// Report is what a CLI command produces for one fixture file.
type Report struct {
	File            string
	Representations []string
	Statistics      *stats.QueryStatistics
	Results         []*assertions.Result
}

// Passed reports whether every result in the report passed.
func (r *Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// Formatter renders reports.
type Formatter interface {
	FormatReport(r *Report)
	FormatError(err error)
	// Flush writes anything the formatter has accumulated.
	Flush() error
}

// New returns the formatter registered under name, falling back to console.
func New(name string, w io.Writer, verbose, noColor bool) Formatter {
	switch name {
	case "json":
		return NewJSONFormatter(JSONWithWriter(w))
	default:
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor))
	}
}
