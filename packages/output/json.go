package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/graphassert/packages/stats"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary JSONSummary  `json:"summary"`
	Reports []JSONReport `json:"reports"`
	Errors  []string     `json:"errors,omitempty"`
	Time    string       `json:"time"`
}

// JSONSummary represents the check summary
type JSONSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// JSONReport represents a single fixture report
type JSONReport struct {
	File            string                 `json:"file,omitempty"`
	Passed          bool                   `json:"passed"`
	Representations []string               `json:"representations,omitempty"`
	Statistics      *stats.QueryStatistics `json:"statistics,omitempty"`
	ContainsUpdates *bool                  `json:"containsUpdates,omitempty"`
	Checks          []JSONCheck            `json:"checks,omitempty"`
}

// JSONCheck represents an assertion result
type JSONCheck struct {
	Subject  string `json:"subject"`
	Operator string `json:"operator"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message,omitempty"`
}

// JSONFormatter accumulates reports and writes them as one JSON document on Flush
type JSONFormatter struct {
	writer  io.Writer
	reports []JSONReport
	errors  []string
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		reports: make([]JSONReport, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatReport(r *Report) {
	report := JSONReport{
		File:            r.File,
		Passed:          r.Passed(),
		Representations: r.Representations,
		Statistics:      r.Statistics,
	}
	if r.Statistics != nil {
		updates := r.Statistics.ContainsUpdates()
		report.ContainsUpdates = &updates
	}
	for _, res := range r.Results {
		report.Checks = append(report.Checks, JSONCheck{
			Subject:  res.Subject,
			Operator: res.Operator,
			Expected: res.Expected,
			Actual:   res.Actual,
			Passed:   res.Passed,
			Message:  res.Message,
		})
	}
	f.reports = append(f.reports, report)
}

func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush() error {
	var summary JSONSummary
	for _, r := range f.reports {
		for _, c := range r.Checks {
			summary.Total++
			if c.Passed {
				summary.Passed++
			} else {
				summary.Failed++
			}
		}
	}

	output := JSONOutput{
		Summary: summary,
		Reports: f.reports,
		Errors:  f.errors,
		Time:    time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
