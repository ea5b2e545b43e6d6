package assertions

import (
	"fmt"

	"github.com/stretchr/testify/assert"
)

// Result records the outcome of a single check in an assertion chain.
type Result struct {
	Passed   bool
	Message  string
	Expected any
	Actual   any
	Subject  string
	Operator string
}

type tHelper interface {
	Helper()
}

// chain is embedded by every fluent assertion type. It reports failures
// through testify so the output matches the rest of a test suite.
type chain struct {
	t        assert.TestingT
	subject  string
	override string
	results  []*Result
}

func newChain(t assert.TestingT, subject string) chain {
	return chain{t: t, subject: subject}
}

func (c *chain) as(format string, args ...any) {
	c.override = fmt.Sprintf(format, args...)
}

func (c *chain) record(r *Result) bool {
	if h, ok := c.t.(tHelper); ok {
		h.Helper()
	}
	r.Subject = c.subject
	c.results = append(c.results, r)
	if r.Passed {
		return true
	}

	msg := r.Message
	if c.override != "" {
		msg = c.override
	}
	return assert.Fail(c.t, msg, fmt.Sprintf("%s %s", r.Subject, r.Operator))
}

func (c *chain) pass(operator string, expected, actual any) bool {
	if h, ok := c.t.(tHelper); ok {
		h.Helper()
	}
	return c.record(&Result{
		Passed:   true,
		Operator: operator,
		Expected: expected,
		Actual:   actual,
	})
}

func (c *chain) fail(operator string, expected, actual any, format string, args ...any) bool {
	if h, ok := c.t.(tHelper); ok {
		h.Helper()
	}
	return c.record(&Result{
		Passed:   false,
		Operator: operator,
		Expected: expected,
		Actual:   actual,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Passed reports whether every check so far succeeded.
func (c *chain) Passed() bool {
	for _, r := range c.results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// Results returns the checks performed so far, in order.
func (c *chain) Results() []*Result {
	out := make([]*Result, len(c.results))
	copy(out, c.results)
	return out
}
