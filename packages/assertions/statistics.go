package assertions

import (
	"github.com/abdul-hamid-achik/graphassert/packages/stats"
	"github.com/stretchr/testify/assert"
)

// StatisticsAssert checks the counters of a query's statistics.
type StatisticsAssert struct {
	chain
	stats *stats.QueryStatistics
}

// ThatStatistics starts an assertion chain on s.
//
//	assertions.ThatStatistics(t, result).ContainsUpdates().HasNodesCreated(2)
func ThatStatistics(t assert.TestingT, s *stats.QueryStatistics) *StatisticsAssert {
	return &StatisticsAssert{
		chain: newChain(t, "query statistics "+s.String()),
		stats: s,
	}
}

// As overrides the failure message of the checks that follow.
func (a *StatisticsAssert) As(format string, args ...any) *StatisticsAssert {
	a.as(format, args...)
	return a
}

// ContainsUpdates fails unless at least one counter is non-zero.
func (a *StatisticsAssert) ContainsUpdates() *StatisticsAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	if !a.notNil("contains updates") {
		return a
	}
	if a.stats.ContainsUpdates() {
		a.pass("contains updates", true, true)
		return a
	}
	a.fail("contains updates", true, false, "expected query statistics to contain updates, but none were reported")
	return a
}

// ContainsNoUpdates fails if any counter is non-zero.
func (a *StatisticsAssert) ContainsNoUpdates() *StatisticsAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	if !a.notNil("contains no updates") {
		return a
	}
	if !a.stats.ContainsUpdates() {
		a.pass("contains no updates", false, false)
		return a
	}
	a.fail("contains no updates", false, true, "expected query statistics to contain no updates, got %s", a.stats)
	return a
}

func (a *StatisticsAssert) HasNodesCreated(n int) *StatisticsAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	return a.HasCounter(stats.NodesCreated, n)
}

func (a *StatisticsAssert) HasNodesDeleted(n int) *StatisticsAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	return a.HasCounter(stats.NodesDeleted, n)
}

func (a *StatisticsAssert) HasRelationshipsCreated(n int) *StatisticsAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	return a.HasCounter(stats.RelationshipsCreated, n)
}

func (a *StatisticsAssert) HasRelationshipsDeleted(n int) *StatisticsAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	return a.HasCounter(stats.RelationshipsDeleted, n)
}

func (a *StatisticsAssert) HasPropertiesSet(n int) *StatisticsAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	return a.HasCounter(stats.PropertiesSet, n)
}

func (a *StatisticsAssert) HasLabelsAdded(n int) *StatisticsAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	return a.HasCounter(stats.LabelsAdded, n)
}

func (a *StatisticsAssert) HasLabelsRemoved(n int) *StatisticsAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	return a.HasCounter(stats.LabelsRemoved, n)
}

// HasCounter fails unless the named counter equals n.
func (a *StatisticsAssert) HasCounter(name string, n int) *StatisticsAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	op := "has " + name
	if !a.notNil(op) {
		return a
	}
	actual, ok := a.stats.Counter(name)
	if !ok {
		a.fail(op, n, nil, "unknown query statistics counter %q", name)
		return a
	}
	if actual != n {
		a.fail(op, n, actual, "expected %s to be %d, got %d", name, n, actual)
		return a
	}
	a.pass(op, n, actual)
	return a
}

func (a *StatisticsAssert) notNil(op string) bool {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	if a.stats != nil {
		return true
	}
	a.fail(op, "query statistics", nil, "expected query statistics, got nil")
	return false
}
