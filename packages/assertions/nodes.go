package assertions

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abdul-hamid-achik/graphassert/packages/graph"
	"github.com/stretchr/testify/assert"
)

// NodesAssert checks a collection of entities. Membership is compared on
// representations, so only kind and identity matter.
type NodesAssert struct {
	chain
	entities        []*graph.Entity
	representations []string
}

// ThatNodes starts an assertion chain on es.
func ThatNodes(t assert.TestingT, es []*graph.Entity) *NodesAssert {
	reprs := RepresentationsOf(es)
	return &NodesAssert{
		chain:           newChain(t, "["+strings.Join(reprs, ", ")+"]"),
		entities:        es,
		representations: reprs,
	}
}

// As overrides the failure message of the checks that follow.
func (a *NodesAssert) As(format string, args ...any) *NodesAssert {
	a.as(format, args...)
	return a
}

func (a *NodesAssert) HasSize(n int) *NodesAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	if len(a.entities) != n {
		a.fail("has size", n, len(a.entities), "expected %d entities, got %d: %s", n, len(a.entities), a.subject)
		return a
	}
	a.pass("has size", n, n)
	return a
}

func (a *NodesAssert) IsEmpty() *NodesAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	if len(a.entities) != 0 {
		a.fail("is empty", 0, len(a.entities), "expected no entities, got %s", a.subject)
		return a
	}
	a.pass("is empty", 0, 0)
	return a
}

// ContainsExactly fails unless the collection holds exactly the expected
// entities, in any order.
func (a *NodesAssert) ContainsExactly(expected ...graph.Identified) *NodesAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	return a.containsExactly("contains exactly", Representations(expected...))
}

// ContainsExactlyIDs is ContainsExactly for entities of one kind given by id.
func (a *NodesAssert) ContainsExactlyIDs(kind graph.Kind, ids ...int64) *NodesAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	expected := make([]graph.Identified, len(ids))
	for i, id := range ids {
		expected[i] = identity{kind: kind, id: id}
	}
	return a.containsExactly("contains exactly ids", Representations(expected...))
}

func (a *NodesAssert) Contains(e graph.Identified) *NodesAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	want := Representation(e)
	if !slices.Contains(a.representations, want) {
		a.fail("contains", want, a.representations, "expected %s to contain %s", a.subject, want)
		return a
	}
	a.pass("contains", want, a.representations)
	return a
}

func (a *NodesAssert) DoesNotContain(e graph.Identified) *NodesAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	unwanted := Representation(e)
	if slices.Contains(a.representations, unwanted) {
		a.fail("does not contain", unwanted, a.representations, "expected %s not to contain %s", a.subject, unwanted)
		return a
	}
	a.pass("does not contain", unwanted, a.representations)
	return a
}

func (a *NodesAssert) containsExactly(op string, want []string) *NodesAssert {
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	missing, unexpected := diff(want, a.representations)
	if len(missing) == 0 && len(unexpected) == 0 {
		a.pass(op, want, a.representations)
		return a
	}

	var b strings.Builder
	fmt.Fprintf(&b, "expected entities to be exactly [%s], got %s", strings.Join(want, ", "), a.subject)
	if len(missing) > 0 {
		fmt.Fprintf(&b, "\nmissing: [%s]", strings.Join(missing, ", "))
	}
	if len(unexpected) > 0 {
		fmt.Fprintf(&b, "\nunexpected: [%s]", strings.Join(unexpected, ", "))
	}
	a.fail(op, want, a.representations, "%s", b.String())
	return a
}

// diff returns the elements of want absent from got and vice versa, counting
// duplicates.
func diff(want, got []string) (missing, unexpected []string) {
	counts := make(map[string]int, len(got))
	for _, g := range got {
		counts[g]++
	}
	for _, w := range want {
		if counts[w] > 0 {
			counts[w]--
			continue
		}
		missing = append(missing, w)
	}
	for _, g := range got {
		if counts[g] > 0 {
			counts[g]--
			unexpected = append(unexpected, g)
		}
	}
	return missing, unexpected
}
