package assertions

import (
	"cmp"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/graphassert/packages/graph"
)

const nilRepresentation = "<nil>"

// Representation returns the diagnostic form of an entity, e.g. "NODE{id=42}".
// Only the kind and identity contribute; properties never do.
func Representation(e graph.Identified) string {
	if isNil(e) {
		return nilRepresentation
	}
	return strings.ToUpper(e.Kind().String()) + "{id=" + strconv.FormatInt(e.ID(), 10) + "}"
}

// Representations returns one representation per entity, ordered by ascending
// identity regardless of input order. Entities sharing an identity keep their
// input order; nil entities sort first.
func Representations(entities ...graph.Identified) []string {
	sorted := slices.Clone(entities)
	slices.SortStableFunc(sorted, compareIdentity)

	out := make([]string, len(sorted))
	for i, e := range sorted {
		out[i] = Representation(e)
	}
	return out
}

// RepresentationsOf is Representations for typed slices such as []*graph.Entity.
func RepresentationsOf[E graph.Identified](entities []E) []string {
	ids := make([]graph.Identified, len(entities))
	for i, e := range entities {
		ids[i] = e
	}
	return Representations(ids...)
}

func compareIdentity(a, b graph.Identified) int {
	aNil, bNil := isNil(a), isNil(b)
	switch {
	case aNil && bNil:
		return 0
	case aNil:
		return -1
	case bNil:
		return 1
	}
	return cmp.Compare(a.ID(), b.ID())
}

// isNil also catches typed nil pointers stored in the interface.
func isNil(e graph.Identified) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// identity is a bare kind/id pair for comparing against entities that were
// never built.
type identity struct {
	kind graph.Kind
	id   int64
}

func (i identity) Kind() graph.Kind { return i.kind }
func (i identity) ID() int64        { return i.id }
