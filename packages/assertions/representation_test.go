package assertions

import (
	"math/rand"
	"testing"

	"github.com/abdul-hamid-achik/graphassert/packages/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepresentation(t *testing.T) {
	tests := []struct {
		name     string
		entity   graph.Identified
		expected string
	}{
		{
			name:     "node",
			entity:   graph.Node(42).MustBuild(),
			expected: "NODE{id=42}",
		},
		{
			name:     "relationship",
			entity:   graph.Relationship(7).MustBuild(),
			expected: "RELATIONSHIP{id=7}",
		},
		{
			name:     "lowercase kind is uppercased",
			entity:   graph.NewBuilder("person").WithID(3).MustBuild(),
			expected: "PERSON{id=3}",
		},
		{
			name:     "zero id",
			entity:   graph.NewBuilder("TEST").WithID(0).MustBuild(),
			expected: "TEST{id=0}",
		},
		{
			name:     "large id",
			entity:   graph.Node(9223372036854775807).MustBuild(),
			expected: "NODE{id=9223372036854775807}",
		},
		{
			name:     "nil interface",
			entity:   nil,
			expected: "<nil>",
		},
		{
			name:     "typed nil",
			entity:   (*graph.Entity)(nil),
			expected: "<nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Representation(tt.entity))
		})
	}
}

func TestRepresentation_IgnoresProperties(t *testing.T) {
	plain := graph.Node(5).MustBuild()
	rich := graph.Node(5).
		WithProperty("name", "Alice").
		WithProperty("age", 30).
		MustBuild()

	assert.Equal(t, Representation(plain), Representation(rich))
}

func TestRepresentation_Idempotent(t *testing.T) {
	e := graph.Node(11).WithProperty("k", "v").MustBuild()
	assert.Equal(t, Representation(e), Representation(e))
}

func TestRepresentations_SortedByIdentity(t *testing.T) {
	var entities []graph.Identified
	for _, id := range []int64{3, 9, 0, 5, 1, 8, 2, 7, 4, 6} {
		entities = append(entities, graph.NewBuilder("TEST").WithID(id).MustBuild())
	}

	expected := []string{
		"TEST{id=0}", "TEST{id=1}", "TEST{id=2}", "TEST{id=3}", "TEST{id=4}",
		"TEST{id=5}", "TEST{id=6}", "TEST{id=7}", "TEST{id=8}", "TEST{id=9}",
	}
	assert.Equal(t, expected, Representations(entities...))
}

func TestRepresentations_NumericNotLexicalOrder(t *testing.T) {
	got := Representations(
		graph.Node(10).MustBuild(),
		graph.Node(9).MustBuild(),
		graph.Node(100).MustBuild(),
	)
	assert.Equal(t, []string{"NODE{id=9}", "NODE{id=10}", "NODE{id=100}"}, got)
}

func TestRepresentations_OrderIndependent(t *testing.T) {
	var entities []graph.Identified
	for id := int64(0); id < 50; id++ {
		entities = append(entities, graph.Node(id*3).MustBuild())
	}
	want := Representations(entities...)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]graph.Identified(nil), entities...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		require.Equal(t, want, Representations(shuffled...))
	}
}

func TestRepresentations_LengthAndNoDedup(t *testing.T) {
	a := graph.Node(1).MustBuild()
	got := Representations(a, a, graph.Node(0).MustBuild())

	assert.Len(t, got, 3)
	assert.Equal(t, []string{"NODE{id=0}", "NODE{id=1}", "NODE{id=1}"}, got)
}

func TestRepresentations_TiesKeepInputOrder(t *testing.T) {
	got := Representations(
		graph.Relationship(1).MustBuild(),
		graph.Node(1).MustBuild(),
		graph.Node(0).MustBuild(),
	)
	assert.Equal(t, []string{"NODE{id=0}", "RELATIONSHIP{id=1}", "NODE{id=1}"}, got)
}

func TestRepresentations_DoesNotReorderInput(t *testing.T) {
	input := []graph.Identified{graph.Node(2).MustBuild(), graph.Node(1).MustBuild()}
	Representations(input...)
	assert.Equal(t, int64(2), input[0].ID())
}

func TestRepresentations_NilFirst(t *testing.T) {
	got := Representations(graph.Node(1).MustBuild(), nil)
	assert.Equal(t, []string{"<nil>", "NODE{id=1}"}, got)
}

func TestRepresentations_Empty(t *testing.T) {
	assert.Empty(t, Representations())
}

func TestRepresentationsOf(t *testing.T) {
	nodes := []*graph.Entity{graph.Node(2).MustBuild(), graph.Node(1).MustBuild()}
	assert.Equal(t, []string{"NODE{id=1}", "NODE{id=2}"}, RepresentationsOf(nodes))
}
