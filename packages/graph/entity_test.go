package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	e, err := NewBuilder(KindNode).
		WithID(42).
		WithProperty("name", "Alice").
		WithProperties(map[string]any{"age": 30}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, KindNode, e.Kind())
	assert.Equal(t, int64(42), e.ID())
	assert.Equal(t, 2, e.PropertyCount())

	name, ok := e.Property("name")
	assert.True(t, ok)
	assert.Equal(t, "Alice", name)
	assert.True(t, e.HasProperty("age"))
	assert.False(t, e.HasProperty("email"))
}

func TestBuilder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		builder *Builder
		wantErr error
	}{
		{
			name:    "missing kind",
			builder: NewBuilder("").WithID(1),
			wantErr: ErrMissingKind,
		},
		{
			name:    "missing id",
			builder: NewBuilder(KindNode),
			wantErr: ErrMissingID,
		},
		{
			name:    "negative id",
			builder: Node(-1),
			wantErr: ErrInvalidID,
		},
		{
			name:    "empty property key",
			builder: Node(1).WithProperty("", "x"),
			wantErr: ErrEmptyPropertyKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBuilder_ZeroIDIsValid(t *testing.T) {
	e, err := Node(0).Build()
	require.NoError(t, err)
	assert.Equal(t, int64(0), e.ID())
}

func TestEntity_Immutable(t *testing.T) {
	b := Node(7).WithProperty("name", "Bob")
	e := b.MustBuild()

	// Mutating the builder after Build must not leak into the entity.
	b.WithProperty("name", "Carol")
	v, _ := e.Property("name")
	assert.Equal(t, "Bob", v)

	// Neither must mutating the returned properties map.
	props := e.Properties()
	props["name"] = "Dave"
	v, _ = e.Property("name")
	assert.Equal(t, "Bob", v)
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewBuilder(KindNode).MustBuild()
	})
}

func TestShorthandBuilders(t *testing.T) {
	assert.Equal(t, KindNode, Node(1).MustBuild().Kind())
	assert.Equal(t, KindRelationship, Relationship(1).MustBuild().Kind())
	assert.Equal(t, "NODE", KindNode.String())
}
