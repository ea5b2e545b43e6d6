package store

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/graphassert/packages/assertions"
	"github.com/abdul-hamid-achik/graphassert/packages/graph"
	"github.com/abdul-hamid-achik/graphassert/packages/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "memory")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateNode(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	node, st, err := s.CreateNode(ctx, graph.KindNode, map[string]any{"name": "Alice", "age": 30})
	require.NoError(t, err)

	assertions.ThatStatistics(t, st).ContainsUpdates().HasNodesCreated(1).HasPropertiesSet(2)
	assertions.ThatNode(t, node).HasKind(graph.KindNode).HasProperty("name", "Alice")

	loaded, err := s.Node(ctx, node.ID())
	require.NoError(t, err)
	assertions.ThatNode(t, loaded).
		IsEqualTo(node).
		HasProperty("name", "Alice").
		HasProperty("age", 30)
}

func TestCreateNode_Validation(t *testing.T) {
	s := openStore(t)
	_, _, err := s.CreateNode(context.Background(), "", nil)
	assert.ErrorIs(t, err, graph.ErrMissingKind)
}

func TestPutNode(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	st, err := s.PutNode(ctx, graph.Node(42).WithProperty("name", "Alice").MustBuild())
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasNodesCreated(1).HasNodesDeleted(0).HasPropertiesSet(1)

	st, err = s.PutNode(ctx, graph.Node(42).MustBuild())
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasNodesCreated(1).HasNodesDeleted(1).HasPropertiesSet(0)

	loaded, err := s.Node(ctx, 42)
	require.NoError(t, err)
	assertions.ThatNode(t, loaded).DoesNotHaveProperty("name")
}

func TestPutNode_ReplaceDetaches(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.PutNode(ctx, graph.Node(1).MustBuild())
	require.NoError(t, err)
	_, err = s.PutNode(ctx, graph.Node(2).MustBuild())
	require.NoError(t, err)
	_, err = s.AddLabel(ctx, 1, "Admin")
	require.NoError(t, err)
	_, _, err = s.CreateRelationship(ctx, "KNOWS", 1, 2, nil)
	require.NoError(t, err)

	st, err := s.PutNode(ctx, graph.Node(1).MustBuild())
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).
		HasNodesCreated(1).
		HasNodesDeleted(1).
		HasRelationshipsDeleted(1)

	labels, err := s.Labels(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, labels)
	_, err = s.Relationship(ctx, 1)
	assert.ErrorIs(t, err, ErrRelationshipNotFound)
}

func TestNilPropertiesAreNotStored(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	node, st, err := s.CreateNode(ctx, graph.KindNode, map[string]any{"name": "Alice", "nickname": nil})
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasPropertiesSet(1)
	assertions.ThatNode(t, node).DoesNotHaveProperty("nickname")

	loaded, err := s.Node(ctx, node.ID())
	require.NoError(t, err)
	assertions.ThatNode(t, loaded).HasProperty("name", "Alice").DoesNotHaveProperty("nickname")

	st, err = s.PutNode(ctx, graph.Node(7).WithProperty("nickname", nil).MustBuild())
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasPropertiesSet(0)
	loaded, err = s.Node(ctx, 7)
	require.NoError(t, err)
	assertions.ThatNode(t, loaded).DoesNotHaveProperty("nickname")

	a, _, err := s.CreateNode(ctx, graph.KindNode, nil)
	require.NoError(t, err)
	rel, st, err := s.CreateRelationship(ctx, "KNOWS", a.ID(), node.ID(), map[string]any{"since": nil})
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasRelationshipsCreated(1).HasPropertiesSet(0)
	assert.False(t, rel.HasProperty("since"))
}

func TestNode_NotFound(t *testing.T) {
	s := openStore(t)
	_, err := s.Node(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestNodes(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	for _, id := range []int64{5, 2, 9} {
		_, err := s.PutNode(ctx, graph.Node(id).MustBuild())
		require.NoError(t, err)
	}
	_, err := s.PutNode(ctx, graph.NewBuilder("PERSON").WithID(3).MustBuild())
	require.NoError(t, err)

	nodes, err := s.Nodes(ctx, graph.KindNode)
	require.NoError(t, err)
	assertions.ThatNodes(t, nodes).HasSize(3).ContainsExactlyIDs(graph.KindNode, 2, 5, 9)

	all, err := s.Nodes(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"NODE{id=2}", "PERSON{id=3}", "NODE{id=5}", "NODE{id=9}"}, assertions.RepresentationsOf(all))
}

func TestSetProperty(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	node, _, err := s.CreateNode(ctx, graph.KindNode, nil)
	require.NoError(t, err)

	st, err := s.SetProperty(ctx, node.ID(), "name", "Bob")
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasPropertiesSet(1)

	st, err = s.RemoveProperty(ctx, node.ID(), "name")
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasPropertiesSet(1)

	st, err = s.RemoveProperty(ctx, node.ID(), "name")
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).ContainsNoUpdates()

	t.Run("missing node", func(t *testing.T) {
		st, err := s.SetProperty(ctx, 1000, "name", "Bob")
		require.NoError(t, err)
		assertions.ThatStatistics(t, st).ContainsNoUpdates()
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := s.SetProperty(ctx, node.ID(), "", "x")
		assert.ErrorIs(t, err, graph.ErrEmptyPropertyKey)
	})
}

func TestLabels(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	node, _, err := s.CreateNode(ctx, graph.KindNode, nil)
	require.NoError(t, err)

	st, err := s.AddLabel(ctx, node.ID(), "Person")
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasLabelsAdded(1)

	st, err = s.AddLabel(ctx, node.ID(), "Person")
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).ContainsNoUpdates()

	_, err = s.AddLabel(ctx, node.ID(), "Admin")
	require.NoError(t, err)

	labels, err := s.Labels(ctx, node.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin", "Person"}, labels)

	st, err = s.RemoveLabel(ctx, node.ID(), "Person")
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasLabelsRemoved(1)

	st, err = s.AddLabel(ctx, 1000, "Person")
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).ContainsNoUpdates()

	_, err = s.AddLabel(ctx, node.ID(), "")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestRelationships(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	a, _, err := s.CreateNode(ctx, graph.KindNode, nil)
	require.NoError(t, err)
	b, _, err := s.CreateNode(ctx, graph.KindNode, nil)
	require.NoError(t, err)

	rel, st, err := s.CreateRelationship(ctx, "KNOWS", a.ID(), b.ID(), map[string]any{"since": 2020})
	require.NoError(t, err)
	require.NotNil(t, rel)
	assertions.ThatStatistics(t, st).HasRelationshipsCreated(1).HasPropertiesSet(1)
	assert.Equal(t, "KNOWS", rel.Type)

	loaded, err := s.Relationship(ctx, rel.ID())
	require.NoError(t, err)
	assertions.ThatNode(t, loaded.Entity).HasKind(graph.KindRelationship).HasProperty("since", 2020)
	assert.Equal(t, a.ID(), loaded.Start)
	assert.Equal(t, b.ID(), loaded.End)

	t.Run("missing endpoint", func(t *testing.T) {
		rel, st, err := s.CreateRelationship(ctx, "KNOWS", a.ID(), 1000, nil)
		require.NoError(t, err)
		assert.Nil(t, rel)
		assertions.ThatStatistics(t, st).ContainsNoUpdates()
	})

	t.Run("detach delete", func(t *testing.T) {
		st, err := s.DeleteNode(ctx, a.ID())
		require.NoError(t, err)
		assertions.ThatStatistics(t, st).HasNodesDeleted(1).HasRelationshipsDeleted(1)

		_, err = s.Relationship(ctx, rel.ID())
		assert.ErrorIs(t, err, ErrRelationshipNotFound)
	})

	t.Run("delete missing", func(t *testing.T) {
		st, err := s.DeleteNode(ctx, a.ID())
		require.NoError(t, err)
		assertions.ThatStatistics(t, st).ContainsNoUpdates()

		st, err = s.DeleteRelationship(ctx, rel.ID())
		require.NoError(t, err)
		assertions.ThatStatistics(t, st).ContainsNoUpdates()
	})
}

func TestDeleteRelationship(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	a, _, err := s.CreateNode(ctx, graph.KindNode, nil)
	require.NoError(t, err)

	rel, _, err := s.CreateRelationship(ctx, "SELF", a.ID(), a.ID(), nil)
	require.NoError(t, err)

	st, err := s.DeleteRelationship(ctx, rel.ID())
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasRelationshipsDeleted(1)
}

func TestIndexesAndConstraints(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	st, err := s.CreateIndex(ctx, graph.KindNode, "name")
	require.NoError(t, err)
	assert.Equal(t, &stats.QueryStatistics{IndexesAdded: 1}, st)

	st, err = s.CreateIndex(ctx, graph.KindNode, "name")
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).ContainsNoUpdates()

	st, err = s.DropIndex(ctx, graph.KindNode, "name")
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasCounter(stats.IndexesRemoved, 1)

	st, err = s.CreateUniqueConstraint(ctx, graph.KindNode, "email")
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasCounter(stats.ConstraintsAdded, 1)

	_, _, err = s.CreateNode(ctx, graph.KindNode, map[string]any{"email": "a@example.com"})
	require.NoError(t, err)
	_, _, err = s.CreateNode(ctx, graph.KindNode, map[string]any{"email": "a@example.com"})
	assert.Error(t, err)

	st, err = s.DropUniqueConstraint(ctx, graph.KindNode, "email")
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasCounter(stats.ConstraintsRemoved, 1)

	_, err = s.CreateIndex(ctx, graph.KindNode, "bad-name")
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = s.CreateIndex(ctx, "x'; DROP TABLE nodes; --", "name")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestIndexNames_DoNotCollide(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	tests := []struct {
		kind     graph.Kind
		property string
	}{
		{"A_B", "c"},
		{"A", "B_c"},
	}
	for _, tt := range tests {
		st, err := s.CreateIndex(ctx, tt.kind, tt.property)
		require.NoError(t, err)
		assertions.ThatStatistics(t, st).HasCounter(stats.IndexesAdded, 1)

		st, err = s.CreateUniqueConstraint(ctx, tt.kind, tt.property)
		require.NoError(t, err)
		assertions.ThatStatistics(t, st).HasCounter(stats.ConstraintsAdded, 1)
	}

	st, err := s.DropIndex(ctx, "A_B", "c")
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasCounter(stats.IndexesRemoved, 1)
	st, err = s.DropIndex(ctx, "A", "B_c")
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasCounter(stats.IndexesRemoved, 1)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "graph.db")

	s, err := Open(ctx, "sqlite://"+path)
	require.NoError(t, err)
	a, _, err := s.CreateNode(ctx, "PERSON", map[string]any{"email": "a@example.com"})
	require.NoError(t, err)
	b, _, err := s.CreateNode(ctx, "PERSON", nil)
	require.NoError(t, err)
	_, err = s.AddLabel(ctx, a.ID(), "Admin")
	require.NoError(t, err)
	_, _, err = s.CreateRelationship(ctx, "KNOWS", a.ID(), b.ID(), nil)
	require.NoError(t, err)
	_, err = s.CreateIndex(ctx, "PERSON", "email")
	require.NoError(t, err)
	_, err = s.CreateUniqueConstraint(ctx, "PERSON", "email")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, "sqlite://"+path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Reset(ctx))

	nodes, err := s.Nodes(ctx, "")
	require.NoError(t, err)
	assertions.ThatNodes(t, nodes).IsEmpty()
	labels, err := s.Labels(ctx, a.ID())
	require.NoError(t, err)
	assert.Empty(t, labels)
	_, err = s.Relationship(ctx, 1)
	assert.ErrorIs(t, err, ErrRelationshipNotFound)

	st, err := s.CreateIndex(ctx, "PERSON", "email")
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasCounter(stats.IndexesAdded, 1)
	st, err = s.CreateUniqueConstraint(ctx, "PERSON", "email")
	require.NoError(t, err)
	assertions.ThatStatistics(t, st).HasCounter(stats.ConstraintsAdded, 1)

	node, _, err := s.CreateNode(ctx, "PERSON", nil)
	require.NoError(t, err)
	assertions.ThatNode(t, node).HasID(1)
}

func TestOpen_FileAndLogger(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	path := filepath.Join(t.TempDir(), "graph.db")

	s, err := Open(ctx, "sqlite://"+path, WithLogger(logger))
	require.NoError(t, err)
	_, _, err = s.CreateNode(ctx, graph.KindNode, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Contains(t, buf.String(), "node created")

	// Reopening sees the persisted node.
	s, err = Open(ctx, "sqlite://"+path)
	require.NoError(t, err)
	defer s.Close()
	nodes, err := s.Nodes(ctx, graph.KindNode)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}
