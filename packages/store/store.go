// Package store is a small SQLite-backed property graph. Every mutation
// reports the query statistics a graph database would, so tests can assert
// on them with the assertions package.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/abdul-hamid-achik/graphassert/packages/db"
	"github.com/abdul-hamid-achik/graphassert/packages/graph"
	"github.com/abdul-hamid-achik/graphassert/packages/stats"
)

var (
	ErrNodeNotFound         = errors.New("node not found")
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrInvalidName          = errors.New("invalid name")
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	properties TEXT NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS labels (
	node_id INTEGER NOT NULL,
	label TEXT NOT NULL,
	PRIMARY KEY (node_id, label)
);
CREATE TABLE IF NOT EXISTS relationships (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type TEXT NOT NULL,
	start_id INTEGER NOT NULL,
	end_id INTEGER NOT NULL,
	properties TEXT NOT NULL DEFAULT '{}'
);
`

// Relationship is a directed, typed edge between two nodes.
type Relationship struct {
	*graph.Entity
	Type  string
	Start int64
	End   int64
}

// Store is a property graph persisted in SQLite.
type Store struct {
	client *db.Client
	logger *slog.Logger
	opts   []db.Option
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

func WithQueryTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.opts = append(s.opts, db.WithQueryTimeout(d))
	}
}

// Open connects to connStr (see db.NewClient) and creates the schema.
func Open(ctx context.Context, connStr string, opts ...Option) (*Store, error) {
	s := &Store{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	client, err := db.NewClient(connStr, s.opts...)
	if err != nil {
		return nil, err
	}
	if _, err := client.Exec(ctx, schema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	s.client = client
	s.logger.Debug("graph store opened", "dsn", client.DataSource())
	return s, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// CreateNode inserts a node with a store-assigned identity.
func (s *Store) CreateNode(ctx context.Context, kind graph.Kind, props map[string]any) (*graph.Entity, *stats.QueryStatistics, error) {
	props = withoutNil(props)
	// Validate before touching the database.
	if _, err := graph.NewBuilder(kind).WithID(0).WithProperties(props).Build(); err != nil {
		return nil, nil, err
	}
	data, err := encodeProperties(props)
	if err != nil {
		return nil, nil, err
	}

	res, err := s.client.Exec(ctx, `INSERT INTO nodes (kind, properties) VALUES (?, ?)`, string(kind), data)
	if err != nil {
		return nil, nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read node id: %w", err)
	}

	node, err := graph.NewBuilder(kind).WithID(id).WithProperties(props).Build()
	if err != nil {
		return nil, nil, err
	}
	st := &stats.QueryStatistics{NodesCreated: 1, PropertiesSet: len(props)}
	s.logger.Debug("node created", "kind", kind, "id", id, "stats", st.String())
	return node, st, nil
}

// PutNode inserts e with its own identity. An existing node with the same
// identity is replaced: it is deleted together with its labels and
// relationships, and counted as such.
func (s *Store) PutNode(ctx context.Context, e *graph.Entity) (*stats.QueryStatistics, error) {
	props := withoutNil(e.Properties())
	data, err := encodeProperties(props)
	if err != nil {
		return nil, err
	}

	st := &stats.QueryStatistics{}
	err = s.client.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		deleted, rels, err := deleteNode(ctx, tx, e.ID())
		if err != nil {
			return fmt.Errorf("failed to replace node: %w", err)
		}
		st.NodesDeleted = deleted
		st.RelationshipsDeleted = rels
		if _, err := tx.ExecContext(ctx, `INSERT INTO nodes (id, kind, properties) VALUES (?, ?, ?)`, e.ID(), string(e.Kind()), data); err != nil {
			return fmt.Errorf("failed to insert node: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	st.NodesCreated = 1
	st.PropertiesSet = len(props)
	s.logger.Debug("node put", "kind", e.Kind(), "id", e.ID(), "stats", st.String())
	return st, nil
}

// Node loads the node with the given identity.
func (s *Store) Node(ctx context.Context, id int64) (*graph.Entity, error) {
	result, err := s.client.Query(ctx, `SELECT id, kind, properties FROM nodes WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(result.Rows) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return decodeNode(result.Rows[0])
}

// Nodes returns every node of the given kind, or all nodes if kind is empty,
// ordered by identity.
func (s *Store) Nodes(ctx context.Context, kind graph.Kind) ([]*graph.Entity, error) {
	query := `SELECT id, kind, properties FROM nodes ORDER BY id`
	var args []any
	if kind != "" {
		query = `SELECT id, kind, properties FROM nodes WHERE kind = ? ORDER BY id`
		args = append(args, string(kind))
	}

	result, err := s.client.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	nodes := make([]*graph.Entity, 0, len(result.Rows))
	for _, row := range result.Rows {
		n, err := decodeNode(row)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// DeleteNode removes a node together with its labels and relationships.
// Deleting a missing node is not an error and reports no updates.
func (s *Store) DeleteNode(ctx context.Context, id int64) (*stats.QueryStatistics, error) {
	st := &stats.QueryStatistics{}
	err := s.client.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		deleted, rels, err := deleteNode(ctx, tx, id)
		if err != nil {
			return err
		}
		st.NodesDeleted = deleted
		st.RelationshipsDeleted = rels
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("node deleted", "id", id, "stats", st.String())
	return st, nil
}

// SetProperty sets key on a node. A nil value removes the property.
func (s *Store) SetProperty(ctx context.Context, id int64, key string, value any) (*stats.QueryStatistics, error) {
	if key == "" {
		return nil, graph.ErrEmptyPropertyKey
	}
	return s.updateProperties(ctx, id, func(props map[string]any) bool {
		if value == nil {
			_, existed := props[key]
			delete(props, key)
			return existed
		}
		props[key] = value
		return true
	})
}

// RemoveProperty deletes key from a node.
func (s *Store) RemoveProperty(ctx context.Context, id int64, key string) (*stats.QueryStatistics, error) {
	return s.SetProperty(ctx, id, key, nil)
}

func (s *Store) updateProperties(ctx context.Context, id int64, mutate func(map[string]any) bool) (*stats.QueryStatistics, error) {
	st := &stats.QueryStatistics{}
	err := s.client.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		result, err := db.QueryTx(ctx, tx, `SELECT properties FROM nodes WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if len(result.Rows) == 0 {
			return nil
		}
		props, err := decodeProperties(result.Rows[0]["properties"])
		if err != nil {
			return err
		}
		if !mutate(props) {
			return nil
		}
		data, err := encodeProperties(props)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE nodes SET properties = ? WHERE id = ?`, data, id); err != nil {
			return fmt.Errorf("failed to update properties: %w", err)
		}
		st.PropertiesSet = 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("properties updated", "id", id, "stats", st.String())
	return st, nil
}

// AddLabel attaches label to a node. Adding a label the node already has
// reports no updates.
func (s *Store) AddLabel(ctx context.Context, id int64, label string) (*stats.QueryStatistics, error) {
	if label == "" {
		return nil, fmt.Errorf("%w: empty label", ErrInvalidName)
	}
	st := &stats.QueryStatistics{}
	err := s.client.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		exists, err := nodeExists(ctx, tx, id)
		if err != nil || !exists {
			return err
		}
		res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO labels (node_id, label) VALUES (?, ?)`, id, label)
		if err != nil {
			return fmt.Errorf("failed to add label: %w", err)
		}
		n, _ := res.RowsAffected()
		st.LabelsAdded = int(n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("label added", "id", id, "label", label, "stats", st.String())
	return st, nil
}

// RemoveLabel detaches label from a node.
func (s *Store) RemoveLabel(ctx context.Context, id int64, label string) (*stats.QueryStatistics, error) {
	res, err := s.client.Exec(ctx, `DELETE FROM labels WHERE node_id = ? AND label = ?`, id, label)
	if err != nil {
		return nil, err
	}
	n, _ := res.RowsAffected()
	st := &stats.QueryStatistics{LabelsRemoved: int(n)}
	s.logger.Debug("label removed", "id", id, "label", label, "stats", st.String())
	return st, nil
}

// Labels returns a node's labels in alphabetical order.
func (s *Store) Labels(ctx context.Context, id int64) ([]string, error) {
	result, err := s.client.Query(ctx, `SELECT label FROM labels WHERE node_id = ? ORDER BY label`, id)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		labels = append(labels, fmt.Sprintf("%v", row["label"]))
	}
	return labels, nil
}

// CreateRelationship connects start to end. If either node is missing no
// relationship is created and the statistics are empty.
func (s *Store) CreateRelationship(ctx context.Context, relType string, start, end int64, props map[string]any) (*Relationship, *stats.QueryStatistics, error) {
	if relType == "" {
		return nil, nil, fmt.Errorf("%w: empty relationship type", ErrInvalidName)
	}
	props = withoutNil(props)
	data, err := encodeProperties(props)
	if err != nil {
		return nil, nil, err
	}

	st := &stats.QueryStatistics{}
	var rel *Relationship
	err = s.client.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for _, id := range []int64{start, end} {
			exists, err := nodeExists(ctx, tx, id)
			if err != nil || !exists {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO relationships (type, start_id, end_id, properties) VALUES (?, ?, ?, ?)`, relType, start, end, data)
		if err != nil {
			return fmt.Errorf("failed to create relationship: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read relationship id: %w", err)
		}
		entity, err := graph.Relationship(id).WithProperties(props).Build()
		if err != nil {
			return err
		}
		rel = &Relationship{Entity: entity, Type: relType, Start: start, End: end}
		st.RelationshipsCreated = 1
		st.PropertiesSet = len(props)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("relationship created", "type", relType, "start", start, "end", end, "stats", st.String())
	return rel, st, nil
}

// Relationship loads the relationship with the given identity.
func (s *Store) Relationship(ctx context.Context, id int64) (*Relationship, error) {
	result, err := s.client.Query(ctx, `SELECT id, type, start_id, end_id, properties FROM relationships WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(result.Rows) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrRelationshipNotFound, id)
	}
	row := result.Rows[0]
	props, err := decodeProperties(row["properties"])
	if err != nil {
		return nil, err
	}
	entity, err := graph.Relationship(toInt64(row["id"])).WithProperties(props).Build()
	if err != nil {
		return nil, err
	}
	return &Relationship{
		Entity: entity,
		Type:   fmt.Sprintf("%v", row["type"]),
		Start:  toInt64(row["start_id"]),
		End:    toInt64(row["end_id"]),
	}, nil
}

// DeleteRelationship removes a relationship. Deleting a missing relationship
// reports no updates.
func (s *Store) DeleteRelationship(ctx context.Context, id int64) (*stats.QueryStatistics, error) {
	res, err := s.client.Exec(ctx, `DELETE FROM relationships WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	n, _ := res.RowsAffected()
	st := &stats.QueryStatistics{RelationshipsDeleted: int(n)}
	s.logger.Debug("relationship deleted", "id", id, "stats", st.String())
	return st, nil
}

// Reset removes every node, label, relationship, index and constraint, and
// restarts identity assignment, leaving the store as Open created it.
func (s *Store) Reset(ctx context.Context) error {
	err := s.client.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		result, err := db.QueryTx(ctx, tx, `SELECT name FROM sqlite_master WHERE type = 'index' AND (name LIKE 'idx:%' OR name LIKE 'uniq:%')`)
		if err != nil {
			return err
		}
		for _, row := range result.Rows {
			name := fmt.Sprintf("%v", row["name"])
			if _, err := tx.ExecContext(ctx, `DROP INDEX "`+name+`"`); err != nil {
				return fmt.Errorf("failed to drop index %s: %w", name, err)
			}
		}
		for _, table := range []string{"labels", "relationships", "nodes"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name IN ('nodes', 'relationships')`); err != nil {
			return fmt.Errorf("failed to reset identities: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("graph store reset", "dsn", s.client.DataSource())
	return nil
}

// deleteNode removes a node with its labels and attached relationships. It
// reports how many nodes and relationships went away.
func deleteNode(ctx context.Context, tx *sql.Tx, id int64) (int, int, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete node: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return 0, 0, nil
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM relationships WHERE start_id = ? OR end_id = ?`, id, id)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete relationships: %w", err)
	}
	rels, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx, `DELETE FROM labels WHERE node_id = ?`, id); err != nil {
		return 0, 0, fmt.Errorf("failed to delete labels: %w", err)
	}
	return int(n), int(rels), nil
}

func nodeExists(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to look up node: %w", err)
	}
	return n > 0, nil
}

func decodeNode(row map[string]interface{}) (*graph.Entity, error) {
	props, err := decodeProperties(row["properties"])
	if err != nil {
		return nil, err
	}
	return graph.NewBuilder(graph.Kind(fmt.Sprintf("%v", row["kind"]))).
		WithID(toInt64(row["id"])).
		WithProperties(props).
		Build()
}

func encodeProperties(props map[string]any) (string, error) {
	if len(props) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("failed to encode properties: %w", err)
	}
	return string(data), nil
}

func decodeProperties(v interface{}) (map[string]any, error) {
	props := make(map[string]any)
	s, _ := v.(string)
	if s == "" {
		return props, nil
	}
	if err := json.Unmarshal([]byte(s), &props); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return props, nil
}

// withoutNil drops nil values: a property set to null is not stored, and
// is not counted by a CREATE.
func withoutNil(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
