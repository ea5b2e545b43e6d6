package store

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/graphassert/packages/graph"
	"github.com/abdul-hamid-achik/graphassert/packages/stats"
)

// CreateIndex indexes a property of every node of the given kind.
// Creating an index that already exists reports no updates.
func (s *Store) CreateIndex(ctx context.Context, kind graph.Kind, property string) (*stats.QueryStatistics, error) {
	created, err := s.createPropertyIndex(ctx, kind, property, false)
	if err != nil {
		return nil, err
	}
	st := &stats.QueryStatistics{}
	if created {
		st.IndexesAdded = 1
	}
	s.logger.Debug("index created", "kind", kind, "property", property, "stats", st.String())
	return st, nil
}

func (s *Store) DropIndex(ctx context.Context, kind graph.Kind, property string) (*stats.QueryStatistics, error) {
	dropped, err := s.dropPropertyIndex(ctx, kind, property, false)
	if err != nil {
		return nil, err
	}
	st := &stats.QueryStatistics{}
	if dropped {
		st.IndexesRemoved = 1
	}
	s.logger.Debug("index dropped", "kind", kind, "property", property, "stats", st.String())
	return st, nil
}

// CreateUniqueConstraint requires property to be unique among nodes of the
// given kind. It fails if existing nodes already violate it.
func (s *Store) CreateUniqueConstraint(ctx context.Context, kind graph.Kind, property string) (*stats.QueryStatistics, error) {
	created, err := s.createPropertyIndex(ctx, kind, property, true)
	if err != nil {
		return nil, err
	}
	st := &stats.QueryStatistics{}
	if created {
		st.ConstraintsAdded = 1
	}
	s.logger.Debug("constraint created", "kind", kind, "property", property, "stats", st.String())
	return st, nil
}

func (s *Store) DropUniqueConstraint(ctx context.Context, kind graph.Kind, property string) (*stats.QueryStatistics, error) {
	dropped, err := s.dropPropertyIndex(ctx, kind, property, true)
	if err != nil {
		return nil, err
	}
	st := &stats.QueryStatistics{}
	if dropped {
		st.ConstraintsRemoved = 1
	}
	s.logger.Debug("constraint dropped", "kind", kind, "property", property, "stats", st.String())
	return st, nil
}

func (s *Store) createPropertyIndex(ctx context.Context, kind graph.Kind, property string, unique bool) (bool, error) {
	name, err := indexName(kind, property, unique)
	if err != nil {
		return false, err
	}
	exists, err := s.indexExists(ctx, name)
	if err != nil || exists {
		return false, err
	}

	stmt := "CREATE INDEX"
	if unique {
		stmt = "CREATE UNIQUE INDEX"
	}
	// Identifiers are validated by indexName, so interpolation is safe here;
	// SQLite does not accept bound parameters in index definitions.
	query := fmt.Sprintf(`%s "%s" ON nodes (json_extract(properties, '$.%s')) WHERE kind = '%s'`, stmt, name, property, kind)
	if _, err := s.client.Exec(ctx, query); err != nil {
		return false, fmt.Errorf("failed to create index %s: %w", name, err)
	}
	return true, nil
}

func (s *Store) dropPropertyIndex(ctx context.Context, kind graph.Kind, property string, unique bool) (bool, error) {
	name, err := indexName(kind, property, unique)
	if err != nil {
		return false, err
	}
	exists, err := s.indexExists(ctx, name)
	if err != nil || !exists {
		return false, err
	}
	if _, err := s.client.Exec(ctx, `DROP INDEX "`+name+`"`); err != nil {
		return false, fmt.Errorf("failed to drop index %s: %w", name, err)
	}
	return true, nil
}

func (s *Store) indexExists(ctx context.Context, name string) (bool, error) {
	result, err := s.client.Query(ctx, `SELECT name FROM sqlite_master WHERE type = 'index' AND name = ?`, name)
	if err != nil {
		return false, err
	}
	return len(result.Rows) > 0, nil
}

func indexName(kind graph.Kind, property string, unique bool) (string, error) {
	if !namePattern.MatchString(string(kind)) {
		return "", fmt.Errorf("%w: kind %q", ErrInvalidName, kind)
	}
	if !namePattern.MatchString(property) {
		return "", fmt.Errorf("%w: property %q", ErrInvalidName, property)
	}
	prefix := "idx"
	if unique {
		prefix = "uniq"
	}
	// ':' never matches namePattern, so distinct (kind, property) pairs never
	// share a name. The name must be quoted wherever it appears in SQL.
	return fmt.Sprintf("%s:%s:%s", prefix, kind, property), nil
}
