// Package stats describes the update counters a graph query reports.
package stats

import (
	"fmt"
	"strings"
)

// Canonical counter names, as used in fixtures and reports.
const (
	NodesCreated         = "nodes_created"
	NodesDeleted         = "nodes_deleted"
	RelationshipsCreated = "relationships_created"
	RelationshipsDeleted = "relationships_deleted"
	PropertiesSet        = "properties_set"
	LabelsAdded          = "labels_added"
	LabelsRemoved        = "labels_removed"
	IndexesAdded         = "indexes_added"
	IndexesRemoved       = "indexes_removed"
	ConstraintsAdded     = "constraints_added"
	ConstraintsRemoved   = "constraints_removed"
)

// CounterNames lists every counter in reporting order.
var CounterNames = []string{
	NodesCreated,
	NodesDeleted,
	RelationshipsCreated,
	RelationshipsDeleted,
	PropertiesSet,
	LabelsAdded,
	LabelsRemoved,
	IndexesAdded,
	IndexesRemoved,
	ConstraintsAdded,
	ConstraintsRemoved,
}

// QueryStatistics holds the update counters of a query.
type QueryStatistics struct {
	NodesCreated         int `json:"nodes_created,omitempty"`
	NodesDeleted         int `json:"nodes_deleted,omitempty"`
	RelationshipsCreated int `json:"relationships_created,omitempty"`
	RelationshipsDeleted int `json:"relationships_deleted,omitempty"`
	PropertiesSet        int `json:"properties_set,omitempty"`
	LabelsAdded          int `json:"labels_added,omitempty"`
	LabelsRemoved        int `json:"labels_removed,omitempty"`
	IndexesAdded         int `json:"indexes_added,omitempty"`
	IndexesRemoved       int `json:"indexes_removed,omitempty"`
	ConstraintsAdded     int `json:"constraints_added,omitempty"`
	ConstraintsRemoved   int `json:"constraints_removed,omitempty"`
}

// ContainsUpdates reports whether any counter is non-zero.
func (s *QueryStatistics) ContainsUpdates() bool {
	if s == nil {
		return false
	}
	for _, name := range CounterNames {
		if v, _ := s.Counter(name); v != 0 {
			return true
		}
	}
	return false
}

// Counter returns the value of the named counter.
func (s *QueryStatistics) Counter(name string) (int, bool) {
	p := s.field(name)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Counters returns every counter keyed by its canonical name.
func (s *QueryStatistics) Counters() map[string]int {
	out := make(map[string]int, len(CounterNames))
	for _, name := range CounterNames {
		out[name], _ = s.Counter(name)
	}
	return out
}

// IsCounter reports whether name is a known counter name.
func IsCounter(name string) bool {
	var s QueryStatistics
	return s.field(name) != nil
}

// Add returns the counter-wise sum of s and other. Either may be nil.
func (s *QueryStatistics) Add(other *QueryStatistics) *QueryStatistics {
	sum := &QueryStatistics{}
	for _, src := range []*QueryStatistics{s, other} {
		if src == nil {
			continue
		}
		for _, name := range CounterNames {
			v, _ := src.Counter(name)
			*sum.field(name) += v
		}
	}
	return sum
}

// String lists the non-zero counters, e.g. "{nodes_created=2, properties_set=3}".
func (s *QueryStatistics) String() string {
	if s == nil {
		return "<nil>"
	}
	var parts []string
	for _, name := range CounterNames {
		if v, _ := s.Counter(name); v != 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", name, v))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (s *QueryStatistics) field(name string) *int {
	if s == nil {
		s = &QueryStatistics{}
	}
	switch name {
	case NodesCreated:
		return &s.NodesCreated
	case NodesDeleted:
		return &s.NodesDeleted
	case RelationshipsCreated:
		return &s.RelationshipsCreated
	case RelationshipsDeleted:
		return &s.RelationshipsDeleted
	case PropertiesSet:
		return &s.PropertiesSet
	case LabelsAdded:
		return &s.LabelsAdded
	case LabelsRemoved:
		return &s.LabelsRemoved
	case IndexesAdded:
		return &s.IndexesAdded
	case IndexesRemoved:
		return &s.IndexesRemoved
	case ConstraintsAdded:
		return &s.ConstraintsAdded
	case ConstraintsRemoved:
		return &s.ConstraintsRemoved
	default:
		return nil
	}
}
