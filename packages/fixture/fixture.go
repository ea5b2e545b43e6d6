// Package fixture loads YAML descriptions of a graph, a sequence of store
// mutations and the query statistics they are expected to produce.
//
//	nodes:
//	  - kind: PERSON
//	    id: 1
//	    properties: {name: Alice}
//	steps:
//	  - op: set_property
//	    node: 1
//	    key: age
//	    value: 30
//	expect:
//	  updates: true
//	  counters:
//	    properties_set: 1
package fixture

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/graphassert/packages/assertions"
	"github.com/abdul-hamid-achik/graphassert/packages/graph"
	"github.com/abdul-hamid-achik/graphassert/packages/stats"
	"github.com/abdul-hamid-achik/graphassert/packages/store"
	"gopkg.in/yaml.v3"
)

// Step operations.
const (
	OpCreateNode         = "create_node"
	OpDeleteNode         = "delete_node"
	OpSetProperty        = "set_property"
	OpRemoveProperty     = "remove_property"
	OpAddLabel           = "add_label"
	OpRemoveLabel        = "remove_label"
	OpCreateRelationship = "create_relationship"
	OpDeleteRelationship = "delete_relationship"
	OpCreateIndex        = "create_index"
	OpDropIndex          = "drop_index"
	OpCreateConstraint   = "create_constraint"
	OpDropConstraint     = "drop_constraint"
)

var ErrInvalidFixture = errors.New("invalid fixture")

type Fixture struct {
	Nodes  []NodeSpec  `yaml:"nodes"`
	Steps  []Step      `yaml:"steps"`
	Expect Expectation `yaml:"expect"`
}

type NodeSpec struct {
	Kind       string         `yaml:"kind"`
	ID         *int64         `yaml:"id"`
	Properties map[string]any `yaml:"properties"`
}

type Step struct {
	Op         string         `yaml:"op"`
	Kind       string         `yaml:"kind,omitempty"`
	Node       int64          `yaml:"node,omitempty"`
	Key        string         `yaml:"key,omitempty"`
	Value      any            `yaml:"value,omitempty"`
	Label      string         `yaml:"label,omitempty"`
	Type       string         `yaml:"type,omitempty"`
	From       int64          `yaml:"from,omitempty"`
	To         int64          `yaml:"to,omitempty"`
	ID         int64          `yaml:"id,omitempty"`
	Property   string         `yaml:"property,omitempty"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

// Expectation describes the statistics the steps must produce. A nil
// Updates means the fixture makes no claim about whether updates happened.
type Expectation struct {
	Updates  *bool          `yaml:"updates"`
	Counters map[string]int `yaml:"counters"`
}

// Load reads and parses a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates a fixture.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the fixture for unknown operations, missing fields and
// unknown counter names.
func (f *Fixture) Validate() error {
	var errs []error
	seen := make(map[int64]bool)

	for i, n := range f.Nodes {
		if _, err := n.build(); err != nil {
			errs = append(errs, fmt.Errorf("nodes[%d]: %w", i, err))
			continue
		}
		if seen[*n.ID] {
			errs = append(errs, fmt.Errorf("nodes[%d]: duplicate id %d", i, *n.ID))
		}
		seen[*n.ID] = true
	}

	for i, s := range f.Steps {
		if err := s.validate(); err != nil {
			errs = append(errs, fmt.Errorf("steps[%d]: %w", i, err))
		}
	}

	for name := range f.Expect.Counters {
		if !stats.IsCounter(name) {
			errs = append(errs, fmt.Errorf("expect: unknown counter %q", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidFixture, errors.Join(errs...))
	}
	return nil
}

// Entities builds the fixture's nodes.
func (f *Fixture) Entities() ([]*graph.Entity, error) {
	out := make([]*graph.Entity, 0, len(f.Nodes))
	for i, n := range f.Nodes {
		e, err := n.build()
		if err != nil {
			return nil, fmt.Errorf("nodes[%d]: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Apply seeds the store with the fixture's nodes and runs its steps,
// returning the statistics accumulated over the steps only. Existing data is
// kept; call (*store.Store).Reset first for an isolated run.
func (f *Fixture) Apply(ctx context.Context, s *store.Store) (*stats.QueryStatistics, error) {
	entities, err := f.Entities()
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if _, err := s.PutNode(ctx, e); err != nil {
			return nil, fmt.Errorf("failed to seed %s{id=%d}: %w", e.Kind(), e.ID(), err)
		}
	}

	total := &stats.QueryStatistics{}
	for i, step := range f.Steps {
		st, err := step.apply(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("steps[%d] %s: %w", i, step.Op, err)
		}
		total = total.Add(st)
	}
	return total, nil
}

func (n NodeSpec) build() (*graph.Entity, error) {
	b := graph.NewBuilder(graph.Kind(n.Kind)).WithProperties(n.Properties)
	if n.ID != nil {
		b.WithID(*n.ID)
	}
	return b.Build()
}

func (s Step) validate() error {
	switch s.Op {
	case OpCreateNode:
		if s.Kind == "" {
			return fmt.Errorf("%s requires kind", s.Op)
		}
	case OpSetProperty, OpRemoveProperty:
		if s.Key == "" {
			return fmt.Errorf("%s requires key", s.Op)
		}
	case OpAddLabel, OpRemoveLabel:
		if s.Label == "" {
			return fmt.Errorf("%s requires label", s.Op)
		}
	case OpCreateRelationship:
		if s.Type == "" {
			return fmt.Errorf("%s requires type", s.Op)
		}
	case OpCreateIndex, OpDropIndex, OpCreateConstraint, OpDropConstraint:
		if s.Kind == "" || s.Property == "" {
			return fmt.Errorf("%s requires kind and property", s.Op)
		}
	case OpDeleteNode, OpDeleteRelationship:
	case "":
		return errors.New("missing op")
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
	return nil
}

func (s Step) apply(ctx context.Context, st *store.Store) (*stats.QueryStatistics, error) {
	switch s.Op {
	case OpCreateNode:
		_, res, err := st.CreateNode(ctx, graph.Kind(s.Kind), s.Properties)
		return res, err
	case OpDeleteNode:
		return st.DeleteNode(ctx, s.Node)
	case OpSetProperty:
		return st.SetProperty(ctx, s.Node, s.Key, s.Value)
	case OpRemoveProperty:
		return st.RemoveProperty(ctx, s.Node, s.Key)
	case OpAddLabel:
		return st.AddLabel(ctx, s.Node, s.Label)
	case OpRemoveLabel:
		return st.RemoveLabel(ctx, s.Node, s.Label)
	case OpCreateRelationship:
		_, res, err := st.CreateRelationship(ctx, s.Type, s.From, s.To, s.Properties)
		return res, err
	case OpDeleteRelationship:
		return st.DeleteRelationship(ctx, s.ID)
	case OpCreateIndex:
		return st.CreateIndex(ctx, graph.Kind(s.Kind), s.Property)
	case OpDropIndex:
		return st.DropIndex(ctx, graph.Kind(s.Kind), s.Property)
	case OpCreateConstraint:
		return st.CreateUniqueConstraint(ctx, graph.Kind(s.Kind), s.Property)
	case OpDropConstraint:
		return st.DropUniqueConstraint(ctx, graph.Kind(s.Kind), s.Property)
	default:
		return nil, fmt.Errorf("unknown op %q", s.Op)
	}
}

// discardT satisfies assert.TestingT for evaluations outside of a test;
// failures are read back from the chain's results.
type discardT struct{}

func (discardT) Errorf(string, ...any) {}

// Evaluate checks s against the expectation. Counters are checked in their
// reporting order so results are stable.
func (e Expectation) Evaluate(s *stats.QueryStatistics) []*assertions.Result {
	a := assertions.ThatStatistics(discardT{}, s)
	if e.Updates != nil {
		if *e.Updates {
			a.ContainsUpdates()
		} else {
			a.ContainsNoUpdates()
		}
	}
	for _, name := range stats.CounterNames {
		if want, ok := e.Counters[name]; ok {
			a.HasCounter(name, want)
		}
	}
	return a.Results()
}
