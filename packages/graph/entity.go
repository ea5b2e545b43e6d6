package graph

import (
	"errors"
	"fmt"
	"maps"
)

// Kind is the category of an entity, e.g. a node or a relationship.
type Kind string

const (
	KindNode         Kind = "NODE"
	KindRelationship Kind = "RELATIONSHIP"
)

func (k Kind) String() string {
	return string(k)
}

var (
	ErrMissingKind      = errors.New("entity kind is required")
	ErrMissingID        = errors.New("entity id is required")
	ErrInvalidID        = errors.New("entity id must not be negative")
	ErrEmptyPropertyKey = errors.New("property key must not be empty")
)

// Identified is anything that carries a kind and an identity.
type Identified interface {
	Kind() Kind
	ID() int64
}

// Entity is an immutable graph record.
type Entity struct {
	kind       Kind
	id         int64
	properties map[string]any
}

func (e *Entity) Kind() Kind {
	return e.kind
}

func (e *Entity) ID() int64 {
	return e.id
}

// Properties returns a copy of the entity's properties.
func (e *Entity) Properties() map[string]any {
	return maps.Clone(e.properties)
}

// Property returns the value stored under key.
func (e *Entity) Property(key string) (any, bool) {
	v, ok := e.properties[key]
	return v, ok
}

// HasProperty reports whether key is set on the entity.
func (e *Entity) HasProperty(key string) bool {
	_, ok := e.properties[key]
	return ok
}

// PropertyCount returns the number of properties on the entity.
func (e *Entity) PropertyCount() int {
	return len(e.properties)
}

// Builder accumulates the fields of an Entity.
type Builder struct {
	kind       Kind
	id         int64
	idSet      bool
	properties map[string]any
}

// NewBuilder starts a builder for an entity of the given kind.
func NewBuilder(kind Kind) *Builder {
	return &Builder{
		kind:       kind,
		properties: make(map[string]any),
	}
}

// Node starts a builder for a node with the given identity.
func Node(id int64) *Builder {
	return NewBuilder(KindNode).WithID(id)
}

// Relationship starts a builder for a relationship with the given identity.
func Relationship(id int64) *Builder {
	return NewBuilder(KindRelationship).WithID(id)
}

func (b *Builder) WithID(id int64) *Builder {
	b.id = id
	b.idSet = true
	return b
}

func (b *Builder) WithProperty(key string, value any) *Builder {
	b.properties[key] = value
	return b
}

func (b *Builder) WithProperties(props map[string]any) *Builder {
	for k, v := range props {
		b.properties[k] = v
	}
	return b
}

// Build validates the accumulated fields and returns the entity.
func (b *Builder) Build() (*Entity, error) {
	if b.kind == "" {
		return nil, ErrMissingKind
	}
	if !b.idSet {
		return nil, fmt.Errorf("%s: %w", b.kind, ErrMissingID)
	}
	if b.id < 0 {
		return nil, fmt.Errorf("%s{id=%d}: %w", b.kind, b.id, ErrInvalidID)
	}
	if _, ok := b.properties[""]; ok {
		return nil, fmt.Errorf("%s{id=%d}: %w", b.kind, b.id, ErrEmptyPropertyKey)
	}

	return &Entity{
		kind:       b.kind,
		id:         b.id,
		properties: maps.Clone(b.properties),
	}, nil
}

// MustBuild is like Build but panics on validation errors. Intended for tests.
func (b *Builder) MustBuild() *Entity {
	e, err := b.Build()
	if err != nil {
		panic(err)
	}
	return e
}
