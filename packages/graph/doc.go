// Package graph provides the entity model used by graphassert.
//
// Entities are immutable values with a kind, a 64-bit identity and a map of
// named properties. They are created through a Builder, which validates the
// required fields at build time:
//
//	node, err := graph.NewBuilder(graph.KindNode).
//		WithID(42).
//		WithProperty("name", "Alice").
//		Build()
package graph
