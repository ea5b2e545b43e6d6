// Package assertions provides fluent test assertions for graph entities and
// query statistics, reported through testify.
//
// Supported assertions:
//   - Query statistics updates (ThatStatistics(t, s).ContainsUpdates())
//   - Statistics counters (HasNodesCreated(2), HasCounter("labels_added", 1))
//   - Entity kind, identity and properties (ThatNode(t, n).HasKind(graph.KindNode))
//   - JSON paths into properties (HasPropertyPath("address.city", "Oslo"))
//   - JSON Schema validation of properties (MatchesSchema(schema))
//   - Collection membership (ThatNodes(t, nodes).ContainsExactlyIDs(graph.KindNode, 1, 2))
//
// Failure messages identify entities by their representation, KIND{id=N},
// and collections by their representations sorted by identity.
package assertions
