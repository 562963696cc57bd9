package graph

import "errors"

// Sentinel errors for graph construction and traversal operations.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrDuplicateNode indicates that AddNode was called with an id that is
	// already present in the graph. Node ids are immutable and unique; the
	// caller must choose a different id or treat the collision as an
	// idempotent no-op upstream.
	//
	// Example:
	//	if err := g.AddNode(node); errors.Is(err, graph.ErrDuplicateNode) {
	//	    // node already ingested, skip
	//	}
	ErrDuplicateNode = errors.New("duplicate node id")

	// ErrUnknownNode indicates that an operation referenced a node id that
	// is not present in the graph. It is returned by AddEdge when either
	// endpoint is missing, and by traversal entry points when the start
	// node does not exist. Query-style lookups (neighbor expansion,
	// shortest-path queries) return empty results instead.
	//
	// Example:
	//	if err := g.AddEdge(edge); errors.Is(err, graph.ErrUnknownNode) {
	//	    // add both endpoints before the edge
	//	}
	ErrUnknownNode = errors.New("unknown node id")

	// ErrCyclicGraph indicates that a topological ordering was requested on
	// a graph containing at least one directed cycle. The caller must not
	// treat the graph as a DAG.
	ErrCyclicGraph = errors.New("graph contains a cycle")
)
