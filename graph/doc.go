// Package graph provides the in-memory directed property graph underlying
// threat-intelligence analysis.
//
// A Graph owns node and edge collections plus forward and reverse adjacency
// indices derived from the edges. Construction is incremental and
// invariant-preserving: AddNode and AddEdge are the only mutation points,
// so the adjacency indices always stay consistent with the edge map.
//
// # Building a Graph
//
// Nodes and edges use fluent builders:
//
//	g := graph.New()
//
//	actor := graph.NewNode("apt-41", graph.NodeTypeActor).
//	    WithProperty("origin", "CN").
//	    WithLabel("apt")
//
//	c2 := graph.NewNode("203.0.113.7", graph.NodeTypeInfrastructure).
//	    WithProperty("asn", 64500)
//
//	if err := g.AddNode(actor); err != nil { ... }
//	if err := g.AddNode(c2); err != nil { ... }
//
//	edge := graph.NewEdge("e1", "apt-41", "203.0.113.7", "operates").
//	    WithWeight(2)
//	if err := g.AddEdge(edge); err != nil { ... }
//
// Edges are directed, typed, and optionally weighted; edges without an
// explicit positive weight cost 1 during pathfinding. Multi-edges between
// the same node pair are permitted.
//
// # Combining and Narrowing
//
// Merge unions two graphs (first argument wins on id collision) and Filter
// narrows a graph to the nodes satisfying a predicate, keeping only edges
// whose endpoints both survive:
//
//	combined := graph.Merge(feedA, feedB)
//	actors := graph.Filter(combined, func(n *graph.Node) bool {
//	    return n.Type == graph.NodeTypeActor
//	})
//
// FilterExpr accepts a CEL expression instead of a Go predicate, which is
// useful when the filter comes from configuration:
//
//	highConf, err := graph.FilterExpr(g, "props.confidence >= 80.0")
//
// # Error Handling
//
// Construction failures are sentinel errors checked with errors.Is:
// ErrDuplicateNode from AddNode, ErrUnknownNode from AddEdge when an
// endpoint is missing. Read accessors never fail; lookups on absent ids
// return nil or empty results.
//
// # Concurrency
//
// A Graph is safe for concurrent readers once construction is finished.
// Callers must not mutate a Graph while analysis packages (traverse,
// shortestpath, centrality, community) are reading it.
package graph
