// Package traverse provides read-only traversal algorithms over a threat
// graph: breadth-first and depth-first walks, bounded neighbor expansion,
// exhaustive simple-path enumeration, topological sorting, and cycle
// detection.
//
// All functions treat the graph as immutable; none mutate it. Traversal
// entry points (BFS, DFS) fail with graph.ErrUnknownNode when the start id
// is absent, while lookup-style queries (Neighbors) return empty results
// instead. Visitation order is deterministic: neighbors are expanded in
// edge insertion order.
//
// Example:
//
//	order, err := traverse.BFS(g, "apt-41")
//	if err != nil { ... }
//
//	reachable := traverse.Neighbors(g, "apt-41", 2)
//
//	paths := traverse.AllPaths(g, "apt-41", "victim-bank", traverse.DefaultMaxDepth)
//	for _, p := range paths {
//	    fmt.Println(p.Nodes, p.Cost(g))
//	}
//
// AllPaths is exhaustive and exponential in the worst case; the maxDepth
// parameter (default 10) is the only bound. Callers analyzing dense graphs
// should keep it small.
package traverse
