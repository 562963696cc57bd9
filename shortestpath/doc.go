// Package shortestpath computes weighted lowest-cost routes through a
// threat graph: single-pair and single-source Dijkstra, graph diameter,
// average path length, and an enumeration-based k-shortest-paths
// approximation.
//
// Edge costs are non-negative; edges without an explicit positive weight
// cost 1. Unreachable targets and unknown endpoints yield nil results
// rather than errors.
//
// Example:
//
//	p := shortestpath.Between(g, "dropper-x", "victim-bank")
//	if p == nil {
//	    // no route
//	}
//	fmt.Println(p.Nodes, p.TotalWeight)
//
//	all := shortestpath.From(g, "dropper-x")
//	for target, p := range all {
//	    fmt.Println(target, p.TotalWeight)
//	}
//
// AveragePathLength and Diameter run a full single-source computation per
// node and are O(V * (E log V)); both are intended for periodic analysis,
// not per-request use on large graphs.
package shortestpath
