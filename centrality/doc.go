// Package centrality ranks the structural importance of threat graph
// nodes: degree, betweenness, closeness, PageRank, and a combined
// influential-node ranking.
//
// All scores are pure functions of graph state: calling any of them twice
// on an unmodified graph yields identical results.
//
// Example:
//
//	ranks := centrality.PageRank(g, centrality.DefaultDamping, centrality.DefaultMaxIterations)
//
//	top := centrality.Influential(g, 5)
//	for _, s := range top {
//	    fmt.Println(s.NodeID, s.Total)
//	}
//
// Betweenness uses bounded exhaustive path enumeration rather than
// Brandes' algorithm and is expensive on large or dense graphs; see its
// doc comment for the trade-off.
package centrality
