// Package community groups threat graph nodes by structure: weakly and
// strongly connected components, modularity scoring, maximal clique
// detection, and Louvain community detection.
//
// Example:
//
//	weak := community.WeaklyConnected(g)
//	strong := community.StronglyConnected(g)
//
//	assignment, score := community.Louvain(g)
//	fmt.Println("modularity:", score)
//
//	rings := community.Cliques(g, 3)
//
// Cliques and Louvain operate on the undirected view of the graph (an edge
// in either direction connects two nodes); components respect or ignore
// direction as their names indicate. All functions are read-only and
// deterministic for a given construction order.
package community
