package community

import (
	"github.com/zero-day-ai/threatgraph/graph"
)

// Modularity scores how well a community assignment concentrates edges
// within communities versus a degree-preserving random baseline:
//
//	Q = (1/2m) * sum_ij [A_ij - k_i*k_j/(2m)] * delta(c_i, c_j)
//
// Edges are treated as undirected for the standard formula: A_ij counts
// edges between i and j in either direction and k_i is the undirected
// degree. Nodes absent from the assignment are ignored. Returns 0 for a
// graph with no edges.
func Modularity(g *graph.Graph, assignment map[string]int) float64 {
	m := float64(g.EdgeCount())
	if m == 0 {
		return 0
	}

	ids := g.NodeIDs()

	// Undirected degree and pairwise edge counts.
	degree := make(map[string]float64, len(ids))
	adjacency := make(map[string]map[string]float64, len(ids))
	for _, e := range g.Edges() {
		degree[e.Source]++
		degree[e.Target]++
		addUndirected(adjacency, e.Source, e.Target, 1)
	}

	var q float64
	for _, i := range ids {
		ci, ok := assignment[i]
		if !ok {
			continue
		}
		for _, j := range ids {
			cj, ok := assignment[j]
			if !ok || ci != cj {
				continue
			}
			q += adjacency[i][j] - degree[i]*degree[j]/(2*m)
		}
	}

	return q / (2 * m)
}

// addUndirected records an undirected edge weight symmetrically.
// Self-loops are counted once on the diagonal.
func addUndirected(adj map[string]map[string]float64, a, b string, w float64) {
	if adj[a] == nil {
		adj[a] = make(map[string]float64)
	}
	adj[a][b] += w
	if a == b {
		return
	}
	if adj[b] == nil {
		adj[b] = make(map[string]float64)
	}
	adj[b][a] += w
}
