package centrality

import (
	"github.com/zero-day-ai/threatgraph/graph"
	"github.com/zero-day-ai/threatgraph/shortestpath"
	"github.com/zero-day-ai/threatgraph/traverse"
)

// Degree returns each node's out-degree, keyed by node id.
func Degree(g *graph.Graph) map[string]float64 {
	scores := make(map[string]float64, g.NodeCount())
	for _, id := range g.NodeIDs() {
		scores[id] = float64(g.OutDegree(id))
	}
	return scores
}

// Betweenness scores each node by how many shortest routes pass through it.
//
// For every ordered pair of distinct nodes the candidate paths come from
// exhaustive enumeration bounded by traverse.DefaultMaxDepth, filtered to
// the minimum edge count; each intermediate node on a shortest path earns
// 1/(number of shortest paths for that pair). This is the enumeration
// method, not Brandes' algorithm: it is O(V^2) path enumerations and
// ignores routes longer than the depth ceiling, which downstream scoring
// already accounts for.
func Betweenness(g *graph.Graph) map[string]float64 {
	scores := make(map[string]float64, g.NodeCount())
	ids := g.NodeIDs()
	for _, id := range ids {
		scores[id] = 0
	}

	for _, source := range ids {
		for _, target := range ids {
			if source == target {
				continue
			}
			paths := traverse.AllPaths(g, source, target, traverse.DefaultMaxDepth)
			if len(paths) == 0 {
				continue
			}

			minLen := paths[0].Length
			for _, p := range paths[1:] {
				if p.Length < minLen {
					minLen = p.Length
				}
			}

			var shortest []*traverse.Path
			for _, p := range paths {
				if p.Length == minLen {
					shortest = append(shortest, p)
				}
			}

			credit := 1 / float64(len(shortest))
			for _, p := range shortest {
				for _, id := range p.Nodes[1 : len(p.Nodes)-1] {
					scores[id] += credit
				}
			}
		}
	}

	return scores
}

// Closeness returns each node's closeness centrality: the number of
// reachable nodes divided by the sum of shortest distances to them. Nodes
// that reach nothing score 0.
func Closeness(g *graph.Graph) map[string]float64 {
	scores := make(map[string]float64, g.NodeCount())
	for _, id := range g.NodeIDs() {
		paths := shortestpath.From(g, id)
		if len(paths) == 0 {
			scores[id] = 0
			continue
		}
		var sum float64
		for _, p := range paths {
			sum += p.TotalWeight
		}
		if sum == 0 {
			scores[id] = 0
			continue
		}
		scores[id] = float64(len(paths)) / sum
	}
	return scores
}
