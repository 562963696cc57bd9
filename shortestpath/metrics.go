package shortestpath

import (
	"github.com/zero-day-ai/threatgraph/graph"
)

// AveragePathLength returns the mean shortest-path weight over connected
// node pairs, ignoring disconnected pairs. Each unordered pair contributes
// once: the forward distance when the pair is forward-connected, otherwise
// the reverse distance. Returns 0 when no pair is connected.
func AveragePathLength(g *graph.Graph) float64 {
	ids := g.NodeIDs()
	if len(ids) < 2 {
		return 0
	}

	forward := make(map[string]map[string]float64, len(ids))
	for _, id := range ids {
		dist, _ := dijkstra(g, id)
		forward[id] = dist
	}

	var total float64
	var count int
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if d, ok := forward[ids[i]][ids[j]]; ok {
				total += d
				count++
			} else if d, ok := forward[ids[j]][ids[i]]; ok {
				total += d
				count++
			}
		}
	}

	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// Diameter returns the maximum shortest-path weight over all connected
// node pairs, or 0 for a graph with no connected pairs.
func Diameter(g *graph.Graph) float64 {
	var max float64
	for _, source := range g.NodeIDs() {
		dist, _ := dijkstra(g, source)
		for target, d := range dist {
			if target == source {
				continue
			}
			if d > max {
				max = d
			}
		}
	}
	return max
}
