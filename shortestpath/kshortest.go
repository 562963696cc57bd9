package shortestpath

import (
	"sort"

	"github.com/zero-day-ai/threatgraph/graph"
	"github.com/zero-day-ai/threatgraph/traverse"
)

// KShortest returns up to k paths from sourceID to targetID ordered by
// (total weight, then edge count).
//
// The candidates are drawn from exhaustive enumeration bounded by
// traverse.DefaultMaxDepth, not from Yen's algorithm: paths longer than
// the depth ceiling are never considered, so on graphs with diameter
// greater than 10 the result can miss cheaper long routes. This mirrors
// the behavior downstream consumers already depend on; switching to a true
// k-shortest-paths algorithm would change outputs on such graphs.
func KShortest(g *graph.Graph, sourceID, targetID string, k int) []*Path {
	if k <= 0 {
		return nil
	}

	candidates := traverse.AllPaths(g, sourceID, targetID, traverse.DefaultMaxDepth)
	if len(candidates) == 0 {
		return nil
	}

	type scored struct {
		path *traverse.Path
		cost float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, p := range candidates {
		ranked = append(ranked, scored{path: p, cost: p.Cost(g)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].cost != ranked[j].cost {
			return ranked[i].cost < ranked[j].cost
		}
		return ranked[i].path.Length < ranked[j].path.Length
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]*Path, 0, k)
	for _, s := range ranked[:k] {
		out = append(out, &Path{
			Nodes:       s.path.Nodes,
			Edges:       s.path.Edges,
			TotalWeight: s.cost,
			Length:      s.path.Length,
		})
	}
	return out
}
