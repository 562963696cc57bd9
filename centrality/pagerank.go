package centrality

import (
	"math"

	"github.com/zero-day-ai/threatgraph/graph"
)

const (
	// DefaultDamping is the standard PageRank damping factor.
	DefaultDamping = 0.85

	// DefaultMaxIterations caps power iteration when convergence is slow.
	DefaultMaxIterations = 100

	// convergenceEpsilon is the per-node absolute rank delta below which
	// an iteration counts as converged.
	convergenceEpsilon = 0.0001
)

// PageRank computes each node's rank via power iteration.
//
// Ranks start uniform at 1/N and update as
//
//	rank[v] = (1-d)/N + d * sum(rank[u] / outDegree(u))
//
// over v's incoming edges, with dangling-node mass redistributed uniformly
// so ranks always sum to approximately 1. Iteration stops early once every
// node's rank moved less than 1e-4, or after maxIterations passes.
//
// A damping <= 0 or >= 1 falls back to DefaultDamping; maxIterations <= 0
// falls back to DefaultMaxIterations. An empty graph yields an empty map.
func PageRank(g *graph.Graph, damping float64, maxIterations int) map[string]float64 {
	if damping <= 0 || damping >= 1 {
		damping = DefaultDamping
	}
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	ids := g.NodeIDs()
	n := len(ids)
	if n == 0 {
		return map[string]float64{}
	}

	ranks := make(map[string]float64, n)
	for _, id := range ids {
		ranks[id] = 1 / float64(n)
	}

	for iter := 0; iter < maxIterations; iter++ {
		// Mass parked on nodes with no outgoing edges is spread uniformly.
		var danglingMass float64
		for _, id := range ids {
			if g.OutDegree(id) == 0 {
				danglingMass += ranks[id]
			}
		}

		next := make(map[string]float64, n)
		base := (1 - damping) / float64(n)
		shared := damping * danglingMass / float64(n)

		converged := true
		for _, id := range ids {
			var incoming float64
			for _, source := range g.ReverseAdjacency(id) {
				incoming += ranks[source] / float64(g.OutDegree(source))
			}
			next[id] = base + shared + damping*incoming

			if math.Abs(next[id]-ranks[id]) >= convergenceEpsilon {
				converged = false
			}
		}

		ranks = next
		if converged {
			break
		}
	}

	return ranks
}
