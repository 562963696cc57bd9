package community

import (
	"sort"

	"github.com/zero-day-ai/threatgraph/graph"
)

// Louvain detects communities by greedy modularity optimization over the
// undirected weighted view of the graph (parallel and antiparallel edges
// pool their costs).
//
// The algorithm alternates a local-move phase, relocating each node to the
// neighboring community with the largest modularity gain until no move
// improves, with an aggregation phase collapsing communities into
// super-nodes, until modularity stops improving. Communities are renumbered
// to dense indices in node insertion order.
//
// Returns the per-node community assignment and its modularity score. An
// edgeless graph places every node in its own community with modularity 0.
func Louvain(g *graph.Graph) (map[string]int, float64) {
	ids := g.NodeIDs()
	assignment := make(map[string]int, len(ids))

	if g.EdgeCount() == 0 {
		for i, id := range ids {
			assignment[id] = i
		}
		return assignment, 0
	}

	// Undirected weighted working graph, indexed by position.
	lg := newLevelGraph(g)

	// membership[i] maps original node index i to its community across
	// aggregation levels.
	membership := make([]int, len(ids))
	for i := range membership {
		membership[i] = i
	}

	for {
		moved := lg.localMoves()
		partition := lg.compactCommunities()

		for i := range membership {
			membership[i] = partition[membership[i]]
		}

		if !moved {
			break
		}
		lg = lg.aggregate(partition)
	}

	// Renumber communities densely in first-seen node order.
	renumber := make(map[int]int)
	for i, id := range ids {
		c := membership[i]
		if _, ok := renumber[c]; !ok {
			renumber[c] = len(renumber)
		}
		assignment[id] = renumber[c]
	}

	return assignment, Modularity(g, assignment)
}

// levelGraph is one aggregation level: an undirected weighted graph over
// integer nodes with a mutable community assignment.
type levelGraph struct {
	weights   []map[int]float64 // symmetric adjacency, self-loops on the diagonal
	selfLoops []float64
	degree    []float64 // weighted degree, self-loops counted twice
	community []int
	total     []float64 // sum of degrees per community
	m2        float64   // twice the total edge weight
}

// newLevelGraph builds the level-0 working graph from the threat graph.
func newLevelGraph(g *graph.Graph) *levelGraph {
	ids := g.NodeIDs()
	indexOf := make(map[string]int, len(ids))
	for i, id := range ids {
		indexOf[id] = i
	}

	lg := &levelGraph{
		weights:   make([]map[int]float64, len(ids)),
		selfLoops: make([]float64, len(ids)),
		degree:    make([]float64, len(ids)),
		community: make([]int, len(ids)),
		total:     make([]float64, len(ids)),
	}
	for i := range lg.weights {
		lg.weights[i] = make(map[int]float64)
		lg.community[i] = i
	}

	for _, e := range g.Edges() {
		u, v := indexOf[e.Source], indexOf[e.Target]
		w := e.Cost()
		if u == v {
			lg.selfLoops[u] += w
		} else {
			lg.weights[u][v] += w
			lg.weights[v][u] += w
		}
	}

	for i := range lg.weights {
		d := 2 * lg.selfLoops[i]
		for _, w := range lg.weights[i] {
			d += w
		}
		lg.degree[i] = d
		lg.total[i] = d
		lg.m2 += d
	}

	return lg
}

// localMoves runs relocation passes until no node improves modularity.
// Returns true if any node changed community.
func (lg *levelGraph) localMoves() bool {
	anyMoved := false
	for {
		improved := false
		for node := range lg.weights {
			current := lg.community[node]

			// Weight from node to each neighboring community.
			commWeight := make(map[int]float64)
			for neighbor, w := range lg.weights[node] {
				commWeight[lg.community[neighbor]] += w
			}

			// Detach the node before evaluating destinations.
			lg.total[current] -= lg.degree[node]

			bestComm := current
			bestGain := commWeight[current] - lg.total[current]*lg.degree[node]/lg.m2

			comms := make([]int, 0, len(commWeight))
			for c := range commWeight {
				comms = append(comms, c)
			}
			sort.Ints(comms)
			for _, c := range comms {
				if c == current {
					continue
				}
				gain := commWeight[c] - lg.total[c]*lg.degree[node]/lg.m2
				if gain > bestGain {
					bestGain = gain
					bestComm = c
				}
			}

			lg.total[bestComm] += lg.degree[node]
			lg.community[node] = bestComm
			if bestComm != current {
				improved = true
				anyMoved = true
			}
		}
		if !improved {
			return anyMoved
		}
	}
}

// compactCommunities renumbers the current communities densely and returns
// the node -> dense community mapping for this level.
func (lg *levelGraph) compactCommunities() []int {
	renumber := make(map[int]int)
	partition := make([]int, len(lg.community))
	for node, c := range lg.community {
		if _, ok := renumber[c]; !ok {
			renumber[c] = len(renumber)
		}
		partition[node] = renumber[c]
	}
	return partition
}

// aggregate collapses each community into a super-node, pooling edge
// weights; intra-community weight becomes a self-loop.
func (lg *levelGraph) aggregate(partition []int) *levelGraph {
	count := 0
	for _, c := range partition {
		if c+1 > count {
			count = c + 1
		}
	}

	next := &levelGraph{
		weights:   make([]map[int]float64, count),
		selfLoops: make([]float64, count),
		degree:    make([]float64, count),
		community: make([]int, count),
		total:     make([]float64, count),
		m2:        lg.m2,
	}
	for i := range next.weights {
		next.weights[i] = make(map[int]float64)
		next.community[i] = i
	}

	for node, adj := range lg.weights {
		cu := partition[node]
		next.selfLoops[cu] += lg.selfLoops[node]
		for neighbor, w := range adj {
			cv := partition[neighbor]
			if cu == cv {
				// Each undirected edge appears twice in the symmetric
				// adjacency; halve to store it once as a self-loop.
				next.selfLoops[cu] += w / 2
			} else {
				next.weights[cu][cv] += w
			}
		}
	}

	for i := range next.weights {
		d := 2 * next.selfLoops[i]
		for _, w := range next.weights[i] {
			d += w
		}
		next.degree[i] = d
		next.total[i] = d
	}

	return next
}
