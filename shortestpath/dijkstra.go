package shortestpath

import (
	"container/heap"

	"github.com/zero-day-ai/threatgraph/graph"
)

// Path is a lowest-cost route between two nodes.
type Path struct {
	// Nodes is the node id sequence, source first.
	Nodes []string `json:"nodes"`

	// Edges is the id sequence of the edges followed.
	Edges []string `json:"edges"`

	// TotalWeight is the sum of followed edge costs.
	TotalWeight float64 `json:"total_weight"`

	// Length is the number of edges in the path.
	Length int `json:"length"`
}

// Between returns the lowest-cost path from sourceID to targetID using
// Dijkstra's algorithm over non-negative edge costs (unweighted edges cost
// 1). Returns nil when the target is unreachable or either endpoint is
// unknown; "not found" is a query result, not an error.
func Between(g *graph.Graph, sourceID, targetID string) *Path {
	if !g.HasNode(sourceID) || !g.HasNode(targetID) {
		return nil
	}
	dist, prev := dijkstra(g, sourceID)
	if _, ok := dist[targetID]; !ok {
		return nil
	}
	return assemble(sourceID, targetID, dist, prev)
}

// From returns the lowest-cost path from sourceID to every other reachable
// node, keyed by target id. Unreachable nodes are absent from the map; the
// source itself is not included. An unknown source yields an empty map.
func From(g *graph.Graph, sourceID string) map[string]*Path {
	paths := make(map[string]*Path)
	if !g.HasNode(sourceID) {
		return paths
	}
	dist, prev := dijkstra(g, sourceID)
	for target := range dist {
		if target == sourceID {
			continue
		}
		paths[target] = assemble(sourceID, target, dist, prev)
	}
	return paths
}

// hop records the predecessor step used to reach a node at lowest cost.
type hop struct {
	node string
	edge string
}

// dijkstra computes lowest costs from source to every reachable node.
// Multi-edges are handled by relaxing each outgoing edge individually.
func dijkstra(g *graph.Graph, sourceID string) (map[string]float64, map[string]hop) {
	dist := map[string]float64{sourceID: 0}
	prev := make(map[string]hop)
	done := make(map[string]struct{})

	pq := &costHeap{{id: sourceID, cost: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(costItem)
		if _, ok := done[item.id]; ok {
			continue
		}
		done[item.id] = struct{}{}

		for _, e := range g.EdgesFrom(item.id) {
			next := e.Target
			if _, ok := done[next]; ok {
				continue
			}
			candidate := item.cost + e.Cost()
			if current, ok := dist[next]; !ok || candidate < current {
				dist[next] = candidate
				prev[next] = hop{node: item.id, edge: e.ID}
				heap.Push(pq, costItem{id: next, cost: candidate})
			}
		}
	}

	return dist, prev
}

// assemble rebuilds the path to target by following predecessor hops.
func assemble(sourceID, targetID string, dist map[string]float64, prev map[string]hop) *Path {
	var nodes, edges []string
	for at := targetID; ; {
		nodes = append([]string{at}, nodes...)
		if at == sourceID {
			break
		}
		h := prev[at]
		edges = append([]string{h.edge}, edges...)
		at = h.node
	}
	return &Path{
		Nodes:       nodes,
		Edges:       edges,
		TotalWeight: dist[targetID],
		Length:      len(edges),
	}
}

// costItem is a priority queue entry. Stale entries are skipped on pop
// (lazy deletion) rather than re-prioritized in place.
type costItem struct {
	id   string
	cost float64
}

type costHeap []costItem

func (h costHeap) Len() int            { return len(h) }
func (h costHeap) Less(i, j int) bool  { return h[i].cost < h[j].cost }
func (h costHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *costHeap) Push(x any)         { *h = append(*h, x.(costItem)) }
func (h *costHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
