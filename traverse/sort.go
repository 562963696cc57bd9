package traverse

import (
	"fmt"

	"github.com/zero-day-ai/threatgraph/graph"
)

// TopologicalSort returns a topological ordering of every node id using
// Kahn's algorithm over in-degree counts. Zero-in-degree nodes are drained
// in insertion order. Returns graph.ErrCyclicGraph if the graph contains a
// directed cycle.
func TopologicalSort(g *graph.Graph) ([]string, error) {
	inDegree := make(map[string]int, g.NodeCount())
	for _, id := range g.NodeIDs() {
		inDegree[id] = g.InDegree(id)
	}

	var queue []string
	for _, id := range g.NodeIDs() {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, g.NodeCount())
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, next := range g.Adjacency(current) {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != g.NodeCount() {
		return nil, fmt.Errorf("%w: topological sort covered %d of %d nodes",
			graph.ErrCyclicGraph, len(order), g.NodeCount())
	}
	return order, nil
}

// node colors for cycle detection.
const (
	colorWhite = iota // unvisited
	colorGray         // on the current walk
	colorBlack        // fully explored
)

// HasCycle reports whether the graph contains a directed cycle, via
// white/gray/black depth-first coloring with an explicit stack. The walk
// stops at the first back edge to a gray node.
func HasCycle(g *graph.Graph) bool {
	color := make(map[string]int, g.NodeCount())

	type frame struct {
		id   string
		next int
	}

	for _, start := range g.NodeIDs() {
		if color[start] != colorWhite {
			continue
		}

		stack := []frame{{id: start}}
		color[start] = colorGray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			adj := g.Adjacency(top.id)

			if top.next < len(adj) {
				next := adj[top.next]
				top.next++

				switch color[next] {
				case colorGray:
					return true
				case colorWhite:
					color[next] = colorGray
					stack = append(stack, frame{id: next})
				}
				continue
			}

			color[top.id] = colorBlack
			stack = stack[:len(stack)-1]
		}
	}

	return false
}
