package traverse

import (
	"fmt"

	"github.com/zero-day-ai/threatgraph/graph"
)

// BFS returns the node ids reachable from startID in breadth-first
// visitation order. The frontier is FIFO and each node is visited at most
// once; ties within a level follow edge insertion order.
// Returns graph.ErrUnknownNode if startID is not in the graph.
func BFS(g *graph.Graph, startID string) ([]string, error) {
	if !g.HasNode(startID) {
		return nil, fmt.Errorf("%w: %s", graph.ErrUnknownNode, startID)
	}

	visited := map[string]struct{}{startID: {}}
	order := []string{startID}
	queue := []string{startID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range g.Adjacency(current) {
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			order = append(order, next)
			queue = append(queue, next)
		}
	}

	return order, nil
}

// DFS returns the node ids reachable from startID in depth-first pre-order,
// expanding the first-inserted neighbor first. The walk uses an explicit
// stack, so arbitrarily deep graphs do not risk goroutine stack growth.
// Returns graph.ErrUnknownNode if startID is not in the graph.
func DFS(g *graph.Graph, startID string) ([]string, error) {
	if !g.HasNode(startID) {
		return nil, fmt.Errorf("%w: %s", graph.ErrUnknownNode, startID)
	}

	visited := make(map[string]struct{})
	var order []string
	stack := []string{startID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[current]; ok {
			continue
		}
		visited[current] = struct{}{}
		order = append(order, current)

		// Push neighbors in reverse so the first-inserted neighbor is
		// expanded first, matching recursive pre-order.
		adj := g.Adjacency(current)
		for i := len(adj) - 1; i >= 0; i-- {
			if _, ok := visited[adj[i]]; !ok {
				stack = append(stack, adj[i])
			}
		}
	}

	return order, nil
}

// Neighbors returns the set of node ids reachable from nodeID within depth
// forward hops, excluding nodeID itself. An unknown nodeID yields an empty
// set rather than an error: this is a lookup, not a traversal start.
func Neighbors(g *graph.Graph, nodeID string, depth int) map[string]struct{} {
	result := make(map[string]struct{})
	if !g.HasNode(nodeID) || depth < 1 {
		return result
	}

	visited := map[string]struct{}{nodeID: {}}
	frontier := []string{nodeID}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			for _, neighbor := range g.Adjacency(id) {
				if _, ok := visited[neighbor]; ok {
					continue
				}
				visited[neighbor] = struct{}{}
				result[neighbor] = struct{}{}
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	return result
}
