package community

import (
	"github.com/zero-day-ai/threatgraph/graph"
)

// WeaklyConnected partitions all node ids into weakly connected
// components: maximal sets connected when edge direction is ignored.
// Components are discovered in node insertion order, as are their members.
func WeaklyConnected(g *graph.Graph) [][]string {
	visited := make(map[string]struct{}, g.NodeCount())
	var components [][]string

	for _, start := range g.NodeIDs() {
		if _, ok := visited[start]; ok {
			continue
		}

		var component []string
		queue := []string{start}
		visited[start] = struct{}{}

		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			component = append(component, current)

			// Forward and reverse neighbors both connect weakly.
			for _, next := range g.Adjacency(current) {
				if _, ok := visited[next]; !ok {
					visited[next] = struct{}{}
					queue = append(queue, next)
				}
			}
			for _, next := range g.ReverseAdjacency(current) {
				if _, ok := visited[next]; !ok {
					visited[next] = struct{}{}
					queue = append(queue, next)
				}
			}
		}

		components = append(components, component)
	}

	return components
}

// StronglyConnected partitions all node ids into strongly connected
// components using an iterative Tarjan walk: every node in a component can
// reach every other by directed paths. Singleton nodes form their own
// components. The explicit call stack keeps deep graphs from exhausting
// goroutine stacks.
func StronglyConnected(g *graph.Graph) [][]string {
	index := 0
	indices := make(map[string]int, g.NodeCount())
	lowlink := make(map[string]int, g.NodeCount())
	onStack := make(map[string]bool, g.NodeCount())
	var tarjanStack []string
	var components [][]string

	type frame struct {
		id   string
		next int
	}

	for _, start := range g.NodeIDs() {
		if _, ok := indices[start]; ok {
			continue
		}

		callStack := []frame{{id: start}}
		for len(callStack) > 0 {
			top := &callStack[len(callStack)-1]

			if top.next == 0 {
				indices[top.id] = index
				lowlink[top.id] = index
				index++
				tarjanStack = append(tarjanStack, top.id)
				onStack[top.id] = true
			}

			adj := g.Adjacency(top.id)
			descended := false
			for top.next < len(adj) {
				next := adj[top.next]
				top.next++

				if _, ok := indices[next]; !ok {
					callStack = append(callStack, frame{id: next})
					descended = true
					break
				}
				if onStack[next] && indices[next] < lowlink[top.id] {
					lowlink[top.id] = indices[next]
				}
			}
			if descended {
				continue
			}

			if lowlink[top.id] == indices[top.id] {
				var component []string
				for {
					last := tarjanStack[len(tarjanStack)-1]
					tarjanStack = tarjanStack[:len(tarjanStack)-1]
					onStack[last] = false
					component = append(component, last)
					if last == top.id {
						break
					}
				}
				components = append(components, component)
			}

			finished := top.id
			callStack = callStack[:len(callStack)-1]
			if len(callStack) > 0 {
				parent := &callStack[len(callStack)-1]
				if lowlink[finished] < lowlink[parent.id] {
					lowlink[parent.id] = lowlink[finished]
				}
			}
		}
	}

	return components
}
