package community

import (
	"sort"

	"github.com/zero-day-ai/threatgraph/graph"
)

// DefaultMinCliqueSize is the default lower bound for reported cliques.
const DefaultMinCliqueSize = 3

// Cliques returns every maximal clique of at least minSize nodes using
// Bron-Kerbosch with pivoting. Adjacency is the undirected view: two nodes
// are adjacent when any edge connects them in either direction. A minSize
// <= 0 uses DefaultMinCliqueSize. Clique members are sorted and the result
// is ordered by size descending, then lexically, for deterministic output.
//
// Recursion depth is bounded by the largest clique size, so no explicit
// stack is needed.
func Cliques(g *graph.Graph, minSize int) [][]string {
	if minSize <= 0 {
		minSize = DefaultMinCliqueSize
	}

	neighbors := undirectedNeighbors(g)

	var cliques [][]string
	r := make(map[string]struct{})
	p := make(map[string]struct{}, g.NodeCount())
	x := make(map[string]struct{})
	for _, id := range g.NodeIDs() {
		p[id] = struct{}{}
	}

	var expand func(r, p, x map[string]struct{})
	expand = func(r, p, x map[string]struct{}) {
		if len(p) == 0 && len(x) == 0 {
			if len(r) >= minSize {
				clique := make([]string, 0, len(r))
				for id := range r {
					clique = append(clique, id)
				}
				sort.Strings(clique)
				cliques = append(cliques, clique)
			}
			return
		}

		// Pivot on the vertex with the most candidates to prune branches.
		pivot := ""
		best := -1
		for _, cand := range []map[string]struct{}{p, x} {
			for id := range cand {
				if n := len(intersect(neighbors[id], p)); n > best {
					best = n
					pivot = id
				}
			}
		}

		candidates := make([]string, 0, len(p))
		for id := range p {
			if _, ok := neighbors[pivot][id]; ok {
				continue
			}
			candidates = append(candidates, id)
		}
		sort.Strings(candidates)

		for _, v := range candidates {
			r[v] = struct{}{}
			expand(
				r,
				intersect(neighbors[v], p),
				intersect(neighbors[v], x),
			)
			delete(r, v)

			delete(p, v)
			x[v] = struct{}{}
		}
	}
	expand(r, p, x)

	sort.Slice(cliques, func(i, j int) bool {
		if len(cliques[i]) != len(cliques[j]) {
			return len(cliques[i]) > len(cliques[j])
		}
		return less(cliques[i], cliques[j])
	})
	return cliques
}

// undirectedNeighbors builds the symmetric adjacency sets, excluding
// self-loops (a node is never its own clique neighbor).
func undirectedNeighbors(g *graph.Graph) map[string]map[string]struct{} {
	neighbors := make(map[string]map[string]struct{}, g.NodeCount())
	for _, id := range g.NodeIDs() {
		neighbors[id] = make(map[string]struct{})
	}
	for _, e := range g.Edges() {
		if e.Source == e.Target {
			continue
		}
		neighbors[e.Source][e.Target] = struct{}{}
		neighbors[e.Target][e.Source] = struct{}{}
	}
	return neighbors
}

// intersect returns the members of b that are also in a.
func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	for id := range small {
		if _, ok := large[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// less compares two sorted string slices lexically.
func less(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
