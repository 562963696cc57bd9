package traverse

import (
	"github.com/zero-day-ai/threatgraph/graph"
)

// DefaultMaxDepth bounds exhaustive path enumeration when the caller does
// not supply a limit. Enumeration is exponential in the worst case; the
// depth ceiling is the only guard.
const DefaultMaxDepth = 10

// Path is a simple forward path through the graph.
type Path struct {
	// Nodes is the visited node id sequence, source first.
	Nodes []string `json:"nodes"`

	// Edges is the id sequence of the specific edges followed.
	Edges []string `json:"edges"`

	// Length is the number of edges in the path.
	Length int `json:"length"`
}

// Cost returns the total traversal cost of the path in g, summing the cost
// of each followed edge. Edges missing from g contribute nothing.
func (p *Path) Cost(g *graph.Graph) float64 {
	var total float64
	for _, eid := range p.Edges {
		if e := g.Edge(eid); e != nil {
			total += e.Cost()
		}
	}
	return total
}

// AllPaths enumerates every simple forward path (no repeated node) from
// sourceID to targetID with at most maxDepth edges. A maxDepth <= 0 uses
// DefaultMaxDepth. Multi-edges yield one path per distinct edge sequence.
// When sourceID == targetID the single zero-length path is returned.
//
// Unknown endpoints yield an empty result. The enumeration is exhaustive
// backtracking search; recursion depth is bounded by maxDepth.
func AllPaths(g *graph.Graph, sourceID, targetID string, maxDepth int) []*Path {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if !g.HasNode(sourceID) || !g.HasNode(targetID) {
		return nil
	}

	var paths []*Path
	nodeSeq := []string{sourceID}
	var edgeSeq []string
	onPath := map[string]struct{}{sourceID: {}}

	var expand func(current string)
	expand = func(current string) {
		if current == targetID {
			paths = append(paths, snapshot(nodeSeq, edgeSeq))
			return
		}
		if len(edgeSeq) >= maxDepth {
			return
		}
		for _, e := range g.EdgesFrom(current) {
			if _, ok := onPath[e.Target]; ok {
				continue
			}
			nodeSeq = append(nodeSeq, e.Target)
			edgeSeq = append(edgeSeq, e.ID)
			onPath[e.Target] = struct{}{}

			expand(e.Target)

			delete(onPath, e.Target)
			nodeSeq = nodeSeq[:len(nodeSeq)-1]
			edgeSeq = edgeSeq[:len(edgeSeq)-1]
		}
	}
	expand(sourceID)

	return paths
}

// snapshot copies the working node and edge sequences into a Path.
func snapshot(nodes, edges []string) *Path {
	p := &Path{
		Nodes:  make([]string, len(nodes)),
		Edges:  make([]string, len(edges)),
		Length: len(edges),
	}
	copy(p.Nodes, nodes)
	copy(p.Edges, edges)
	return p
}
