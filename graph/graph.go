package graph

import (
	"fmt"
)

// Graph is an in-memory directed property graph over threat entities.
//
// The forward and reverse adjacency lists are denormalized state derived
// from the edge map. All mutation goes through AddNode and AddEdge so the
// adjacency lists stay consistent with the edges at a single choke point;
// there is no deletion API.
//
// A Graph is not safe for concurrent mutation. Callers must not mutate a
// Graph while an analysis algorithm is reading it (single-writer,
// many-reader discipline by convention).
type Graph struct {
	nodes map[string]*Node
	edges map[string]*Edge

	// adjacency maps a node id to the ids of directly reachable nodes,
	// in edge insertion order. Multi-edges produce repeated entries.
	adjacency map[string][]string

	// reverse maps a node id to the ids of nodes with an edge into it,
	// in edge insertion order.
	reverse map[string][]string

	// edgeOrder preserves edge insertion order for deterministic iteration.
	edgeOrder []string

	// nodeOrder preserves node insertion order for deterministic iteration.
	nodeOrder []string
}

// New creates a new empty Graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[string]*Node),
		edges:     make(map[string]*Edge),
		adjacency: make(map[string][]string),
		reverse:   make(map[string][]string),
	}
}

// AddNode adds a node to the graph.
// Returns ErrDuplicateNode if a node with the same id is already present.
func (g *Graph) AddNode(n *Node) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("invalid node: %w", err)
	}
	if _, ok := g.nodes[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	g.nodes[n.ID] = n
	g.nodeOrder = append(g.nodeOrder, n.ID)
	return nil
}

// AddEdge adds a directed edge to the graph and updates both adjacency lists.
// Both endpoints must already exist; returns ErrUnknownNode otherwise.
func (g *Graph) AddEdge(e *Edge) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid edge: %w", err)
	}
	if _, ok := g.nodes[e.Source]; !ok {
		return fmt.Errorf("%w: edge %s source %s", ErrUnknownNode, e.ID, e.Source)
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return fmt.Errorf("%w: edge %s target %s", ErrUnknownNode, e.ID, e.Target)
	}
	if _, ok := g.edges[e.ID]; ok {
		return fmt.Errorf("duplicate edge id: %s", e.ID)
	}
	g.edges[e.ID] = e
	g.edgeOrder = append(g.edgeOrder, e.ID)
	g.adjacency[e.Source] = append(g.adjacency[e.Source], e.Target)
	g.reverse[e.Target] = append(g.reverse[e.Target], e.Source)
	return nil
}

// Node returns the node with the given id, or nil if absent.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Edge returns the edge with the given id, or nil if absent.
func (g *Graph) Edge(id string) *Edge {
	return g.edges[id]
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodeIDs returns all node ids in insertion order.
func (g *Graph) NodeIDs() []string {
	out := make([]string, len(g.nodeOrder))
	copy(out, g.nodeOrder)
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		out = append(out, g.edges[id])
	}
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Adjacency returns the forward neighbor ids of the given node in edge
// insertion order. The returned slice must not be modified.
func (g *Graph) Adjacency(id string) []string {
	return g.adjacency[id]
}

// ReverseAdjacency returns the ids of nodes with an edge into the given
// node, in edge insertion order. The returned slice must not be modified.
func (g *Graph) ReverseAdjacency(id string) []string {
	return g.reverse[id]
}

// OutDegree returns the number of outgoing edges of the given node.
func (g *Graph) OutDegree(id string) int {
	return len(g.adjacency[id])
}

// InDegree returns the number of incoming edges of the given node.
func (g *Graph) InDegree(id string) int {
	return len(g.reverse[id])
}

// EdgesFrom returns the outgoing edges of the given node in insertion order.
func (g *Graph) EdgesFrom(id string) []*Edge {
	var out []*Edge
	for _, eid := range g.edgeOrder {
		if g.edges[eid].Source == id {
			out = append(out, g.edges[eid])
		}
	}
	return out
}

// EdgesBetween returns all edges from source to target in insertion order.
// Multi-edges yield multiple results.
func (g *Graph) EdgesBetween(source, target string) []*Edge {
	var out []*Edge
	for _, eid := range g.edgeOrder {
		e := g.edges[eid]
		if e.Source == source && e.Target == target {
			out = append(out, e)
		}
	}
	return out
}

// CheapestEdge returns the lowest-cost edge from source to target, or nil
// if no such edge exists. Ties are broken by insertion order.
func (g *Graph) CheapestEdge(source, target string) *Edge {
	var best *Edge
	for _, eid := range g.edgeOrder {
		e := g.edges[eid]
		if e.Source != source || e.Target != target {
			continue
		}
		if best == nil || e.Cost() < best.Cost() {
			best = e
		}
	}
	return best
}

// Merge returns a new Graph containing the union of nodes and edges from
// a and b. On id collision the entry from a wins. Adjacency lists are
// rebuilt from the copied edges; neither input is modified.
func Merge(a, b *Graph) *Graph {
	out := New()
	for _, n := range a.Nodes() {
		out.nodes[n.ID] = n.clone()
		out.nodeOrder = append(out.nodeOrder, n.ID)
	}
	for _, n := range b.Nodes() {
		if _, ok := out.nodes[n.ID]; ok {
			continue
		}
		out.nodes[n.ID] = n.clone()
		out.nodeOrder = append(out.nodeOrder, n.ID)
	}
	for _, e := range a.Edges() {
		out.insertEdge(e.clone())
	}
	for _, e := range b.Edges() {
		if _, ok := out.edges[e.ID]; ok {
			continue
		}
		// Merged edges may reference nodes dropped by the id collision
		// rule only if the inputs were inconsistent; guard anyway.
		if _, ok := out.nodes[e.Source]; !ok {
			continue
		}
		if _, ok := out.nodes[e.Target]; !ok {
			continue
		}
		out.insertEdge(e.clone())
	}
	return out
}

// Filter returns a new Graph containing only the nodes for which the
// predicate returns true, and only the edges whose source and target both
// survive. Adjacency lists are rebuilt; the input is not modified.
func Filter(g *Graph, predicate func(*Node) bool) *Graph {
	out := New()
	for _, n := range g.Nodes() {
		if !predicate(n) {
			continue
		}
		out.nodes[n.ID] = n.clone()
		out.nodeOrder = append(out.nodeOrder, n.ID)
	}
	for _, e := range g.Edges() {
		if _, ok := out.nodes[e.Source]; !ok {
			continue
		}
		if _, ok := out.nodes[e.Target]; !ok {
			continue
		}
		out.insertEdge(e.clone())
	}
	return out
}

// insertEdge adds an already-validated edge and maintains the adjacency
// lists. Used by Merge and Filter where endpoints are known to exist.
func (g *Graph) insertEdge(e *Edge) {
	g.edges[e.ID] = e
	g.edgeOrder = append(g.edgeOrder, e.ID)
	g.adjacency[e.Source] = append(g.adjacency[e.Source], e.Target)
	g.reverse[e.Target] = append(g.reverse[e.Target], e.Source)
}
