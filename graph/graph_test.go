package graph

import (
	"errors"
	"testing"
)

func TestNewGraph(t *testing.T) {
	g := New()

	if g.NodeCount() != 0 {
		t.Errorf("expected empty graph to have 0 nodes, got %d", g.NodeCount())
	}

	if g.EdgeCount() != 0 {
		t.Errorf("expected empty graph to have 0 edges, got %d", g.EdgeCount())
	}
}

func TestGraph_AddNode(t *testing.T) {
	g := New()

	if err := g.AddNode(NewNode("a", NodeTypeActor)); err != nil {
		t.Fatalf("AddNode() unexpected error: %v", err)
	}

	if !g.HasNode("a") {
		t.Error("expected node 'a' to be present")
	}

	if g.Node("a").Type != NodeTypeActor {
		t.Errorf("expected node type to be actor, got %q", g.Node("a").Type)
	}
}

func TestGraph_AddNode_Duplicate(t *testing.T) {
	g := New()

	if err := g.AddNode(NewNode("a", NodeTypeActor)); err != nil {
		t.Fatalf("first AddNode() unexpected error: %v", err)
	}

	err := g.AddNode(NewNode("a", NodeTypeMalware))
	if !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("expected ErrDuplicateNode, got %v", err)
	}
}

func TestGraph_AddNode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		node *Node
	}{
		{
			name: "empty id",
			node: NewNode("", NodeTypeActor),
		},
		{
			name: "invalid type",
			node: NewNode("a", NodeType("unknown")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := New().AddNode(tt.node); err == nil {
				t.Error("expected AddNode() to fail")
			}
		})
	}
}

func TestGraph_AddEdge(t *testing.T) {
	g := New()
	mustAddNodes(t, g, "a", "b")

	if err := g.AddEdge(NewEdge("e1", "a", "b", "related_to")); err != nil {
		t.Fatalf("AddEdge() unexpected error: %v", err)
	}

	if got := g.Adjacency("a"); len(got) != 1 || got[0] != "b" {
		t.Errorf("expected adjacency of 'a' to be [b], got %v", got)
	}

	if got := g.ReverseAdjacency("b"); len(got) != 1 || got[0] != "a" {
		t.Errorf("expected reverse adjacency of 'b' to be [a], got %v", got)
	}
}

func TestGraph_AddEdge_UnknownEndpoint(t *testing.T) {
	g := New()
	mustAddNodes(t, g, "a")

	tests := []struct {
		name string
		edge *Edge
	}{
		{
			name: "missing target",
			edge: NewEdge("e1", "a", "b", "related_to"),
		},
		{
			name: "missing source",
			edge: NewEdge("e2", "x", "a", "related_to"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AddEdge(tt.edge)
			if !errors.Is(err, ErrUnknownNode) {
				t.Errorf("expected ErrUnknownNode, got %v", err)
			}
		})
	}
}

func TestGraph_MultiEdges(t *testing.T) {
	g := New()
	mustAddNodes(t, g, "a", "b")
	mustAddEdges(t, g,
		NewEdge("e1", "a", "b", "uses"),
		NewEdge("e2", "a", "b", "targets"),
	)

	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}

	if got := g.EdgesBetween("a", "b"); len(got) != 2 {
		t.Errorf("expected 2 edges between a and b, got %d", len(got))
	}

	// Multi-edges repeat in the adjacency list.
	if got := g.Adjacency("a"); len(got) != 2 {
		t.Errorf("expected adjacency of 'a' to have 2 entries, got %v", got)
	}
}

func TestGraph_CheapestEdge(t *testing.T) {
	g := New()
	mustAddNodes(t, g, "a", "b")
	mustAddEdges(t, g,
		NewEdge("e1", "a", "b", "uses").WithWeight(5),
		NewEdge("e2", "a", "b", "uses").WithWeight(2),
	)

	best := g.CheapestEdge("a", "b")
	if best == nil || best.ID != "e2" {
		t.Errorf("expected cheapest edge e2, got %+v", best)
	}

	if g.CheapestEdge("b", "a") != nil {
		t.Error("expected no edge from b to a")
	}
}

func TestEdge_Cost(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		want   float64
	}{
		{name: "default weight", weight: 0, want: 1},
		{name: "negative weight", weight: -3, want: 1},
		{name: "explicit weight", weight: 2.5, want: 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEdge("e", "a", "b", "t").WithWeight(tt.weight)
			if got := e.Cost(); got != tt.want {
				t.Errorf("Cost() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	a := New()
	mustAddNodes(t, a, "a", "b")
	mustAddEdges(t, a, NewEdge("e1", "a", "b", "uses"))
	a.Node("a").WithProperty("origin", "feed-a")

	b := New()
	if err := b.AddNode(NewNode("a", NodeTypeMalware).WithProperty("origin", "feed-b")); err != nil {
		t.Fatalf("AddNode() unexpected error: %v", err)
	}
	mustAddNodes(t, b, "c")
	mustAddEdges(t, b, NewEdge("e2", "a", "c", "drops"))

	m := Merge(a, b)

	if m.NodeCount() != 3 {
		t.Errorf("expected 3 nodes after merge, got %d", m.NodeCount())
	}

	if m.EdgeCount() != 2 {
		t.Errorf("expected 2 edges after merge, got %d", m.EdgeCount())
	}

	// First graph wins on id collision.
	if got := m.Node("a").Properties["origin"]; got != "feed-a" {
		t.Errorf("expected node 'a' from first graph, got origin %v", got)
	}

	// Adjacency rebuilt from the union of edges.
	if got := m.Adjacency("a"); len(got) != 2 {
		t.Errorf("expected adjacency of 'a' to have 2 entries, got %v", got)
	}
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	a := New()
	mustAddNodes(t, a, "a")

	m := Merge(a, New())
	m.Node("a").WithProperty("tainted", true)

	if _, ok := a.Node("a").Properties["tainted"]; ok {
		t.Error("expected merge output to not alias input nodes")
	}
}

func TestFilter(t *testing.T) {
	g := New()
	if err := g.AddNode(NewNode("m1", NodeTypeMalware)); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(NewNode("m2", NodeTypeMalware)); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(NewNode("v1", NodeTypeVictim)); err != nil {
		t.Fatal(err)
	}
	mustAddEdges(t, g,
		NewEdge("e1", "m1", "m2", "variant_of"),
		NewEdge("e2", "m1", "v1", "targets"),
	)

	out := Filter(g, func(n *Node) bool { return n.Type == NodeTypeMalware })

	if out.NodeCount() != 2 {
		t.Errorf("expected 2 nodes after filter, got %d", out.NodeCount())
	}

	// e2 loses its target and must not survive.
	if out.EdgeCount() != 1 {
		t.Errorf("expected 1 edge after filter, got %d", out.EdgeCount())
	}

	if out.Edge("e1") == nil {
		t.Error("expected edge e1 to survive the filter")
	}
}

func TestParseNodeType(t *testing.T) {
	for _, nt := range AllNodeTypes() {
		got, err := ParseNodeType(nt.String())
		if err != nil {
			t.Errorf("ParseNodeType(%q) unexpected error: %v", nt, err)
		}
		if got != nt {
			t.Errorf("ParseNodeType(%q) = %q", nt, got)
		}
	}

	if _, err := ParseNodeType("bogus"); err == nil {
		t.Error("expected ParseNodeType to fail on unknown type")
	}
}

// mustAddNodes adds actor nodes with the given ids, failing the test on error.
func mustAddNodes(t *testing.T, g *Graph, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := g.AddNode(NewNode(id, NodeTypeActor)); err != nil {
			t.Fatalf("AddNode(%s) unexpected error: %v", id, err)
		}
	}
}

// mustAddEdges adds the given edges, failing the test on error.
func mustAddEdges(t *testing.T, g *Graph, edges ...*Edge) {
	t.Helper()
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s) unexpected error: %v", e.ID, err)
		}
	}
}
