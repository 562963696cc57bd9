package graph

import (
	"testing"
)

func TestCompileFilter_Invalid(t *testing.T) {
	if _, err := CompileFilter("kind =="); err == nil {
		t.Error("expected compilation error for malformed expression")
	}

	if _, err := CompileFilter("props.confidence"); err == nil {
		// Non-boolean expressions compile but fail at evaluation time;
		// Match reports the type mismatch.
		f, err := CompileFilter("props.confidence")
		if err != nil {
			t.Fatalf("unexpected compile error: %v", err)
		}
		n := NewNode("a", NodeTypeActor).WithProperty("confidence", 1.0)
		if _, err := f.Match(n); err == nil {
			t.Error("expected Match to reject non-boolean result")
		}
	}
}

func TestExprFilter_Match(t *testing.T) {
	node := NewNode("apt-41", NodeTypeActor).
		WithProperty("origin", "CN").
		WithProperty("confidence", 92.5).
		WithLabel("apt")

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{name: "kind match", expr: `kind == 'actor'`, want: true},
		{name: "kind mismatch", expr: `kind == 'malware'`, want: false},
		{name: "id match", expr: `id == 'apt-41'`, want: true},
		{name: "label membership", expr: `'apt' in labels`, want: true},
		{name: "label absent", expr: `'ransomware' in labels`, want: false},
		{name: "property comparison", expr: `props.confidence >= 80.0`, want: true},
		{name: "compound", expr: `kind == 'actor' && props.origin == 'CN'`, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := CompileFilter(tt.expr)
			if err != nil {
				t.Fatalf("CompileFilter(%q) unexpected error: %v", tt.expr, err)
			}

			got, err := f.Match(node)
			if err != nil {
				t.Fatalf("Match() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterExpr(t *testing.T) {
	g := New()
	if err := g.AddNode(NewNode("a", NodeTypeActor).WithProperty("confidence", 90.0)); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(NewNode("b", NodeTypeActor).WithProperty("confidence", 10.0)); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(NewNode("c", NodeTypeMalware)); err != nil {
		t.Fatal(err)
	}
	mustAddEdges(t, g,
		NewEdge("e1", "a", "b", "knows"),
		NewEdge("e2", "a", "c", "uses"),
	)

	out, err := FilterExpr(g, `kind == 'actor' && props.confidence >= 50.0`)
	if err != nil {
		t.Fatalf("FilterExpr() unexpected error: %v", err)
	}

	if out.NodeCount() != 1 || !out.HasNode("a") {
		t.Errorf("expected only node 'a' to survive, got %v", out.NodeIDs())
	}

	// Node 'c' has no confidence property: the expression errors for it
	// and the node is excluded rather than failing the whole filter.
	if out.EdgeCount() != 0 {
		t.Errorf("expected no surviving edges, got %d", out.EdgeCount())
	}
}
