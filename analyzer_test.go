package threatgraph

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/zero-day-ai/threatgraph/config"
	"github.com/zero-day-ai/threatgraph/graph"
	"github.com/zero-day-ai/threatgraph/indicator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// campaignGraph builds a small intrusion scenario: an actor running a
// campaign that drops malware onto shared infrastructure.
func campaignGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()

	nodes := []*graph.Node{
		graph.NewNode("apt-1", graph.NodeTypeActor),
		graph.NewNode("campaign-1", graph.NodeTypeCampaign),
		graph.NewNode("loader", graph.NodeTypeMalware),
		graph.NewNode("c2-server", graph.NodeTypeInfrastructure),
		graph.NewNode("victim-1", graph.NodeTypeVictim),
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}

	edges := []*graph.Edge{
		graph.NewEdge("e1", "apt-1", "campaign-1", "operates"),
		graph.NewEdge("e2", "campaign-1", "loader", "uses"),
		graph.NewEdge("e3", "loader", "c2-server", "communicates_with"),
		graph.NewEdge("e4", "c2-server", "victim-1", "targets"),
		graph.NewEdge("e5", "apt-1", "loader", "develops").WithWeight(3),
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s): %v", e.ID, err)
		}
	}

	return g
}

func TestNew(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		a, err := New(WithLogger(testLogger()))
		if err != nil {
			t.Fatalf("failed to create analyzer: %v", err)
		}
		if a == nil {
			t.Fatal("expected analyzer to be non-nil")
		}
		if a.Graph() == nil {
			t.Error("expected graph to be non-nil")
		}
		if a.Graph().NodeCount() != 0 {
			t.Errorf("expected empty graph, got %d nodes", a.Graph().NodeCount())
		}
	})

	t.Run("with seed graph", func(t *testing.T) {
		g := campaignGraph(t)
		a, err := New(WithLogger(testLogger()), WithGraph(g))
		if err != nil {
			t.Fatalf("failed to create analyzer: %v", err)
		}
		if a.Graph().NodeCount() != 5 {
			t.Errorf("NodeCount = %d, want 5", a.Graph().NodeCount())
		}
	})

	t.Run("with missing config path", func(t *testing.T) {
		// A bad config path is not fatal; defaults apply.
		a, err := New(WithLogger(testLogger()), WithConfigPath("/nonexistent/threatgraph.yaml"))
		if err != nil {
			t.Fatalf("failed to create analyzer: %v", err)
		}
		if a.maxPathDepth() != 10 {
			t.Errorf("maxPathDepth = %d, want default 10", a.maxPathDepth())
		}
	})

	t.Run("with explicit config", func(t *testing.T) {
		cfg := &config.Config{
			Name:     "test",
			Analysis: &config.AnalysisConfig{MaxPathDepth: 4, TopInfluential: 2},
		}
		a, err := New(WithLogger(testLogger()), WithConfig(cfg))
		if err != nil {
			t.Fatalf("failed to create analyzer: %v", err)
		}
		if a.maxPathDepth() != 4 {
			t.Errorf("maxPathDepth = %d, want 4", a.maxPathDepth())
		}
		if a.topInfluential() != 2 {
			t.Errorf("topInfluential = %d, want 2", a.topInfluential())
		}
	})
}

func TestAnalyzer_Mutations(t *testing.T) {
	a, err := New(WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}

	if err := a.AddNode(graph.NewNode("apt-1", graph.NodeTypeActor)); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := a.AddNode(graph.NewNode("apt-1", graph.NodeTypeActor)); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("duplicate AddNode error = %v, want ErrDuplicateNode", err)
	}

	err = a.AddEdge(graph.NewEdge("e1", "apt-1", "ghost", "targets"))
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("AddEdge missing endpoint error = %v, want ErrUnknownNode", err)
	}
}

func TestAnalyzer_Traversal(t *testing.T) {
	a, err := New(WithLogger(testLogger()), WithGraph(campaignGraph(t)))
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}
	ctx := context.Background()

	order, err := a.BFS(ctx, "apt-1")
	if err != nil {
		t.Fatalf("BFS: %v", err)
	}
	if len(order) != 5 {
		t.Errorf("BFS visited %d nodes, want 5", len(order))
	}
	if order[0] != "apt-1" {
		t.Errorf("BFS order[0] = %q, want apt-1", order[0])
	}

	if _, err := a.DFS(ctx, "ghost"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("DFS unknown start error = %v, want ErrUnknownNode", err)
	}

	neighbors := a.Neighbors(ctx, "apt-1", 1)
	if len(neighbors) != 2 {
		t.Errorf("Neighbors depth 1 = %d nodes, want 2", len(neighbors))
	}

	paths := a.AllPaths(ctx, "apt-1", "victim-1")
	if len(paths) != 2 {
		t.Errorf("AllPaths found %d paths, want 2", len(paths))
	}

	if a.HasCycle(ctx) {
		t.Error("HasCycle = true on acyclic campaign graph")
	}
	if _, err := a.TopologicalSort(ctx); err != nil {
		t.Errorf("TopologicalSort on DAG: %v", err)
	}
}

func TestAnalyzer_ShortestPaths(t *testing.T) {
	a, err := New(WithLogger(testLogger()), WithGraph(campaignGraph(t)))
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}
	ctx := context.Background()

	// apt-1 -> campaign-1 -> loader costs 2, apt-1 -> loader directly
	// costs 3.
	path := a.ShortestPath(ctx, "apt-1", "loader")
	if path == nil {
		t.Fatal("ShortestPath returned nil for reachable target")
	}
	if path.TotalWeight != 2 {
		t.Errorf("TotalWeight = %v, want 2", path.TotalWeight)
	}

	if p := a.ShortestPath(ctx, "victim-1", "apt-1"); p != nil {
		t.Errorf("ShortestPath against edge direction = %+v, want nil", p)
	}

	from := a.ShortestPathsFrom(ctx, "apt-1")
	if len(from) != 4 {
		t.Errorf("ShortestPathsFrom reached %d nodes, want 4", len(from))
	}

	ks := a.KShortestPaths(ctx, "apt-1", "loader", 5)
	if len(ks) != 2 {
		t.Errorf("KShortestPaths found %d paths, want 2", len(ks))
	}
	if len(ks) == 2 && ks[0].TotalWeight > ks[1].TotalWeight {
		t.Error("KShortestPaths not in ascending cost order")
	}

	if d := a.Diameter(ctx); d <= 0 {
		t.Errorf("Diameter = %v, want > 0", d)
	}
	if avg := a.AveragePathLength(ctx); avg <= 0 {
		t.Errorf("AveragePathLength = %v, want > 0", avg)
	}
}

func TestAnalyzer_Centrality(t *testing.T) {
	cfg := &config.Config{
		Name:     "test",
		Analysis: &config.AnalysisConfig{TopInfluential: 3},
	}
	a, err := New(WithLogger(testLogger()), WithGraph(campaignGraph(t)), WithConfig(cfg))
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}
	ctx := context.Background()

	degree := a.Degree(ctx)
	if degree["apt-1"] != 2 {
		t.Errorf("Degree[apt-1] = %v, want 2", degree["apt-1"])
	}

	pr := a.PageRank(ctx)
	var sum float64
	for _, v := range pr {
		sum += v
	}
	if sum < 0.99 || sum > 1.01 {
		t.Errorf("PageRank sum = %v, want ~1", sum)
	}

	between := a.Betweenness(ctx)
	if between["c2-server"] <= 0 {
		t.Errorf("Betweenness[c2-server] = %v, want > 0", between["c2-server"])
	}

	scores := a.Influential(ctx)
	if len(scores) != 3 {
		t.Errorf("Influential returned %d scores, want configured 3", len(scores))
	}
	for i := 1; i < len(scores); i++ {
		if scores[i].Total > scores[i-1].Total {
			t.Error("Influential scores not in descending order")
			break
		}
	}
}

func TestAnalyzer_Community(t *testing.T) {
	a, err := New(WithLogger(testLogger()), WithGraph(campaignGraph(t)))
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}
	ctx := context.Background()

	weak := a.WeakComponents(ctx)
	if len(weak) != 1 {
		t.Errorf("WeakComponents = %d components, want 1", len(weak))
	}

	strong := a.StrongComponents(ctx)
	if len(strong) != 5 {
		t.Errorf("StrongComponents = %d components, want 5 (acyclic graph)", len(strong))
	}

	assignment, q := a.Louvain(ctx)
	if len(assignment) != 5 {
		t.Errorf("Louvain assigned %d nodes, want 5", len(assignment))
	}
	if got := a.Modularity(ctx, assignment); got != q {
		t.Errorf("Modularity(assignment) = %v, Louvain reported %v", got, q)
	}
}

func TestAnalyzer_FilterNodes(t *testing.T) {
	a, err := New(WithLogger(testLogger()), WithGraph(campaignGraph(t)))
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}

	sub, err := a.FilterNodes(context.Background(), `kind == "infrastructure"`)
	if err != nil {
		t.Fatalf("FilterNodes: %v", err)
	}
	if sub.NodeCount() != 1 {
		t.Errorf("filtered NodeCount = %d, want 1", sub.NodeCount())
	}
	if !sub.HasNode("c2-server") {
		t.Error("expected c2-server to survive the filter")
	}

	if _, err := a.FilterNodes(context.Background(), "kind =="); err == nil {
		t.Error("expected error for malformed filter expression")
	}
}

func TestAnalyzer_LoadIndicators(t *testing.T) {
	a, err := New(WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}
	ctx := context.Background()

	src := indicator.NewSliceSource(
		indicator.NewIndicator("ioc-1", "infrastructure", "203.0.113.9"),
		indicator.NewIndicator("ioc-2", "malware", "loader.bin").
			WithRelation("ioc-1", "communicates_with"),
	)

	report, err := a.LoadIndicators(ctx, src)
	if err != nil {
		t.Fatalf("LoadIndicators: %v", err)
	}
	if report.Indicators != 2 {
		t.Errorf("report.Indicators = %d, want 2", report.Indicators)
	}
	if a.Graph().NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", a.Graph().NodeCount())
	}
	if a.Graph().EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", a.Graph().EdgeCount())
	}

	// A second load merges rather than replaces.
	_, err = a.LoadIndicators(ctx, indicator.NewSliceSource(
		indicator.NewIndicator("ioc-3", "actor", "unit-99"),
	))
	if err != nil {
		t.Fatalf("second LoadIndicators: %v", err)
	}
	if a.Graph().NodeCount() != 3 {
		t.Errorf("NodeCount after merge = %d, want 3", a.Graph().NodeCount())
	}
}
