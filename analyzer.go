package threatgraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/zero-day-ai/threatgraph/centrality"
	"github.com/zero-day-ai/threatgraph/community"
	"github.com/zero-day-ai/threatgraph/config"
	"github.com/zero-day-ai/threatgraph/graph"
	"github.com/zero-day-ai/threatgraph/indicator"
	"github.com/zero-day-ai/threatgraph/shortestpath"
	"github.com/zero-day-ai/threatgraph/traverse"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Analyzer is the instrumented facade over the threat graph engine.
//
// It owns a graph, applies configuration defaults from threatgraph.yaml
// to the analysis algorithms, and wraps each operation in an
// OpenTelemetry span plus duration and count metrics. All methods are
// safe for concurrent use: mutations take a write lock, analyses a read
// lock.
//
// Example:
//
//	analyzer, err := threatgraph.New(
//	    threatgraph.WithLogger(logger),
//	    threatgraph.WithConfigPath("threatgraph.yaml"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := analyzer.LoadIndicators(ctx, source)
//	scores := analyzer.Influential(ctx)
type Analyzer struct {
	mu    sync.RWMutex
	graph *graph.Graph

	cfg    *config.Config
	logger *slog.Logger
	tracer trace.Tracer

	analyses metric.Int64Counter
	duration metric.Float64Histogram
}

// New creates an Analyzer with the provided options. It starts with an
// empty graph unless WithGraph is given, and falls back to built-in
// analysis defaults when no configuration is provided.
func New(opts ...Option) (*Analyzer, error) {
	cfg := &analyzerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	conf := cfg.config
	if conf == nil && cfg.configPath != "" {
		loaded, err := config.Load(cfg.configPath)
		if err != nil {
			// Config is optional; defaults apply.
			cfg.logger.Warn("failed to load config, using defaults",
				"path", cfg.configPath,
				"error", err)
		} else {
			conf = loaded
		}
	}

	tp := cfg.tracerProvider
	if tp == nil {
		tp = NewLogTracerProvider(cfg.logger)
	}

	mp := cfg.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter("github.com/zero-day-ai/threatgraph")

	analyses, err := meter.Int64Counter("threatgraph.analyses",
		metric.WithDescription("Number of analysis operations run"))
	if err != nil {
		return nil, fmt.Errorf("failed to create analyses counter: %w", err)
	}

	duration, err := meter.Float64Histogram("threatgraph.analysis.duration",
		metric.WithDescription("Analysis operation duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	g := cfg.graph
	if g == nil {
		g = graph.New()
	}

	return &Analyzer{
		graph:    g,
		cfg:      conf,
		logger:   cfg.logger,
		tracer:   tp.Tracer("github.com/zero-day-ai/threatgraph"),
		analyses: analyses,
		duration: duration,
	}, nil
}

// instrument opens a span for the named operation and returns a finish
// function that records the error, duration, and operation counter.
func (a *Analyzer) instrument(ctx context.Context, op string) (context.Context, func(error)) {
	ctx, span := a.tracer.Start(ctx, op,
		trace.WithAttributes(
			attribute.Int("graph.nodes", a.graph.NodeCount()),
			attribute.Int("graph.edges", a.graph.EdgeCount()),
		))
	start := time.Now()

	return ctx, func(err error) {
		elapsed := time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		attrs := metric.WithAttributes(attribute.String("operation", op))
		a.analyses.Add(ctx, 1, attrs)
		a.duration.Record(ctx, float64(elapsed.Microseconds())/1000.0, attrs)
	}
}

// Graph returns the underlying graph. The returned graph is shared:
// callers must not mutate it concurrently with analyzer operations.
func (a *Analyzer) Graph() *graph.Graph {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.graph
}

// SetGraph replaces the analyzer's graph.
func (a *Analyzer) SetGraph(g *graph.Graph) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if g == nil {
		g = graph.New()
	}
	a.graph = g
}

// AddNode adds a node to the graph. Returns ErrDuplicateNode if the id
// is already present.
func (a *Analyzer) AddNode(n *graph.Node) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.graph.AddNode(n)
}

// AddEdge adds an edge to the graph. Returns ErrUnknownNode if either
// endpoint is missing.
func (a *Analyzer) AddEdge(e *graph.Edge) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.graph.AddEdge(e)
}

// LoadIndicators drains the source and merges the resulting graph into
// the analyzer's graph. Entities already present win property conflicts
// against newly ingested ones.
func (a *Analyzer) LoadIndicators(ctx context.Context, src indicator.Source) (indicator.Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, finish := a.instrument(ctx, "threatgraph.load_indicators")
	builder := indicator.NewBuilder(indicator.WithLogger(a.logger))
	built, report, err := builder.Build(ctx, src)
	if err != nil {
		finish(err)
		return report, err
	}

	a.graph = graph.Merge(a.graph, built)
	finish(nil)

	a.logger.Info("indicators loaded",
		"indicators", report.Indicators,
		"nodes", a.graph.NodeCount(),
		"edges", a.graph.EdgeCount())

	return report, nil
}

// FilterNodes returns the subgraph of nodes matching the filter
// expression. See graph.CompileFilter for the expression language.
func (a *Analyzer) FilterNodes(ctx context.Context, expr string) (*graph.Graph, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.filter_nodes")
	sub, err := graph.FilterExpr(a.graph, expr)
	finish(err)
	return sub, err
}

// BFS returns node ids in breadth-first order from the start node.
func (a *Analyzer) BFS(ctx context.Context, startID string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.bfs")
	order, err := traverse.BFS(a.graph, startID)
	finish(err)
	return order, err
}

// DFS returns node ids in depth-first pre-order from the start node.
func (a *Analyzer) DFS(ctx context.Context, startID string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.dfs")
	order, err := traverse.DFS(a.graph, startID)
	finish(err)
	return order, err
}

// Neighbors returns the set of node ids within depth hops of the given
// node, excluding the node itself. Unknown ids return an empty set.
func (a *Analyzer) Neighbors(ctx context.Context, nodeID string, depth int) map[string]struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.neighbors")
	neighbors := traverse.Neighbors(a.graph, nodeID, depth)
	finish(nil)
	return neighbors
}

// AllPaths enumerates every simple path between two nodes, bounded by
// the configured maximum depth.
func (a *Analyzer) AllPaths(ctx context.Context, sourceID, targetID string) []*traverse.Path {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.all_paths")
	paths := traverse.AllPaths(a.graph, sourceID, targetID, a.maxPathDepth())
	finish(nil)
	return paths
}

// TopologicalSort returns a dependency ordering of the graph. Returns
// ErrCyclicGraph if the graph contains a cycle.
func (a *Analyzer) TopologicalSort(ctx context.Context) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.topological_sort")
	order, err := traverse.TopologicalSort(a.graph)
	finish(err)
	return order, err
}

// HasCycle reports whether the graph contains a directed cycle.
func (a *Analyzer) HasCycle(ctx context.Context) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.has_cycle")
	cyclic := traverse.HasCycle(a.graph)
	finish(nil)
	return cyclic
}

// ShortestPath returns the minimum-weight path between two nodes, or
// nil if the target is unreachable.
func (a *Analyzer) ShortestPath(ctx context.Context, sourceID, targetID string) *shortestpath.Path {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.shortest_path")
	path := shortestpath.Between(a.graph, sourceID, targetID)
	finish(nil)
	return path
}

// ShortestPathsFrom returns minimum-weight paths from the source to
// every reachable node.
func (a *Analyzer) ShortestPathsFrom(ctx context.Context, sourceID string) map[string]*shortestpath.Path {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.shortest_paths_from")
	paths := shortestpath.From(a.graph, sourceID)
	finish(nil)
	return paths
}

// KShortestPaths returns up to k loop-free paths between two nodes in
// ascending cost order.
func (a *Analyzer) KShortestPaths(ctx context.Context, sourceID, targetID string, k int) []*shortestpath.Path {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.k_shortest_paths")
	paths := shortestpath.KShortest(a.graph, sourceID, targetID, k)
	finish(nil)
	return paths
}

// AveragePathLength returns the mean shortest-path distance over
// connected node pairs.
func (a *Analyzer) AveragePathLength(ctx context.Context) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.average_path_length")
	avg := shortestpath.AveragePathLength(a.graph)
	finish(nil)
	return avg
}

// Diameter returns the longest shortest-path distance in the graph.
func (a *Analyzer) Diameter(ctx context.Context) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.diameter")
	d := shortestpath.Diameter(a.graph)
	finish(nil)
	return d
}

// Degree returns out-degree centrality for every node.
func (a *Analyzer) Degree(ctx context.Context) map[string]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.degree")
	scores := centrality.Degree(a.graph)
	finish(nil)
	return scores
}

// Betweenness returns betweenness centrality for every node, computed
// by shortest-path enumeration.
func (a *Analyzer) Betweenness(ctx context.Context) map[string]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.betweenness")
	scores := centrality.Betweenness(a.graph)
	finish(nil)
	return scores
}

// Closeness returns closeness centrality for every node.
func (a *Analyzer) Closeness(ctx context.Context) map[string]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.closeness")
	scores := centrality.Closeness(a.graph)
	finish(nil)
	return scores
}

// PageRank returns PageRank scores using the configured damping factor
// and iteration cap.
func (a *Analyzer) PageRank(ctx context.Context) map[string]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.pagerank")
	scores := centrality.PageRank(a.graph, a.pageRankDamping(), a.pageRankIterations())
	finish(nil)
	return scores
}

// Influential returns the configured number of top nodes ranked by
// combined centrality.
func (a *Analyzer) Influential(ctx context.Context) []centrality.Score {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.influential")
	scores := centrality.Influential(a.graph, a.topInfluential())
	finish(nil)
	return scores
}

// WeakComponents returns the weakly connected components of the graph.
func (a *Analyzer) WeakComponents(ctx context.Context) [][]string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.weak_components")
	components := community.WeaklyConnected(a.graph)
	finish(nil)
	return components
}

// StrongComponents returns the strongly connected components of the
// graph.
func (a *Analyzer) StrongComponents(ctx context.Context) [][]string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.strong_components")
	components := community.StronglyConnected(a.graph)
	finish(nil)
	return components
}

// Modularity scores a community assignment against the graph.
func (a *Analyzer) Modularity(ctx context.Context, assignment map[string]int) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.modularity")
	q := community.Modularity(a.graph, assignment)
	finish(nil)
	return q
}

// Cliques returns maximal cliques of at least the configured minimum
// size, treating edges as undirected.
func (a *Analyzer) Cliques(ctx context.Context) [][]string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.cliques")
	cliques := community.Cliques(a.graph, a.minCliqueSize())
	finish(nil)
	return cliques
}

// Louvain detects communities by modularity optimization, returning the
// node-to-community assignment and its modularity score.
func (a *Analyzer) Louvain(ctx context.Context) (map[string]int, float64) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, finish := a.instrument(ctx, "threatgraph.louvain")
	assignment, q := community.Louvain(a.graph)
	finish(nil)
	return assignment, q
}

func (a *Analyzer) analysisConfig() *config.AnalysisConfig {
	if a.cfg == nil {
		return nil
	}
	return a.cfg.Analysis
}

func (a *Analyzer) maxPathDepth() int        { return a.analysisConfig().GetMaxPathDepth() }
func (a *Analyzer) pageRankDamping() float64 { return a.analysisConfig().GetPageRankDamping() }
func (a *Analyzer) pageRankIterations() int  { return a.analysisConfig().GetPageRankIterations() }
func (a *Analyzer) minCliqueSize() int       { return a.analysisConfig().GetMinCliqueSize() }
func (a *Analyzer) topInfluential() int      { return a.analysisConfig().GetTopInfluential() }
