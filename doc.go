// Package threatgraph provides a directed property-graph engine for
// threat intelligence analysis.
//
// The engine models threat entities (malware, actors, infrastructure,
// campaigns, victims, indicators) as graph nodes and their relationships
// as weighted directed edges, then answers structural questions about
// the resulting graph: reachability, shortest attack paths, influential
// entities, and community structure.
//
// # Core Concepts
//
// The module is organized around several key packages:
//
//   - graph: the directed multigraph store (nodes, edges, adjacency,
//     merge, filter)
//   - traverse: BFS, DFS, neighborhood expansion, exhaustive path
//     enumeration, topological sort, cycle detection
//   - shortestpath: Dijkstra shortest paths, distance metrics,
//     k-shortest approximation
//   - centrality: degree, betweenness, closeness, PageRank, and a
//     combined influence ranking
//   - community: connected components, modularity, cliques, Louvain
//     community detection
//   - indicator: ingestion of threat indicator feeds into graphs
//   - worker: concurrent feed ingest with graceful shutdown
//   - registry: etcd-based pipeline discovery
//
// # Getting Started
//
// The Analyzer ties the packages together behind a single instrumented
// facade:
//
//	analyzer, err := threatgraph.New(
//	    threatgraph.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := analyzer.LoadIndicators(ctx, source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	scores := analyzer.Influential(ctx)
//
// Callers that only need the algorithms can use the analysis packages
// directly on a *graph.Graph; the Analyzer adds configuration defaults,
// structured logging, and OpenTelemetry spans and metrics around each
// operation.
//
// # Error Handling
//
// Structural mutations fail loudly: adding a duplicate node returns
// ErrDuplicateNode, and adding an edge with a missing endpoint returns
// ErrUnknownNode. Queries are forgiving: asking about a node the graph
// does not contain returns empty results rather than an error, so
// analysis pipelines do not have to pre-validate every lookup.
package threatgraph
