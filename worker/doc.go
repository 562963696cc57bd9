// Package worker provides the main loop for running threat graph ingest
// as a Redis feed consumer.
//
// # Overview
//
// The worker package drains a live indicator feed into an in-memory
// threat graph. Intel producers push JSON indicators onto a Redis list;
// ingest workers pop them concurrently, assemble the graph, and hand the
// result to a caller-supplied handler for analysis.
//
// # Usage
//
//	func main() {
//	    opts := worker.Options{
//	        RedisURL:    "redis://localhost:6379",
//	        Concurrency: 4,
//	    }
//
//	    err := worker.Run(func(ctx context.Context, g *graph.Graph, report indicator.Report) error {
//	        scores := centrality.Influential(g, 10)
//	        // act on scores...
//	        return nil
//	    }, opts)
//	    if err != nil {
//	        log.Fatalf("ingest failed: %v", err)
//	    }
//	}
//
// # Graceful Shutdown
//
// Run handles SIGTERM and SIGINT:
//  1. Signal received → context cancelled
//  2. Drain goroutines stop pulling from the feed
//  3. Indicators collected so far are assembled into a graph
//  4. The handler runs on the partial graph
//  5. Run returns (or times out after ShutdownTimeout)
//
// A partial graph on shutdown is intentional: intel already pulled off
// the feed is not discarded.
//
// # Configuration
//
// Options fall back to the ingest section of threatgraph.yaml, then to
// built-in defaults. Callers embedding the worker can pass an explicit
// *config.Config to skip the filesystem search.
package worker
