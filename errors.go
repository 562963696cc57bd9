package threatgraph

import (
	"io"
	"log/slog"

	"github.com/zero-day-ai/threatgraph/graph"
)

// Sentinel errors for common graph error conditions, re-exported so
// callers of the Analyzer can match them with errors.Is() without
// importing the graph package.
var (
	// ErrDuplicateNode indicates an attempt to add a node whose id is
	// already present in the graph.
	ErrDuplicateNode = graph.ErrDuplicateNode

	// ErrUnknownNode indicates an operation referenced a node id the
	// graph does not contain, in a position where that is an error
	// (such as an edge endpoint or a traversal start).
	ErrUnknownNode = graph.ErrUnknownNode

	// ErrCyclicGraph indicates an operation that requires an acyclic
	// graph, such as topological sort, encountered a cycle.
	ErrCyclicGraph = graph.ErrCyclicGraph
)

// CloseWithLog attempts to close the provided resource and logs any
// error at warning level. This is intended for use in defer statements
// to ensure cleanup errors are not silently ignored.
//
// The name parameter should describe the resource being closed (e.g.,
// "redis source", "registry client"). If logger is nil, slog.Default()
// is used.
//
// Example usage:
//
//	defer threatgraph.CloseWithLog(src, logger, "redis source")
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
