// Package indicator turns threat-intelligence feed records into populated
// threat graphs.
//
// An Indicator is one feed record: an observable with a type, confidence,
// arbitrary properties, and relations to other indicators. A Source yields
// indicators (from memory, or from a Redis feed list shared with ingestion
// pipelines), and a Builder drains a Source into a graph.Graph:
//
//	src := indicator.NewSliceSource(
//	    indicator.NewIndicator("apt-41", "actor", "APT41").
//	        WithConfidence(90).
//	        WithRelation("evil.example", "operates"),
//	    indicator.NewIndicator("evil.example", "infrastructure", "evil.example"),
//	)
//
//	builder := indicator.NewBuilder(indicator.WithLogger(logger))
//	g, report, err := builder.Build(ctx, src)
//
// Build is the package's asynchronous entry point: it is context-aware
// because sources may block on I/O, while the constructed graph itself is
// a plain in-memory value.
//
// Feed irregularities degrade instead of failing: duplicate indicator ids
// merge into the existing node, relations to indicators missing from the
// feed are skipped, and both show up in the build Report.
package indicator
