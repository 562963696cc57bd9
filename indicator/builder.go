package indicator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/zero-day-ai/threatgraph/graph"
)

// Builder constructs threat graphs from indicator feeds.
//
// Each indicator becomes one node; its Related entries become directed
// edges with generated uuid ids. Duplicate indicator ids are treated as
// idempotent upserts: later occurrences merge their properties and labels
// into the existing node instead of failing. Relations whose target never
// appears in the feed are skipped and counted rather than failing the
// build.
type Builder struct {
	logger *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets a structured logger for build diagnostics.
// If not provided, the default logger is used.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder with the given options.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Report summarizes a completed build.
type Report struct {
	// Indicators is the number of records consumed from the source.
	Indicators int

	// Nodes is the number of nodes in the resulting graph.
	Nodes int

	// Edges is the number of edges in the resulting graph.
	Edges int

	// Upserts counts duplicate indicator ids merged into existing nodes.
	Upserts int

	// SkippedRelations counts relations whose target indicator never
	// appeared in the feed.
	SkippedRelations int

	// Invalid counts records rejected by Indicator.Validate.
	Invalid int
}

// Build drains the source and constructs a populated graph.
//
// The source is read until ErrSourceDrained; a context cancellation or any
// other source error aborts the build. Edges are created in a second pass
// so relation order within the feed does not matter.
func (b *Builder) Build(ctx context.Context, src Source) (*graph.Graph, Report, error) {
	var report Report
	var batch []*Indicator

	for {
		ind, err := src.Next(ctx)
		if errors.Is(err, ErrSourceDrained) {
			break
		}
		if err != nil {
			return nil, report, fmt.Errorf("reading indicator source: %w", err)
		}
		report.Indicators++
		batch = append(batch, ind)
	}

	g := graph.New()

	// First pass: nodes.
	for _, ind := range batch {
		if err := ind.Validate(); err != nil {
			report.Invalid++
			b.logger.Warn("skipping invalid indicator", "error", err)
			continue
		}

		id := ind.ID
		if id == "" {
			id = uuid.NewString()
			ind.ID = id
		}

		if existing := g.Node(id); existing != nil {
			report.Upserts++
			mergeInto(existing, ind)
			continue
		}

		node := graph.NewNode(id, ind.nodeType())
		mergeInto(node, ind)
		if err := g.AddNode(node); err != nil {
			return nil, report, fmt.Errorf("adding node %s: %w", id, err)
		}
	}

	// Second pass: edges.
	for _, ind := range batch {
		if !g.HasNode(ind.ID) {
			continue
		}
		for _, rel := range ind.Related {
			if !g.HasNode(rel.TargetID) {
				report.SkippedRelations++
				b.logger.Debug("skipping relation to unknown indicator",
					"source", ind.ID, "target", rel.TargetID)
				continue
			}

			relType := rel.Type
			if relType == "" {
				relType = "related_to"
			}
			edge := graph.NewEdge(uuid.NewString(), ind.ID, rel.TargetID, relType)
			if rel.Weight > 0 {
				edge.WithWeight(rel.Weight)
			}
			if rel.Properties != nil {
				edge.WithProperties(rel.Properties)
			}
			if err := g.AddEdge(edge); err != nil {
				return nil, report, fmt.Errorf("adding edge %s -> %s: %w", ind.ID, rel.TargetID, err)
			}
		}
	}

	report.Nodes = g.NodeCount()
	report.Edges = g.EdgeCount()
	b.logger.Info("indicator graph built",
		"indicators", report.Indicators,
		"nodes", report.Nodes,
		"edges", report.Edges,
		"upserts", report.Upserts,
		"skipped_relations", report.SkippedRelations)

	return g, report, nil
}

// mergeInto copies an indicator's observables, labels, and properties onto
// a node. Existing property keys are overwritten by later records.
func mergeInto(node *graph.Node, ind *Indicator) {
	if ind.Value != "" {
		node.WithProperty("value", ind.Value)
	}
	if ind.Source != "" {
		node.WithProperty("feed", ind.Source)
	}
	if ind.Confidence > 0 {
		node.WithProperty("confidence", ind.Confidence)
	}
	for k, v := range ind.Properties {
		node.WithProperty(k, v)
	}
	for _, label := range ind.Labels {
		node.WithLabel(label)
	}
}
