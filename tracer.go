package threatgraph

import (
	"context"
	"encoding/hex"
	"log/slog"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// LogSpanExporter implements the OpenTelemetry SpanExporter interface
// and records completed spans through a structured logger. It gives
// pipelines span-level visibility into analysis timings without
// requiring a collector deployment.
//
// Errors during export are logged but never returned, so a logging
// failure cannot break the trace pipeline.
type LogSpanExporter struct {
	logger *slog.Logger
}

// NewLogSpanExporter creates an exporter that writes completed spans to
// the given logger. If logger is nil, slog.Default() is used.
//
// The returned exporter should be registered with the OpenTelemetry
// SDK's TracerProvider; see NewLogTracerProvider.
func NewLogSpanExporter(logger *slog.Logger) *LogSpanExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSpanExporter{logger: logger}
}

// ExportSpans logs a batch of completed spans at debug level, one log
// record per span. It is called automatically by the OpenTelemetry SDK
// when spans complete, and always returns nil.
func (e *LogSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		sc := span.SpanContext()
		traceID := sc.TraceID()
		spanID := sc.SpanID()

		attrs := []any{
			"trace_id", hex.EncodeToString(traceID[:]),
			"span_id", hex.EncodeToString(spanID[:]),
			"duration_ms", span.EndTime().Sub(span.StartTime()).Milliseconds(),
		}

		if span.Parent().IsValid() {
			parentID := span.Parent().SpanID()
			attrs = append(attrs, "parent_span_id", hex.EncodeToString(parentID[:]))
		}

		for _, attr := range span.Attributes() {
			attrs = append(attrs, string(attr.Key), attr.Value.AsInterface())
		}

		status := span.Status()
		if status.Description != "" {
			attrs = append(attrs, "status", status.Description)
		}

		e.logger.Debug("span "+span.Name(), attrs...)
	}
	return nil
}

// Shutdown performs cleanup when the exporter is being shut down.
// A no-op: the logger's lifecycle belongs to the caller.
func (e *LogSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// NewLogTracerProvider creates a TracerProvider configured with a
// LogSpanExporter, so every analysis span lands in the structured log.
//
// The provider uses a SimpleSpanProcessor for immediate export without
// batching: analysis spans are few and long-lived, so batching buys
// nothing and immediate export keeps log ordering intuitive.
func NewLogTracerProvider(logger *slog.Logger) *sdktrace.TracerProvider {
	exporter := NewLogSpanExporter(logger)

	processor := sdktrace.NewSimpleSpanProcessor(exporter)

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String("threatgraph"),
		),
	)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to create resource, using default", "error", err)
		}
		res = resource.Default()
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithResource(res),
	)
}
