package threatgraph

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func TestLogTracerProvider_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	tp := NewLogTracerProvider(logger)
	defer tp.Shutdown(context.Background())

	tracer := tp.Tracer("test")
	_, span := tracer.Start(context.Background(), "pagerank",
		trace.WithAttributes(attribute.Int("graph.nodes", 42)))
	span.End()

	out := buf.String()
	if out == "" {
		t.Fatal("expected span to be logged")
	}
	if !bytes.Contains(buf.Bytes(), []byte("span pagerank")) {
		t.Errorf("log output missing span name: %s", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("trace_id")) {
		t.Errorf("log output missing trace_id: %s", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("graph.nodes")) {
		t.Errorf("log output missing span attributes: %s", out)
	}
}

func TestLogTracerProvider_ParentSpanLinked(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	tp := NewLogTracerProvider(logger)
	defer tp.Shutdown(context.Background())

	tracer := tp.Tracer("test")
	ctx, parent := tracer.Start(context.Background(), "analysis")
	_, child := tracer.Start(ctx, "dijkstra")
	child.End()
	parent.End()

	if !bytes.Contains(buf.Bytes(), []byte("parent_span_id")) {
		t.Errorf("child span missing parent_span_id: %s", buf.String())
	}
}

func TestLogSpanExporter_NilLogger(t *testing.T) {
	e := NewLogSpanExporter(nil)
	if e.logger == nil {
		t.Error("expected fallback to default logger")
	}
	if err := e.ExportSpans(context.Background(), nil); err != nil {
		t.Errorf("ExportSpans on empty batch: %v", err)
	}
	if err := e.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
