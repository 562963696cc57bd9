package threatgraph

import (
	"log/slog"

	"github.com/zero-day-ai/threatgraph/config"
	"github.com/zero-day-ai/threatgraph/graph"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option configures the Analyzer.
type Option func(*analyzerConfig)

// analyzerConfig holds configuration for an Analyzer instance.
type analyzerConfig struct {
	config         *config.Config
	configPath     string
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	graph          *graph.Graph
}

// WithConfig sets the parsed threatgraph.yaml configuration.
// Takes precedence over WithConfigPath.
func WithConfig(cfg *config.Config) Option {
	return func(c *analyzerConfig) {
		c.config = cfg
	}
}

// WithConfigPath sets the path to threatgraph.yaml. The file is loaded
// during New; a load failure is not fatal, defaults apply instead.
func WithConfigPath(path string) Option {
	return func(c *analyzerConfig) {
		c.configPath = path
	}
}

// WithLogger sets a custom logger for the analyzer.
// If not provided, a default JSON logger is created.
func WithLogger(logger *slog.Logger) Option {
	return func(c *analyzerConfig) {
		c.logger = logger
	}
}

// WithTracerProvider sets an OpenTelemetry tracer provider for
// distributed tracing of analysis operations. If not provided, spans go
// to a slog-backed provider; see NewLogTracerProvider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *analyzerConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets an OpenTelemetry meter provider for analysis
// metrics. If not provided, the global provider is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *analyzerConfig) {
		c.meterProvider = mp
	}
}

// WithGraph seeds the analyzer with an existing graph instead of
// starting empty.
func WithGraph(g *graph.Graph) Option {
	return func(c *analyzerConfig) {
		c.graph = g
	}
}
