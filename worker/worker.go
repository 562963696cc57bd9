package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/zero-day-ai/threatgraph/config"
	"github.com/zero-day-ai/threatgraph/graph"
	"github.com/zero-day-ai/threatgraph/indicator"
	"github.com/zero-day-ai/threatgraph/registry"
)

// Options configures the ingest worker behavior.
type Options struct {
	// RedisURL is the Redis connection string (e.g., "redis://localhost:6379")
	RedisURL string

	// Key is the Redis list holding JSON-encoded indicators.
	// If empty, uses value from threatgraph.yaml or default.
	Key string

	// Concurrency is the number of ingest goroutines to start.
	// If 0, uses value from threatgraph.yaml or default (4).
	Concurrency int

	// BlockTimeout is how long each goroutine blocks on an empty feed
	// before treating it as drained.
	// If 0, uses value from threatgraph.yaml or default (1s).
	BlockTimeout time.Duration

	// ShutdownTimeout is the time to wait for graceful shutdown.
	// If 0, uses value from threatgraph.yaml or default (30s).
	ShutdownTimeout time.Duration

	// Logger is the structured logger for worker operations.
	// If nil, a default logger will be created.
	Logger *slog.Logger

	// Config is the parsed threatgraph.yaml configuration.
	// If nil, the worker will attempt to load it from the current directory.
	// Set to an empty config to skip threatgraph.yaml loading.
	Config *config.Config

	// ConfigPath is the path to threatgraph.yaml.
	// If empty and Config is nil, searches from the current directory.
	ConfigPath string
}

// Handler receives the assembled graph once ingest completes. It runs
// after the feed drains or after a shutdown signal stops the workers,
// whichever comes first.
type Handler func(ctx context.Context, g *graph.Graph, report indicator.Report) error

// Run starts the ingest loop with the specified options. It connects to
// the Redis indicator feed, starts N drain goroutines based on
// Concurrency, assembles the collected indicators into a graph, and
// invokes the handler with the result. SIGTERM/SIGINT trigger a graceful
// shutdown: in-flight indicators are kept and the handler still runs on
// the partial graph.
//
// Configuration priority (highest to lowest):
//  1. Explicit Options values (if non-zero)
//  2. threatgraph.yaml ingest section
//  3. Default values
//
// The function blocks until the handler returns or graceful shutdown
// times out. Returns an error if the Redis connection fails, if shutdown
// times out, or whatever the handler returns.
func Run(handler Handler, opts Options) error {
	// Load threatgraph.yaml if not provided
	cfg := opts.Config
	if cfg == nil {
		var err error
		if opts.ConfigPath != "" {
			cfg, err = config.Load(opts.ConfigPath)
		} else {
			cfg, err = config.LoadFromCurrentDir()
		}
		if err != nil {
			// threatgraph.yaml is optional - just use defaults
			cfg = nil
		}
	}

	// Apply configuration with priority: explicit opts > threatgraph.yaml > defaults
	opts = applyConfig(opts, cfg)

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	workerID := generateWorkerID()

	logger := opts.Logger.With(
		"worker_id", workerID,
		"key", opts.Key,
	)

	logger.Info("ingest starting",
		"concurrency", opts.Concurrency,
		"redis_url", opts.RedisURL,
	)

	src, err := indicator.NewRedisSource(indicator.RedisOptions{
		URL:          opts.RedisURL,
		Key:          opts.Key,
		BlockTimeout: opts.BlockTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer src.Close()

	// Registration is opt-in: skipped unless threatgraph.yaml or
	// THREATGRAPH_REGISTRY_ENDPOINTS names an etcd cluster. Failures are
	// logged, not fatal, since the worker functions without discovery.
	info := pipelineInfo(workerID, opts, cfg)
	reg, err := newRegistryClient(cfg)
	if err != nil {
		logger.Warn("registry connection failed, continuing unregistered", "error", err)
	} else if reg != nil {
		regCtx, regCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := reg.Register(regCtx, info); err != nil {
			logger.Warn("pipeline registration failed", "error", err)
		} else {
			logger.Info("pipeline registered",
				"role", info.Role,
				"name", info.Name,
				"instance_id", info.InstanceID,
			)
		}
		regCancel()
		defer func() {
			deregCtx, deregCancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := reg.Deregister(deregCtx, info); err != nil {
				logger.Warn("pipeline deregistration failed", "error", err)
			}
			deregCancel()
			if err := reg.Close(); err != nil {
				logger.Warn("registry close failed", "error", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	type ingestOutcome struct {
		graph  *graph.Graph
		report indicator.Report
		err    error
	}

	doneChan := make(chan ingestOutcome, 1)
	go func() {
		g, report, err := Ingest(ctx, src, opts)
		doneChan <- ingestOutcome{graph: g, report: report, err: err}
	}()

	var outcome ingestOutcome
	select {
	case outcome = <-doneChan:
	case sig := <-sigChan:
		logger.Info("received signal, initiating graceful shutdown", "signal", sig)
		cancel()
		select {
		case outcome = <-doneChan:
		case <-time.After(opts.ShutdownTimeout):
			logger.Warn("ingest shutdown timeout exceeded", "timeout", opts.ShutdownTimeout)
			return fmt.Errorf("ingest shutdown timed out after %s", opts.ShutdownTimeout)
		}
	}

	if outcome.err != nil {
		logger.Error("ingest failed", "error", outcome.err)
		return outcome.err
	}

	logger.Info("ingest complete",
		"indicators", outcome.report.Indicators,
		"nodes", outcome.report.Nodes,
		"edges", outcome.report.Edges,
		"skipped_relations", outcome.report.SkippedRelations,
		"invalid", outcome.report.Invalid,
	)

	if reg != nil {
		// Re-registering the same instance refreshes the reported stats.
		info.Stats = registry.GraphStats{Nodes: outcome.report.Nodes, Edges: outcome.report.Edges}
		statsCtx, statsCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := reg.Register(statsCtx, info); err != nil {
			logger.Warn("pipeline stats refresh failed", "error", err)
		}
		statsCancel()
	}

	handlerCtx, handlerCancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer handlerCancel()
	return handler(handlerCtx, outcome.graph, outcome.report)
}

// Ingest drains the source with opts.Concurrency goroutines and assembles
// the collected indicators into a graph. It returns when the source is
// drained or the context is cancelled; on cancellation the indicators
// collected so far still produce a graph.
func Ingest(ctx context.Context, src indicator.Source, opts Options) (*graph.Graph, indicator.Report, error) {
	opts = applyConfig(opts, opts.Config)
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	var (
		mu        sync.Mutex
		collected []*indicator.Indicator
	)

	var wg sync.WaitGroup
	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func(workerNum int) {
			defer wg.Done()
			drainLoop(ctx, workerNum, src, opts.Logger, func(ind *indicator.Indicator) {
				mu.Lock()
				collected = append(collected, ind)
				mu.Unlock()
			})
		}(i)
	}
	wg.Wait()

	builder := indicator.NewBuilder(indicator.WithLogger(opts.Logger))
	return builder.Build(context.Background(), indicator.NewSliceSource(collected...))
}

// drainLoop is the main loop for a single ingest goroutine. It pulls
// indicators from the source and hands them to collect until the source
// drains or the context is cancelled.
func drainLoop(ctx context.Context, workerNum int, src indicator.Source, logger *slog.Logger, collect func(*indicator.Indicator)) {
	logger = logger.With("worker_num", workerNum)
	logger.Debug("drain loop started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("drain loop stopped", "reason", "context_cancelled")
			return
		default:
		}

		ind, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, indicator.ErrSourceDrained) {
				logger.Debug("drain loop stopped", "reason", "source_drained")
				return
			}
			if ctx.Err() != nil {
				logger.Debug("drain loop stopped", "reason", "context_error")
				return
			}
			if errors.Is(err, indicator.ErrDecode) {
				// Malformed feed entries are dropped, not fatal.
				logger.Warn("skipping malformed indicator", "error", err)
				continue
			}
			logger.Error("failed to read indicator", "error", err)
			continue
		}
		if ind == nil {
			continue
		}

		logger.Debug("received indicator",
			"id", ind.ID,
			"type", ind.Type,
			"value", ind.Value,
		)
		collect(ind)
	}
}

// generateWorkerID creates a unique identifier for this worker instance.
// Uses hostname + PID + UUID for uniqueness.
func generateWorkerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	pid := os.Getpid()

	id := uuid.New().String()[:8]

	return fmt.Sprintf("%s-%d-%s", hostname, pid, id)
}

// newRegistryClient connects to the pipeline registry. The registry
// section of threatgraph.yaml takes priority; otherwise the
// THREATGRAPH_REGISTRY_ENDPOINTS environment variable is consulted.
// Returns (nil, nil) when neither names an etcd cluster.
func newRegistryClient(cfg *config.Config) (*registry.Client, error) {
	if cfg != nil && cfg.Registry != nil && len(cfg.Registry.Endpoints) > 0 {
		return registry.NewClient(registry.Config{
			Endpoints: cfg.Registry.Endpoints,
			Namespace: cfg.Registry.GetNamespace(),
			TTL:       cfg.Registry.GetTTL(),
		})
	}
	return registry.NewClientFromEnv()
}

// pipelineInfo describes this worker instance for registration.
func pipelineInfo(workerID string, opts Options, cfg *config.Config) registry.PipelineInfo {
	name := "threatgraph"
	if cfg != nil && cfg.Name != "" {
		name = cfg.Name
	}
	return registry.PipelineInfo{
		Role:       registry.RoleIngest,
		Name:       name,
		InstanceID: workerID,
		Feeds:      []string{opts.Key},
		Metadata:   map[string]string{"redis_url": opts.RedisURL},
		StartedAt:  time.Now().UTC(),
	}
}

// applyConfig applies threatgraph.yaml ingest settings to Options.
// Explicit Options values take priority over threatgraph.yaml values.
func applyConfig(opts Options, cfg *config.Config) Options {
	var ingest *config.IngestConfig
	if cfg != nil {
		ingest = cfg.Ingest
	}

	if opts.RedisURL == "" {
		opts.RedisURL = ingest.GetRedisURL()
	}
	if opts.Key == "" {
		opts.Key = ingest.GetKey()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = ingest.GetConcurrency()
	}
	if opts.BlockTimeout == 0 {
		opts.BlockTimeout = ingest.GetBlockTimeout()
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = ingest.GetShutdownTimeout()
	}

	return opts
}
