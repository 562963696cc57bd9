// Package config provides loading and parsing of threatgraph.yaml
// configuration files. A configuration bundles analysis bounds, ingest
// settings, and pipeline registry endpoints for threat graph deployments.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents a threatgraph.yaml configuration file.
type Config struct {
	// Name identifies the analysis deployment (used as the registry
	// instance prefix and in logs).
	Name string `yaml:"name"`

	// Analysis bounds the graph algorithms.
	Analysis *AnalysisConfig `yaml:"analysis,omitempty"`

	// Ingest configures the Redis-backed indicator feed.
	Ingest *IngestConfig `yaml:"ingest,omitempty"`

	// Registry configures etcd-based pipeline registration.
	Registry *RegistryConfig `yaml:"registry,omitempty"`
}

// AnalysisConfig bounds the analysis algorithms.
type AnalysisConfig struct {
	// MaxPathDepth caps exhaustive path enumeration. Default: 10.
	MaxPathDepth int `yaml:"max_path_depth,omitempty"`

	// PageRankDamping is the PageRank damping factor. Default: 0.85.
	PageRankDamping float64 `yaml:"pagerank_damping,omitempty"`

	// PageRankIterations caps PageRank power iteration. Default: 100.
	PageRankIterations int `yaml:"pagerank_iterations,omitempty"`

	// MinCliqueSize is the smallest clique worth reporting. Default: 3.
	MinCliqueSize int `yaml:"min_clique_size,omitempty"`

	// TopInfluential is the influential-node result count. Default: 10.
	TopInfluential int `yaml:"top_influential,omitempty"`
}

// GetMaxPathDepth returns the configured depth bound or the default.
func (a *AnalysisConfig) GetMaxPathDepth() int {
	if a == nil || a.MaxPathDepth <= 0 {
		return 10
	}
	return a.MaxPathDepth
}

// GetPageRankDamping returns the configured damping factor or the default.
func (a *AnalysisConfig) GetPageRankDamping() float64 {
	if a == nil || a.PageRankDamping <= 0 || a.PageRankDamping >= 1 {
		return 0.85
	}
	return a.PageRankDamping
}

// GetPageRankIterations returns the configured iteration cap or the default.
func (a *AnalysisConfig) GetPageRankIterations() int {
	if a == nil || a.PageRankIterations <= 0 {
		return 100
	}
	return a.PageRankIterations
}

// GetMinCliqueSize returns the configured clique floor or the default.
func (a *AnalysisConfig) GetMinCliqueSize() int {
	if a == nil || a.MinCliqueSize <= 0 {
		return 3
	}
	return a.MinCliqueSize
}

// GetTopInfluential returns the configured result count or the default.
func (a *AnalysisConfig) GetTopInfluential() int {
	if a == nil || a.TopInfluential <= 0 {
		return 10
	}
	return a.TopInfluential
}

// IngestConfig defines the indicator feed settings for ingest workers.
type IngestConfig struct {
	// RedisURL is the feed connection string. Default: "redis://localhost:6379".
	RedisURL string `yaml:"redis_url,omitempty"`

	// Key is the Redis list holding JSON indicators.
	// Default: "threatgraph:indicators".
	Key string `yaml:"key,omitempty"`

	// Concurrency is the number of ingest worker goroutines.
	// Default: 4.
	Concurrency int `yaml:"concurrency,omitempty"`

	// BlockTimeout is how long a worker blocks on an empty feed before
	// treating it as drained. Go duration string. Default: 1s.
	BlockTimeout string `yaml:"block_timeout,omitempty"`

	// ShutdownTimeout is the time to wait for graceful worker shutdown.
	// Go duration string. Default: 30s.
	ShutdownTimeout string `yaml:"shutdown_timeout,omitempty"`
}

// GetRedisURL returns the configured feed URL or the default.
func (i *IngestConfig) GetRedisURL() string {
	if i == nil || i.RedisURL == "" {
		return "redis://localhost:6379"
	}
	return i.RedisURL
}

// GetKey returns the configured feed key or the default.
func (i *IngestConfig) GetKey() string {
	if i == nil || i.Key == "" {
		return "threatgraph:indicators"
	}
	return i.Key
}

// GetConcurrency returns the configured worker count or the default.
func (i *IngestConfig) GetConcurrency() int {
	if i == nil || i.Concurrency <= 0 {
		return 4
	}
	return i.Concurrency
}

// GetBlockTimeout parses the block timeout and returns a duration.
// Returns the default value if not set or invalid.
func (i *IngestConfig) GetBlockTimeout() time.Duration {
	if i == nil || i.BlockTimeout == "" {
		return time.Second
	}
	d, err := time.ParseDuration(i.BlockTimeout)
	if err != nil {
		return time.Second
	}
	return d
}

// GetShutdownTimeout parses the shutdown timeout and returns a duration.
// Returns the default value if not set or invalid.
func (i *IngestConfig) GetShutdownTimeout() time.Duration {
	if i == nil || i.ShutdownTimeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(i.ShutdownTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// RegistryConfig defines etcd-based pipeline registration settings.
type RegistryConfig struct {
	// Endpoints lists the etcd cluster endpoints.
	Endpoints []string `yaml:"endpoints,omitempty"`

	// Namespace prefixes all registry keys. Default: "threatgraph".
	Namespace string `yaml:"namespace,omitempty"`

	// TTL is the registration lease in seconds. Default: 30.
	TTL int `yaml:"ttl,omitempty"`
}

// GetNamespace returns the configured namespace or the default.
func (r *RegistryConfig) GetNamespace() string {
	if r == nil || r.Namespace == "" {
		return "threatgraph"
	}
	return r.Namespace
}

// GetTTL returns the configured lease TTL or the default.
func (r *RegistryConfig) GetTTL() int {
	if r == nil || r.TTL <= 0 {
		return 30
	}
	return r.TTL
}

// Validate checks semantic constraints that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config name is required")
	}
	if c.Analysis != nil && (c.Analysis.PageRankDamping < 0 || c.Analysis.PageRankDamping >= 1) {
		return fmt.Errorf("pagerank_damping must be in [0, 1), got %v", c.Analysis.PageRankDamping)
	}
	return nil
}

// Load reads and parses a threatgraph.yaml file from the given path.
// If the path is a directory, it looks for threatgraph.yaml or
// threatgraph.yml in that directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		yamlPath := filepath.Join(path, "threatgraph.yaml")
		if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			ymlPath := filepath.Join(path, "threatgraph.yml")
			if _, err := os.Stat(ymlPath); err != nil {
				return nil, fmt.Errorf("no threatgraph.yaml or threatgraph.yml found in %s", path)
			}
			configPath = ymlPath
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// LoadFromCurrentDir searches for threatgraph.yaml starting from the
// current working directory and walking up to parent directories.
func LoadFromCurrentDir() (*Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return LoadFromDir(dir)
}

// LoadFromDir searches for threatgraph.yaml starting from the given
// directory and walking up to parent directories until found or the
// filesystem root is reached.
func LoadFromDir(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		config, err := Load(absDir)
		if err == nil {
			return config, nil
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			return nil, fmt.Errorf("no threatgraph.yaml found in %s or any parent directory", dir)
		}
		absDir = parent
	}
}
