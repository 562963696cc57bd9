// Package registry provides discovery and registration for threat graph
// pipelines.
//
// Deployments that run ingest workers or analyzers register themselves in
// etcd at startup so that dashboards and peer pipelines can find live
// instances. Entries are lease-backed: a pipeline that crashes or loses
// connectivity disappears from discovery once its lease expires, so the
// registry never lists dead instances for long.
package registry

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"
)

// Pipeline roles. Ingest pipelines consume indicator feeds and build
// graphs; analyzers run centrality and community analysis over them.
const (
	RoleIngest   = "ingest"
	RoleAnalyzer = "analyzer"
)

// GraphStats is the last reported size of a pipeline's graph.
type GraphStats struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// PipelineInfo describes a registered pipeline instance.
//
// Multiple instances of the same deployment can run simultaneously, each
// with a unique InstanceID. Re-registering the same InstanceID updates
// the existing entry, which is how pipelines refresh Stats.
type PipelineInfo struct {
	// Role identifies the pipeline type: "ingest" or "analyzer".
	Role string `json:"role"`

	// Name is the deployment name from threatgraph.yaml.
	Name string `json:"name"`

	// Version is the semantic version of the pipeline binary.
	Version string `json:"version"`

	// InstanceID is a unique identifier for this specific instance
	// (typically UUID). Multiple instances of the same deployment run
	// concurrently under distinct InstanceIDs.
	InstanceID string `json:"instance_id"`

	// Endpoint is the network address where this pipeline can be
	// reached, "host:port" for TCP.
	Endpoint string `json:"endpoint"`

	// Feeds lists the indicator feed keys this pipeline consumes.
	Feeds []string `json:"feeds,omitempty"`

	// Stats is the last reported graph size.
	Stats GraphStats `json:"stats"`

	// Metadata holds pipeline-specific attributes (intel sources,
	// retention policy, any custom key-value pairs).
	Metadata map[string]string `json:"metadata,omitempty"`

	// StartedAt is the timestamp when this instance started.
	StartedAt time.Time `json:"started_at"`
}

// Registry defines the pipeline registration and discovery interface.
//
// Implementations must be safe for concurrent use. Entries are backed by
// etcd leases with a TTL, renewed in the background, so stale instances
// are removed automatically.
type Registry interface {
	// Register adds this pipeline instance to the registry. The
	// instance is discoverable immediately and stays registered as
	// long as its lease is renewed. Registering an InstanceID that
	// already exists updates the entry.
	Register(ctx context.Context, info PipelineInfo) error

	// Deregister removes this pipeline instance from the registry by
	// revoking its lease. A no-op if the instance is not registered.
	Deregister(ctx context.Context, info PipelineInfo) error

	// Discover finds all instances of a deployment by role and name.
	// The returned slice may be empty; order is arbitrary.
	Discover(ctx context.Context, role, name string) ([]PipelineInfo, error)

	// DiscoverAll finds all instances of a given role.
	DiscoverAll(ctx context.Context, role string) ([]PipelineInfo, error)

	// Watch returns a channel that receives the current instance list
	// whenever a pipeline registers, deregisters, or its lease
	// expires. The initial state is sent immediately. The channel is
	// closed when the context is cancelled or Close is called.
	Watch(ctx context.Context, role, name string) (<-chan []PipelineInfo, error)

	// Close releases registry resources and stops all background
	// goroutines. After Close, all other methods return errors.
	Close() error
}

// Config holds registry connection configuration.
type Config struct {
	// Endpoints is the list of etcd endpoints.
	// Format: ["host1:2379", "host2:2379"]
	Endpoints []string `json:"endpoints"`

	// Namespace is the etcd key prefix for all pipeline entries.
	// Instances are stored under /{namespace}/{role}/{name}/{instance-id}.
	// Default: "threatgraph"
	Namespace string `json:"namespace"`

	// TTL is the lease time-to-live in seconds. A pipeline that fails
	// to renew within this interval is removed from discovery.
	// Default: 30 seconds.
	TTL int `json:"ttl"`

	// TLS holds TLS configuration for secure etcd communication.
	// If nil, TLS is disabled.
	TLS *TLSConfig `json:"tls"`
}

// TLSConfig holds TLS certificate configuration for secure registry
// communication. When enabled, all etcd traffic uses mutual TLS.
type TLSConfig struct {
	// Enabled determines whether TLS is active.
	Enabled bool `json:"enabled"`

	// CertFile is the path to the client certificate (PEM format).
	CertFile string `json:"cert_file"`

	// KeyFile is the path to the client private key (PEM format).
	KeyFile string `json:"key_file"`

	// CAFile is the path to the certificate authority file used to
	// verify the etcd server's certificate (PEM format).
	CAFile string `json:"ca_file"`
}

// clientTLS builds the mutual-TLS configuration for etcd connections.
// Returns (nil, nil) when TLS is disabled. All three certificate paths
// are required when it is enabled.
func (t *TLSConfig) clientTLS() (*tls.Config, error) {
	if t == nil || !t.Enabled {
		return nil, nil
	}

	required := []struct{ path, what string }{
		{t.CertFile, "cert"},
		{t.KeyFile, "key"},
		{t.CAFile, "CA"},
	}
	for _, r := range required {
		if r.path == "" {
			return nil, fmt.Errorf("TLS %s file is required when TLS is enabled", r.what)
		}
	}

	cert, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}

	caData, err := os.ReadFile(t.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caData) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      caPool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}
