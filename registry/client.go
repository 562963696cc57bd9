package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// Client implements Registry backed by an etcd cluster.
//
// The client handles lease management automatically, renewing leases
// every TTL/3 to maintain pipeline presence.
//
// Example usage:
//
//	cfg := registry.Config{
//	    Endpoints: []string{"localhost:2379"},
//	    Namespace: "threatgraph",
//	    TTL:       30,
//	}
//	client, err := registry.NewClient(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
// Thread-safety: all methods are safe for concurrent use.
type Client struct {
	client    *clientv3.Client
	namespace string
	ttl       int

	// Lease tracking for keepalive
	mu         sync.RWMutex
	leases     map[string]clientv3.LeaseID // key: instance ID
	cancelFns  map[string]context.CancelFunc
	wg         sync.WaitGroup
	closed     bool
	closedChan chan struct{}
}

// NewClient creates a registry client from the provided configuration.
//
// This establishes a connection to the etcd cluster and verifies
// connectivity with a health check. The client must be closed with
// Close() to release resources and stop background keepalive goroutines.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("registry endpoints cannot be empty")
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "threatgraph"
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30
	}

	clientCfg := clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: 5 * time.Second,
	}

	tlsConfig, err := cfg.TLS.clientTLS()
	if err != nil {
		return nil, fmt.Errorf("failed to configure TLS: %w", err)
	}
	clientCfg.TLS = tlsConfig

	cli, err := clientv3.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	// Verify connectivity with a quick health check
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err = cli.Get(ctx, "health-check")
	if err != nil && err != context.DeadlineExceeded {
		cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	return &Client{
		client:     cli,
		namespace:  namespace,
		ttl:        ttl,
		leases:     make(map[string]clientv3.LeaseID),
		cancelFns:  make(map[string]context.CancelFunc),
		closedChan: make(chan struct{}),
	}, nil
}

// NewClientFromEnv creates a registry client using the
// THREATGRAPH_REGISTRY_ENDPOINTS environment variable, a comma-separated
// list of etcd endpoints:
//
//	THREATGRAPH_REGISTRY_ENDPOINTS=localhost:2379,localhost:2380
//
// If the variable is not set, this returns (nil, nil) so pipelines can
// run without registry integration. That is not an error - the pipeline
// functions but is not discoverable.
func NewClientFromEnv() (*Client, error) {
	endpoints := os.Getenv("THREATGRAPH_REGISTRY_ENDPOINTS")
	if endpoints == "" {
		// Not an error - pipeline works but isn't registered
		return nil, nil
	}

	endpointList := strings.Split(endpoints, ",")
	for i, ep := range endpointList {
		endpointList[i] = strings.TrimSpace(ep)
	}

	cfg := Config{
		Endpoints: endpointList,
		Namespace: "threatgraph",
		TTL:       30,
	}

	return NewClient(cfg)
}

// Register adds this pipeline instance to the registry.
//
// The instance is discoverable immediately and remains registered as
// long as the lease is kept alive. A background goroutine renews the
// lease every TTL/3 seconds.
//
// If the instance is already registered (same InstanceID), this updates
// the existing entry and restarts the keepalive goroutine. Pipelines use
// that to refresh Stats as the graph grows.
func (c *Client) Register(ctx context.Context, info PipelineInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("registry client is closed")
	}

	// Cancel existing keepalive if re-registering
	if cancelFn, exists := c.cancelFns[info.InstanceID]; exists {
		cancelFn()
		delete(c.cancelFns, info.InstanceID)
	}

	leaseResp, err := c.client.Grant(ctx, int64(c.ttl))
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal pipeline info: %w", err)
	}

	// Registry key: /namespace/role/name/instance-id
	key := c.buildKey(info.Role, info.Name, info.InstanceID)

	_, err = c.client.Put(ctx, key, string(data), clientv3.WithLease(leaseResp.ID))
	if err != nil {
		return fmt.Errorf("failed to register pipeline: %w", err)
	}

	c.leases[info.InstanceID] = leaseResp.ID

	keepaliveCtx, cancel := context.WithCancel(context.Background())
	c.cancelFns[info.InstanceID] = cancel

	c.wg.Add(1)
	go c.keepalive(keepaliveCtx, leaseResp.ID, info.InstanceID)

	return nil
}

// Deregister removes this pipeline instance from the registry.
//
// This revokes the etcd lease, which immediately deletes the entry, and
// stops the background keepalive goroutine. A no-op if the instance is
// not registered.
func (c *Client) Deregister(ctx context.Context, info PipelineInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("registry client is closed")
	}

	if cancelFn, exists := c.cancelFns[info.InstanceID]; exists {
		cancelFn()
		delete(c.cancelFns, info.InstanceID)
	}

	leaseID, exists := c.leases[info.InstanceID]
	if !exists {
		return nil
	}

	_, err := c.client.Revoke(ctx, leaseID)
	if err != nil {
		return fmt.Errorf("failed to revoke lease: %w", err)
	}

	delete(c.leases, info.InstanceID)

	return nil
}

// Discover finds all instances of a deployment by role and name.
//
// Returns all currently registered instances, in arbitrary order. The
// slice may be empty if no instances are running.
func (c *Client) Discover(ctx context.Context, role, name string) ([]PipelineInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("registry client is closed")
	}

	prefix := fmt.Sprintf("/%s/%s/%s/", c.namespace, role, name)

	resp, err := c.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to discover pipelines: %w", err)
	}

	instances := make([]PipelineInfo, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var info PipelineInfo
		if err := json.Unmarshal(kv.Value, &info); err != nil {
			// Skip invalid entries
			continue
		}
		instances = append(instances, info)
	}

	return instances, nil
}

// DiscoverAll finds all instances of a given role. Useful for status
// displays that want every ingest worker or every analyzer.
func (c *Client) DiscoverAll(ctx context.Context, role string) ([]PipelineInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("registry client is closed")
	}

	prefix := fmt.Sprintf("/%s/%s/", c.namespace, role)

	resp, err := c.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to discover all pipelines: %w", err)
	}

	instances := make([]PipelineInfo, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var info PipelineInfo
		if err := json.Unmarshal(kv.Value, &info); err != nil {
			continue
		}
		instances = append(instances, info)
	}

	return instances, nil
}

// Watch returns a channel that receives updates when pipelines change.
//
// The channel emits the current instance list whenever a pipeline
// registers, deregisters, or its lease expires. The initial state is
// sent immediately. The channel is closed when the context is cancelled
// or Close() is called.
func (c *Client) Watch(ctx context.Context, role, name string) (<-chan []PipelineInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("registry client is closed")
	}

	ch := make(chan []PipelineInfo, 1)

	// Send initial state
	instances, err := c.Discover(ctx, role, name)
	if err != nil {
		return nil, err
	}
	ch <- instances

	prefix := fmt.Sprintf("/%s/%s/%s/", c.namespace, role, name)
	watchChan := c.client.Watch(ctx, prefix, clientv3.WithPrefix())

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case <-c.closedChan:
				return
			case watchResp, ok := <-watchChan:
				if !ok {
					return
				}
				if watchResp.Err() != nil {
					return
				}

				// Fetch current state after any change
				instances, err := c.Discover(context.Background(), role, name)
				if err != nil {
					// Skip this update if we can't query
					continue
				}

				select {
				case ch <- instances:
				case <-ctx.Done():
					return
				case <-c.closedChan:
					return
				}
			}
		}
	}()

	return ch, nil
}

// Close releases all resources and stops background goroutines.
//
// After Close() is called, all other methods return errors. All active
// watches are terminated and their channels closed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	for _, cancel := range c.cancelFns {
		cancel()
	}
	c.cancelFns = make(map[string]context.CancelFunc)

	close(c.closedChan)
	c.mu.Unlock()

	c.wg.Wait()

	return c.client.Close()
}

// keepalive renews the lease every TTL/3 seconds to maintain pipeline
// presence. It stops when the context is cancelled (via Deregister or
// Close) or the lease becomes invalid.
func (c *Client) keepalive(ctx context.Context, leaseID clientv3.LeaseID, instanceID string) {
	defer c.wg.Done()

	interval := time.Duration(c.ttl) * time.Second / 3
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closedChan:
			return
		case <-ticker.C:
			_, err := c.client.KeepAliveOnce(context.Background(), leaseID)
			if err != nil {
				// Lease is invalid, stop keepalive
				c.mu.Lock()
				delete(c.leases, instanceID)
				delete(c.cancelFns, instanceID)
				c.mu.Unlock()
				return
			}
		}
	}
}

// buildKey constructs the etcd key for a pipeline instance.
//
// Format: /namespace/role/name/instance-id
func (c *Client) buildKey(role, name, instanceID string) string {
	return fmt.Sprintf("/%s/%s/%s/%s", c.namespace, role, name, instanceID)
}
