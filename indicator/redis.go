package indicator

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a RedisSource connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string

	// Key is the Redis list that ingestion pipelines push indicators onto.
	// Defaults to "threatgraph:indicators".
	Key string

	// TLS configuration for secure connections.
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment.
	ConnectTimeout time.Duration

	// BlockTimeout is how long Next blocks waiting for a record before
	// treating the feed as drained.
	BlockTimeout time.Duration
}

// RedisSource drains JSON-encoded indicators from a Redis list.
//
// Producers LPUSH records onto the configured key; Next performs a
// blocking BRPOP so several consumers can share a feed. A pop that times
// out after BlockTimeout reports ErrSourceDrained.
type RedisSource struct {
	client       *redis.Client
	key          string
	blockTimeout time.Duration
}

// NewRedisSource creates a RedisSource with the given options and verifies
// connectivity with a ping.
func NewRedisSource(opts RedisOptions) (*RedisSource, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.Key == "" {
		opts.Key = "threatgraph:indicators"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.BlockTimeout == 0 {
		opts.BlockTimeout = time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSource{
		client:       client,
		key:          opts.Key,
		blockTimeout: opts.BlockTimeout,
	}, nil
}

// Next pops and decodes the next indicator from the list.
// Returns ErrSourceDrained when the list stays empty for BlockTimeout, and
// ErrDecode (wrapped) when a record is not valid indicator JSON.
func (s *RedisSource) Next(ctx context.Context) (*Indicator, error) {
	result, err := s.client.BRPop(ctx, s.blockTimeout, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSourceDrained
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("popping indicator: %w", err)
	}

	// BRPop returns [key, value].
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply length %d", len(result))
	}

	var ind Indicator
	if err := json.Unmarshal([]byte(result[1]), &ind); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &ind, nil
}

// Push encodes an indicator and appends it to the feed list. Exposed so
// ingestion pipelines and tests can share the wire format with Next.
func (s *RedisSource) Push(ctx context.Context, ind *Indicator) error {
	payload, err := json.Marshal(ind)
	if err != nil {
		return fmt.Errorf("encoding indicator: %w", err)
	}
	if err := s.client.LPush(ctx, s.key, payload).Err(); err != nil {
		return fmt.Errorf("pushing indicator: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisSource) Close() error {
	return s.client.Close()
}
