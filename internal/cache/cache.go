package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidgate/internal/types"
)

// ErrCacheMiss is returned by Get when no entry exists for the URL
var ErrCacheMiss = stderrors.New("cache miss")

// DefaultTTL is how long a mapped response stays cached
const DefaultTTL = 5 * time.Minute

// keyPrefix namespaces response entries in a shared Redis
const keyPrefix = "vidgate:response:"

// ResponseCache stores successful extraction responses by source URL
type ResponseCache interface {
	Get(ctx context.Context, url string) (*types.MappedResponse, error)
	Set(ctx context.Context, url string, resp *types.MappedResponse) error
	Ping(ctx context.Context) error
	Close() error
}

// Options configures the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache is a ResponseCache backed by Redis
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(opts Options, logger *zap.Logger) (*RedisCache, error) {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     20,
		MinIdleConns: 2,
		MaxRetries:   1,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolTimeout:  3 * time.Second,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Response cache connected",
		zap.String("redis_addr", opts.Addr),
		zap.Int("db", opts.DB),
		zap.Duration("ttl", opts.TTL),
	)

	return &RedisCache{
		client: client,
		logger: logger,
		ttl:    opts.TTL,
	}, nil
}

// Key returns the Redis key for a source URL
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return keyPrefix + hex.EncodeToString(hash[:])
}

// Get retrieves a cached response
func (rc *RedisCache) Get(ctx context.Context, url string) (*types.MappedResponse, error) {
	data, err := rc.client.Get(ctx, Key(url)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var resp types.MappedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached response: %w", err)
	}

	rc.logger.Debug("Cache hit", zap.String("url", url))
	return &resp, nil
}

// Set stores a response. Responses carrying an error are never cached.
func (rc *RedisCache) Set(ctx context.Context, url string, resp *types.MappedResponse) error {
	if resp == nil || resp.Error != nil {
		return nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err := rc.client.Set(ctx, Key(url), data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	rc.logger.Debug("Cache set", zap.String("url", url), zap.Duration("ttl", rc.ttl))
	return nil
}

// Ping checks Redis connectivity
func (rc *RedisCache) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
