package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vietddude/txverify/internal/core/domain"
)

// Client wraps Redis operations for the shared head cache.
type Client struct {
	rdb    *redis.Client
	prefix string
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Prefix   string `yaml:"prefix"`
}

// Enabled reports whether a Redis URL was configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb, prefix: prefixOrDefault(cfg.Prefix)}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func prefixOrDefault(p string) string {
	if p == "" {
		return "txverify"
	}
	return p
}

// Key helpers
func headKey(prefix string, chainID domain.ChainID) string {
	return fmt.Sprintf("%s:head:%d", prefix, chainID)
}

// GetHead returns the cached head for a chain; ok is false on a miss.
func (c *Client) GetHead(ctx context.Context, chainID domain.ChainID) (uint64, bool, error) {
	val, err := c.rdb.Get(ctx, headKey(c.prefix, chainID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get head: %w", err)
	}

	head, err := ParseHead(val)
	if err != nil {
		return 0, false, err
	}
	return head, true, nil
}

// SetHead stores the head for ttl. A non-positive ttl is a no-op so stale
// heads never outlive the in-process cache.
func (c *Client) SetHead(ctx context.Context, chainID domain.ChainID, head uint64, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.rdb.Set(ctx, headKey(c.prefix, chainID), strconv.FormatUint(head, 10), ttl).Err(); err != nil {
		return fmt.Errorf("set head: %w", err)
	}
	return nil
}

// ParseHead parses a stored head value.
func ParseHead(s string) (uint64, error) {
	head, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid head value %q: %w", s, err)
	}
	return head, nil
}
