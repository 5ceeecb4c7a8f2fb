package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/txverify/internal/core/domain"
)

// HeadStore shares chain heads between processes (see infra/redis).
type HeadStore interface {
	GetHead(ctx context.Context, chainID domain.ChainID) (uint64, bool, error)
	SetHead(ctx context.Context, chainID domain.ChainID, head uint64, ttl time.Duration) error
}

// HeadCache caches the result of GetLatestBlock so bursts of verifications
// on the same chain share one eth_blockNumber call.
type HeadCache struct {
	source  HeadSource
	chainID domain.ChainID
	ttl     time.Duration
	store   HeadStore // optional
	now     func() time.Time

	mu       sync.RWMutex
	cached   uint64
	cachedAt time.Time
}

// NewHeadCache creates a new head cache with the given TTL.
func NewHeadCache(source HeadSource, chainID domain.ChainID, ttl time.Duration) *HeadCache {
	return &HeadCache{
		source:  source,
		chainID: chainID,
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithStore adds a shared second-level store.
func (c *HeadCache) WithStore(store HeadStore) *HeadCache {
	c.store = store
	return c
}

// GetLatestBlock returns the cached chain head if within TTL, otherwise fetches fresh.
func (c *HeadCache) GetLatestBlock(ctx context.Context) (uint64, error) {
	c.mu.RLock()
	if c.now().Sub(c.cachedAt) < c.ttl && c.cached > 0 {
		cached := c.cached
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	if c.store != nil {
		head, ok, err := c.store.GetHead(ctx, c.chainID)
		if err != nil {
			slog.Warn("Head store read failed", "chain", c.chainID, "error", err)
		} else if ok && head > 0 {
			c.remember(head)
			return head, nil
		}
	}

	head, err := c.source.GetLatestBlock(ctx)
	if err != nil {
		return 0, err
	}
	c.remember(head)

	if c.store != nil {
		if err := c.store.SetHead(ctx, c.chainID, head, c.ttl); err != nil {
			slog.Warn("Head store write failed", "chain", c.chainID, "error", err)
		}
	}
	return head, nil
}

func (c *HeadCache) remember(head uint64) {
	c.mu.Lock()
	c.cached = head
	c.cachedAt = c.now()
	c.mu.Unlock()
}
