package chain

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/txverify/internal/core/domain"
	"github.com/vietddude/txverify/internal/infra/chain/evm"
	"github.com/vietddude/txverify/internal/infra/rpc"
)

// PoolConfig controls how block sources are built from chain profiles.
type PoolConfig struct {
	// RequestTimeout bounds a single HTTP round trip.
	RequestTimeout time.Duration
	// Retry is the per-provider retry policy.
	Retry rpc.RetryConfig
}

// DefaultPoolConfig returns the settings used when none are configured.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		RequestTimeout: 10 * time.Second,
		Retry:          rpc.DefaultRetryConfig,
	}
}

// Pool lazily creates one BlockSource per chain and reuses it across
// verifications so HTTP connections and provider health survive between calls.
type Pool struct {
	cfg    PoolConfig
	router *rpc.DefaultRouter

	mu      sync.Mutex
	sources map[domain.ChainID]BlockSource
	clients map[domain.ChainID]*rpc.Client
}

// NewPool creates an empty pool.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultPoolConfig().RequestTimeout
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = rpc.DefaultRetryConfig
	}
	return &Pool{
		cfg:     cfg,
		router:  rpc.NewRouter(),
		sources: make(map[domain.ChainID]BlockSource),
		clients: make(map[domain.ChainID]*rpc.Client),
	}
}

// Source returns the block source for a profile, creating it on first use.
func (p *Pool) Source(profile domain.ChainProfile) (BlockSource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if src, ok := p.sources[profile.ID]; ok {
		return src, nil
	}
	if len(profile.RPCEndpoints) == 0 {
		return nil, fmt.Errorf("chain %s: no rpc endpoints", profile.ID)
	}

	// Router health is keyed by provider name, so names must be unique per chain.
	seen := make(map[string]bool, len(profile.RPCEndpoints))
	for i, ep := range profile.RPCEndpoints {
		name := ep.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", profile.ID, i)
		}
		if seen[name] {
			name = fmt.Sprintf("%s-%d", name, i)
		}
		seen[name] = true
		provider := rpc.NewHTTPProvider(name, ep.URL, p.cfg.RequestTimeout).
			WithRateLimit(ep.RateLimit, ep.Burst)
		p.router.AddProvider(profile.ID, provider)
	}

	client := rpc.NewClient(profile.ID, p.router).WithRetry(p.cfg.Retry)
	src := evm.NewEVMAdapter(profile.ID, client)

	p.clients[profile.ID] = client
	p.sources[profile.ID] = src

	slog.Debug("Block source created",
		"chain", profile.ID,
		"name", profile.Name,
		"providers", len(profile.RPCEndpoints),
	)
	return src, nil
}

// Health returns provider health for every chain that has been used.
func (p *Pool) Health() map[domain.ChainID]map[string]rpc.HealthStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[domain.ChainID]map[string]rpc.HealthStatus, len(p.clients))
	for id, c := range p.clients {
		out[id] = c.ProviderHealth()
	}
	return out
}

// Close releases idle connections of every provider.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id := range p.sources {
		for _, prov := range p.router.GetAllProviders(id) {
			_ = prov.Close()
		}
	}
	return nil
}
