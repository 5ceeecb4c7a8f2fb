package rpc

import (
	"context"
	"time"

	"github.com/vietddude/txverify/internal/core/domain"
	"github.com/vietddude/txverify/internal/infra/rpc/routing"
	"github.com/vietddude/txverify/internal/metrics"
)

// RPCClient is what chain adapters depend on.
type RPCClient interface {
	Execute(ctx context.Context, op Operation) (any, error)
}

// Client executes operations against one chain's providers with retry and failover.
// It is safe for concurrent use.
type Client struct {
	chainID domain.ChainID
	router  routing.Router
	retry   routing.RetryConfig
}

// NewClient creates a new RPC client using DefaultRetryConfig.
func NewClient(chainID domain.ChainID, router routing.Router) *Client {
	return &Client{
		chainID: chainID,
		router:  router,
		retry:   routing.DefaultRetryConfig,
	}
}

// WithRetry overrides the retry policy.
func (c *Client) WithRetry(cfg routing.RetryConfig) *Client {
	c.retry = cfg
	return c
}

// Execute runs op against the first provider that answers.
func (c *Client) Execute(ctx context.Context, op Operation) (any, error) {
	chain := c.chainID.String()
	start := time.Now()

	result, providerName, err := routing.CallWithRetryAndFailover(
		ctx,
		c.router,
		c.chainID,
		op.Name,
		op.Params,
		c.retry,
	)
	metrics.RPCLatency.WithLabelValues(chain, op.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.RPCErrorsTotal.WithLabelValues(chain, op.Name, routing.ClassifyError(err).String()).Inc()
		return nil, err
	}

	metrics.RPCCallsTotal.WithLabelValues(chain, providerName, op.Name).Inc()
	return result, nil
}

// ProviderHealth returns the health snapshot of every provider for the chain.
func (c *Client) ProviderHealth() map[string]HealthStatus {
	out := make(map[string]HealthStatus)
	providers, err := c.router.GetProviders(c.chainID)
	if err != nil {
		return out
	}
	for _, p := range providers {
		out[p.GetName()] = p.GetHealth()
	}
	return out
}
