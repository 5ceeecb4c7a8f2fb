// Package rpc provides a resilient JSON-RPC client for EVM networks.
//
// This package offers:
//   - Multiple endpoints per chain, tried in configuration order
//   - Retry with exponential backoff and failover
//   - Per-provider rate limiting and throttle detection
//   - Prometheus call/latency metrics
//
// # Quick Start
//
//	import "github.com/vietddude/txverify/internal/infra/rpc"
//
//	router := rpc.NewRouter()
//	router.AddProvider(8453, rpc.NewHTTPProvider("base", baseURL, 10*time.Second))
//	router.AddProvider(8453, rpc.NewHTTPProvider("backup", backupURL, 10*time.Second))
//
//	client := rpc.NewClient(8453, router)
//	result, err := client.Execute(ctx, rpc.NewHTTPOperation("eth_blockNumber", nil))
//
// # Package Structure
//
//   - provider/ - HTTPProvider and health monitoring
//   - routing/  - Provider ordering, circuit breaking, retry and failover
//
// Most types are re-exported at the root level for convenience.
package rpc

import (
	"time"

	"github.com/vietddude/txverify/internal/infra/rpc/provider"
	"github.com/vietddude/txverify/internal/infra/rpc/routing"
)

// Provider is the core interface for RPC endpoints.
type Provider = provider.Provider

// HTTPProvider implements Provider for JSON-RPC over HTTP.
type HTTPProvider = provider.HTTPProvider

// HealthStatus represents the health state of a provider.
type HealthStatus = provider.HealthStatus

// Operation represents an RPC operation to execute.
type Operation = provider.Operation

// Router handles provider ordering and health tracking.
type Router = routing.Router

// DefaultRouter implements ordered failover with a circuit breaker.
type DefaultRouter = routing.DefaultRouter

// RetryConfig defines retry behavior.
type RetryConfig = routing.RetryConfig

// DefaultRetryConfig provides sensible retry defaults.
var DefaultRetryConfig = routing.DefaultRetryConfig

// NewHTTPProvider creates a new HTTP-based RPC provider.
func NewHTTPProvider(name, endpoint string, timeout time.Duration) *HTTPProvider {
	return provider.NewHTTPProvider(name, endpoint, timeout)
}

// NewRouter creates a new router.
func NewRouter() *DefaultRouter {
	return routing.NewRouter()
}
