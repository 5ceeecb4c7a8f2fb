// Package routing handles provider selection and failover logic.
//
// This package contains:
//   - Router: interface for provider selection and health tracking
//   - DefaultRouter: ordered failover with a per-provider circuit breaker
//   - Retry: retry logic with exponential backoff and failover
package routing

import (
	"fmt"
	"sync"
	"time"

	"github.com/vietddude/txverify/internal/core/domain"
	"github.com/vietddude/txverify/internal/infra/rpc/provider"
)

// Router handles provider selection and health tracking.
type Router interface {
	// AddProvider registers a provider for a specific chain
	AddProvider(chainID domain.ChainID, p provider.Provider)

	// GetProviders returns the chain's providers in the order they should be tried
	GetProviders(chainID domain.ChainID) ([]provider.Provider, error)

	// RecordSuccess tracks successful calls
	RecordSuccess(chainID domain.ChainID, providerName string, latency time.Duration)

	// RecordFailure tracks failed calls
	RecordFailure(chainID domain.ChainID, providerName string, err error)
}

type providerKey struct {
	chainID domain.ChainID
	name    string
}

type providerMetrics struct {
	successCount     int
	failureCount     int
	totalLatency     time.Duration
	lastSuccessAt    time.Time
	lastFailureAt    time.Time
	consecutiveFails int
	circuitOpenUntil time.Time
}

// DefaultRouter keeps providers in configuration order: the first reachable
// endpoint wins. Providers with an open circuit or a blocked monitor are moved
// to the back of the list rather than dropped, so a chain is never left
// without a candidate.
type DefaultRouter struct {
	mu             sync.RWMutex
	chainProviders map[domain.ChainID][]provider.Provider
	providerHealth map[providerKey]*providerMetrics

	failureThreshold int
	cooldown         time.Duration
	now              func() time.Time
}

// NewRouter creates a router that opens a provider's circuit after five
// consecutive failures for thirty seconds.
func NewRouter() *DefaultRouter {
	return &DefaultRouter{
		chainProviders:   make(map[domain.ChainID][]provider.Provider),
		providerHealth:   make(map[providerKey]*providerMetrics),
		failureThreshold: 5,
		cooldown:         30 * time.Second,
		now:              time.Now,
	}
}

// AddProvider registers a provider for a chain.
func (r *DefaultRouter) AddProvider(chainID domain.ChainID, p provider.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.chainProviders[chainID] = append(r.chainProviders[chainID], p)
	r.providerHealth[providerKey{chainID, p.GetName()}] = &providerMetrics{
		lastSuccessAt: r.now(),
	}
}

// GetProviders returns healthy providers first, in registration order.
func (r *DefaultRouter) GetProviders(chainID domain.ChainID) ([]provider.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := r.chainProviders[chainID]
	if len(providers) == 0 {
		return nil, fmt.Errorf("no providers for chain %s", chainID)
	}

	now := r.now()
	ordered := make([]provider.Provider, 0, len(providers))
	var degraded []provider.Provider
	for _, p := range providers {
		m := r.providerHealth[providerKey{chainID, p.GetName()}]
		if (m != nil && now.Before(m.circuitOpenUntil)) || !p.IsAvailable() {
			degraded = append(degraded, p)
			continue
		}
		ordered = append(ordered, p)
	}

	return append(ordered, degraded...), nil
}

// GetProvider returns the first provider GetProviders would try.
func (r *DefaultRouter) GetProvider(chainID domain.ChainID) (provider.Provider, error) {
	providers, err := r.GetProviders(chainID)
	if err != nil {
		return nil, err
	}
	return providers[0], nil
}

// GetAllProviders returns all providers for a chain in registration order.
func (r *DefaultRouter) GetAllProviders(chainID domain.ChainID) []provider.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := r.chainProviders[chainID]
	result := make([]provider.Provider, len(providers))
	copy(result, providers)
	return result
}

// RecordSuccess records a successful call and closes the provider's circuit.
func (r *DefaultRouter) RecordSuccess(chainID domain.ChainID, providerName string, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	metrics, ok := r.providerHealth[providerKey{chainID, providerName}]
	if !ok {
		return
	}

	metrics.successCount++
	metrics.totalLatency += latency
	metrics.lastSuccessAt = r.now()
	metrics.consecutiveFails = 0
	metrics.circuitOpenUntil = time.Time{}
}

// RecordFailure records a failed call.
func (r *DefaultRouter) RecordFailure(chainID domain.ChainID, providerName string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	metrics, ok := r.providerHealth[providerKey{chainID, providerName}]
	if !ok {
		return
	}

	metrics.failureCount++
	metrics.lastFailureAt = r.now()
	metrics.consecutiveFails++

	if metrics.consecutiveFails >= r.failureThreshold {
		metrics.circuitOpenUntil = r.now().Add(r.cooldown)
	}
}

// CircuitOpen reports whether a provider is currently being skipped.
func (r *DefaultRouter) CircuitOpen(chainID domain.ChainID, providerName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.providerHealth[providerKey{chainID, providerName}]
	return ok && r.now().Before(m.circuitOpenUntil)
}
