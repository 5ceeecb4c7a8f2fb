// Package control wires configuration into a running verification service.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vietddude/txverify/internal/core/config"
	"github.com/vietddude/txverify/internal/infra/chain"
	redisclient "github.com/vietddude/txverify/internal/infra/redis"
	"github.com/vietddude/txverify/internal/infra/rpc"
	"github.com/vietddude/txverify/internal/server"
	"github.com/vietddude/txverify/internal/verification"
	"github.com/vietddude/txverify/internal/verification/registry"
	"github.com/vietddude/txverify/internal/verification/scanner"
)

// App owns the long-lived components: registry, RPC pool, optional Redis
// head store, verifier and HTTP server.
type App struct {
	cfg         *config.AppConfig
	registry    *registry.Registry
	pool        *chain.Pool
	redisClient *redisclient.Client
	verifier    *verification.Verifier
	server      *server.Server
	log         *slog.Logger
}

// NewApp builds every component from cfg. No network calls are made except
// the Redis ping when Redis is configured.
func NewApp(cfg *config.AppConfig) (*App, error) {
	reg, err := registry.New(cfg.Profiles()...)
	if err != nil {
		return nil, fmt.Errorf("failed to build chain registry: %w", err)
	}

	pool := chain.NewPool(chain.PoolConfig{
		RequestTimeout: cfg.RPC.Timeout,
		Retry: rpc.RetryConfig{
			MaxAttempts:     cfg.RPC.RetryAttempts,
			InitialDelay:    cfg.RPC.RetryInitialDelay,
			MaxDelay:        cfg.RPC.RetryMaxDelay,
			BackoffMultiple: 2.0,
		},
	})

	app := &App{
		cfg:      cfg,
		registry: reg,
		pool:     pool,
		log:      slog.Default().With("component", "app"),
	}

	var headStore scanner.HeadStore
	if cfg.Redis.Enabled() {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		app.redisClient = client
		headStore = client
		slog.Info("Using Redis head cache", "ttl", cfg.Verification.HeadCacheTTL)
	}

	app.verifier = verification.NewVerifier(reg, pool,
		verification.WithScannerOptions(scanner.Options{
			BatchSize: cfg.Verification.BatchSize,
			Buffer:    cfg.Verification.BlockBuffer,
			MaxBlocks: cfg.Verification.MaxBlocks,
		}),
		verification.WithMaxDuration(cfg.Verification.MaxDuration),
		verification.WithHeadCache(cfg.Verification.HeadCacheTTL, headStore),
	)

	app.server = server.NewServer(server.Config{
		Port:           cfg.Server.Port,
		RequestTimeout: cfg.Verification.Timeout,
	}, app.verifier, reg, pool)

	return app, nil
}

// Verifier returns the shared verifier.
func (a *App) Verifier() *verification.Verifier {
	return a.verifier
}

// Registry returns the chain registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Server returns the HTTP server.
func (a *App) Server() *server.Server {
	return a.server
}

// Start serves HTTP in the background. Listen errors are logged.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("HTTP server failed", "error", err)
		}
	}()

	a.log.Info("Verification service started",
		"port", a.cfg.Server.Port,
		"chains", a.registry.Len(),
		"max_duration", a.verifier.MaxDuration(),
	)
	return nil
}

// Stop shuts the server down and releases connections.
func (a *App) Stop(ctx context.Context) error {
	var errs []error
	if err := a.server.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop server: %w", err))
	}
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Close releases RPC and Redis connections without touching the server.
func (a *App) Close() error {
	var errs []error
	if err := a.pool.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close rpc pool: %w", err))
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
