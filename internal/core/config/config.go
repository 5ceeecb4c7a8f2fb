package config

import (
	"time"

	"github.com/vietddude/txverify/internal/core/domain"
	redisclient "github.com/vietddude/txverify/internal/infra/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server       ServerConfig       `yaml:"server"`
	Logging      LoggingConfig      `yaml:"logging"`
	Verification VerificationConfig `yaml:"verification"`
	RPC          RPCConfig          `yaml:"rpc"`
	Redis        redisclient.Config `yaml:"redis"`
	Chains       []ChainConfig      `yaml:"chains"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// VerificationConfig tunes the scan performed for each request.
type VerificationConfig struct {
	MaxDuration  time.Duration `yaml:"max_duration"`   // <= 1h
	BatchSize    int           `yaml:"batch_size"`     // blocks fetched concurrently
	BlockBuffer  uint64        `yaml:"block_buffer"`   // extra blocks on top of the estimate
	MaxBlocks    uint64        `yaml:"max_blocks"`     // absolute ceiling per scan
	Timeout      time.Duration `yaml:"timeout"`        // per-request deadline in serve
	HeadCacheTTL time.Duration `yaml:"head_cache_ttl"` // 0 = always fetch the head
}

// RPCConfig holds settings shared by every provider.
type RPCConfig struct {
	Timeout           time.Duration `yaml:"timeout"`
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInitialDelay time.Duration `yaml:"retry_initial_delay"`
	RetryMaxDelay     time.Duration `yaml:"retry_max_delay"`
}

// ChainConfig adds a chain or overrides fields of a built-in one.
type ChainConfig struct {
	ChainID     domain.ChainID   `yaml:"id"`
	Name        string           `yaml:"name"`
	Testnet     bool             `yaml:"testnet"`
	BlockTime   time.Duration    `yaml:"block_time"`
	ExplorerURL string           `yaml:"explorer_url"`
	Providers   []ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds settings for an RPC provider.
type ProviderConfig struct {
	Name      string  `yaml:"name"`
	URL       string  `yaml:"url"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second, 0 = unlimited
	Burst     int     `yaml:"burst"`
}

// Profile converts the entry into a chain profile. Zero fields are left
// zero so the registry can merge them over a built-in profile.
func (c ChainConfig) Profile() domain.ChainProfile {
	p := domain.ChainProfile{
		ID:               c.ChainID,
		Name:             c.Name,
		Testnet:          c.Testnet,
		AverageBlockTime: c.BlockTime,
		ExplorerURL:      c.ExplorerURL,
	}
	for _, pc := range c.Providers {
		p.RPCEndpoints = append(p.RPCEndpoints, domain.Endpoint{
			Name:      pc.Name,
			URL:       pc.URL,
			RateLimit: pc.RateLimit,
			Burst:     pc.Burst,
		})
	}
	return p
}

// Profiles returns the chain overrides in file order.
func (c *AppConfig) Profiles() []domain.ChainProfile {
	out := make([]domain.ChainProfile, 0, len(c.Chains))
	for _, cc := range c.Chains {
		out = append(out, cc.Profile())
	}
	return out
}
