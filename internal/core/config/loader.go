package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vietddude/txverify/internal/core/domain"
	"gopkg.in/yaml.v2"
)

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	var cfg AppConfig
	applyDefaults(&cfg)
	return &cfg
}

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path if it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*AppConfig, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	v := &cfg.Verification
	if v.MaxDuration == 0 {
		v.MaxDuration = domain.MaxVerificationDuration
	}
	if v.BatchSize == 0 {
		v.BatchSize = 50
	}
	if v.BlockBuffer == 0 {
		v.BlockBuffer = 100
	}
	if v.MaxBlocks == 0 {
		v.MaxBlocks = 15000
	}
	if v.Timeout == 0 {
		v.Timeout = 2 * time.Minute
	}

	r := &cfg.RPC
	if r.Timeout == 0 {
		r.Timeout = 10 * time.Second
	}
	if r.RetryAttempts == 0 {
		r.RetryAttempts = 3
	}
	if r.RetryInitialDelay == 0 {
		r.RetryInitialDelay = 200 * time.Millisecond
	}
	if r.RetryMaxDelay == 0 {
		r.RetryMaxDelay = 2 * time.Second
	}
}

// Validate checks values the defaults cannot fix.
func (c *AppConfig) Validate() error {
	if c.Verification.MaxDuration < 0 || c.Verification.MaxDuration > domain.MaxVerificationDuration {
		return fmt.Errorf("verification.max_duration must be within (0, %s]", domain.MaxVerificationDuration)
	}
	if c.Verification.BatchSize < 0 {
		return fmt.Errorf("verification.batch_size must be positive")
	}
	if c.Verification.HeadCacheTTL < 0 {
		return fmt.Errorf("verification.head_cache_ttl must not be negative")
	}

	for i, ch := range c.Chains {
		if ch.ChainID <= 0 {
			return fmt.Errorf("chains[%d]: id must be positive", i)
		}
		if ch.BlockTime < 0 {
			return fmt.Errorf("chains[%d]: block_time must not be negative", i)
		}
		for j, p := range ch.Providers {
			if p.URL == "" {
				return fmt.Errorf("chains[%d].providers[%d]: url is required", i, j)
			}
			if p.RateLimit < 0 {
				return fmt.Errorf("chains[%d].providers[%d]: rate_limit must not be negative", i, j)
			}
		}
	}
	return nil
}
