package redis

import (
	"testing"

	"github.com/vietddude/txverify/internal/core/domain"
)

func TestHeadKey(t *testing.T) {
	if got := headKey("txverify", domain.ChainIDBase); got != "txverify:head:8453" {
		t.Errorf("unexpected key %q", got)
	}
	if got := headKey(prefixOrDefault(""), domain.ChainIDEthereum); got != "txverify:head:1" {
		t.Errorf("unexpected default-prefix key %q", got)
	}
}

func TestParseHead(t *testing.T) {
	head, err := ParseHead("19000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if head != 19_000_000 {
		t.Errorf("expected 19000000, got %d", head)
	}

	for _, bad := range []string{"", "-1", "0x10", "abc"} {
		if _, err := ParseHead(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestNewClient_InvalidURL(t *testing.T) {
	if _, err := NewClient(Config{URL: "not a url"}); err == nil {
		t.Fatal("expected error for invalid redis URL")
	}
}

func TestConfig_Enabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Error("empty config should be disabled")
	}
	if !(Config{URL: "redis://localhost:6379/0"}).Enabled() {
		t.Error("config with URL should be enabled")
	}
}
