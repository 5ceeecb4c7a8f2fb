package chain

import (
	"testing"
	"time"

	"github.com/vietddude/txverify/internal/core/domain"
)

func testProfile(id domain.ChainID, endpoints ...domain.Endpoint) domain.ChainProfile {
	return domain.ChainProfile{
		ID:               id,
		Name:             "test",
		RPCEndpoints:     endpoints,
		AverageBlockTime: time.Second,
	}
}

func TestPool_SourceReused(t *testing.T) {
	pool := NewPool(DefaultPoolConfig())
	defer pool.Close()

	profile := testProfile(999, domain.Endpoint{Name: "local", URL: "http://127.0.0.1:1"})

	first, err := pool.Source(profile)
	if err != nil {
		t.Fatalf("Source failed: %v", err)
	}
	second, err := pool.Source(profile)
	if err != nil {
		t.Fatalf("Source failed: %v", err)
	}
	if first != second {
		t.Error("expected the same source for the same chain")
	}
	if first.GetChainID() != 999 {
		t.Errorf("expected chain 999, got %d", first.GetChainID())
	}
}

func TestPool_NoEndpoints(t *testing.T) {
	pool := NewPool(PoolConfig{})
	if _, err := pool.Source(testProfile(999)); err == nil {
		t.Fatal("expected error for profile without endpoints")
	}
}

func TestPool_HealthUniqueProviderNames(t *testing.T) {
	pool := NewPool(DefaultPoolConfig())
	defer pool.Close()

	_, err := pool.Source(testProfile(999,
		domain.Endpoint{Name: "public", URL: "http://127.0.0.1:1"},
		domain.Endpoint{Name: "public", URL: "http://127.0.0.1:2"},
		domain.Endpoint{URL: "http://127.0.0.1:3"},
	))
	if err != nil {
		t.Fatalf("Source failed: %v", err)
	}

	health := pool.Health()
	providers, ok := health[999]
	if !ok {
		t.Fatal("expected health for chain 999")
	}
	if len(providers) != 3 {
		t.Fatalf("expected 3 distinct providers, got %d: %v", len(providers), providers)
	}
	for _, name := range []string{"public", "public-1", "999-2"} {
		if _, ok := providers[name]; !ok {
			t.Errorf("missing provider %q", name)
		}
	}

	if _, ok := health[1]; ok {
		t.Error("unused chains should not report health")
	}
}
