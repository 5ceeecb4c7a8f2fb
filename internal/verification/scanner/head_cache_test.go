package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vietddude/txverify/internal/core/domain"
)

// mockHead implements HeadSource for testing
type mockHead struct {
	latestBlock uint64
	callCount   int
}

func (m *mockHead) GetLatestBlock(ctx context.Context) (uint64, error) {
	m.callCount++
	return m.latestBlock, nil
}

// mockStore implements HeadStore for testing
type mockStore struct {
	heads   map[domain.ChainID]uint64
	getErr  error
	sets    int
	lastTTL time.Duration
}

func (m *mockStore) GetHead(ctx context.Context, chainID domain.ChainID) (uint64, bool, error) {
	if m.getErr != nil {
		return 0, false, m.getErr
	}
	h, ok := m.heads[chainID]
	return h, ok, nil
}

func (m *mockStore) SetHead(ctx context.Context, chainID domain.ChainID, head uint64, ttl time.Duration) error {
	if m.heads == nil {
		m.heads = make(map[domain.ChainID]uint64)
	}
	m.heads[chainID] = head
	m.sets++
	m.lastTTL = ttl
	return nil
}

func TestHeadCache_CachesResult(t *testing.T) {
	source := &mockHead{latestBlock: 1000}
	cache := NewHeadCache(source, domain.ChainIDEthereum, 3*time.Second)

	ctx := context.Background()

	result1, err := cache.GetLatestBlock(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result1 != 1000 {
		t.Errorf("expected 1000, got %d", result1)
	}

	result2, err := cache.GetLatestBlock(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result2 != 1000 {
		t.Errorf("expected 1000, got %d", result2)
	}
	if source.callCount != 1 {
		t.Errorf("expected 1 source call (cached), got %d", source.callCount)
	}
}

func TestHeadCache_ExpiresAfterTTL(t *testing.T) {
	source := &mockHead{latestBlock: 1000}
	cache := NewHeadCache(source, domain.ChainIDEthereum, 2*time.Second)

	clock := testNow
	cache.now = func() time.Time { return clock }

	if _, err := cache.GetLatestBlock(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock = clock.Add(3 * time.Second)
	source.latestBlock = 1001

	result, err := cache.GetLatestBlock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 1001 {
		t.Errorf("expected fresh value 1001, got %d", result)
	}
	if source.callCount != 2 {
		t.Errorf("expected 2 source calls, got %d", source.callCount)
	}
}

func TestHeadCache_SharedStore(t *testing.T) {
	store := &mockStore{heads: map[domain.ChainID]uint64{domain.ChainIDBase: 555}}
	source := &mockHead{latestBlock: 600}
	cache := NewHeadCache(source, domain.ChainIDBase, time.Second).WithStore(store)

	head, err := cache.GetLatestBlock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if head != 555 {
		t.Errorf("expected head from store, got %d", head)
	}
	if source.callCount != 0 {
		t.Errorf("expected no source calls, got %d", source.callCount)
	}
}

func TestHeadCache_StoreMissWritesBack(t *testing.T) {
	store := &mockStore{}
	source := &mockHead{latestBlock: 600}
	cache := NewHeadCache(source, domain.ChainIDBase, 2*time.Second).WithStore(store)

	head, err := cache.GetLatestBlock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if head != 600 {
		t.Errorf("expected 600, got %d", head)
	}
	if store.sets != 1 || store.heads[domain.ChainIDBase] != 600 || store.lastTTL != 2*time.Second {
		t.Errorf("unexpected store state: %+v", store)
	}
}

func TestHeadCache_StoreErrorFallsBack(t *testing.T) {
	store := &mockStore{getErr: errors.New("redis down")}
	source := &mockHead{latestBlock: 700}
	cache := NewHeadCache(source, domain.ChainIDBase, time.Second).WithStore(store)

	head, err := cache.GetLatestBlock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if head != 700 {
		t.Errorf("expected 700 from source, got %d", head)
	}
}
