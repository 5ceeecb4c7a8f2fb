package verification

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/txverify/internal/core/domain"
	"github.com/vietddude/txverify/internal/infra/chain"
	"github.com/vietddude/txverify/internal/verification/scanner"
	"github.com/vietddude/txverify/internal/verification/selector"
)

const (
	testChain = domain.ChainID(8453)
	wallet    = "0xAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaa"
	contract  = "0xBBBBbbbbBBBBbbbbBBBBbbbbBBBBbbbbBBBBbbbb"
)

var testNow = time.Unix(1_700_000_000, 0)

// mockChain implements chain.BlockSource. Blocks are spaced evenly back
// from testNow; txs places transactions into specific blocks.
type mockChain struct {
	head    uint64
	spacing time.Duration
	txs     map[uint64][]*domain.Transaction
	headErr error

	mu        sync.Mutex
	fetches   int
	headCalls int
}

func (m *mockChain) GetChainID() domain.ChainID { return testChain }

func (m *mockChain) GetLatestBlock(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	m.headCalls++
	m.mu.Unlock()
	return m.head, m.headErr
}

func (m *mockChain) GetBlock(ctx context.Context, n uint64) (*domain.Block, error) {
	m.mu.Lock()
	m.fetches++
	m.mu.Unlock()

	if n > m.head {
		return nil, nil
	}
	age := time.Duration(m.head-n) * m.spacing
	return &domain.Block{
		ChainID:      testChain,
		Number:       n,
		Timestamp:    uint64(testNow.Add(-age).Unix()),
		Transactions: m.txs[n],
	}, nil
}

func (m *mockChain) counts() (fetches, headCalls int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches, m.headCalls
}

type mockResolver struct{}

func (mockResolver) Resolve(id domain.ChainID) (domain.ChainProfile, error) {
	if id != testChain {
		return domain.ChainProfile{}, fmt.Errorf("%w: %d", domain.ErrUnsupportedChain, id)
	}
	return domain.ChainProfile{
		ID:               testChain,
		Name:             "Base",
		AverageBlockTime: 2 * time.Second,
		ExplorerURL:      "https://basescan.org",
		RPCEndpoints:     []domain.Endpoint{{URL: "http://unused"}},
	}, nil
}

type mockSources struct {
	src chain.BlockSource
}

func (m mockSources) Source(domain.ChainProfile) (chain.BlockSource, error) {
	return m.src, nil
}

func newVerifier(src *mockChain, scan scanner.Options, opts ...Option) *Verifier {
	scan.Now = func() time.Time { return testNow }
	opts = append([]Option{WithScannerOptions(scan)}, opts...)
	return NewVerifier(mockResolver{}, mockSources{src: src}, opts...)
}

func tx(t *testing.T, hash, sig string, extra ...byte) *domain.Transaction {
	t.Helper()
	sel, err := selector.Compute(sig)
	if err != nil {
		t.Fatalf("compute %s: %v", sig, err)
	}
	return &domain.Transaction{
		Hash:  hash,
		From:  "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		To:    "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		Input: append(append([]byte{}, sel[:]...), extra...),
	}
}

func request(logic domain.Logic, duration time.Duration, sigs ...string) domain.VerificationRequest {
	fns := make([]domain.VerificationFunction, len(sigs))
	for i, s := range sigs {
		fns[i] = domain.VerificationFunction{Signature: s}
	}
	return domain.VerificationRequest{
		WalletAddress:   wallet,
		ContractAddress: contract,
		Functions:       fns,
		Logic:           logic,
		ChainID:         testChain,
		Duration:        duration,
	}
}

func TestVerify_Scenario(t *testing.T) {
	// Ten blocks 200s apart; the 4th from head is 600s old and holds gm().
	src := &mockChain{
		head:    9,
		spacing: 200 * time.Second,
		txs:     map[uint64][]*domain.Transaction{6: {tx(t, "0xgm", "gm()", 0x00)}},
	}
	v := newVerifier(src, scanner.Options{})

	result, err := v.Verify(context.Background(), request(domain.LogicAny, 900*time.Second, "gm()"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Verified {
		t.Fatalf("expected verified, got %+v", result)
	}
	if len(result.Matches) != 1 || result.Matches[0].TxHash != "0xgm" {
		t.Fatalf("expected exactly one match on 0xgm, got %+v", result.Matches)
	}
	m := result.Matches[0]
	if m.BlockNumber != 6 || m.Selector != "0xc0129d43" || m.Label != "gm()" {
		t.Errorf("unexpected match: %+v", m)
	}
	if m.ExplorerURL != "https://basescan.org/tx/0xgm" {
		t.Errorf("unexpected explorer url %q", m.ExplorerURL)
	}
	if result.Failure != domain.FailureNone {
		t.Errorf("unexpected failure %q", result.Failure)
	}
}

func TestVerify_AnyStopsFetching(t *testing.T) {
	src := &mockChain{
		head:    1000,
		spacing: 2 * time.Second,
		txs:     map[uint64][]*domain.Transaction{998: {tx(t, "0xhit", "gm()")}},
	}
	v := newVerifier(src, scanner.Options{BatchSize: 1})

	result, err := v.Verify(context.Background(), request(domain.LogicAny, 15*time.Minute, "gm()"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Verified {
		t.Fatal("expected verified")
	}
	if fetches, _ := src.counts(); fetches != 3 {
		t.Errorf("expected 3 block fetches, got %d", fetches)
	}
	if result.BlocksScanned != 3 {
		t.Errorf("expected 3 blocks scanned, got %d", result.BlocksScanned)
	}
}

func TestVerify_AnyDoesNotFetchNextBatch(t *testing.T) {
	src := &mockChain{
		head:    10_000,
		spacing: 2 * time.Second,
		txs:     map[uint64][]*domain.Transaction{9_998: {tx(t, "0xhit", "gm()")}},
	}
	v := newVerifier(src, scanner.Options{})

	if _, err := v.Verify(context.Background(), request(domain.LogicAny, time.Hour, "gm()")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetches, _ := src.counts(); fetches != scanner.DefaultBatchSize {
		t.Errorf("expected a single batch of %d fetches, got %d", scanner.DefaultBatchSize, fetches)
	}
}

func TestVerify_AllReportsMissingLabel(t *testing.T) {
	src := &mockChain{
		head:    500,
		spacing: 2 * time.Second,
		txs:     map[uint64][]*domain.Transaction{490: {tx(t, "0xapprove", "approve(address,uint256)")}},
	}
	v := newVerifier(src, scanner.Options{})

	req := request(domain.LogicAll, 10*time.Minute, "approve(address,uint256)", "swap(uint256,uint256)")
	req.Functions[1].Label = "Swap tokens"

	result, err := v.Verify(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verified {
		t.Fatal("expected not verified")
	}
	if result.Failure != domain.FailureNoMatch {
		t.Errorf("expected no_match, got %q", result.Failure)
	}
	if !reflect.DeepEqual(result.MissingFunctions, []string{"Swap tokens"}) {
		t.Errorf("expected missing [Swap tokens], got %v", result.MissingFunctions)
	}
	if result.FailureReason != "missing functions: Swap tokens" {
		t.Errorf("unexpected reason %q", result.FailureReason)
	}
}

func TestVerify_AllSatisfied(t *testing.T) {
	src := &mockChain{
		head:    500,
		spacing: 2 * time.Second,
		txs: map[uint64][]*domain.Transaction{
			499: {tx(t, "0xswap", "swap(uint256,uint256)")},
			450: {tx(t, "0xapprove", "approve(address,uint256)")},
		},
	}
	v := newVerifier(src, scanner.Options{})

	result, err := v.Verify(context.Background(), request(domain.LogicAll, 10*time.Minute, "approve(address,uint256)", "swap(uint256,uint256)"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Verified {
		t.Fatalf("expected verified, got %+v", result)
	}
	// Evidence follows request order, not discovery order.
	if len(result.Matches) != 2 || result.Matches[0].TxHash != "0xapprove" || result.Matches[1].TxHash != "0xswap" {
		t.Errorf("unexpected matches: %+v", result.Matches)
	}
}

func TestVerify_AnyNoMatch(t *testing.T) {
	src := &mockChain{head: 500, spacing: 2 * time.Second}
	v := newVerifier(src, scanner.Options{})

	result, err := v.Verify(context.Background(), request(domain.LogicAny, time.Minute, "gm()"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verified || result.Failure != domain.FailureNoMatch || result.FailureReason != "no matching transaction" {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Matches == nil {
		t.Error("matches must be an empty list, not nil")
	}
	// 60s / 2s = 30 in-window blocks plus the head itself.
	if result.BlocksScanned != 31 {
		t.Errorf("expected 31 blocks scanned, got %d", result.BlocksScanned)
	}
}

func TestVerify_WindowBoundary(t *testing.T) {
	src := &mockChain{
		head:    100,
		spacing: 60 * time.Second,
		txs: map[uint64][]*domain.Transaction{
			90: {tx(t, "0xedge", "gm()")}, // exactly 600s old
		},
	}
	v := newVerifier(src, scanner.Options{})

	result, err := v.Verify(context.Background(), request(domain.LogicAny, 600*time.Second, "gm()"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Verified {
		t.Error("transaction exactly at the window edge must be included")
	}

	src = &mockChain{
		head:    100,
		spacing: 60 * time.Second,
		txs: map[uint64][]*domain.Transaction{
			89: {tx(t, "0xold", "gm()")}, // 660s old
		},
	}
	v = newVerifier(src, scanner.Options{})

	result, err = v.Verify(context.Background(), request(domain.LogicAny, 600*time.Second, "gm()"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verified {
		t.Error("transaction older than the window must not match")
	}
	if result.BlocksScanned != 11 {
		t.Errorf("expected 11 blocks scanned, got %d", result.BlocksScanned)
	}
}

func TestVerify_MixedCaseAddresses(t *testing.T) {
	hit := tx(t, "0xhit", "gm()")
	hit.From = "0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa"
	hit.To = "0xbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbB"

	src := &mockChain{head: 10, spacing: time.Second, txs: map[uint64][]*domain.Transaction{10: {hit}}}
	v := newVerifier(src, scanner.Options{})

	result, err := v.Verify(context.Background(), request(domain.LogicAny, time.Minute, "gm()"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Verified {
		t.Error("expected mixed-case addresses to match")
	}
}

func TestVerify_Idempotent(t *testing.T) {
	src := &mockChain{
		head:    300,
		spacing: 2 * time.Second,
		txs:     map[uint64][]*domain.Transaction{250: {tx(t, "0xa", "approve(address,uint256)")}},
	}
	v := newVerifier(src, scanner.Options{})
	req := request(domain.LogicAll, 5*time.Minute, "approve(address,uint256)", "swap(uint256,uint256)")

	first, err := v.Verify(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := v.Verify(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}

func TestVerify_CeilingSafety(t *testing.T) {
	src := &mockChain{head: 1_000_000, spacing: time.Millisecond}
	v := newVerifier(src, scanner.Options{MaxBlocks: 500})

	result, err := v.Verify(context.Background(), request(domain.LogicAny, time.Hour, "gm()"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetches, _ := src.counts(); fetches > 500 {
		t.Errorf("expected at most 500 fetches, got %d", fetches)
	}
	if result.BlocksScanned != 500 {
		t.Errorf("expected 500 blocks scanned, got %d", result.BlocksScanned)
	}
}

func TestVerify_RejectsBeforeAnyRPC(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.VerificationRequest)
		want   error
	}{
		{"invalid signature", func(r *domain.VerificationRequest) { r.Functions[0].Signature = "gm" }, domain.ErrInvalidSignature},
		{"unsupported chain", func(r *domain.VerificationRequest) { r.ChainID = 424242 }, domain.ErrUnsupportedChain},
		{"duration above cap", func(r *domain.VerificationRequest) { r.Duration = time.Hour + time.Second }, domain.ErrInvalidRequest},
		{"zero duration", func(r *domain.VerificationRequest) { r.Duration = 0 }, domain.ErrInvalidRequest},
		{"no functions", func(r *domain.VerificationRequest) { r.Functions = nil }, domain.ErrInvalidRequest},
		{"bad wallet", func(r *domain.VerificationRequest) { r.WalletAddress = "0x123" }, domain.ErrInvalidRequest},
		{"bad contract", func(r *domain.VerificationRequest) { r.ContractAddress = "" }, domain.ErrInvalidRequest},
		{"unknown logic", func(r *domain.VerificationRequest) { r.Logic = "xor" }, domain.ErrInvalidRequest},
		{"unsupported chain before signature", func(r *domain.VerificationRequest) {
			r.ChainID = 424242
			r.Functions[0].Signature = "gm"
		}, domain.ErrUnsupportedChain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &mockChain{head: 100, spacing: time.Second}
			v := newVerifier(src, scanner.Options{})

			req := request(domain.LogicAny, time.Minute, "gm()")
			tt.mutate(&req)

			result, err := v.Verify(context.Background(), req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if result != nil {
				t.Errorf("expected nil result, got %+v", result)
			}
			if fetches, heads := src.counts(); fetches != 0 || heads != 0 {
				t.Errorf("expected no RPC calls, got %d fetches and %d head calls", fetches, heads)
			}
		})
	}
}

func TestVerify_AcceptsFullHour(t *testing.T) {
	src := &mockChain{head: 100, spacing: time.Minute}
	v := newVerifier(src, scanner.Options{})

	if _, err := v.Verify(context.Background(), request("", time.Hour, "gm()")); err != nil {
		t.Fatalf("one hour must be accepted, got %v", err)
	}
}

func TestVerify_ScanError(t *testing.T) {
	src := &mockChain{headErr: errors.New("connection refused")}
	v := newVerifier(src, scanner.Options{})

	_, err := v.Verify(context.Background(), request(domain.LogicAny, time.Minute, "gm()"))
	if !errors.Is(err, domain.ErrScan) {
		t.Fatalf("expected ErrScan, got %v", err)
	}
	if got := ResultFromError(err); got.Failure != domain.FailureScanError || got.Verified {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestVerify_HeadCacheSharedAcrossCalls(t *testing.T) {
	src := &mockChain{head: 100, spacing: time.Second}
	v := newVerifier(src, scanner.Options{}, WithHeadCache(time.Minute, nil))

	for i := 0; i < 3; i++ {
		if _, err := v.Verify(context.Background(), request(domain.LogicAny, 10*time.Second, "gm()")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, heads := src.counts(); heads != 1 {
		t.Errorf("expected 1 head call, got %d", heads)
	}
}

func TestWithMaxDuration(t *testing.T) {
	src := &mockChain{head: 100, spacing: time.Second}
	v := newVerifier(src, scanner.Options{}, WithMaxDuration(10*time.Minute))

	if v.MaxDuration() != 10*time.Minute {
		t.Fatalf("unexpected max duration %s", v.MaxDuration())
	}
	if _, err := v.Verify(context.Background(), request(domain.LogicAny, 11*time.Minute, "gm()")); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}

	// The hard cap cannot be raised.
	v = newVerifier(src, scanner.Options{}, WithMaxDuration(2*time.Hour))
	if v.MaxDuration() != domain.MaxVerificationDuration {
		t.Errorf("expected cap %s, got %s", domain.MaxVerificationDuration, v.MaxDuration())
	}
}

func TestResultFromError(t *testing.T) {
	tests := []struct {
		err  error
		want domain.FailureKind
	}{
		{fmt.Errorf("x: %w", domain.ErrInvalidSignature), domain.FailureInvalidSignature},
		{fmt.Errorf("x: %w", domain.ErrUnsupportedChain), domain.FailureUnsupportedChain},
		{fmt.Errorf("x: %w", domain.ErrInvalidRequest), domain.FailureInvalidRequest},
		{fmt.Errorf("x: %w", domain.ErrScan), domain.FailureScanError},
		{context.DeadlineExceeded, domain.FailureScanError},
	}

	for _, tt := range tests {
		got := ResultFromError(tt.err)
		if got.Failure != tt.want {
			t.Errorf("%v: expected %q, got %q", tt.err, tt.want, got.Failure)
		}
		if got.Verified || got.FailureReason == "" {
			t.Errorf("%v: unexpected result %+v", tt.err, got)
		}
	}
}
