// Package verification answers one question: did a wallet call one (or all)
// of a set of functions on a contract within a recent time window?
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/vietddude/txverify/internal/core/domain"
	"github.com/vietddude/txverify/internal/infra/chain"
	"github.com/vietddude/txverify/internal/metrics"
	"github.com/vietddude/txverify/internal/verification/matcher"
	"github.com/vietddude/txverify/internal/verification/scanner"
	"github.com/vietddude/txverify/internal/verification/selector"
)

// ProfileResolver looks up chain profiles (see registry.Registry).
type ProfileResolver interface {
	Resolve(id domain.ChainID) (domain.ChainProfile, error)
}

// SourceProvider hands out block sources per chain (see chain.Pool).
type SourceProvider interface {
	Source(profile domain.ChainProfile) (chain.BlockSource, error)
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithScannerOptions sets batch size, buffer and block ceiling.
func WithScannerOptions(opts scanner.Options) Option {
	return func(v *Verifier) { v.scanOpts = opts }
}

// WithMaxDuration lowers the longest accepted window. Values above
// domain.MaxVerificationDuration are ignored.
func WithMaxDuration(d time.Duration) Option {
	return func(v *Verifier) {
		if d > 0 && d <= domain.MaxVerificationDuration {
			v.maxDuration = d
		}
	}
}

// WithHeadCache caches chain heads for ttl, optionally shared through store.
func WithHeadCache(ttl time.Duration, store scanner.HeadStore) Option {
	return func(v *Verifier) {
		v.headTTL = ttl
		v.headStore = store
	}
}

// Verifier runs verifications. It is safe for concurrent use; calls share
// only the block sources and head caches.
type Verifier struct {
	resolver    ProfileResolver
	sources     SourceProvider
	selectors   selector.Cache
	scanOpts    scanner.Options
	maxDuration time.Duration
	headTTL     time.Duration
	headStore   scanner.HeadStore
	log         *slog.Logger

	headsMu sync.Mutex
	heads   map[domain.ChainID]*scanner.HeadCache
}

// NewVerifier creates a verifier.
func NewVerifier(resolver ProfileResolver, sources SourceProvider, opts ...Option) *Verifier {
	v := &Verifier{
		resolver:    resolver,
		sources:     sources,
		maxDuration: domain.MaxVerificationDuration,
		log:         slog.Default().With("component", "verifier"),
		heads:       make(map[domain.ChainID]*scanner.HeadCache),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// MaxDuration returns the longest window Verify accepts.
func (v *Verifier) MaxDuration() time.Duration {
	return v.maxDuration
}

type plan struct {
	profile  domain.ChainProfile
	logic    domain.Logic
	wallet   string
	contract string
	targets  []matcher.Target
}

// Verify scans the request's chain and returns the verdict. A request that
// simply found nothing is a result with Verified=false, not an error.
// Errors wrap domain.ErrInvalidRequest, ErrInvalidSignature,
// ErrUnsupportedChain or ErrScan; see ResultFromError.
func (v *Verifier) Verify(ctx context.Context, req domain.VerificationRequest) (*domain.VerificationResult, error) {
	start := time.Now()
	log := v.log.With("verification_id", uuid.NewString(), "chain", req.ChainID)
	chainLabel := req.ChainID.String()

	p, err := v.prepare(req)
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues(chainLabel, "unknown", outcome(nil, err)).Inc()
		log.Debug("Verification rejected", "error", err)
		return nil, err
	}

	result, err := v.run(ctx, p, req.Duration, log)
	metrics.VerificationsTotal.WithLabelValues(chainLabel, string(p.logic), outcome(result, err)).Inc()
	metrics.VerificationDuration.WithLabelValues(chainLabel).Observe(time.Since(start).Seconds())
	if err != nil {
		log.Warn("Verification failed", "error", err, "elapsed", time.Since(start))
		return nil, err
	}

	log.Info("Verification finished",
		"verified", result.Verified,
		"logic", p.logic,
		"functions", len(p.targets),
		"blocks", result.BlocksScanned,
		"elapsed", time.Since(start),
	)
	return result, nil
}

func (v *Verifier) prepare(req domain.VerificationRequest) (plan, error) {
	var p plan

	if len(req.Functions) == 0 {
		return p, fmt.Errorf("%w: no functions", domain.ErrInvalidRequest)
	}
	if !common.IsHexAddress(req.WalletAddress) {
		return p, fmt.Errorf("%w: invalid wallet address %q", domain.ErrInvalidRequest, req.WalletAddress)
	}
	if !common.IsHexAddress(req.ContractAddress) {
		return p, fmt.Errorf("%w: invalid contract address %q", domain.ErrInvalidRequest, req.ContractAddress)
	}
	if req.Duration <= 0 {
		return p, fmt.Errorf("%w: duration must be positive", domain.ErrInvalidRequest)
	}
	if req.Duration > v.maxDuration {
		return p, fmt.Errorf("%w: duration %s exceeds maximum %s", domain.ErrInvalidRequest, req.Duration, v.maxDuration)
	}

	logic, err := domain.ParseLogic(string(req.Logic))
	if err != nil {
		return p, err
	}

	profile, err := v.resolver.Resolve(req.ChainID)
	if err != nil {
		return p, err
	}

	targets := make([]matcher.Target, 0, len(req.Functions))
	for _, fn := range req.Functions {
		sel, err := v.selectors.Compute(fn.Signature)
		if err != nil {
			return p, err
		}
		targets = append(targets, matcher.Target{Selector: sel, Label: fn.DisplayName()})
	}

	p.profile = profile
	p.logic = logic
	p.wallet = matcher.NormalizeAddress(req.WalletAddress)
	p.contract = matcher.NormalizeAddress(req.ContractAddress)
	p.targets = targets
	return p, nil
}

func (v *Verifier) run(
	ctx context.Context,
	p plan,
	window time.Duration,
	log *slog.Logger,
) (*domain.VerificationResult, error) {
	profile := p.profile
	source, err := v.sources.Source(profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrScan, err)
	}

	opts := v.scanOpts
	if head := v.headCache(profile.ID, source); head != nil {
		opts.Head = head
	}

	tracker := matcher.NewTracker(p.logic, p.wallet, p.contract, p.targets)
	stats, err := scanner.New(source, opts).Scan(ctx, profile, window, tracker.Observe)
	if err != nil {
		return nil, err
	}

	log.Debug("Scan finished",
		"head", stats.Head,
		"planned", stats.Planned,
		"evaluated", stats.Evaluated,
		"skipped", stats.Skipped,
		"window_reached", stats.WindowReached,
	)

	result := &domain.VerificationResult{
		Verified:      tracker.Done(),
		Matches:       tracker.Matches(profile),
		BlocksScanned: stats.Evaluated,
	}
	if result.Matches == nil {
		result.Matches = []domain.MatchedTransaction{}
	}
	if result.Verified {
		return result, nil
	}

	result.Failure = domain.FailureNoMatch
	if p.logic == domain.LogicAll {
		result.MissingFunctions = tracker.Missing()
		result.FailureReason = "missing functions: " + strings.Join(result.MissingFunctions, ", ")
	} else {
		result.FailureReason = "no matching transaction"
	}
	return result, nil
}

func (v *Verifier) headCache(id domain.ChainID, source chain.BlockSource) *scanner.HeadCache {
	if v.headTTL <= 0 {
		return nil
	}

	v.headsMu.Lock()
	defer v.headsMu.Unlock()

	if c, ok := v.heads[id]; ok {
		return c
	}
	c := scanner.NewHeadCache(source, id, v.headTTL)
	if v.headStore != nil {
		c.WithStore(v.headStore)
	}
	v.heads[id] = c
	return c
}

// ResultFromError renders a Verify error as a NotVerified result so
// transports can return one shape for every outcome.
func ResultFromError(err error) *domain.VerificationResult {
	return &domain.VerificationResult{
		Verified:      false,
		Matches:       []domain.MatchedTransaction{},
		Failure:       FailureKindOf(err),
		FailureReason: err.Error(),
	}
}

// FailureKindOf classifies an error returned by Verify.
func FailureKindOf(err error) domain.FailureKind {
	switch {
	case err == nil:
		return domain.FailureNone
	case errors.Is(err, domain.ErrInvalidSignature):
		return domain.FailureInvalidSignature
	case errors.Is(err, domain.ErrUnsupportedChain):
		return domain.FailureUnsupportedChain
	case errors.Is(err, domain.ErrInvalidRequest):
		return domain.FailureInvalidRequest
	default:
		return domain.FailureScanError
	}
}

func outcome(result *domain.VerificationResult, err error) string {
	switch {
	case err != nil:
		return string(FailureKindOf(err))
	case result.Verified:
		return "verified"
	default:
		return string(domain.FailureNoMatch)
	}
}
