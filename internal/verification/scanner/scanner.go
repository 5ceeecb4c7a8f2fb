// Package scanner walks a chain backward from its head, block by block,
// until the blocks fall outside a time window.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/txverify/internal/core/domain"
	"github.com/vietddude/txverify/internal/infra/chain"
	"github.com/vietddude/txverify/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize = 50
	DefaultBuffer    = 100
	DefaultMaxBlocks = 15000
)

// HeadSource returns the current chain head.
type HeadSource interface {
	GetLatestBlock(ctx context.Context) (uint64, error)
}

// OnBlock is called for every in-window block, newest first.
// Returning true stops the scan.
type OnBlock func(block *domain.Block) (stop bool)

// Options tunes a Scanner. Zero values fall back to the defaults.
type Options struct {
	// BatchSize is the number of blocks fetched concurrently per round.
	BatchSize int
	// Concurrency caps in-flight fetches within a batch (defaults to BatchSize).
	Concurrency int
	// Buffer is added to the estimated block count to absorb block-time variance.
	Buffer uint64
	// MaxBlocks is the absolute ceiling on blocks examined per scan.
	MaxBlocks uint64
	// Head overrides where the chain head is read from, e.g. a HeadCache.
	Head HeadSource
	// Now is the clock used for block age; defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Concurrency <= 0 || o.Concurrency > o.BatchSize {
		o.Concurrency = o.BatchSize
	}
	if o.Buffer == 0 {
		o.Buffer = DefaultBuffer
	}
	if o.MaxBlocks == 0 {
		o.MaxBlocks = DefaultMaxBlocks
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Stats describes what one scan did.
type Stats struct {
	Head      uint64
	Planned   uint64 // blocks the scan was allowed to examine
	Fetched   int    // fetch attempts issued
	Skipped   int    // blocks dropped because the fetch failed or returned nothing
	Evaluated int    // in-window blocks handed to OnBlock
	// WindowReached is set when a block older than the window ended the scan.
	WindowReached bool
	// Stopped is set when OnBlock asked to stop.
	Stopped bool
}

// Scanner fetches blocks from one chain. It holds no per-scan state and may
// be shared by concurrent scans.
type Scanner struct {
	source chain.BlockSource
	head   HeadSource
	opts   Options
	log    *slog.Logger
}

// New creates a scanner over source.
func New(source chain.BlockSource, opts Options) *Scanner {
	opts = opts.withDefaults()
	head := opts.Head
	if head == nil {
		head = source
	}
	return &Scanner{
		source: source,
		head:   head,
		opts:   opts,
		log:    slog.Default().With("component", "scanner", "chain", source.GetChainID()),
	}
}

// BlocksToCheck estimates how many blocks cover window:
// ceil(window / blockTime) + buffer, clamped to maxBlocks and to head+1.
func BlocksToCheck(window, blockTime time.Duration, buffer, maxBlocks, head uint64) uint64 {
	var n uint64
	if window > 0 && blockTime > 0 {
		n = uint64((window + blockTime - 1) / blockTime)
	}
	n += buffer
	if maxBlocks > 0 && n > maxBlocks {
		n = maxBlocks
	}
	if n > head+1 {
		n = head + 1
	}
	return n
}

type fetchResult struct {
	number uint64
	block  *domain.Block
	err    error
}

// Scan walks backward from the head and feeds in-window blocks to onBlock
// in strictly descending order. A block whose age exceeds window ends the
// scan before it is evaluated; a block exactly window old is included.
func (s *Scanner) Scan(
	ctx context.Context,
	profile domain.ChainProfile,
	window time.Duration,
	onBlock OnBlock,
) (Stats, error) {
	var stats Stats
	chainLabel := profile.ID.String()

	head, err := s.head.GetLatestBlock(ctx)
	if err != nil {
		return stats, fmt.Errorf("%w: fetch head: %w", domain.ErrScan, err)
	}
	metrics.ChainLatestBlock.WithLabelValues(chainLabel).Set(float64(head))

	stats.Head = head
	stats.Planned = BlocksToCheck(window, profile.AverageBlockTime, s.opts.Buffer, s.opts.MaxBlocks, head)

	defer func() {
		metrics.BlocksScanned.WithLabelValues(chainLabel).Add(float64(stats.Evaluated))
	}()

	now := s.opts.Now()
	next := head
	remaining := stats.Planned

	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("%w: %w", domain.ErrScan, err)
		}

		n := min(uint64(s.opts.BatchSize), remaining)
		results := s.fetchBatch(ctx, next, n)
		stats.Fetched += len(results)

		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("%w: %w", domain.ErrScan, err)
		}

		for _, r := range results {
			if r.err != nil {
				if errors.Is(r.err, domain.ErrMalformedBlock) {
					return stats, fmt.Errorf("%w: %w", domain.ErrScan, r.err)
				}
				stats.Skipped++
				metrics.BlockFetchFailures.WithLabelValues(chainLabel).Inc()
				s.log.Debug("Skipping block", "block", r.number, "error", r.err)
				continue
			}

			if blockAge(now, r.block.Timestamp) > window {
				stats.WindowReached = true
				return stats, nil
			}

			stats.Evaluated++
			if onBlock(r.block) {
				stats.Stopped = true
				return stats, nil
			}
		}

		remaining -= n
		next -= n // wraps only when remaining is already 0
	}

	return stats, nil
}

// fetchBatch fetches blocks from..from-n+1 concurrently and returns them in
// that (descending) order. Fetch errors are kept per block, never propagated.
func (s *Scanner) fetchBatch(ctx context.Context, from, n uint64) []fetchResult {
	results := make([]fetchResult, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i := uint64(0); i < n; i++ {
		num := from - i
		g.Go(func() error {
			block, err := s.source.GetBlock(gctx, num)
			if err == nil && block == nil {
				err = fmt.Errorf("%w: %d", domain.ErrBlockNotFound, num)
			}
			results[i] = fetchResult{number: num, block: block, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func blockAge(now time.Time, timestamp uint64) time.Duration {
	return now.Sub(time.Unix(int64(timestamp), 0))
}
