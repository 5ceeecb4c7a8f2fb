// Package matcher decides whether transactions satisfy a set of requested
// contract calls and aggregates matches under ANY/ALL logic.
package matcher

import (
	"slices"
	"strings"

	"github.com/vietddude/txverify/internal/core/domain"
	"github.com/vietddude/txverify/internal/verification/selector"
)

// Target is one requested function with its derived selector.
type Target struct {
	Selector selector.Selector
	Label    string
}

// NormalizeAddress lower-cases an address for comparison.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Match returns every selector in selectors that tx satisfies: sent by
// wallet, addressed to contract, and call data starting with the selector.
// wallet and contract must already be normalized.
func Match(tx *domain.Transaction, wallet, contract string, selectors []selector.Selector) []selector.Selector {
	if tx == nil || tx.To == "" {
		return nil
	}
	if NormalizeAddress(tx.From) != wallet || NormalizeAddress(tx.To) != contract {
		return nil
	}

	var out []selector.Selector
	for _, sel := range selectors {
		if sel.Prefixes(tx.Input) && !slices.Contains(out, sel) {
			out = append(out, sel)
		}
	}
	return out
}

type hit struct {
	tx    *domain.Transaction
	block *domain.Block
}

// Tracker records the first (newest) matching transaction per target.
// It is not safe for concurrent use.
type Tracker struct {
	logic    domain.Logic
	wallet   string
	contract string
	targets  []Target
	sels     []selector.Selector
	hits     []*hit
	found    int
	first    int // target index of the first hit, for ANY
}

// NewTracker creates a tracker for one verification.
func NewTracker(logic domain.Logic, wallet, contract string, targets []Target) *Tracker {
	sels := make([]selector.Selector, len(targets))
	for i, t := range targets {
		sels[i] = t.Selector
	}
	return &Tracker{
		logic:    logic,
		wallet:   NormalizeAddress(wallet),
		contract: NormalizeAddress(contract),
		targets:  targets,
		sels:     sels,
		hits:     make([]*hit, len(targets)),
		first:    -1,
	}
}

// Observe feeds every transaction of block to the tracker and reports
// whether the verdict is settled.
func (t *Tracker) Observe(block *domain.Block) (done bool) {
	for _, tx := range block.Transactions {
		matched := Match(tx, t.wallet, t.contract, t.sels)
		if len(matched) == 0 {
			continue
		}
		for i, target := range t.targets {
			if t.hits[i] != nil || !slices.Contains(matched, target.Selector) {
				continue
			}
			t.hits[i] = &hit{tx: tx, block: block}
			t.found++
			if t.first < 0 {
				t.first = i
			}
		}
		if t.Done() {
			return true
		}
	}
	return t.Done()
}

// Done reports whether the logic is satisfied.
func (t *Tracker) Done() bool {
	if t.logic == domain.LogicAll {
		return t.found == len(t.targets)
	}
	return t.found > 0
}

// Matches returns the evidence: one entry for ANY, one per target in
// request order for ALL. Incomplete ALL trackers return what was found.
func (t *Tracker) Matches(profile domain.ChainProfile) []domain.MatchedTransaction {
	if t.logic != domain.LogicAll {
		if t.first < 0 {
			return nil
		}
		return []domain.MatchedTransaction{t.matched(t.first, profile)}
	}

	out := make([]domain.MatchedTransaction, 0, t.found)
	for i := range t.targets {
		if t.hits[i] != nil {
			out = append(out, t.matched(i, profile))
		}
	}
	return out
}

// Missing returns the labels of targets with no match, in request order.
func (t *Tracker) Missing() []string {
	var out []string
	for i, target := range t.targets {
		if t.hits[i] == nil {
			out = append(out, target.Label)
		}
	}
	return out
}

func (t *Tracker) matched(i int, profile domain.ChainProfile) domain.MatchedTransaction {
	h := t.hits[i]
	return domain.MatchedTransaction{
		Selector:       t.targets[i].Selector.Hex(),
		Label:          t.targets[i].Label,
		TxHash:         h.tx.Hash,
		BlockNumber:    h.block.Number,
		BlockTimestamp: h.block.Timestamp,
		ExplorerURL:    profile.TxURL(h.tx.Hash),
	}
}
