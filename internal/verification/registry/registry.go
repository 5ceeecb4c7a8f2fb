// Package registry resolves chain IDs to static chain profiles.
package registry

import (
	"fmt"
	"sort"

	"github.com/vietddude/txverify/internal/core/domain"
)

// Registry is an immutable chain ID -> profile table.
type Registry struct {
	chains map[domain.ChainID]domain.ChainProfile
}

// New builds a registry from Builtin, then Custom, then overrides.
// Custom entries replace builtin ones wholesale. Overrides are merged field by
// field so a config file can swap RPC endpoints without restating the rest.
func New(overrides ...domain.ChainProfile) (*Registry, error) {
	chains := make(map[domain.ChainID]domain.ChainProfile)
	for _, p := range Builtin() {
		chains[p.ID] = p
	}
	for _, p := range Custom() {
		chains[p.ID] = p
	}

	for _, o := range overrides {
		if base, ok := chains[o.ID]; ok {
			chains[o.ID] = merge(base, o)
		} else {
			chains[o.ID] = o
		}
	}

	for id, p := range chains {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("chain %d: %w", id, err)
		}
		chains[id] = clone(p)
	}

	return &Registry{chains: chains}, nil
}

// Resolve returns the profile for a chain ID.
func (r *Registry) Resolve(id domain.ChainID) (domain.ChainProfile, error) {
	p, ok := r.chains[id]
	if !ok {
		return domain.ChainProfile{}, fmt.Errorf("%w: %d", domain.ErrUnsupportedChain, id)
	}
	return clone(p), nil
}

// List returns all profiles ordered by chain ID.
func (r *Registry) List() []domain.ChainProfile {
	out := make([]domain.ChainProfile, 0, len(r.chains))
	for _, p := range r.chains {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered chains.
func (r *Registry) Len() int {
	return len(r.chains)
}

func merge(base, o domain.ChainProfile) domain.ChainProfile {
	if o.Name != "" {
		base.Name = o.Name
	}
	if o.Testnet {
		base.Testnet = true
	}
	if len(o.RPCEndpoints) > 0 {
		base.RPCEndpoints = o.RPCEndpoints
	}
	if o.AverageBlockTime > 0 {
		base.AverageBlockTime = o.AverageBlockTime
	}
	if o.ExplorerURL != "" {
		base.ExplorerURL = o.ExplorerURL
	}
	return base
}

func validate(p domain.ChainProfile) error {
	if p.ID <= 0 {
		return fmt.Errorf("chain ID must be positive")
	}
	if len(p.RPCEndpoints) == 0 {
		return fmt.Errorf("no RPC endpoints")
	}
	for _, e := range p.RPCEndpoints {
		if e.URL == "" {
			return fmt.Errorf("endpoint %q has empty URL", e.Name)
		}
	}
	if p.AverageBlockTime <= 0 {
		return fmt.Errorf("average block time must be positive")
	}
	return nil
}

// clone copies the endpoint slice so callers cannot mutate the table.
func clone(p domain.ChainProfile) domain.ChainProfile {
	p.RPCEndpoints = append([]domain.Endpoint(nil), p.RPCEndpoints...)
	return p
}
