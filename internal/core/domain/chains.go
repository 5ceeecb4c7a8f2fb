package domain

import (
	"strconv"
	"time"
)

// ChainID is the EIP-155 chain identifier.
type ChainID int64

func (id ChainID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Well-known chain IDs referenced outside the registry tables.
const (
	ChainIDEthereum ChainID = 1
	ChainIDOptimism ChainID = 10
	ChainIDPolygon  ChainID = 137
	ChainIDBase     ChainID = 8453
	ChainIDArbitrum ChainID = 42161
	ChainIDSepolia  ChainID = 11155111
)

// Endpoint is a single RPC URL for a chain.
type Endpoint struct {
	Name      string
	URL       string
	RateLimit float64 // requests per second, 0 = unlimited
	Burst     int
}

// ChainProfile describes a supported network.
// Profiles are built once at start-up and never mutated afterwards.
type ChainProfile struct {
	ID               ChainID
	Name             string
	Testnet          bool
	RPCEndpoints     []Endpoint
	AverageBlockTime time.Duration
	ExplorerURL      string
}

// TxURL returns the explorer link for a transaction, or "" if the chain has no explorer.
func (p ChainProfile) TxURL(hash string) string {
	if p.ExplorerURL == "" || hash == "" {
		return ""
	}
	return p.ExplorerURL + "/tx/" + hash
}
