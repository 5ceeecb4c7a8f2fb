package chain

import (
	"context"

	"github.com/vietddude/txverify/internal/core/domain"
)

// BlockSource is the read-only view of a chain that the scanner needs.
type BlockSource interface {
	// GetLatestBlock returns the current head block number.
	GetLatestBlock(ctx context.Context) (uint64, error)

	// GetBlock fetches a block with full transaction objects.
	// It returns (nil, nil) when the node does not know the block.
	// Payloads missing required fields yield an error wrapping domain.ErrMalformedBlock.
	GetBlock(ctx context.Context, blockNumber uint64) (*domain.Block, error)

	// GetChainID returns the chain identifier.
	GetChainID() domain.ChainID
}
