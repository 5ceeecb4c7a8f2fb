package evm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/vietddude/txverify/internal/core/domain"
	"github.com/vietddude/txverify/internal/infra/rpc"
)

// EVMAdapter reads blocks from an EVM node over JSON-RPC.
type EVMAdapter struct {
	chainID domain.ChainID
	client  rpc.RPCClient
}

func NewEVMAdapter(chainID domain.ChainID, client rpc.RPCClient) *EVMAdapter {
	return &EVMAdapter{
		chainID: chainID,
		client:  client,
	}
}

func (a *EVMAdapter) GetChainID() domain.ChainID {
	return a.chainID
}

func (a *EVMAdapter) GetLatestBlock(ctx context.Context) (uint64, error) {
	op := rpc.NewHTTPOperation("eth_blockNumber", nil)
	result, err := a.client.Execute(ctx, op)
	if err != nil {
		return 0, fmt.Errorf("eth_blockNumber failed: %w", err)
	}

	blockHex, ok := result.(string)
	if !ok {
		return 0, fmt.Errorf("invalid block number response: %T", result)
	}

	n, err := hexutil.DecodeUint64(blockHex)
	if err != nil {
		return 0, fmt.Errorf("decode block number %q: %w", blockHex, err)
	}
	return n, nil
}

func (a *EVMAdapter) GetBlock(ctx context.Context, blockNumber uint64) (*domain.Block, error) {
	op := rpc.NewHTTPOperation("eth_getBlockByNumber", []any{hexutil.EncodeUint64(blockNumber), true})
	result, err := a.client.Execute(ctx, op)
	if err != nil {
		return nil, fmt.Errorf("eth_getBlockByNumber %d failed: %w", blockNumber, err)
	}
	if result == nil {
		return nil, nil // Not found/future
	}

	rawBlock, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: block %d: unexpected payload %T", domain.ErrMalformedBlock, blockNumber, result)
	}

	return a.parseBlock(blockNumber, rawBlock)
}

func (a *EVMAdapter) parseBlock(requested uint64, raw map[string]any) (*domain.Block, error) {
	number, err := quantity(raw, "number")
	if err != nil {
		return nil, malformed(requested, err)
	}
	if number != requested {
		return nil, malformed(requested, fmt.Errorf("node returned block %d", number))
	}
	timestamp, err := quantity(raw, "timestamp")
	if err != nil {
		return nil, malformed(requested, err)
	}

	rawTxs, ok := raw["transactions"].([]any)
	if !ok {
		return nil, malformed(requested, fmt.Errorf("missing transactions"))
	}

	block := &domain.Block{
		ChainID:      a.chainID,
		Number:       number,
		Hash:         getString(raw["hash"]),
		Timestamp:    timestamp,
		Transactions: make([]*domain.Transaction, 0, len(rawTxs)),
	}

	for i, rawTx := range rawTxs {
		txData, ok := rawTx.(map[string]any)
		if !ok {
			// A hash-only list means the node ignored the full-transactions flag.
			return nil, malformed(requested, fmt.Errorf("tx %d: expected object, got %T", i, rawTx))
		}
		tx, err := parseTransaction(txData, number)
		if err != nil {
			return nil, malformed(requested, fmt.Errorf("tx %d: %w", i, err))
		}
		block.Transactions = append(block.Transactions, tx)
	}

	return block, nil
}

func parseTransaction(raw map[string]any, blockNumber uint64) (*domain.Transaction, error) {
	hash, ok := raw["hash"].(string)
	if !ok || hash == "" {
		return nil, fmt.Errorf("missing hash")
	}
	from, ok := raw["from"].(string)
	if !ok || from == "" {
		return nil, fmt.Errorf("missing from")
	}

	// "to" must be present; null marks contract creation.
	toRaw, present := raw["to"]
	if !present {
		return nil, fmt.Errorf("missing to")
	}
	var to string
	if toRaw != nil {
		if to, ok = toRaw.(string); !ok {
			return nil, fmt.Errorf("invalid to: %T", toRaw)
		}
	}

	inputHex, ok := raw["input"].(string)
	if !ok {
		// Some clients still use the legacy field name.
		if inputHex, ok = raw["data"].(string); !ok {
			return nil, fmt.Errorf("missing input")
		}
	}
	input, err := hexutil.Decode(inputHex)
	if err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	return &domain.Transaction{
		Hash:        strings.ToLower(hash),
		BlockNumber: blockNumber,
		From:        strings.ToLower(from),
		To:          strings.ToLower(to),
		Input:       input,
	}, nil
}

func quantity(raw map[string]any, key string) (uint64, error) {
	s, ok := raw[key].(string)
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	n, err := hexutil.DecodeUint64(s)
	if err != nil {
		return 0, fmt.Errorf("decode %s %q: %w", key, s, err)
	}
	return n, nil
}

func malformed(blockNumber uint64, err error) error {
	return fmt.Errorf("%w: block %d: %v", domain.ErrMalformedBlock, blockNumber, err)
}

func getString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
