package rpc

import (
	"github.com/vietddude/txverify/internal/infra/rpc/provider"
)

// NewHTTPOperation creates an Operation for HTTP JSON-RPC calls.
func NewHTTPOperation(method string, params []any) Operation {
	return provider.Operation{
		Name:   method,
		Cost:   1,
		Params: params,
	}
}

// NewHTTPOperationWithCost creates an HTTP Operation with custom cost.
func NewHTTPOperationWithCost(method string, params []any, cost int) Operation {
	return provider.Operation{
		Name:   method,
		Cost:   cost,
		Params: params,
	}
}
