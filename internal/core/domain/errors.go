package domain

import "errors"

var (
	// ErrInvalidSignature is returned when a function signature fails the grammar check.
	ErrInvalidSignature = errors.New("invalid function signature")

	// ErrUnsupportedChain is returned when a chain ID is not in the registry.
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrInvalidRequest is returned for malformed verification requests.
	ErrInvalidRequest = errors.New("invalid verification request")

	// ErrScan marks infrastructure failures during a scan (head fetch, cancellation,
	// malformed RPC payloads). Callers may retry with backoff.
	ErrScan = errors.New("scan error")

	// ErrMalformedBlock is returned by block sources when a block or one of its
	// transactions lacks a required field.
	ErrMalformedBlock = errors.New("malformed block")

	// ErrBlockNotFound is reported for a block the node does not know (yet).
	ErrBlockNotFound = errors.New("block not found")
)
