package domain

import (
	"fmt"
	"strings"
	"time"
)

// Logic decides how multiple functions combine into a verdict.
type Logic string

const (
	LogicAll Logic = "all"
	LogicAny Logic = "any"
)

// ParseLogic accepts all/any (and/or as aliases), case-insensitive.
// An empty string defaults to LogicAny.
func ParseLogic(s string) (Logic, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "or":
		return LogicAny, nil
	case "all", "and":
		return LogicAll, nil
	default:
		return "", fmt.Errorf("%w: unknown logic %q", ErrInvalidRequest, s)
	}
}

// MaxVerificationDuration is the longest window a request may ask for.
const MaxVerificationDuration = time.Hour

// VerificationFunction is one contract call to look for.
type VerificationFunction struct {
	Signature string `json:"signature"`
	Label     string `json:"label,omitempty"`
}

// DisplayName returns the label, falling back to the signature.
func (f VerificationFunction) DisplayName() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Signature
}

// VerificationRequest is the unit of work for one Verify call.
type VerificationRequest struct {
	WalletAddress   string
	ContractAddress string
	Functions       []VerificationFunction
	Logic           Logic
	ChainID         ChainID
	Duration        time.Duration
}

// FailureKind classifies why a verification did not succeed.
type FailureKind string

const (
	FailureNone             FailureKind = ""
	FailureNoMatch          FailureKind = "no_match"
	FailureUnsupportedChain FailureKind = "unsupported_chain"
	FailureInvalidRequest   FailureKind = "invalid_request"
	FailureInvalidSignature FailureKind = "invalid_signature"
	FailureScanError        FailureKind = "scan_error"
)

// MatchedTransaction is the evidence for one satisfied function.
type MatchedTransaction struct {
	Selector       string `json:"selector"`
	Label          string `json:"label"`
	TxHash         string `json:"txHash"`
	BlockNumber    uint64 `json:"blockNumber"`
	BlockTimestamp uint64 `json:"blockTimestamp"`
	ExplorerURL    string `json:"explorerUrl,omitempty"`
}

// VerificationResult is the verdict returned to the caller.
type VerificationResult struct {
	Verified         bool                 `json:"verified"`
	Matches          []MatchedTransaction `json:"matchedTransactions"`
	Failure          FailureKind          `json:"failure,omitempty"`
	FailureReason    string               `json:"failureReason,omitempty"`
	MissingFunctions []string             `json:"missingFunctions,omitempty"`
	BlocksScanned    int                  `json:"blocksScanned"`
}
