// Package metrics exposes the Prometheus collectors shared across packages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VerificationsTotal counts Verify calls by chain, logic and outcome
	// (verified, no_match, scan_error, invalid_request, ...)
	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txverify_verifications_total",
			Help: "Total number of verification requests",
		},
		[]string{"chain", "logic", "outcome"},
	)

	// VerificationDuration tracks wall-clock time of a Verify call
	VerificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "txverify_verification_duration_seconds",
			Help:    "Verification latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"chain"},
	)

	// BlocksScanned counts blocks evaluated by the scanner
	BlocksScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txverify_blocks_scanned_total",
			Help: "Total number of blocks evaluated",
		},
		[]string{"chain"},
	)

	// BlockFetchFailures counts per-block fetches that were skipped
	BlockFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txverify_block_fetch_failures_total",
			Help: "Total number of block fetches skipped after an error",
		},
		[]string{"chain"},
	)

	// ChainLatestBlock tracks the last observed head per chain
	ChainLatestBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "txverify_chain_latest_block",
			Help: "Latest block height observed on the chain",
		},
		[]string{"chain"},
	)

	// RPCCallsTotal tracks RPC calls per chain and provider
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txverify_rpc_calls_total",
			Help: "Total number of RPC calls",
		},
		[]string{"chain", "provider", "method"},
	)

	// RPCErrorsTotal tracks failed RPC calls per chain, classified by routing action
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txverify_rpc_errors_total",
			Help: "Total number of RPC errors",
		},
		[]string{"chain", "method", "action"},
	)

	// RPCLatency tracks RPC call latency including retries and failover
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "txverify_rpc_latency_seconds",
			Help:    "RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain", "method"},
	)
)
