package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vietddude/txverify/internal/core/domain"
	"github.com/vietddude/txverify/internal/verification"
)

const maxBodyBytes = 64 << 10

type verifyRequest struct {
	Wallet          string                        `json:"wallet"`
	Contract        string                        `json:"contract"`
	ChainID         int64                         `json:"chainId"`
	Logic           string                        `json:"logic"`
	DurationSeconds int64                         `json:"durationSeconds"`
	Functions       []domain.VerificationFunction `json:"functions"`
}

func (r verifyRequest) toDomain() (domain.VerificationRequest, error) {
	logic, err := domain.ParseLogic(r.Logic)
	if err != nil {
		return domain.VerificationRequest{}, err
	}
	// Bound the seconds before converting; large values overflow time.Duration.
	maxSeconds := int64(domain.MaxVerificationDuration / time.Second)
	if r.DurationSeconds <= 0 || r.DurationSeconds > maxSeconds {
		return domain.VerificationRequest{}, fmt.Errorf("%w: durationSeconds must be within (0, %d], got %d",
			domain.ErrInvalidRequest, maxSeconds, r.DurationSeconds)
	}
	return domain.VerificationRequest{
		WalletAddress:   r.Wallet,
		ContractAddress: r.Contract,
		Functions:       r.Functions,
		Logic:           logic,
		ChainID:         domain.ChainID(r.ChainID),
		Duration:        time.Duration(r.DurationSeconds) * time.Second,
	}, nil
}

type chainView struct {
	ID               domain.ChainID `json:"chainId"`
	Name             string         `json:"name"`
	Testnet          bool           `json:"testnet"`
	BlockTimeSeconds float64        `json:"blockTimeSeconds"`
	ExplorerURL      string         `json:"explorerUrl,omitempty"`
	Providers        int            `json:"providers"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var body verifyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, verification.ResultFromError(
			fmt.Errorf("%w: decode body: %v", domain.ErrInvalidRequest, err),
		))
		return
	}

	req, err := body.toDomain()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, verification.ResultFromError(err))
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.verifier.Verify(ctx, req)
	if err != nil {
		writeJSON(w, statusFor(err), verification.ResultFromError(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func statusFor(err error) int {
	switch verification.FailureKindOf(err) {
	case domain.FailureInvalidRequest, domain.FailureInvalidSignature, domain.FailureUnsupportedChain:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleChains(w http.ResponseWriter, r *http.Request) {
	profiles := s.chains.List()
	out := make([]chainView, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, chainView{
			ID:               p.ID,
			Name:             p.Name,
			Testnet:          p.Testnet,
			BlockTimeSeconds: p.AverageBlockTime.Seconds(),
			ExplorerURL:      p.ExplorerURL,
			Providers:        len(p.RPCEndpoints),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, s.health.Health())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
