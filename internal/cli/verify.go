package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietddude/txverify/internal/control"
	"github.com/vietddude/txverify/internal/core/domain"
	"github.com/vietddude/txverify/internal/verification"
)

var verifyFlags struct {
	chainID   int64
	wallet    string
	contract  string
	functions []string
	logic     string
	duration  time.Duration
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run one verification and print the result as JSON",
	Example: `  txverify verify --chain 8453 --wallet 0xabc... --contract 0xdef... \
    --function "gm()" --logic any --duration 15m
  txverify verify --chain 1 --wallet 0x.. --contract 0x.. \
    --function "approve(address,uint256)=Approve" --function "swap(uint256,uint256)=Swap" --logic all`,
	RunE: runVerify,
}

func init() {
	f := verifyCmd.Flags()
	f.Int64Var(&verifyFlags.chainID, "chain", 0, "EIP-155 chain ID")
	f.StringVar(&verifyFlags.wallet, "wallet", "", "sender address")
	f.StringVar(&verifyFlags.contract, "contract", "", "contract address")
	f.StringArrayVar(&verifyFlags.functions, "function", nil, `function signature, optionally "signature=label" (repeatable)`)
	f.StringVar(&verifyFlags.logic, "logic", "any", "any|all")
	f.DurationVar(&verifyFlags.duration, "duration", 15*time.Minute, "lookback window (max 1h)")
	_ = verifyCmd.MarkFlagRequired("chain")
	_ = verifyCmd.MarkFlagRequired("wallet")
	_ = verifyCmd.MarkFlagRequired("contract")
	_ = verifyCmd.MarkFlagRequired("function")
	rootCmd.AddCommand(verifyCmd)
}

// parseFunction splits "signature=label". Signatures never contain '='.
func parseFunction(s string) domain.VerificationFunction {
	sig, label, _ := strings.Cut(s, "=")
	return domain.VerificationFunction{
		Signature: strings.TrimSpace(sig),
		Label:     strings.TrimSpace(label),
	}
}

func buildRequest() (domain.VerificationRequest, error) {
	logic, err := domain.ParseLogic(verifyFlags.logic)
	if err != nil {
		return domain.VerificationRequest{}, err
	}

	fns := make([]domain.VerificationFunction, 0, len(verifyFlags.functions))
	for _, f := range verifyFlags.functions {
		fns = append(fns, parseFunction(f))
	}

	return domain.VerificationRequest{
		WalletAddress:   verifyFlags.wallet,
		ContractAddress: verifyFlags.contract,
		Functions:       fns,
		Logic:           logic,
		ChainID:         domain.ChainID(verifyFlags.chainID),
		Duration:        verifyFlags.duration,
	}, nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	req, err := buildRequest()
	if err != nil {
		return printResult(cmd, verification.ResultFromError(err), err)
	}

	app, err := control.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Verification.Timeout)
	defer cancel()

	result, err := app.Verifier().Verify(ctx, req)
	if err != nil {
		return printResult(cmd, verification.ResultFromError(err), err)
	}
	if !result.Verified {
		return printResult(cmd, result, fmt.Errorf("not verified: %s", result.FailureReason))
	}
	return printResult(cmd, result, nil)
}

func printResult(cmd *cobra.Command, result *domain.VerificationResult, err error) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(result); encErr != nil {
		fmt.Fprintln(os.Stderr, encErr)
	}
	return err
}
