package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vietddude/txverify/internal/verification/selector"
)

var selectorCmd = &cobra.Command{
	Use:   "selector [signature...]",
	Short: "Print the 4-byte selector of function signatures",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSelector,
}

func init() {
	rootCmd.AddCommand(selectorCmd)
}

func runSelector(cmd *cobra.Command, args []string) error {
	for _, sig := range args {
		sel, err := selector.Compute(sig)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", sel.Hex(), selector.Normalize(sig))
	}
	return nil
}
