package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vietddude/txverify/internal/verification/registry"
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List supported chains",
	RunE:  runChains,
}

func init() {
	rootCmd.AddCommand(chainsCmd)
}

func runChains(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg, err := registry.New(cfg.Profiles()...)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tBLOCK TIME\tPROVIDERS\tEXPLORER")

	for _, p := range reg.List() {
		name := p.Name
		if p.Testnet {
			name += " (testnet)"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			p.ID, name, p.AverageBlockTime, len(p.RPCEndpoints), p.ExplorerURL)
	}
	return w.Flush()
}
