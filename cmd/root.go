package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mezonai/multisig/logx"
)

var rootFlags struct {
	Home    string
	Metrics bool
}

var rootCmd = &cobra.Command{
	Use:   "multisig",
	Short: "Multisig treasury program CLI",
	Long: `Command line interface for a local ledger running the multisig treasury program.
Each command opens the configured store, executes at most one signed transaction and exits.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.Home, "home", ".", "Directory holding node.yml, runtime.ini and the data directory")
	rootCmd.PersistentFlags().BoolVar(&rootFlags.Metrics, "metrics", false, "Serve Prometheus metrics on the configured address while the command runs")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
