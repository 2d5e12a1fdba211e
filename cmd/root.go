package cmd

import (
	"os"

	"github.com/mezonai/pohledger/logx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pohledger",
	Short: "PoH ledger node CLI",
	Long:  "Command line interface for running a PoH ledger node and submitting transactions to it.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
