package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mezonai/pohledger/client"
	"github.com/mezonai/pohledger/logx"
	"github.com/spf13/cobra"
)

var (
	airdropNodeURL string
	airdropTo      string
	airdropAmount  string
)

var airdropCmd = &cobra.Command{
	Use:   "airdrop",
	Short: "Ask the leader to mint tokens into an account",
	Run: func(cmd *cobra.Command, args []string) {
		if err := airdrop(); err != nil {
			logx.Error("AIRDROP CLI", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(airdropCmd)
	airdropCmd.Flags().StringVarP(&airdropNodeURL, "node-url", "u", "http://localhost:8080", "leader node URL")
	airdropCmd.Flags().StringVarP(&airdropTo, "to", "t", "", "recipient public key (hex)")
	airdropCmd.Flags().StringVarP(&airdropAmount, "amount", "a", "", "amount")
}

func airdrop() error {
	amount, err := parseAmount(airdropAmount)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.NewClient(client.DefaultConfig(airdropNodeURL)).Airdrop(ctx, airdropTo, amount); err != nil {
		return fmt.Errorf("airdrop failed: %w", err)
	}
	logx.Info("AIRDROP CLI", fmt.Sprintf("Airdropped %d to %s", amount, airdropTo))
	return nil
}
