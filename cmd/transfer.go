package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/mezonai/pohledger/client"
	"github.com/mezonai/pohledger/logx"
	"github.com/spf13/cobra"
)

type TransferConfig struct {
	PrivateKey     string
	PrivateKeyFile string
	NodeURL        string
	To             string
	Amount         string
	Verbose        bool
}

var transferConfig TransferConfig

// transferCmd represents the transfer command
var transferCmd = &cobra.Command{
	Use:   "transfer [flags]",
	Short: "Transfer tokens to another account",
	Long: `Fetches the node's current PoH digest, signs a transfer against it and submits it.
The private key can be provided either directly via --private-key flag
or via a file using --private-key-file flag.

Examples:
  # Transfer 1000 tokens using private key file
  transfer -t <recipient pubkey hex> -a 1_000 -f /path/to/key.txt`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := transferToken(transferConfig); err != nil {
			logx.Error("TRANSFER CLI", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)

	transferCmd.PersistentFlags().StringVarP(&transferConfig.PrivateKeyFile, "private-key-file", "f", "", "sender private key file")
	transferCmd.PersistentFlags().StringVarP(&transferConfig.PrivateKey, "private-key", "p", "", "sender private key in hex")
	transferCmd.PersistentFlags().StringVarP(&transferConfig.NodeURL, "node-url", "u", "http://localhost:8080", "leader node URL")
	transferCmd.PersistentFlags().StringVarP(&transferConfig.To, "to", "t", "", "recipient public key (hex)")
	transferCmd.PersistentFlags().StringVarP(&transferConfig.Amount, "amount", "a", "", "amount")
	transferCmd.PersistentFlags().BoolVarP(&transferConfig.Verbose, "verbose", "v", false, "verbose output")
}

// parseAmount accepts decimal amounts with '_' separators that fit in uint64.
func parseAmount(s string) (uint64, error) {
	amount, err := uint256.FromDecimal(strings.ReplaceAll(s, "_", ""))
	if err != nil {
		return 0, fmt.Errorf("could not parse amount string: %v", err)
	}
	if !amount.IsUint64() || amount.IsZero() {
		return 0, fmt.Errorf("amount must be between 1 and %d", uint64(1<<64-1))
	}
	return amount.Uint64(), nil
}

func transferToken(cfg TransferConfig) error {
	amount, err := parseAmount(cfg.Amount)
	if err != nil {
		return err
	}

	privKeyStr, err := loadSenderPrivateKey(cfg)
	if err != nil {
		return fmt.Errorf("failed to load sender private key: %w", err)
	}
	priv, err := client.ParsePrivateKey(privKeyStr)
	if err != nil {
		return fmt.Errorf("failed to parse private key: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	c := client.NewClient(client.DefaultConfig(cfg.NodeURL))

	pohView, err := c.GetPoh(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch recent hash: %w", err)
	}
	tx := client.SignTransfer(priv, cfg.To, amount, pohView.Digest)
	if cfg.Verbose {
		logx.Debug("TRANSFER CLI", fmt.Sprintf("Sending transfer to %s at height %d: %s", cfg.NodeURL, pohView.Height, tx.Bytes()))
	}

	sig, err := c.Transfer(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}
	logx.Info("TRANSFER CLI", "Transfer admitted, signature ", sig)
	return nil
}

// loadSenderPrivateKey loads the key from config, which is set by command flags
func loadSenderPrivateKey(cfg TransferConfig) (string, error) {
	if cfg.PrivateKey != "" {
		return cfg.PrivateKey, nil
	}
	if cfg.PrivateKeyFile == "" {
		return "", fmt.Errorf("either --private-key or --private-key-file is required")
	}
	bytes, err := os.ReadFile(cfg.PrivateKeyFile)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
