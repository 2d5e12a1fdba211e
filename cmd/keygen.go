package cmd

import (
	"fmt"
	"os"

	"github.com/mezonai/pohledger/client"
	"github.com/mezonai/pohledger/logx"
	"github.com/spf13/cobra"
)

var keygenOut string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an Ed25519 keypair",
	Long: `Generates a keypair and prints the public key (the account id) and the hex seed.
With --out the seed is written to a file with 0600 permissions instead of being printed.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := keygen(); err != nil {
			logx.Error("KEYGEN CLI", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVarP(&keygenOut, "out", "o", "", "file to write the private key seed to")
}

func keygen() error {
	pub, seed, err := client.GenerateKey()
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	fmt.Println("pubkey:", pub)
	if keygenOut == "" {
		fmt.Println("private_key:", seed)
		return nil
	}
	if err := os.WriteFile(keygenOut, []byte(seed), 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	fmt.Println("private key written to", keygenOut)
	return nil
}
