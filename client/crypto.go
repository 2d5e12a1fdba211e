package client

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/mezonai/pohledger/transaction"
)

var ErrUnsupportedKey = errors.New("crypto: unsupported private key length")

// GenerateKey returns a new keypair as hex: the 32-byte public key and the 32-byte seed.
func GenerateKey() (pubHex, seedHex string, err error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return "", "", err
	}
	return hex.EncodeToString(pub), hex.EncodeToString(priv.Seed()), nil
}

// ParsePrivateKey accepts a hex seed (32 bytes) or a full hex private key (64 bytes).
func ParsePrivateKey(s string) (ed25519.PrivateKey, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	default:
		return nil, ErrUnsupportedKey
	}
}

func PublicKeyHex(priv ed25519.PrivateKey) string {
	return hex.EncodeToString(priv.Public().(ed25519.PublicKey))
}

// SignTransfer builds a transfer from priv's account and signs the canonical payload.
func SignTransfer(priv ed25519.PrivateKey, to string, amount uint64, recentHash string) transaction.Transaction {
	tx := transaction.Transaction{
		From:       PublicKeyHex(priv),
		To:         strings.ToLower(to),
		Amount:     amount,
		RecentHash: strings.ToLower(recentHash),
	}
	tx.Sign(priv)
	return tx
}
