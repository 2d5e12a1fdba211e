package transaction

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mezonai/pohledger/errors"
	"github.com/mezonai/pohledger/jsonx"
)

const (
	PubKeyHexLen    = 2 * ed25519.PublicKeySize
	SignatureHexLen = 2 * ed25519.SignatureSize
	HashHexLen      = 64
)

// Transaction is a signed transfer in wire form. Byte fields are lowercase hex.
type Transaction struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Amount     uint64 `json:"amount"`
	RecentHash string `json:"recent_hash"`
	Signature  string `json:"signature"`
}

// SigningPayload is the canonical message the sender signs. Field order and
// formatting are part of the wire contract.
func SigningPayload(from, to string, amount uint64, recentHash string) []byte {
	return []byte(fmt.Sprintf(
		`{"from":"%s","to":"%s","amount":%d,"recent_hash":"%s"}`,
		from, to, amount, recentHash,
	))
}

func (tx *Transaction) Serialize() []byte {
	return SigningPayload(tx.From, tx.To, tx.Amount, tx.RecentHash)
}

// Normalize lowercases every hex field in place.
func (tx *Transaction) Normalize() {
	tx.From = strings.ToLower(tx.From)
	tx.To = strings.ToLower(tx.To)
	tx.RecentHash = strings.ToLower(tx.RecentHash)
	tx.Signature = strings.ToLower(tx.Signature)
}

// Validate checks field shapes only. It never touches cryptography.
func (tx *Transaction) Validate() error {
	if tx.Amount == 0 {
		return errors.NewError(errors.ErrCodeMalformedInput, "amount must be > 0")
	}
	if !IsHex(tx.From, PubKeyHexLen) {
		return errors.NewError(errors.ErrCodeMalformedInput, "bad 'from' pubkey (hex32)")
	}
	if !IsHex(tx.To, PubKeyHexLen) {
		return errors.NewError(errors.ErrCodeMalformedInput, "bad 'to' pubkey (hex32)")
	}
	if !IsHex(tx.RecentHash, HashHexLen) {
		return errors.NewError(errors.ErrCodeMalformedInput, "bad 'recent_hash' (hex32)")
	}
	if !IsHex(tx.Signature, SignatureHexLen) {
		return errors.NewError(errors.ErrCodeMalformedInput, "bad 'signature' (hex64)")
	}
	return nil
}

// Verify checks the Ed25519 signature over the canonical payload with From as the key.
// Undecodable key or signature bytes count as a bad signature.
func (tx *Transaction) Verify() error {
	pub, err := hex.DecodeString(tx.From)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return errors.NewError(errors.ErrCodeBadSignature, "bad key encoding")
	}
	sig, err := hex.DecodeString(tx.Signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return errors.NewError(errors.ErrCodeBadSignature, "bad signature encoding")
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), tx.Serialize(), sig) {
		return errors.ErrBadSignature
	}
	return nil
}

// Sign fills Signature using priv. From must already hold priv's public key.
func (tx *Transaction) Sign(priv ed25519.PrivateKey) {
	tx.Signature = hex.EncodeToString(ed25519.Sign(priv, tx.Serialize()))
}

func (tx *Transaction) Bytes() []byte {
	b, _ := jsonx.Marshal(tx)
	return b
}

// IsHex reports whether s is exactly n hex characters.
func IsHex(s string, n int) bool {
	if len(s) != n {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
