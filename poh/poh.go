package poh

import (
	"crypto/sha256"
	"encoding/hex"
)

// Snapshot is the clock position: Height steps taken since genesis and the digest reached.
type Snapshot struct {
	Height uint64
	Digest [32]byte
}

func (s Snapshot) DigestHex() string {
	return hex.EncodeToString(s.Digest[:])
}

// Poh is a SHA-256 hash chain used as a logical clock. Height 0 holds sha256(seed).
// It has no lock of its own; the node state that owns it serializes every call.
type Poh struct {
	Hash   [32]byte
	Height uint64
}

func NewPoh(seed []byte) *Poh {
	return &Poh{
		Hash:   sha256.Sum256(seed),
		Height: 0,
	}
}

func (p *Poh) hashOnce() {
	p.Hash = sha256.Sum256(p.Hash[:])
	p.Height++
}

// Step applies SHA-256 n times. Callers guarantee n >= 1.
func (p *Poh) Step(n uint64) {
	for i := uint64(0); i < n; i++ {
		p.hashOnce()
	}
}

func (p *Poh) Snapshot() Snapshot {
	return Snapshot{Height: p.Height, Digest: p.Hash}
}

func (p *Poh) Clone() *Poh {
	c := *p
	return &c
}

// GenesisDigest returns the height-0 digest for seed.
func GenesisDigest(seed []byte) [32]byte {
	return sha256.Sum256(seed)
}

// DigestAt returns the digest after height steps from seed's genesis.
func DigestAt(seed []byte, height uint64) [32]byte {
	p := NewPoh(seed)
	p.Step(height)
	return p.Hash
}
