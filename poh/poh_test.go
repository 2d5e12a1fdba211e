package poh

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/mezonai/pohledger/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenesisIsSeedHash(t *testing.T) {
	p := NewPoh([]byte(DefaultSeed))
	snap := p.Snapshot()
	assert.Equal(t, uint64(0), snap.Height)
	assert.Equal(t, sha256.Sum256([]byte(DefaultSeed)), snap.Digest)
}

func TestStepIsIteratedSha256(t *testing.T) {
	p := NewPoh([]byte("seed"))
	want := sha256.Sum256([]byte("seed"))
	for i := 0; i < 5; i++ {
		want = sha256.Sum256(want[:])
	}
	p.Step(5)
	assert.Equal(t, uint64(5), p.Height)
	assert.Equal(t, want, p.Hash)
}

func TestStepDeterminism(t *testing.T) {
	a := NewPoh([]byte("seed"))
	b := NewPoh([]byte("seed"))
	for _, n := range []uint64{1, 3, 4, 12} {
		a.Step(n)
	}
	b.Step(20)
	assert.Equal(t, a.Snapshot(), b.Snapshot())
	assert.Equal(t, DigestAt([]byte("seed"), 20), a.Hash)
}

func TestCloneIsIndependent(t *testing.T) {
	p := NewPoh([]byte("seed"))
	c := p.Clone()
	c.Step(1)
	assert.Equal(t, uint64(0), p.Height)
	assert.Equal(t, uint64(1), c.Height)
}

func TestAdvanceAndCheck(t *testing.T) {
	seed := []byte("seed")
	good := block.Entry{TickCount: 4, Digest: hexDigest(DigestAt(seed, 4))}

	p := NewPoh(seed)
	require.NoError(t, AdvanceAndCheck(p, good))
	assert.Equal(t, uint64(4), p.Height)

	tests := []struct {
		name  string
		entry block.Entry
	}{
		{"tick count changed", block.Entry{TickCount: 5, Digest: good.Digest}},
		{"digest changed", block.Entry{TickCount: 4, Digest: hexDigest(DigestAt(seed, 3))}},
		{"zero ticks", block.Entry{TickCount: 0, Digest: good.Digest}},
		{"too many ticks", block.Entry{TickCount: MaxTicksPerEntry + 1, Digest: good.Digest}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, AdvanceAndCheck(NewPoh(seed), tt.entry))
		})
	}
}

func TestVerifyEntriesReportsIndex(t *testing.T) {
	seed := []byte("seed")
	entries := []block.Entry{
		{TickCount: 2, Digest: hexDigest(DigestAt(seed, 2))},
		{TickCount: 2, Digest: hexDigest(DigestAt(seed, 4))},
		{TickCount: 2, Digest: hexDigest(DigestAt(seed, 5))},
	}
	idx, err := VerifyEntries(NewPoh(seed), entries)
	require.Error(t, err)
	assert.Equal(t, 2, idx)

	idx, err = VerifyEntries(NewPoh(seed), entries[:2])
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
}

func hexDigest(d [32]byte) string {
	return hex.EncodeToString(d[:])
}
