package poh

import (
	"encoding/hex"
	"fmt"

	"github.com/mezonai/pohledger/block"
)

// AdvanceAndCheck steps p by the entry's declared tick count and compares the result
// with the declared digest. Out-of-range counts are reported without hashing.
func AdvanceAndCheck(p *Poh, e block.Entry) error {
	if e.TickCount == 0 || e.TickCount > MaxTicksPerEntry {
		return fmt.Errorf("PoH mismatch: tick_count=%d out of range [1,%d]", e.TickCount, MaxTicksPerEntry)
	}
	p.Step(e.TickCount)
	got := hex.EncodeToString(p.Hash[:])
	if got != e.Digest {
		return fmt.Errorf("PoH mismatch: height=%d expected=%s got=%s", p.Height, e.Digest, got)
	}
	return nil
}

// VerifyEntries re-derives a run of entries from p without applying any contents.
// It returns the index of the first bad entry alongside the error.
func VerifyEntries(p *Poh, entries []block.Entry) (int, error) {
	for i := range entries {
		if err := AdvanceAndCheck(p, entries[i]); err != nil {
			return i, err
		}
	}
	return -1, nil
}
