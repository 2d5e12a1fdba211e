package node

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mezonai/pohledger/block"
	"github.com/mezonai/pohledger/config"
	"github.com/mezonai/pohledger/events"
	"github.com/mezonai/pohledger/logx"
	"github.com/mezonai/pohledger/monitoring"
)

// IngestResult reports a committed ingest call.
type IngestResult struct {
	EntriesApplied int    `json:"entries_applied"`
	EntriesSkipped int    `json:"entries_skipped"`
	TxsApplied     int    `json:"txs_applied"`
	EventsApplied  int    `json:"events_applied"`
	Height         uint64 `json:"height"`
	BankHash       string `json:"bank_hash"`
	// Diverged is set when expectedBankHash was given and differs from the local one.
	Diverged bool `json:"diverged"`
}

// Ingest replays slots into the validator. Replay runs on copies of the clock, the
// bank and the cursor; they replace the live ones only when every entry replayed.
// A failed call leaves the state untouched and returns the replay error, which
// names the offending slot and entry.
//
// expectedBankHash, when non-empty, is the bank hash the leader reported for the
// same slots. A mismatch after a successful replay is a divergence: it is logged
// and counted, never reconciled.
func (s *State) Ingest(slots []block.Slot, expectedBankHash string) (*IngestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(config.RoleValidator, "ingest"); err != nil {
		return nil, err
	}

	clock := s.clock.Clone()
	bank := s.bank.Clone()
	cursor := s.cursor

	res, err := s.replayer.Replay(clock, bank, &cursor, s.slots, slots)
	if err != nil {
		monitoring.RecordIngest("failed", 0)
		return nil, err
	}

	s.clock = clock
	s.bank = bank
	s.cursor = cursor
	for _, sl := range res.Slots {
		s.slots.Upsert(sl)
	}

	h := s.bank.Hash()
	bankHash := hex.EncodeToString(h[:])
	out := &IngestResult{
		EntriesApplied: res.EntriesApplied,
		EntriesSkipped: res.EntriesSkipped,
		TxsApplied:     res.TxsApplied,
		EventsApplied:  res.EventsApplied,
		Height:         s.clock.Height,
		BankHash:       bankHash,
	}
	if expectedBankHash != "" && !strings.EqualFold(expectedBankHash, bankHash) {
		out.Diverged = true
		monitoring.IncreaseDivergenceCount()
		logx.Error("INGEST", fmt.Sprintf("Bank divergence at height %d: local=%s reported=%s", s.clock.Height, bankHash, expectedBankHash))
	}

	monitoring.RecordIngest("ok", res.EntriesApplied)
	monitoring.SetPohHeight(s.clock.Height)
	if res.EntriesApplied > 0 {
		s.bus.Publish(events.NewSlotsIngested(cursor.Slot, res.EntriesApplied, res.TxsApplied, bankHash))
		logx.Info("INGEST", fmt.Sprintf("Ingested %d entries (%d txs, %d events) up to slot %d, height %d",
			res.EntriesApplied, res.TxsApplied, res.EventsApplied, cursor.Slot, s.clock.Height))
	}
	return out, nil
}
