package validator

import (
	"fmt"
	"runtime"

	"github.com/mezonai/pohledger/block"
	"github.com/mezonai/pohledger/errors"
	"github.com/mezonai/pohledger/ledger"
	"github.com/mezonai/pohledger/logx"
	"github.com/mezonai/pohledger/poh"
	"github.com/mezonai/pohledger/types"
)

// Cursor is the replay position: the last slot touched and how many of its entries were applied.
type Cursor struct {
	Started bool   `json:"started"`
	Slot    uint64 `json:"slot"`
	Entries int    `json:"entries"`
}

// Result summarizes one successful replay call.
type Result struct {
	Slots          []block.Slot
	EntriesApplied int
	EntriesSkipped int
	TxsApplied     int
	EventsApplied  int
}

// Validator re-derives the PoH chain of incoming slots and replays their contents.
// It mutates only the clock, bank and cursor it is handed; callers pass clones to stage.
type Validator struct {
	verifyWorkers int
}

func NewValidator(verifyWorkers int) *Validator {
	if verifyWorkers < 1 {
		verifyWorkers = runtime.NumCPU()
	}
	return &Validator{verifyWorkers: verifyWorkers}
}

// Retained looks up slots this validator has already committed.
type Retained interface {
	Get(slotID uint64) (block.Slot, bool)
}

// Replay applies slots in order. For every entry it first checks the PoH step, then
// applies system events, then verifies and applies transactions. It stops at the first
// failure; what was applied before it stays in clock, bank and cursor.
//
// Entries at or behind the cursor are not replayed again. They must match the copies
// in retained exactly, otherwise replay fails with a PoH mismatch at the first
// differing entry. The slots in the result are built from the retained prefix plus
// the entries replayed by this call.
func (v *Validator) Replay(clock *poh.Poh, bank *ledger.Bank, cursor *Cursor, retained Retained, slots []block.Slot) (*Result, error) {
	res := &Result{Slots: make([]block.Slot, 0, len(slots))}

	for si := range slots {
		sl := &slots[si]
		resume := cursor.Started && sl.SlotID == cursor.Slot
		skip, replayed, err := entriesToSkip(cursor, sl)
		if err != nil {
			return res, err
		}
		if replayed {
			// slots trimmed from the retained ledger cannot be compared; nothing is stored for them
			if prev, ok := lookup(retained, res.Slots, sl.SlotID); ok {
				if err := matchRetained(sl, prev.Entries, true); err != nil {
					logx.Warn("VALIDATOR", fmt.Sprintf("Redelivered slot %d rejected: %v", sl.SlotID, err))
					return res, err
				}
			}
			res.EntriesSkipped += len(sl.Entries)
			logx.Debug("VALIDATOR", fmt.Sprintf("Skipping already replayed slot %d", sl.SlotID))
			continue
		}
		if len(sl.Entries) > poh.MaxEntriesPerSlot {
			return res, errors.AtEntry(errors.ErrCodeMalformedInput, sl.SlotID, poh.MaxEntriesPerSlot,
				fmt.Sprintf("slot has %d entries, limit %d", len(sl.Entries), poh.MaxEntriesPerSlot))
		}

		stored := block.Slot{SlotID: sl.SlotID, StartedAt: sl.StartedAt, Entries: make([]block.Entry, 0, len(sl.Entries))}
		if resume {
			prev, ok := lookup(retained, res.Slots, sl.SlotID)
			if !ok {
				return res, errors.Newf(errors.ErrCodeInternal, "slot %d under the cursor is not retained", sl.SlotID)
			}
			if err := matchRetained(sl, prev.Entries, false); err != nil {
				logx.Warn("VALIDATOR", fmt.Sprintf("Redelivered slot %d rejected: %v", sl.SlotID, err))
				return res, err
			}
			stored.StartedAt = prev.StartedAt
			stored.Entries = append(stored.Entries, prev.Entries...)
			skip = len(prev.Entries)
		}
		res.EntriesSkipped += skip

		cursor.Started = true
		cursor.Slot = sl.SlotID
		cursor.Entries = skip

		for ei := skip; ei < len(sl.Entries); ei++ {
			if err := v.replayEntry(clock, bank, sl.SlotID, ei, &sl.Entries[ei], res); err != nil {
				logx.Warn("VALIDATOR", fmt.Sprintf("Replay failed at slot=%d entry_index=%d: %v", sl.SlotID, ei, err))
				return res, err
			}
			stored.Entries = append(stored.Entries, sl.Entries[ei])
			cursor.Entries = ei + 1
			res.EntriesApplied++
		}
		res.Slots = append(res.Slots, stored)
	}
	return res, nil
}

// lookup prefers slots staged earlier in the same call over committed ones.
func lookup(retained Retained, staged []block.Slot, slotID uint64) (block.Slot, bool) {
	for i := len(staged) - 1; i >= 0; i-- {
		if staged[i].SlotID == slotID {
			return staged[i], true
		}
	}
	if retained == nil {
		return block.Slot{}, false
	}
	return retained.Get(slotID)
}

// matchRetained compares a redelivered slot with the entries already committed for it.
// A redelivery may extend the open slot but never shorten or rewrite it; closed
// slots must match in length too.
func matchRetained(sl *block.Slot, prev []block.Entry, closed bool) error {
	if len(sl.Entries) < len(prev) {
		return errors.AtEntry(errors.ErrCodePoHMismatch, sl.SlotID, len(sl.Entries),
			fmt.Sprintf("slot has %d entries, %d already replayed", len(sl.Entries), len(prev)))
	}
	if closed && len(sl.Entries) > len(prev) {
		return errors.AtEntry(errors.ErrCodePoHMismatch, sl.SlotID, len(prev),
			fmt.Sprintf("closed slot grew from %d to %d entries", len(prev), len(sl.Entries)))
	}
	for i := range prev {
		if !sl.Entries[i].Equal(prev[i]) {
			return errors.AtEntry(errors.ErrCodePoHMismatch, sl.SlotID, i, "entry differs from the replayed one")
		}
	}
	return nil
}

// entriesToSkip decides where replay of sl starts given the cursor.
// replayed is true when the whole slot is older than the cursor.
func entriesToSkip(cursor *Cursor, sl *block.Slot) (skip int, replayed bool, err error) {
	if !cursor.Started {
		if sl.SlotID != 0 {
			return 0, false, errors.Newf(errors.ErrCodeSlotOutOfOrder, "first slot must be 0, got %d", sl.SlotID)
		}
		return 0, false, nil
	}
	switch {
	case sl.SlotID < cursor.Slot:
		return 0, true, nil
	case sl.SlotID == cursor.Slot:
		return cursor.Entries, false, nil
	case sl.SlotID == cursor.Slot+1:
		return 0, false, nil
	default:
		return 0, false, errors.Newf(errors.ErrCodeSlotOutOfOrder, "slot %d does not follow slot %d", sl.SlotID, cursor.Slot)
	}
}

func (v *Validator) replayEntry(clock *poh.Poh, bank *ledger.Bank, slot uint64, idx int, e *block.Entry, res *Result) error {
	if err := poh.AdvanceAndCheck(clock, *e); err != nil {
		return errors.AtEntry(errors.ErrCodePoHMismatch, slot, idx, err.Error())
	}
	if len(e.Transactions) > poh.MaxTransactionsPerEntry {
		return errors.AtEntry(errors.ErrCodeMalformedInput, slot, idx,
			fmt.Sprintf("entry has %d transactions, limit %d", len(e.Transactions), poh.MaxTransactionsPerEntry))
	}

	for _, ev := range e.SystemEvents {
		if ev.Type != types.SystemEventAirdrop {
			return errors.AtEntry(errors.ErrCodeUnknownSystemEvent, slot, idx, fmt.Sprintf("unknown system event: %q", ev.Type))
		}
		if err := bank.Airdrop(ev.To, ev.Amount); err != nil {
			return errors.AtEntry(errors.CodeOf(err), slot, idx, err.Error())
		}
		res.EventsApplied++
	}

	sigErrs := v.verifyTransactions(e.Transactions)
	for ti := range e.Transactions {
		if sigErrs[ti] != nil {
			return errors.AtEntry(errors.ErrCodeBadSignatureInReplay, slot, idx,
				fmt.Sprintf("transaction %d: %v", ti, sigErrs[ti]))
		}
		tx := &e.Transactions[ti]
		if err := bank.Transfer(tx.From, tx.To, tx.Amount); err != nil {
			return errors.AtEntry(errors.CodeOf(err), slot, idx, fmt.Sprintf("transaction %d: %v", ti, err))
		}
		res.TxsApplied++
	}
	return nil
}
