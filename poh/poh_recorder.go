package poh

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mezonai/pohledger/block"
	"github.com/mezonai/pohledger/logx"
	"github.com/mezonai/pohledger/mempool"
)

// TickResult reports what a tick closed, if anything.
type TickResult struct {
	Entry *block.Entry
	Slot  *block.Slot
}

// PohRecorder assembles buffered transactions and system events into entries every
// entryTicks ticks and entries into slots every slotTicks ticks. A nil current slot
// is the NoOpenSlot state; the next tick opens one.
type PohRecorder struct {
	entryTicks uint64
	slotTicks  uint64
	clock      clockwork.Clock

	pending *mempool.Mempool
	ledger  *block.SlotLedger

	current         *block.Slot
	slotSeq         uint64
	ticksInSlot     uint64
	ticksSinceEntry uint64
}

// NewPohRecorder creates a recorder that drains pending into entries and retains
// closed slots in ledger.
func NewPohRecorder(entryTicks, slotTicks uint64, pending *mempool.Mempool, ledger *block.SlotLedger, clock clockwork.Clock) *PohRecorder {
	if entryTicks < 1 {
		entryTicks = 1
	}
	if slotTicks < 1 {
		slotTicks = 1
	}
	return &PohRecorder{
		entryTicks: entryTicks,
		slotTicks:  slotTicks,
		clock:      clock,
		pending:    pending,
		ledger:     ledger,
	}
}

// OnTick advances the assembler by one clock tick. snap is the clock state after the step.
func (r *PohRecorder) OnTick(snap Snapshot) TickResult {
	var res TickResult
	if r.current == nil {
		r.current = block.NewSlot(r.slotSeq, r.clock.Now())
		r.ticksInSlot = 0
		r.ticksSinceEntry = 0
		logx.Debug("PohRecorder", fmt.Sprintf("Opened slot %d at height %d", r.slotSeq, snap.Height))
	}

	r.ticksInSlot++
	r.ticksSinceEntry++

	if r.ticksSinceEntry >= r.entryTicks {
		res.Entry = r.closeEntry(snap)
	}

	if r.ticksInSlot >= r.slotTicks {
		// close a trailing entry so the chain stays contiguous for replay
		if r.ticksSinceEntry > 0 {
			res.Entry = r.closeEntry(snap)
		}
		res.Slot = r.closeSlot()
	}
	return res
}

func (r *PohRecorder) closeEntry(snap Snapshot) *block.Entry {
	txs, events := r.pending.Drain()
	entry := block.NewEntry(r.ticksSinceEntry, snap.DigestHex(), txs, events)
	r.current.Entries = append(r.current.Entries, entry)
	r.ticksSinceEntry = 0
	logx.Debug("PohRecorder", fmt.Sprintf("Closed entry slot=%d ticks=%d txs=%d sys=%d digest=%x",
		r.current.SlotID, entry.TickCount, len(entry.Transactions), len(entry.SystemEvents), snap.Digest[:4]))
	return &entry
}

func (r *PohRecorder) closeSlot() *block.Slot {
	closed := r.current.Clone()
	r.ledger.Append(closed)
	r.slotSeq++
	r.current = nil
	logx.Info("PohRecorder", fmt.Sprintf("Closed slot %d with %d entries, %d txs", closed.SlotID, len(closed.Entries), closed.TxCount()))
	return &closed
}

// CurrentSlot is the open slot id, or the last closed one when no slot is open.
func (r *PohRecorder) CurrentSlot() uint64 {
	if r.current != nil {
		return r.current.SlotID
	}
	if r.slotSeq == 0 {
		return 0
	}
	return r.slotSeq - 1
}

// HasOpenSlot reports the SlotOpen state.
func (r *PohRecorder) HasOpenSlot() bool {
	return r.current != nil
}

// Slots returns the retained closed slots plus the open slot when it already has entries.
func (r *PohRecorder) Slots() []block.Slot {
	slots := r.ledger.Slots()
	if r.current != nil && len(r.current.Entries) > 0 {
		slots = append(slots, r.current.Clone())
	}
	return slots
}

// Pending returns the number of admitted items waiting for the next entry.
func (r *PohRecorder) Pending() int {
	return r.pending.Len()
}
