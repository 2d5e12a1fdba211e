package block

import (
	"time"
)

// Slot is one leader epoch: a sequence of entries under a sequential id.
// StartedAt is unix milliseconds.
type Slot struct {
	SlotID    uint64  `json:"slot_id"`
	StartedAt int64   `json:"started_at"`
	Entries   []Entry `json:"entries"`
}

func NewSlot(id uint64, startedAt time.Time) *Slot {
	return &Slot{
		SlotID:    id,
		StartedAt: startedAt.UnixMilli(),
		Entries:   make([]Entry, 0),
	}
}

// Clone returns a copy whose entry list can be appended to independently.
// Entries themselves are immutable once closed and are shared.
func (s *Slot) Clone() Slot {
	c := Slot{SlotID: s.SlotID, StartedAt: s.StartedAt, Entries: make([]Entry, len(s.Entries))}
	copy(c.Entries, s.Entries)
	return c
}

// TxCount sums transactions across entries.
func (s *Slot) TxCount() int {
	n := 0
	for _, e := range s.Entries {
		n += len(e.Transactions)
	}
	return n
}
