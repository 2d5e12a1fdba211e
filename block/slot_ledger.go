package block

// SlotLedger keeps the most recent closed slots, oldest dropped beyond maxSlots.
// It is not safe for concurrent use; the owning state serializes access.
type SlotLedger struct {
	slots    []Slot
	maxSlots int
}

func NewSlotLedger(maxSlots int) *SlotLedger {
	if maxSlots < 1 {
		maxSlots = 1
	}
	return &SlotLedger{
		slots:    make([]Slot, 0, maxSlots),
		maxSlots: maxSlots,
	}
}

// Append adds a closed slot and trims the oldest ones past capacity.
func (l *SlotLedger) Append(s Slot) {
	l.slots = append(l.slots, s)
	if over := len(l.slots) - l.maxSlots; over > 0 {
		trimmed := make([]Slot, l.maxSlots)
		copy(trimmed, l.slots[over:])
		l.slots = trimmed
	}
}

// Upsert replaces the newest slot when ids match, otherwise appends.
// Used on validators where a slot can arrive in growing pieces.
func (l *SlotLedger) Upsert(s Slot) {
	if n := len(l.slots); n > 0 && l.slots[n-1].SlotID == s.SlotID {
		l.slots[n-1] = s
		return
	}
	l.Append(s)
}

// Slots returns a copy of the retained slots, oldest first.
func (l *SlotLedger) Slots() []Slot {
	out := make([]Slot, len(l.slots))
	copy(out, l.slots)
	return out
}

// Get returns the retained slot with the given id.
func (l *SlotLedger) Get(slotID uint64) (Slot, bool) {
	for i := len(l.slots) - 1; i >= 0; i-- {
		if l.slots[i].SlotID == slotID {
			return l.slots[i], true
		}
	}
	return Slot{}, false
}

func (l *SlotLedger) Len() int {
	return len(l.slots)
}
