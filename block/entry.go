package block

import (
	"github.com/mezonai/pohledger/transaction"
	"github.com/mezonai/pohledger/types"
)

// Entry is what happened during TickCount clock steps, stamped with the digest at close.
type Entry struct {
	TickCount    uint64                    `json:"tick_count"`
	Digest       string                    `json:"digest"`
	Transactions []transaction.Transaction `json:"transactions"`
	SystemEvents []types.SystemEvent       `json:"system_events,omitempty"`
}

// NewEntry copies txs and events so later buffer reuse cannot alias a closed entry.
func NewEntry(tickCount uint64, digest string, txs []transaction.Transaction, events []types.SystemEvent) Entry {
	e := Entry{
		TickCount:    tickCount,
		Digest:       digest,
		Transactions: make([]transaction.Transaction, len(txs)),
	}
	copy(e.Transactions, txs)
	if len(events) > 0 {
		e.SystemEvents = make([]types.SystemEvent, len(events))
		copy(e.SystemEvents, events)
	}
	return e
}

// IsTickOnly reports an entry that carries neither transactions nor system events.
func (e Entry) IsTickOnly() bool {
	return len(e.Transactions) == 0 && len(e.SystemEvents) == 0
}

// Equal compares entries field by field. A nil and an empty content list are equal.
func (e Entry) Equal(o Entry) bool {
	if e.TickCount != o.TickCount || e.Digest != o.Digest ||
		len(e.Transactions) != len(o.Transactions) || len(e.SystemEvents) != len(o.SystemEvents) {
		return false
	}
	for i := range e.Transactions {
		if e.Transactions[i] != o.Transactions[i] {
			return false
		}
	}
	for i := range e.SystemEvents {
		if e.SystemEvents[i] != o.SystemEvents[i] {
			return false
		}
	}
	return true
}
