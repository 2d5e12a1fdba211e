package events

import (
	"fmt"
	"time"

	"github.com/mezonai/pohledger/transaction"
)

type EventType string

const (
	EventTransactionAdmitted EventType = "TransactionAdmitted"
	EventAirdropRecorded     EventType = "AirdropRecorded"
	EventEntryClosed         EventType = "EntryClosed"
	EventSlotClosed          EventType = "SlotClosed"
	EventSlotsIngested       EventType = "SlotsIngested"
)

// LedgerEvent is anything the node announces after a state change.
type LedgerEvent interface {
	Type() EventType
	Timestamp() time.Time
	// Key identifies the subject of the event (signature, account, slot).
	Key() string
}

type base struct {
	timestamp time.Time
}

func now() base { return base{timestamp: time.Now()} }

func (b base) Timestamp() time.Time { return b.timestamp }

type TransactionAdmitted struct {
	base
	Tx transaction.Transaction
}

func NewTransactionAdmitted(tx transaction.Transaction) *TransactionAdmitted {
	return &TransactionAdmitted{base: now(), Tx: tx}
}

func (e *TransactionAdmitted) Type() EventType { return EventTransactionAdmitted }
func (e *TransactionAdmitted) Key() string     { return e.Tx.Signature }

type AirdropRecorded struct {
	base
	To     string
	Amount uint64
}

func NewAirdropRecorded(to string, amount uint64) *AirdropRecorded {
	return &AirdropRecorded{base: now(), To: to, Amount: amount}
}

func (e *AirdropRecorded) Type() EventType { return EventAirdropRecorded }
func (e *AirdropRecorded) Key() string     { return e.To }

type EntryClosed struct {
	base
	Slot      uint64
	TickCount uint64
	Digest    string
	TxCount   int
}

func NewEntryClosed(slot, tickCount uint64, digest string, txCount int) *EntryClosed {
	return &EntryClosed{base: now(), Slot: slot, TickCount: tickCount, Digest: digest, TxCount: txCount}
}

func (e *EntryClosed) Type() EventType { return EventEntryClosed }
func (e *EntryClosed) Key() string     { return e.Digest }

type SlotClosed struct {
	base
	Slot    uint64
	Entries int
	TxCount int
}

func NewSlotClosed(slot uint64, entries, txCount int) *SlotClosed {
	return &SlotClosed{base: now(), Slot: slot, Entries: entries, TxCount: txCount}
}

func (e *SlotClosed) Type() EventType { return EventSlotClosed }
func (e *SlotClosed) Key() string     { return fmt.Sprintf("slot-%d", e.Slot) }

type SlotsIngested struct {
	base
	LastSlot       uint64
	EntriesApplied int
	TxsApplied     int
	BankHash       string
}

func NewSlotsIngested(lastSlot uint64, entries, txs int, bankHash string) *SlotsIngested {
	return &SlotsIngested{base: now(), LastSlot: lastSlot, EntriesApplied: entries, TxsApplied: txs, BankHash: bankHash}
}

func (e *SlotsIngested) Type() EventType { return EventSlotsIngested }
func (e *SlotsIngested) Key() string     { return fmt.Sprintf("slot-%d", e.LastSlot) }
