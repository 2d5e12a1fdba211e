package node

import (
	"encoding/hex"
	"encoding/json"

	"github.com/mezonai/pohledger/block"
	"github.com/mezonai/pohledger/config"
	"github.com/mezonai/pohledger/validator"
)

// TickView is the clock position after a tick, plus the slot it fell in.
type TickView struct {
	Height uint64 `json:"height"`
	Digest string `json:"digest"`
	Slot   uint64 `json:"slot"`
}

type PohView struct {
	Role   config.Role `json:"role"`
	Height uint64      `json:"height"`
	Digest string      `json:"digest"`
	Slot   uint64      `json:"slot"`
}

// BankView renders balances as JSON numbers; they are uint256 and may exceed uint64.
type BankView struct {
	Balances    map[string]json.Number `json:"balances"`
	TotalSupply json.Number            `json:"total_supply"`
	BankHash    string                 `json:"bank_hash"`
}

// LedgerView is what a follower ingests. BankHash is present only when every
// admitted item is already inside an entry, so it matches the listed slots.
type LedgerView struct {
	Slots    []block.Slot      `json:"slots"`
	Pending  int               `json:"pending"`
	BankHash string            `json:"bank_hash,omitempty"`
	Cursor   *validator.Cursor `json:"cursor,omitempty"`
}

func (s *State) PohView() PohView {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.clock.Snapshot()
	v := PohView{Role: s.role, Height: snap.Height, Digest: snap.DigestHex()}
	switch {
	case s.recorder != nil:
		v.Slot = s.recorder.CurrentSlot()
	case s.cursor.Started:
		v.Slot = s.cursor.Slot
	}
	return v
}

// RecentHash returns the newest digest in the recency window.
func (s *State) RecentHash() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, _ := s.recent.Newest()
	return hex.EncodeToString(d[:])
}

func (s *State) BankView() BankView {
	s.mu.Lock()
	defer s.mu.Unlock()

	balances := s.bank.Balances()
	v := BankView{
		Balances:    make(map[string]json.Number, len(balances)),
		TotalSupply: json.Number(s.bank.TotalSupply().Dec()),
	}
	for k, bal := range balances {
		v.Balances[k] = json.Number(bal.Dec())
	}
	h := s.bank.Hash()
	v.BankHash = hex.EncodeToString(h[:])
	return v
}

// Balance returns account's balance in decimal.
func (s *State) Balance(account string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bank.Balance(account).Dec()
}

func (s *State) LedgerView() LedgerView {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recorder == nil {
		cursor := s.cursor
		return LedgerView{Slots: s.slots.Slots(), Cursor: &cursor}
	}
	v := LedgerView{
		Slots:   s.recorder.Slots(),
		Pending: s.recorder.Pending(),
	}
	if v.Pending == 0 {
		h := s.bank.Hash()
		v.BankHash = hex.EncodeToString(h[:])
	}
	return v
}

func (s *State) ConfigView() config.Config {
	return s.cfg
}
