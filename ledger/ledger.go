package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mezonai/pohledger/errors"
)

// Bank maps account public keys (lowercase hex) to non-negative balances.
// Transfers are balance-neutral, so total supply always equals cumulative airdrops.
// Bank has no lock; the owning node state serializes every call.
type Bank struct {
	balances   map[string]*uint256.Int
	airdropped *uint256.Int
}

func NewBank() *Bank {
	return &Bank{
		balances:   make(map[string]*uint256.Int),
		airdropped: uint256.NewInt(0),
	}
}

// Airdrop mints amount into account, creating it at zero if absent.
func (b *Bank) Airdrop(account string, amount uint64) error {
	if amount == 0 {
		return errors.NewError(errors.ErrCodeMalformedInput, "amount must be > 0")
	}
	amt := uint256.NewInt(amount)
	bal := b.balanceRef(account)
	bal.Add(bal, amt)
	b.airdropped.Add(b.airdropped, amt)
	return nil
}

// Transfer debits from and credits to. A self-transfer succeeds without touching state.
func (b *Bank) Transfer(from, to string, amount uint64) error {
	if amount == 0 {
		return errors.NewError(errors.ErrCodeMalformedInput, "amount must be > 0")
	}
	if from == to {
		return nil
	}
	amt := uint256.NewInt(amount)
	sender, ok := b.balances[from]
	if !ok || sender.Lt(amt) {
		have := "0"
		if ok {
			have = sender.Dec()
		}
		return errors.Newf(errors.ErrCodeInsufficientFunds, "insufficient funds: have %s, need %d", have, amount)
	}
	sender.Sub(sender, amt)
	recipient := b.balanceRef(to)
	recipient.Add(recipient, amt)
	return nil
}

func (b *Bank) balanceRef(account string) *uint256.Int {
	bal, ok := b.balances[account]
	if !ok {
		bal = uint256.NewInt(0)
		b.balances[account] = bal
	}
	return bal
}

// Balance returns a copy of account's balance, zero when unknown.
func (b *Bank) Balance(account string) *uint256.Int {
	if bal, ok := b.balances[account]; ok {
		return new(uint256.Int).Set(bal)
	}
	return uint256.NewInt(0)
}

// Balances returns a read-only snapshot.
func (b *Bank) Balances() map[string]*uint256.Int {
	out := make(map[string]*uint256.Int, len(b.balances))
	for k, v := range b.balances {
		out[k] = new(uint256.Int).Set(v)
	}
	return out
}

// TotalSupply sums every balance.
func (b *Bank) TotalSupply() *uint256.Int {
	total := uint256.NewInt(0)
	for _, v := range b.balances {
		total.Add(total, v)
	}
	return total
}

// Airdropped is the cumulative amount minted so far.
func (b *Bank) Airdropped() *uint256.Int {
	return new(uint256.Int).Set(b.airdropped)
}

// Hash is a deterministic digest of all balances, comparable across nodes.
func (b *Bank) Hash() [32]byte {
	return ComputeBankHash(b.balances)
}

// Clone deep-copies the bank for staged application.
func (b *Bank) Clone() *Bank {
	return &Bank{
		balances:   b.Balances(),
		airdropped: b.Airdropped(),
	}
}

// CheckConservation verifies that total supply equals cumulative airdrops.
func (b *Bank) CheckConservation() error {
	total := b.TotalSupply()
	if !total.Eq(b.airdropped) {
		return fmt.Errorf("conservation violated: supply=%s airdropped=%s", total.Dec(), b.airdropped.Dec())
	}
	return nil
}
