package node

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mezonai/pohledger/config"
	"github.com/mezonai/pohledger/errors"
	"github.com/mezonai/pohledger/events"
	"github.com/mezonai/pohledger/logx"
	"github.com/mezonai/pohledger/monitoring"
	"github.com/mezonai/pohledger/transaction"
	"github.com/mezonai/pohledger/types"
)

// Airdrop credits to immediately and buffers the matching system event for the
// next entry so validators replay it. Leader only.
func (s *State) Airdrop(to string, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(config.RoleLeader, "airdrop"); err != nil {
		return err
	}
	ev := types.NewAirdrop(strings.ToLower(to), amount)
	if !transaction.IsHex(ev.To, transaction.PubKeyHexLen) {
		return errors.NewError(errors.ErrCodeMalformedInput, "bad 'pubkey' (hex32)")
	}
	if err := s.bank.Airdrop(ev.To, ev.Amount); err != nil {
		return err
	}
	s.pending.AddSystemEvent(ev)

	monitoring.IncreaseAirdropCount()
	monitoring.SetPendingItems(s.pending.Len())
	s.bus.Publish(events.NewAirdropRecorded(ev.To, ev.Amount))
	logx.Info("ADMISSION", fmt.Sprintf("Airdrop %d to %s", ev.Amount, shortKey(ev.To)))
	return nil
}

// SubmitTransfer runs the admission pipeline: shape, recency, anti-replay,
// signature, bank. The signature is recorded only once the bank accepted the
// transfer. Leader only.
func (s *State) SubmitTransfer(tx transaction.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(config.RoleLeader, "transfer"); err != nil {
		return "", err
	}
	if err := s.admit(&tx); err != nil {
		code := errors.CodeOf(err)
		monitoring.RecordRejectedTx(string(code))
		logx.Warn("ADMISSION", fmt.Sprintf("Rejected transfer code=%s from=%s: %v", code, shortKey(tx.From), err))
		return "", err
	}

	s.dedup.Record(tx.Signature)
	s.pending.AddTx(tx)

	monitoring.IncreaseAdmittedTxCount()
	monitoring.SetPendingItems(s.pending.Len())
	s.bus.Publish(events.NewTransactionAdmitted(tx))
	logx.Debug("ADMISSION", fmt.Sprintf("Admitted %d from %s to %s", tx.Amount, shortKey(tx.From), shortKey(tx.To)))
	return tx.Signature, nil
}

func (s *State) admit(tx *transaction.Transaction) error {
	tx.Normalize()
	if err := tx.Validate(); err != nil {
		return err
	}

	var recent [32]byte
	if _, err := hex.Decode(recent[:], []byte(tx.RecentHash)); err != nil {
		return errors.NewError(errors.ErrCodeMalformedInput, "bad 'recent_hash' (hex32)")
	}
	if !s.recent.Contains(recent) {
		return errors.NewError(errors.ErrCodeStaleRecentHash, "recent_hash not in the last "+fmt.Sprint(s.recent.Capacity())+" digests")
	}

	if s.dedup.IsDuplicate(tx.Signature) {
		return errors.ErrDuplicateSignature
	}

	if err := tx.Verify(); err != nil {
		return err
	}

	return s.bank.Transfer(tx.From, tx.To, tx.Amount)
}

func shortKey(k string) string {
	if len(k) > 8 {
		return k[:8]
	}
	return k
}
