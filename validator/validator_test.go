package validator

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/mezonai/pohledger/block"
	"github.com/mezonai/pohledger/errors"
	"github.com/mezonai/pohledger/ledger"
	"github.com/mezonai/pohledger/poh"
	"github.com/mezonai/pohledger/transaction"
	"github.com/mezonai/pohledger/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainBuilder produces entries the way an honest leader would.
type chainBuilder struct {
	clock *poh.Poh
}

func newChainBuilder() *chainBuilder {
	return &chainBuilder{clock: poh.NewPoh([]byte(poh.DefaultSeed))}
}

func (c *chainBuilder) entry(ticks uint64, txs []transaction.Transaction, evs []types.SystemEvent) block.Entry {
	c.clock.Step(ticks)
	return block.NewEntry(ticks, c.clock.Snapshot().DigestHex(), txs, evs)
}

func signedTransfers(t *testing.T, n int, recent string) (string, []transaction.Transaction) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	from := hex.EncodeToString(pub)
	to := hex.EncodeToString(make([]byte, 32))
	txs := make([]transaction.Transaction, n)
	for i := range txs {
		txs[i] = transaction.Transaction{From: from, To: to, Amount: uint64(i + 1), RecentHash: recent}
		txs[i].Sign(priv)
	}
	return from, txs
}

func TestReplayAppliesEventsBeforeTransactions(t *testing.T) {
	c := newChainBuilder()
	genesis := c.clock.Snapshot().DigestHex()
	from, txs := signedTransfers(t, 3, genesis)

	slots := []block.Slot{{
		SlotID: 0,
		Entries: []block.Entry{
			c.entry(4, txs, []types.SystemEvent{types.NewAirdrop(from, 6)}),
			c.entry(4, nil, nil),
		},
	}}

	clock := poh.NewPoh([]byte(poh.DefaultSeed))
	bank := ledger.NewBank()
	var cursor Cursor
	res, err := NewValidator(1).Replay(clock, bank, &cursor, nil, slots)
	require.NoError(t, err)

	assert.Equal(t, 2, res.EntriesApplied)
	assert.Equal(t, 3, res.TxsApplied)
	assert.Equal(t, 1, res.EventsApplied)
	assert.Equal(t, uint64(0), bank.Balance(from).Uint64())
	assert.NoError(t, bank.CheckConservation())
	assert.Equal(t, Cursor{Started: true, Slot: 0, Entries: 2}, cursor)
	assert.Equal(t, c.clock.Snapshot(), clock.Snapshot())
}

func TestReplayReportsLowestBadSignatureInParallelBatch(t *testing.T) {
	c := newChainBuilder()
	from, txs := signedTransfers(t, 20, c.clock.Snapshot().DigestHex())
	txs[13].Amount = 999
	txs[7].Signature = txs[6].Signature

	slots := []block.Slot{{SlotID: 0, Entries: []block.Entry{
		c.entry(1, txs, []types.SystemEvent{types.NewAirdrop(from, 10_000)}),
	}}}

	var cursor Cursor
	_, err := NewValidator(4).Replay(poh.NewPoh([]byte(poh.DefaultSeed)), ledger.NewBank(), &cursor, nil, slots)
	require.ErrorIs(t, err, errors.ErrBadSignatureInReplay)
	le, ok := errors.As(err)
	require.True(t, ok)
	assert.Contains(t, le.Message, "transaction 7")
	assert.Equal(t, 0, *le.Entry)
}

func TestReplayInsufficientFunds(t *testing.T) {
	c := newChainBuilder()
	_, txs := signedTransfers(t, 1, c.clock.Snapshot().DigestHex())
	slots := []block.Slot{{SlotID: 0, Entries: []block.Entry{c.entry(2, txs, nil)}}}

	var cursor Cursor
	_, err := NewValidator(1).Replay(poh.NewPoh([]byte(poh.DefaultSeed)), ledger.NewBank(), &cursor, nil, slots)
	assert.ErrorIs(t, err, errors.ErrInsufficientFunds)
}

func TestReplayRejectsZeroTickEntry(t *testing.T) {
	c := newChainBuilder()
	e := c.entry(1, nil, nil)
	e.TickCount = 0

	var cursor Cursor
	_, err := NewValidator(1).Replay(poh.NewPoh([]byte(poh.DefaultSeed)), ledger.NewBank(), &cursor, nil,
		[]block.Slot{{SlotID: 0, Entries: []block.Entry{e}}})
	assert.ErrorIs(t, err, errors.ErrPoHMismatch)
}

func TestEntriesToSkip(t *testing.T) {
	cases := []struct {
		name     string
		cursor   Cursor
		slot     uint64
		entries  int
		skip     int
		replayed bool
		code     errors.LedgerErrorCode
	}{
		{name: "fresh start", cursor: Cursor{}, slot: 0, entries: 3},
		{name: "fresh start not at zero", cursor: Cursor{}, slot: 2, code: errors.ErrCodeSlotOutOfOrder},
		{name: "older slot", cursor: Cursor{Started: true, Slot: 4, Entries: 1}, slot: 3, replayed: true},
		{name: "same slot", cursor: Cursor{Started: true, Slot: 4, Entries: 2}, slot: 4, skip: 2},
		{name: "next slot", cursor: Cursor{Started: true, Slot: 4, Entries: 3}, slot: 5},
		{name: "gap", cursor: Cursor{Started: true, Slot: 4, Entries: 3}, slot: 6, code: errors.ErrCodeSlotOutOfOrder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sl := &block.Slot{SlotID: tc.slot, Entries: make([]block.Entry, tc.entries)}
			skip, replayed, err := entriesToSkip(&tc.cursor, sl)
			if tc.code != "" {
				assert.Equal(t, tc.code, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.skip, skip)
			assert.Equal(t, tc.replayed, replayed)
		})
	}
}

func TestReplayChecksTransactionsInOrder(t *testing.T) {
	c := newChainBuilder()
	_, txs := signedTransfers(t, 2, c.clock.Snapshot().DigestHex())
	txs[1].Signature = txs[0].Signature

	slots := []block.Slot{{SlotID: 0, Entries: []block.Entry{c.entry(1, txs, nil)}}}
	var cursor Cursor
	_, err := NewValidator(1).Replay(poh.NewPoh([]byte(poh.DefaultSeed)), ledger.NewBank(), &cursor, nil, slots)
	require.ErrorIs(t, err, errors.ErrInsufficientFunds)
	le, ok := errors.As(err)
	require.True(t, ok)
	assert.Contains(t, le.Message, "transaction 0")
}

func TestReplayComparesRedeliveredEntries(t *testing.T) {
	c := newChainBuilder()
	honest := block.Slot{SlotID: 0, Entries: []block.Entry{
		c.entry(4, nil, []types.SystemEvent{types.NewAirdrop(hex.EncodeToString(make([]byte, 32)), 5)}),
		c.entry(4, nil, nil),
	}}
	retained := block.NewSlotLedger(4)
	retained.Append(honest.Clone())
	committed := Cursor{Started: true, Slot: 0, Entries: 2}

	cases := []struct {
		name   string
		mutate func(s *block.Slot)
		entry  int
	}{
		{name: "tick count", mutate: func(s *block.Slot) { s.Entries[0].TickCount = 999 }, entry: 0},
		{name: "digest", mutate: func(s *block.Slot) { s.Entries[1].Digest = s.Entries[0].Digest }, entry: 1},
		{name: "event amount", mutate: func(s *block.Slot) { s.Entries[0].SystemEvents[0].Amount = 1_000_000 }, entry: 0},
		{name: "extra event", mutate: func(s *block.Slot) {
			s.Entries[1].SystemEvents = []types.SystemEvent{types.NewAirdrop(s.Entries[0].SystemEvents[0].To, 1)}
		}, entry: 1},
		{name: "truncated", mutate: func(s *block.Slot) { s.Entries = s.Entries[:1] }, entry: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			forged := honest.Clone()
			forged.Entries[0].SystemEvents = append([]types.SystemEvent(nil), honest.Entries[0].SystemEvents...)
			tc.mutate(&forged)

			cursor := committed
			clock := poh.NewPoh([]byte(poh.DefaultSeed))
			_, err := NewValidator(1).Replay(clock, ledger.NewBank(), &cursor, retained, []block.Slot{forged})
			require.ErrorIs(t, err, errors.ErrPoHMismatch)
			le, ok := errors.As(err)
			require.True(t, ok)
			require.NotNil(t, le.Entry)
			assert.Equal(t, tc.entry, *le.Entry)
		})
	}

	cursor := committed
	res, err := NewValidator(1).Replay(poh.NewPoh([]byte(poh.DefaultSeed)), ledger.NewBank(), &cursor, retained, []block.Slot{honest.Clone()})
	require.NoError(t, err)
	assert.Equal(t, 2, res.EntriesSkipped)
	require.Len(t, res.Slots, 1)
	assert.Equal(t, honest.Entries, res.Slots[0].Entries)
}
