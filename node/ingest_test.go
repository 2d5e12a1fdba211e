package node

import (
	"context"
	"testing"

	"github.com/mezonai/pohledger/block"
	"github.com/mezonai/pohledger/errors"
	"github.com/mezonai/pohledger/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// honestLeader runs a leader through two full slots with airdrops and transfers.
func honestLeader(t *testing.T) (*State, []block.Slot) {
	t.Helper()
	s := newLeader(t)
	a, b, c := newAccount(t), newAccount(t), newAccount(t)

	require.NoError(t, s.Airdrop(a.pub, 1000))
	h := tickN(t, s, 2).Digest
	_, err := s.SubmitTransfer(a.transfer(b.pub, 300, h))
	require.NoError(t, err)
	tickN(t, s, 5)
	_, err = s.SubmitTransfer(b.transfer(c.pub, 120, s.RecentHash()))
	require.NoError(t, err)
	require.NoError(t, s.Airdrop(c.pub, 5))
	tickN(t, s, 17)

	view := s.LedgerView()
	require.Len(t, view.Slots, 2)
	require.Zero(t, view.Pending)
	return s, wireCopy(t, view.Slots)
}

func TestReplayConverges(t *testing.T) {
	leader, slots := honestLeader(t)
	val := newValidator(t)

	res, err := val.Ingest(slots, leader.LedgerView().BankHash)
	require.NoError(t, err)
	assert.False(t, res.Diverged)
	assert.Equal(t, 6, res.EntriesApplied)
	assert.Equal(t, 2, res.TxsApplied)
	assert.Equal(t, 2, res.EventsApplied)

	assert.Equal(t, leader.BankView(), val.BankView())
	assert.Equal(t, leader.PohView().Height, val.PohView().Height)
	assert.Equal(t, leader.PohView().Digest, val.PohView().Digest)
	assert.Equal(t, slots, val.LedgerView().Slots)
}

func TestTamperedTickCountIsDetected(t *testing.T) {
	_, slots := honestLeader(t)
	slots[1].Entries[1].TickCount++

	val := newValidator(t)
	_, err := val.Ingest(slots, "")
	require.ErrorIs(t, err, errors.ErrPoHMismatch)

	le, ok := errors.As(err)
	require.True(t, ok)
	require.NotNil(t, le.Slot)
	require.NotNil(t, le.Entry)
	assert.EqualValues(t, 1, *le.Slot)
	assert.Equal(t, 1, *le.Entry)
}

func TestTamperedDigestIsDetected(t *testing.T) {
	_, slots := honestLeader(t)
	slots[0].Entries[0].Digest = slots[0].Entries[1].Digest

	_, err := newValidator(t).Ingest(slots, "")
	assert.ErrorIs(t, err, errors.ErrPoHMismatch)
}

func TestFailedIngestLeavesStateUntouched(t *testing.T) {
	_, slots := honestLeader(t)
	// the first slot is valid and carries airdrops; the failure is in the second
	slots[1].Entries[2].Digest = slots[1].Entries[1].Digest

	val := newValidator(t)
	before := val.PohView()
	_, err := val.Ingest(slots, "")
	require.Error(t, err)

	assert.Empty(t, val.BankView().Balances)
	assert.Equal(t, before, val.PohView())
	assert.Empty(t, val.LedgerView().Slots)
	assert.False(t, val.LedgerView().Cursor.Started)

	// an honest retry still starts from slot 0
	_, honest := honestLeader(t)
	_, err = val.Ingest(honest[:1], "")
	assert.NoError(t, err)
}

func TestReplayRejectsAlteredTransaction(t *testing.T) {
	_, slots := honestLeader(t)
	var found bool
	for si := range slots {
		for ei := range slots[si].Entries {
			if len(slots[si].Entries[ei].Transactions) > 0 && !found {
				slots[si].Entries[ei].Transactions[0].Amount++
				found = true
			}
		}
	}
	require.True(t, found)

	_, err := newValidator(t).Ingest(slots, "")
	assert.ErrorIs(t, err, errors.ErrBadSignatureInReplay)
}

func TestReplayRejectsUnknownSystemEvent(t *testing.T) {
	_, slots := honestLeader(t)
	require.NotEmpty(t, slots[0].Entries[0].SystemEvents)
	slots[0].Entries[0].SystemEvents[0].Type = types.SystemEventType("mint")

	_, err := newValidator(t).Ingest(slots, "")
	assert.ErrorIs(t, err, errors.ErrUnknownSystemEvent)
}

func TestIngestRejectsSlotGap(t *testing.T) {
	_, slots := honestLeader(t)
	val := newValidator(t)

	_, err := val.Ingest(slots[1:], "")
	assert.ErrorIs(t, err, errors.ErrSlotOutOfOrder)

	_, err = val.Ingest(slots[:1], "")
	require.NoError(t, err)
	gap := slots[1]
	gap.SlotID = 5
	_, err = val.Ingest([]block.Slot{gap}, "")
	assert.ErrorIs(t, err, errors.ErrSlotOutOfOrder)
}

func TestRedeliveredEntriesAreSkipped(t *testing.T) {
	leader, slots := honestLeader(t)
	val := newValidator(t)

	_, err := val.Ingest(slots, "")
	require.NoError(t, err)
	res, err := val.Ingest(slots, leader.LedgerView().BankHash)
	require.NoError(t, err)
	assert.Zero(t, res.EntriesApplied)
	assert.Equal(t, 6, res.EntriesSkipped)
	assert.False(t, res.Diverged)
	assert.Equal(t, leader.BankView(), val.BankView())
}

func TestForgedRedeliveryIsRejected(t *testing.T) {
	leader, slots := honestLeader(t)
	val := newValidator(t)
	_, err := val.Ingest(slots, "")
	require.NoError(t, err)
	ledgerBefore := val.LedgerView()
	bankBefore := val.BankView()
	mallory := newAccount(t)

	cases := []struct {
		name   string
		mutate func(s []block.Slot)
		slot   uint64
		entry  int
	}{
		{name: "closed slot rewritten", mutate: func(s []block.Slot) {
			e := &s[0].Entries[0]
			e.TickCount = 999
			e.Digest = "00" + e.Digest[2:]
			e.SystemEvents = append(e.SystemEvents, types.NewAirdrop(mallory.pub, 1_000_000))
		}, slot: 0, entry: 0},
		{name: "closed slot extended", mutate: func(s []block.Slot) {
			s[0].Entries = append(s[0].Entries, s[0].Entries[len(s[0].Entries)-1])
		}, slot: 0, entry: 3},
		{name: "cursor slot digest", mutate: func(s []block.Slot) {
			s[1].Entries[0].Digest = s[1].Entries[1].Digest
		}, slot: 1, entry: 0},
		{name: "cursor slot truncated", mutate: func(s []block.Slot) {
			s[1].Entries = s[1].Entries[:1]
		}, slot: 1, entry: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			forged := wireCopy(t, slots)
			tc.mutate(forged)
			_, err := val.Ingest(forged, "")
			require.ErrorIs(t, err, errors.ErrPoHMismatch)
			le, ok := errors.As(err)
			require.True(t, ok)
			require.NotNil(t, le.Slot)
			require.NotNil(t, le.Entry)
			assert.Equal(t, tc.slot, *le.Slot)
			assert.Equal(t, tc.entry, *le.Entry)

			assert.Equal(t, ledgerBefore, val.LedgerView())
			assert.Equal(t, bankBefore, val.BankView())
		})
	}
	assert.Equal(t, leader.BankView(), val.BankView())
}

func TestOpenSlotRedeliveryMustExtendRetainedPrefix(t *testing.T) {
	leader := newLeader(t)
	val := newValidator(t)
	a := newAccount(t)

	require.NoError(t, leader.Airdrop(a.pub, 10))
	tickN(t, leader, 4)
	_, err := val.Ingest(wireCopy(t, leader.LedgerView().Slots), "")
	require.NoError(t, err)

	tickN(t, leader, 4)
	honest := wireCopy(t, leader.LedgerView().Slots)
	require.Len(t, honest[0].Entries, 2)

	forged := wireCopy(t, honest)
	forged[0].Entries[0].SystemEvents[0].Amount = 1_000_000
	_, err = val.Ingest(forged, "")
	require.ErrorIs(t, err, errors.ErrPoHMismatch)
	require.Len(t, val.LedgerView().Slots[0].Entries, 1)
	assert.Equal(t, "10", val.Balance(a.pub))

	_, err = val.Ingest(honest, "")
	require.NoError(t, err)
	assert.Equal(t, honest, val.LedgerView().Slots)
}

func TestOpenSlotIsIngestedIncrementally(t *testing.T) {
	leader := newLeader(t)
	val := newValidator(t)
	a := newAccount(t)

	require.NoError(t, leader.Airdrop(a.pub, 10))
	tickN(t, leader, 4)
	first := leader.LedgerView()
	require.Len(t, first.Slots, 1)
	require.Len(t, first.Slots[0].Entries, 1)

	res, err := val.Ingest(wireCopy(t, first.Slots), first.BankHash)
	require.NoError(t, err)
	assert.Equal(t, 1, res.EntriesApplied)

	tickN(t, leader, 8)
	second := leader.LedgerView()
	res, err = val.Ingest(wireCopy(t, second.Slots), second.BankHash)
	require.NoError(t, err)
	assert.Equal(t, 2, res.EntriesApplied)
	assert.Equal(t, 1, res.EntriesSkipped)
	assert.Equal(t, leader.PohView().Digest, val.PohView().Digest)

	require.Len(t, val.LedgerView().Slots, 1)
	assert.Len(t, val.LedgerView().Slots[0].Entries, 3)
}

func TestDivergenceIsReportedNotReconciled(t *testing.T) {
	_, slots := honestLeader(t)
	val := newValidator(t)

	res, err := val.Ingest(slots, "00"+slots[0].Entries[0].Digest[2:])
	require.NoError(t, err)
	assert.True(t, res.Diverged)
	assert.NotEmpty(t, val.BankView().Balances)
}

type staticSource struct {
	view *LedgerView
	err  error
}

func (s staticSource) FetchLedger(context.Context) (*LedgerView, error) {
	return s.view, s.err
}

func TestFollowerPollOnce(t *testing.T) {
	leader, _ := honestLeader(t)
	val := newValidator(t)

	view := leader.LedgerView()
	view.Slots = wireCopy(t, view.Slots)
	f := NewFollower(val, staticSource{view: &view}, 0, nil)

	res, err := f.PollOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.Diverged)
	assert.Equal(t, leader.BankView(), val.BankView())

	empty := NewFollower(val, staticSource{view: &LedgerView{}}, 0, nil)
	res, err = empty.PollOnce(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, res)
}
