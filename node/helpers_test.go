package node

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mezonai/pohledger/block"
	"github.com/mezonai/pohledger/config"
	"github.com/mezonai/pohledger/jsonx"
	"github.com/mezonai/pohledger/transaction"
	"github.com/stretchr/testify/require"
)

type account struct {
	pub  string
	priv ed25519.PrivateKey
}

func newAccount(t *testing.T) account {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return account{pub: hex.EncodeToString(pub), priv: priv}
}

func (a account) transfer(to string, amount uint64, recentHash string) transaction.Transaction {
	tx := transaction.Transaction{From: a.pub, To: to, Amount: amount, RecentHash: recentHash}
	tx.Sign(a.priv)
	return tx
}

func testConfig(role config.Role) *config.Config {
	cfg := config.Default()
	cfg.Node.Role = role
	return cfg
}

func newTestState(t *testing.T, cfg *config.Config) *State {
	t.Helper()
	s, err := NewState(cfg, clockwork.NewFakeClockAt(time.UnixMilli(1_700_000_000_000)), nil)
	require.NoError(t, err)
	return s
}

func newLeader(t *testing.T) *State {
	return newTestState(t, testConfig(config.RoleLeader))
}

func newValidator(t *testing.T) *State {
	return newTestState(t, testConfig(config.RoleValidator))
}

func tickN(t *testing.T, s *State, n int) *TickView {
	t.Helper()
	var last *TickView
	for i := 0; i < n; i++ {
		v, err := s.Tick()
		require.NoError(t, err)
		last = v
	}
	return last
}

// wireCopy round-trips slots through the wire codec so tests can tamper freely.
func wireCopy(t *testing.T, slots []block.Slot) []block.Slot {
	t.Helper()
	b, err := jsonx.Marshal(slots)
	require.NoError(t, err)
	var out []block.Slot
	require.NoError(t, jsonx.Unmarshal(b, &out))
	return out
}
