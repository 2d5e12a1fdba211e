package mempool

import (
	"github.com/mezonai/pohledger/transaction"
	"github.com/mezonai/pohledger/types"
)

// Mempool buffers admitted transactions and system events until the next entry closes.
// Order of insertion is order of application and is preserved on drain.
// Not safe for concurrent use; the node state serializes access.
type Mempool struct {
	txs    []transaction.Transaction
	events []types.SystemEvent
}

// NewMempool creates a new, empty mempool.
func NewMempool() *Mempool {
	return &Mempool{
		txs:    make([]transaction.Transaction, 0),
		events: make([]types.SystemEvent, 0),
	}
}

// AddTx pushes an admitted transaction.
func (m *Mempool) AddTx(tx transaction.Transaction) {
	m.txs = append(m.txs, tx)
}

// AddSystemEvent pushes a leader-authorized system event.
func (m *Mempool) AddSystemEvent(ev types.SystemEvent) {
	m.events = append(m.events, ev)
}

// Len returns the number of buffered transactions and events.
func (m *Mempool) Len() int {
	return len(m.txs) + len(m.events)
}

// Drain returns both buffers and leaves the mempool empty.
func (m *Mempool) Drain() ([]transaction.Transaction, []types.SystemEvent) {
	txs, events := m.txs, m.events
	m.txs = make([]transaction.Transaction, 0)
	m.events = make([]types.SystemEvent, 0)
	return txs, events
}
