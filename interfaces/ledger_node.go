package interfaces

import (
	"github.com/mezonai/pohledger/block"
	"github.com/mezonai/pohledger/config"
	"github.com/mezonai/pohledger/node"
	"github.com/mezonai/pohledger/transaction"
)

// LedgerNode is the node surface served over HTTP.
type LedgerNode interface {
	Role() config.Role
	Tick() (*node.TickView, error)
	Airdrop(to string, amount uint64) error
	SubmitTransfer(tx transaction.Transaction) (string, error)
	Ingest(slots []block.Slot, expectedBankHash string) (*node.IngestResult, error)
	PohView() node.PohView
	BankView() node.BankView
	LedgerView() node.LedgerView
	ConfigView() config.Config
}
