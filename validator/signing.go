package validator

import (
	"github.com/mezonai/pohledger/transaction"
	"golang.org/x/sync/errgroup"
)

// parallelVerifyThreshold keeps tiny batches on the calling goroutine.
const parallelVerifyThreshold = 8

// verifyTransactions checks every signature in txs and returns the result per index.
// Callers walk the results in order next to the transfers they gate.
func (v *Validator) verifyTransactions(txs []transaction.Transaction) []error {
	results := make([]error, len(txs))
	if len(txs) < parallelVerifyThreshold || v.verifyWorkers == 1 {
		for i := range txs {
			results[i] = txs[i].Verify()
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(v.verifyWorkers)
	for i := range txs {
		i := i
		g.Go(func() error {
			results[i] = txs[i].Verify()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
