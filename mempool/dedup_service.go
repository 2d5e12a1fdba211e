package mempool

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mezonai/pohledger/logx"
)

const (
	DefaultSigCacheSize = 4096
)

// DedupService remembers the last capacity accepted signatures.
// Entries are only ever added and probed with Contains, which does not touch recency,
// so the LRU behaves as a FIFO: the oldest recorded signature is evicted first.
type DedupService struct {
	cache    *lru.Cache[string, struct{}]
	capacity int
}

func NewDedupService(capacity int) (*DedupService, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("dedup capacity must be >= 1, got %d", capacity)
	}
	cache, err := lru.NewWithEvict[string, struct{}](capacity, func(sig string, _ struct{}) {
		logx.Debug("DEDUP SERVICE", "Evicted signature ", shortSig(sig))
	})
	if err != nil {
		return nil, err
	}
	return &DedupService{cache: cache, capacity: capacity}, nil
}

// IsDuplicate reports whether sig was recorded and not yet evicted.
func (ds *DedupService) IsDuplicate(sig string) bool {
	return ds.cache.Contains(sig)
}

// Record inserts sig. Recording a present signature is a no-op and keeps its position.
func (ds *DedupService) Record(sig string) {
	if ds.cache.Contains(sig) {
		return
	}
	ds.cache.Add(sig, struct{}{})
}

func (ds *DedupService) Len() int {
	return ds.cache.Len()
}

func (ds *DedupService) Capacity() int {
	return ds.capacity
}

func shortSig(sig string) string {
	if len(sig) > 16 {
		return sig[:16]
	}
	return sig
}
