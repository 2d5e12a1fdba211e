package poh

import (
	"fmt"

	"github.com/mezonai/pohledger/logx"
)

// RecentHashes keeps the last capacity digests in insertion order with O(1) membership.
// A ring holds the order; counts tolerates a digest appearing more than once.
type RecentHashes struct {
	ring     [][32]byte
	head     int
	size     int
	counts   map[[32]byte]int
	capacity int
}

func NewRecentHashes(capacity int) *RecentHashes {
	if capacity < 1 {
		capacity = 1
	}
	return &RecentHashes{
		ring:     make([][32]byte, capacity),
		counts:   make(map[[32]byte]int, capacity),
		capacity: capacity,
	}
}

// Push appends digest and evicts the oldest one once capacity is exceeded.
func (q *RecentHashes) Push(digest [32]byte) {
	if q.size == q.capacity {
		oldest := q.ring[q.head]
		if q.counts[oldest] <= 1 {
			delete(q.counts, oldest)
		} else {
			q.counts[oldest]--
		}
		logx.Debug("RecentHashes", fmt.Sprintf("Evict %x", oldest[:4]))
		q.ring[q.head] = digest
		q.head = (q.head + 1) % q.capacity
	} else {
		q.ring[(q.head+q.size)%q.capacity] = digest
		q.size++
	}
	q.counts[digest]++
}

func (q *RecentHashes) Contains(digest [32]byte) bool {
	_, ok := q.counts[digest]
	return ok
}

func (q *RecentHashes) Len() int {
	return q.size
}

func (q *RecentHashes) Capacity() int {
	return q.capacity
}

// Newest returns the most recently pushed digest.
func (q *RecentHashes) Newest() ([32]byte, bool) {
	if q.size == 0 {
		return [32]byte{}, false
	}
	return q.ring[(q.head+q.size-1)%q.capacity], true
}
