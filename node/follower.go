package node

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mezonai/pohledger/exception"
	"github.com/mezonai/pohledger/logx"
)

// LedgerSource yields the leader's ledger view.
type LedgerSource interface {
	FetchLedger(ctx context.Context) (*LedgerView, error)
}

// Follower polls a leader and ingests what it returns into a validator state.
type Follower struct {
	state    *State
	source   LedgerSource
	interval time.Duration
	clock    clockwork.Clock
	done     chan struct{}
}

func NewFollower(state *State, source LedgerSource, interval time.Duration, clock clockwork.Clock) *Follower {
	return &Follower{
		state:    state,
		source:   source,
		interval: interval,
		clock:    clock,
		done:     make(chan struct{}),
	}
}

// Start runs the poll loop until ctx is cancelled.
func (f *Follower) Start(ctx context.Context) {
	exception.SafeGo("followLoop", func() {
		f.loop(ctx)
	})
}

// Done is closed once the loop has exited.
func (f *Follower) Done() <-chan struct{} {
	return f.done
}

func (f *Follower) loop(ctx context.Context) {
	defer close(f.done)
	logx.Info("FOLLOWER", "Following leader every ", f.interval)
	ticker := f.clock.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.Chan():
			if _, err := f.PollOnce(ctx); err != nil {
				logx.Warn("FOLLOWER", "Poll failed: ", err)
			}
		case <-ctx.Done():
			logx.Info("FOLLOWER", "Follower stopped")
			return
		}
	}
}

// PollOnce fetches the leader view and ingests it. A view with no slots is a no-op.
func (f *Follower) PollOnce(ctx context.Context) (*IngestResult, error) {
	view, err := f.source.FetchLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch ledger: %w", err)
	}
	if len(view.Slots) == 0 {
		return nil, nil
	}
	return f.state.Ingest(view.Slots, view.BankHash)
}
