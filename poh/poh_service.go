package poh

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mezonai/pohledger/exception"
	"github.com/mezonai/pohledger/logx"
)

// PohService drives Tick on a fixed interval until stopped.
type PohService struct {
	Tick         func() error
	TickInterval time.Duration

	clock    clockwork.Clock
	stopCh   chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	done     chan struct{}
}

func NewPohService(tick func() error, interval time.Duration, clock clockwork.Clock) *PohService {
	return &PohService{
		Tick:         tick,
		TickInterval: interval,
		clock:        clock,
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
	}
}

func (s *PohService) Start() {
	s.started.Store(true)
	exception.SafeGoWithPanic("tickLoop", func() {
		s.tickLoop()
	})
}

// Stop ends the loop and waits for it to exit. Safe to call more than once.
func (s *PohService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	if s.started.Load() {
		<-s.done
	}
}

func (s *PohService) tickLoop() {
	defer close(s.done)
	logx.Info("POH", "Tick loop started, interval ", s.TickInterval)
	ticker := s.clock.NewTicker(s.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.Chan():
			if err := s.Tick(); err != nil {
				logx.Error("POH", "Tick failed: ", err)
			}
		case <-s.stopCh:
			logx.Info("POH", "Tick loop stopped")
			return
		}
	}
}
