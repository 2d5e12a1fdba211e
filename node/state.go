package node

import (
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/mezonai/pohledger/block"
	"github.com/mezonai/pohledger/config"
	"github.com/mezonai/pohledger/errors"
	"github.com/mezonai/pohledger/events"
	"github.com/mezonai/pohledger/ledger"
	"github.com/mezonai/pohledger/logx"
	"github.com/mezonai/pohledger/mempool"
	"github.com/mezonai/pohledger/monitoring"
	"github.com/mezonai/pohledger/poh"
	"github.com/mezonai/pohledger/validator"
)

// State is the single mutable object of a node. Every operation takes mu, so
// admission, assembly and replay never interleave.
type State struct {
	mu sync.Mutex

	cfg  config.Config
	role config.Role

	clock  *poh.Poh
	bank   *ledger.Bank
	recent *poh.RecentHashes
	dedup  *mempool.DedupService

	// leader only
	pending  *mempool.Mempool
	recorder *poh.PohRecorder

	// validator only
	replayer *validator.Validator
	cursor   validator.Cursor

	slots *block.SlotLedger
	bus   *events.EventBus
}

// NewState builds the state for cfg.Node.Role. bus may be nil.
func NewState(cfg *config.Config, clock clockwork.Clock, bus *events.EventBus) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dedup, err := mempool.NewDedupService(cfg.Admission.SigCacheMax)
	if err != nil {
		return nil, err
	}
	if bus == nil {
		bus = events.NewEventBus()
	}

	s := &State{
		cfg:    *cfg,
		role:   cfg.Node.Role,
		clock:  poh.NewPoh([]byte(cfg.Poh.Seed)),
		bank:   ledger.NewBank(),
		recent: poh.NewRecentHashes(cfg.Admission.RecentHashWindow),
		dedup:  dedup,
		slots:  block.NewSlotLedger(cfg.Ledger.MaxSlots),
		bus:    bus,
	}
	s.recent.Push(s.clock.Hash)

	switch s.role {
	case config.RoleLeader:
		s.pending = mempool.NewMempool()
		s.recorder = poh.NewPohRecorder(cfg.Poh.EntryTicks, cfg.Poh.SlotTicks, s.pending, s.slots, clock)
	case config.RoleValidator:
		s.replayer = validator.NewValidator(0)
	}

	monitoring.SetPohHeight(0)
	logx.Info("NODE", fmt.Sprintf("State ready role=%s seed=%q genesis=%s", s.role, cfg.Poh.Seed, s.clock.Snapshot().DigestHex()))
	return s, nil
}

func (s *State) Role() config.Role {
	return s.role
}

func (s *State) Events() *events.EventBus {
	return s.bus
}

func (s *State) requireRole(want config.Role, op string) error {
	if s.role != want {
		return errors.Newf(errors.ErrCodeWrongRole, "%s is only available on a %s node", op, want)
	}
	return nil
}

// Tick advances the clock by one step, records the digest in the recency window
// and lets the assembler close entries and slots. Leader only.
func (s *State) Tick() (*TickView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(config.RoleLeader, "tick"); err != nil {
		return nil, err
	}

	s.clock.Step(1)
	snap := s.clock.Snapshot()
	s.recent.Push(snap.Digest)

	res := s.recorder.OnTick(snap)
	slotID := s.recorder.CurrentSlot()
	if res.Entry != nil {
		monitoring.RecordEntryClosed(len(res.Entry.Transactions))
		s.bus.Publish(events.NewEntryClosed(slotID, res.Entry.TickCount, res.Entry.Digest, len(res.Entry.Transactions)))
	}
	if res.Slot != nil {
		monitoring.IncreaseSlotsClosed()
		s.bus.Publish(events.NewSlotClosed(res.Slot.SlotID, len(res.Slot.Entries), res.Slot.TxCount()))
	}
	monitoring.SetPohHeight(snap.Height)
	monitoring.SetPendingItems(s.pending.Len())

	return &TickView{
		Height: snap.Height,
		Digest: snap.DigestHex(),
		Slot:   slotID,
	}, nil
}
