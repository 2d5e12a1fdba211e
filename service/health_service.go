package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mezonai/pohledger/interfaces"
)

const Version = "1.0.0"

type HealthServiceImpl struct {
	node      interfaces.LedgerNode
	clock     clockwork.Clock
	startedAt time.Time
}

func NewHealthService(n interfaces.LedgerNode, clock clockwork.Clock) *HealthServiceImpl {
	return &HealthServiceImpl{node: n, clock: clock, startedAt: clock.Now()}
}

func (hs *HealthServiceImpl) Check(ctx context.Context) (*interfaces.HealthStatus, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("health check: %w", ctx.Err())
	default:
	}

	now := hs.clock.Now()
	pohView := hs.node.PohView()
	return &interfaces.HealthStatus{
		Status:        "SERVING",
		Role:          pohView.Role,
		Timestamp:     now.Unix(),
		UptimeSeconds: uint64(now.Sub(hs.startedAt) / time.Second),
		Height:        pohView.Height,
		CurrentSlot:   pohView.Slot,
		Pending:       hs.node.LedgerView().Pending,
		Version:       Version,
	}, nil
}
