package interfaces

import (
	"context"

	"github.com/mezonai/pohledger/config"
)

type HealthStatus struct {
	Status        string      `json:"status"`
	Role          config.Role `json:"role"`
	Timestamp     int64       `json:"timestamp"`
	UptimeSeconds uint64      `json:"uptime_seconds"`
	Height        uint64      `json:"height"`
	CurrentSlot   uint64      `json:"current_slot"`
	Pending       int         `json:"pending"`
	Version       string      `json:"version"`
}

type HealthService interface {
	Check(ctx context.Context) (*HealthStatus, error)
}
