package types

import "fmt"

// SystemEventType tags the variant of an unsigned, leader-authorized event.
type SystemEventType string

const (
	SystemEventAirdrop SystemEventType = "airdrop"
)

// SystemEvent is carried by entries next to signed transactions.
// Only the airdrop variant exists; To and Amount describe the mint.
type SystemEvent struct {
	Type   SystemEventType `json:"type"`
	To     string          `json:"to"`
	Amount uint64          `json:"amount"`
}

func NewAirdrop(to string, amount uint64) SystemEvent {
	return SystemEvent{
		Type:   SystemEventAirdrop,
		To:     to,
		Amount: amount,
	}
}

func (e SystemEvent) String() string {
	return fmt.Sprintf("%s{to=%s amount=%d}", e.Type, e.To, e.Amount)
}
