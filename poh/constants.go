package poh

const (
	// This prevents DoS attacks with extremely large declared tick counts during replay
	MaxTicksPerEntry = 1 << 20

	// This prevents memory exhaustion attacks by limiting entries per slot
	MaxEntriesPerSlot = 1 << 16

	// This prevents DoS attacks with extremely large transaction batches
	MaxTransactionsPerEntry = 6000

	// DefaultSeed seeds the genesis digest when none is configured
	DefaultSeed = "genesis-seed"
)
