package config

import "strings"

// Role is the part a node plays in the ledger.
type Role string

const (
	RoleLeader    Role = "leader"
	RoleValidator Role = "validator"
)

// ParseRole normalizes case and surrounding space; Validate rejects unknown roles.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

const (
	DefaultSeed             = "genesis-seed"
	DefaultEntryTicks       = 4
	DefaultSlotTicks        = 12
	DefaultMaxSlots         = 256
	DefaultRecentHashWindow = 32
	DefaultSigCacheMax      = 4096
	DefaultTickIntervalMs   = 100
	DefaultFollowIntervalMs = 1000
	DefaultListenAddr       = ":8080"
	DefaultAirdropPerMinute = 60
)

// Environment variables that override the ini file.
const (
	EnvRole             = "LEDGER_ROLE"
	EnvSeed             = "POH_SEED"
	EnvEntryTicks       = "ENTRY_TICKS"
	EnvSlotTicks        = "SLOT_TICKS"
	EnvMaxSlots         = "MAX_SLOTS"
	EnvRecentHashWindow = "RECENT_HASH_WINDOW"
	EnvSigCacheMax      = "SIG_CACHE_MAX"
	EnvListenAddr       = "LISTEN_ADDR"
	EnvFollowURL        = "FOLLOW_URL"
)
