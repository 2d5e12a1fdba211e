package config

type NodeConfig struct {
	Role             Role   `ini:"role" json:"role"`
	ListenAddr       string `ini:"listen_addr" json:"listen_addr"`
	FollowURL        string `ini:"follow_url" json:"follow_url,omitempty"`
	FollowIntervalMs int    `ini:"follow_interval_ms" json:"follow_interval_ms"`
	GenesisPath      string `ini:"genesis_path" json:"genesis_path,omitempty"`
}

type PohConfig struct {
	Seed           string `ini:"seed" json:"seed"`
	EntryTicks     uint64 `ini:"entry_ticks" json:"entry_ticks"`
	SlotTicks      uint64 `ini:"slot_ticks" json:"slot_ticks"`
	TickIntervalMs int    `ini:"tick_interval_ms" json:"tick_interval_ms"`
}

type LedgerConfig struct {
	MaxSlots int `ini:"max_slots" json:"max_slots"`
}

type AdmissionConfig struct {
	RecentHashWindow     int `ini:"recent_hash_window" json:"recent_hash_window"`
	SigCacheMax          int `ini:"sig_cache_max" json:"sig_cache_max"`
	AirdropRatePerMinute int `ini:"airdrop_rate_per_minute" json:"airdrop_rate_per_minute"`
}

// Config is the effective node configuration.
type Config struct {
	Node      NodeConfig      `ini:"node" json:"node"`
	Poh       PohConfig       `ini:"poh" json:"poh"`
	Ledger    LedgerConfig    `ini:"ledger" json:"ledger"`
	Admission AdmissionConfig `ini:"admission" json:"admission"`
}

// Airdrop is an initial credit applied by the leader at startup.
type Airdrop struct {
	Address string `yaml:"address"`
	Amount  uint64 `yaml:"amount"`
}

// GenesisConfig holds the configuration from genesis.yml
type GenesisConfig struct {
	Airdrops []Airdrop `yaml:"airdrops"`
}

// ConfigFile is the top-level structure for genesis.yml
type ConfigFile struct {
	Config GenesisConfig `yaml:"config"`
}
