package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mezonai/pohledger/logx"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Node: NodeConfig{
			Role:             RoleLeader,
			ListenAddr:       DefaultListenAddr,
			FollowIntervalMs: DefaultFollowIntervalMs,
		},
		Poh: PohConfig{
			Seed:           DefaultSeed,
			EntryTicks:     DefaultEntryTicks,
			SlotTicks:      DefaultSlotTicks,
			TickIntervalMs: DefaultTickIntervalMs,
		},
		Ledger: LedgerConfig{MaxSlots: DefaultMaxSlots},
		Admission: AdmissionConfig{
			RecentHashWindow:     DefaultRecentHashWindow,
			SigCacheMax:          DefaultSigCacheMax,
			AirdropRatePerMinute: DefaultAirdropPerMinute,
		},
	}
}

// Load reads the ini file at path over the defaults, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		file, err := ini.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		sections := map[string]interface{}{
			"node":      &cfg.Node,
			"poh":       &cfg.Poh,
			"ledger":    &cfg.Ledger,
			"admission": &cfg.Admission,
		}
		for name, target := range sections {
			if err := file.Section(name).MapTo(target); err != nil {
				return nil, fmt.Errorf("map section [%s]: %w", name, err)
			}
		}
		logx.Info("CONFIG", "Loaded config file ", path)
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from lookup. Integer values below 1 are clamped to 1;
// unparsable ones are ignored with a warning.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvRole); ok && v != "" {
		c.Node.Role = ParseRole(v)
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		c.Poh.Seed = v
	}
	if v, ok := lookup(EnvListenAddr); ok && v != "" {
		c.Node.ListenAddr = v
	}
	if v, ok := lookup(EnvFollowURL); ok {
		c.Node.FollowURL = v
	}
	if n, ok := envPositive(lookup, EnvEntryTicks); ok {
		c.Poh.EntryTicks = uint64(n)
	}
	if n, ok := envPositive(lookup, EnvSlotTicks); ok {
		c.Poh.SlotTicks = uint64(n)
	}
	if n, ok := envPositive(lookup, EnvMaxSlots); ok {
		c.Ledger.MaxSlots = n
	}
	if n, ok := envPositive(lookup, EnvRecentHashWindow); ok {
		c.Admission.RecentHashWindow = n
	}
	if n, ok := envPositive(lookup, EnvSigCacheMax); ok {
		c.Admission.SigCacheMax = n
	}
}

func envPositive(lookup func(string) (string, bool), key string) (int, bool) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		logx.Warn("CONFIG", fmt.Sprintf("Ignoring %s=%q: %v", key, v, err))
		return 0, false
	}
	if n < 1 {
		n = 1
	}
	return n, true
}

// Validate rejects configurations the node cannot run with.
func (c *Config) Validate() error {
	switch c.Node.Role {
	case RoleLeader, RoleValidator:
	default:
		return fmt.Errorf("unknown role %q, want %q or %q", c.Node.Role, RoleLeader, RoleValidator)
	}
	if c.Poh.EntryTicks < 1 {
		return fmt.Errorf("poh.entry_ticks must be >= 1")
	}
	if c.Poh.SlotTicks < 1 {
		return fmt.Errorf("poh.slot_ticks must be >= 1")
	}
	if c.Ledger.MaxSlots < 1 {
		return fmt.Errorf("ledger.max_slots must be >= 1")
	}
	if c.Admission.RecentHashWindow < 1 {
		return fmt.Errorf("admission.recent_hash_window must be >= 1")
	}
	if c.Admission.SigCacheMax < 1 {
		return fmt.Errorf("admission.sig_cache_max must be >= 1")
	}
	if c.Poh.TickIntervalMs < 0 || c.Node.FollowIntervalMs < 0 || c.Admission.AirdropRatePerMinute < 0 {
		return fmt.Errorf("intervals and rates must not be negative")
	}
	return nil
}

// LoadGenesisConfig reads and parses the genesis.yml file
func LoadGenesisConfig(path string) (*GenesisConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, fmt.Errorf("decode genesis %s: %w", path, err)
	}
	for i, a := range cfgFile.Config.Airdrops {
		if a.Amount == 0 {
			return nil, fmt.Errorf("genesis airdrop %d: amount must be positive", i)
		}
	}
	logx.Info("CONFIG", fmt.Sprintf("Loaded genesis %s with %d airdrops", path, len(cfgFile.Config.Airdrops)))
	return &cfgFile.Config, nil
}
