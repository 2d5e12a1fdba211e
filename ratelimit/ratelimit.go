package ratelimit

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// DefaultMaxKeys bounds how many distinct keys keep a limiter in memory.
const DefaultMaxKeys = 10_000

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	PerMinute int // sustained requests per minute per key
	Burst     int // requests allowed at once
	MaxKeys   int
}

// RateLimiter is a token bucket per key. Least recently seen keys are dropped
// past MaxKeys and start over with a full bucket.
type RateLimiter struct {
	config   RateLimiterConfig
	clock    clockwork.Clock
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
}

// NewRateLimiter returns nil when PerMinute is zero, which means unlimited.
func NewRateLimiter(config RateLimiterConfig, clock clockwork.Clock) (*RateLimiter, error) {
	if config.PerMinute <= 0 {
		return nil, nil
	}
	if config.Burst < 1 {
		config.Burst = 1
	}
	if config.MaxKeys < 1 {
		config.MaxKeys = DefaultMaxKeys
	}
	cache, err := lru.New[string, *rate.Limiter](config.MaxKeys)
	if err != nil {
		return nil, fmt.Errorf("rate limiter cache: %w", err)
	}
	return &RateLimiter{config: config, clock: clock, limiters: cache}, nil
}

// Allow consumes one token for key. A nil limiter allows everything.
func (rl *RateLimiter) Allow(key string) bool {
	if rl == nil {
		return true
	}
	rl.mu.Lock()
	lim, ok := rl.limiters.Get(key)
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.config.PerMinute)), rl.config.Burst)
		rl.limiters.Add(key, lim)
	}
	rl.mu.Unlock()
	return lim.AllowN(rl.clock.Now(), 1)
}

// FaucetLimiter applies a per-IP and a per-wallet limit to airdrop requests.
type FaucetLimiter struct {
	ipLimiter     *RateLimiter
	walletLimiter *RateLimiter
}

func NewFaucetLimiter(perMinute int, clock clockwork.Clock) (*FaucetLimiter, error) {
	ipLimiter, err := NewRateLimiter(RateLimiterConfig{PerMinute: perMinute, Burst: perMinute}, clock)
	if err != nil {
		return nil, err
	}
	walletLimiter, err := NewRateLimiter(RateLimiterConfig{PerMinute: perMinute, Burst: 1}, clock)
	if err != nil {
		return nil, err
	}
	return &FaucetLimiter{ipLimiter: ipLimiter, walletLimiter: walletLimiter}, nil
}

// Allow reports whether the request passes both limits, and which one refused it.
// Wallet keys are hex and compared case-insensitively, the same way accounts are.
func (fl *FaucetLimiter) Allow(ip, wallet string) (bool, string) {
	if !fl.ipLimiter.Allow(ip) {
		return false, "ip"
	}
	if !fl.walletLimiter.Allow(strings.ToLower(strings.TrimSpace(wallet))) {
		return false, "wallet"
	}
	return true, ""
}
