// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package ratelimit throttles login attempts per account.
package ratelimit

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var rateLimitExceeded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "apigate_login_throttled_total",
		Help: "Login attempts rejected by the throttle",
	},
	[]string{"limit_type"},
)

// Config holds throttling configuration.
type Config struct {
	// Global limits across all accounts
	GlobalRate  rate.Limit
	GlobalBurst int

	// Per-account limits
	AccountRate  rate.Limit
	AccountBurst int

	// Accounts idle for this long lose their limiter
	CleanupInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		GlobalRate:  50,
		GlobalBurst: 100,

		AccountRate:  0.5, // one attempt every two seconds
		AccountBurst: 10,

		CleanupInterval: 5 * time.Minute,
	}
}

type accountLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter manages rate limiting for login attempts.
type Limiter struct {
	config Config
	now    func() time.Time

	global   *rate.Limiter
	mu       sync.Mutex
	accounts map[string]*accountLimiter

	lastCleanup time.Time
}

// New creates a new limiter with the given config.
func New(config Config) *Limiter {
	return &Limiter{
		config:      config,
		now:         time.Now,
		global:      rate.NewLimiter(config.GlobalRate, config.GlobalBurst),
		accounts:    make(map[string]*accountLimiter),
		lastCleanup: time.Now(),
	}
}

// AccountKey names the account a login targets. tenant is empty for the
// platform.
func AccountKey(tenant, user string) string {
	if tenant == "" {
		tenant = "platform"
	}
	return strings.ToLower(tenant) + "/" + user
}

// Allow reports whether another attempt on account may proceed. A nil
// Limiter allows everything.
func (l *Limiter) Allow(account string) bool {
	if l == nil {
		return true
	}
	if !l.global.Allow() {
		rateLimitExceeded.WithLabelValues("global").Inc()
		return false
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maybeCleanup(now)

	a, ok := l.accounts[account]
	if !ok {
		a = &accountLimiter{limiter: rate.NewLimiter(l.config.AccountRate, l.config.AccountBurst)}
		l.accounts[account] = a
	}
	a.lastSeen = now
	if !a.limiter.AllowN(now, 1) {
		rateLimitExceeded.WithLabelValues("account").Inc()
		return false
	}
	return true
}

// Tracked returns the number of accounts with a live limiter.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.accounts)
}

// maybeCleanup drops limiters idle longer than the cleanup interval.
// Caller holds l.mu.
func (l *Limiter) maybeCleanup(now time.Time) {
	if l.config.CleanupInterval <= 0 || now.Sub(l.lastCleanup) < l.config.CleanupInterval {
		return
	}
	for k, a := range l.accounts {
		if now.Sub(a.lastSeen) >= l.config.CleanupInterval {
			delete(l.accounts, k)
		}
	}
	l.lastCleanup = now
}
