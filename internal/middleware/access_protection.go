// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// AccessProtection throttles the access form. Requests are limited per IP,
// and an email that keeps being refused is locked out with exponential
// backoff, which slows down probing of the member list.
type AccessProtection struct {
	ipLimiters *limiterCache[string]

	failedAttempts map[string]*accessAttempt
	attemptsMu     sync.RWMutex

	maxFailedAttempts int
	lockoutDuration   time.Duration
	attemptWindow     time.Duration

	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

type accessAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// AccessProtectionConfig holds configuration for access protection.
type AccessProtectionConfig struct {
	// IPRateLimit is requests per second per IP.
	IPRateLimit float64
	IPBurst     int
	// MaxFailedAttempts refusals within AttemptWindow lock the email.
	MaxFailedAttempts int
	// LockoutDuration doubles with each lockout, capped at 24 hours.
	LockoutDuration time.Duration
	AttemptWindow   time.Duration
}

// DefaultAccessProtectionConfig returns the production defaults.
func DefaultAccessProtectionConfig() AccessProtectionConfig {
	return AccessProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewAccessProtection starts a protection instance and its cleanup loop.
// Call Close to stop the loop.
func NewAccessProtection(cfg AccessProtectionConfig) *AccessProtection {
	def := DefaultAccessProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	ap := &AccessProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		failedAttempts:    make(map[string]*accessAttempt),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
		now:               time.Now,
		stop:              make(chan struct{}),
	}

	go ap.cleanup()

	return ap
}

// Close stops the cleanup loop.
func (ap *AccessProtection) Close() {
	ap.once.Do(func() { close(ap.stop) })
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsLocked reports whether email is locked out and for how long.
func (ap *AccessProtection) IsLocked(email string) (bool, time.Duration) {
	ap.attemptsMu.RLock()
	attempt, exists := ap.failedAttempts[normalizeEmail(email)]
	ap.attemptsMu.RUnlock()

	if !exists {
		return false, 0
	}
	now := ap.now()
	if now.Before(attempt.lockedUntil) {
		return true, attempt.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailure records a refused access request and reports whether the
// email is now locked.
func (ap *AccessProtection) RecordFailure(email string) (bool, time.Duration) {
	key := normalizeEmail(email)

	ap.attemptsMu.Lock()
	defer ap.attemptsMu.Unlock()

	now := ap.now()
	attempt, exists := ap.failedAttempts[key]
	if !exists {
		ap.failedAttempts[key] = &accessAttempt{count: 1, firstFailed: now}
		return false, 0
	}

	if now.Sub(attempt.firstFailed) > ap.attemptWindow {
		attempt.count = 1
		attempt.firstFailed = now
		return false, 0
	}

	attempt.count++
	if attempt.count < ap.maxFailedAttempts {
		return false, 0
	}

	lockDuration := ap.lockoutDuration
	for i := 0; i < attempt.lockouts; i++ {
		lockDuration *= 2
		if lockDuration > 24*time.Hour {
			lockDuration = 24 * time.Hour
			break
		}
	}

	attempt.lockedUntil = now.Add(lockDuration)
	attempt.lockouts++
	attempt.count = 0

	slog.Warn("access locked after repeated refusals",
		"email", key,
		"lockouts", attempt.lockouts,
		"duration", lockDuration,
	)
	return true, lockDuration
}

// RecordSuccess forgets the failures of email.
func (ap *AccessProtection) RecordSuccess(email string) {
	ap.attemptsMu.Lock()
	defer ap.attemptsMu.Unlock()
	delete(ap.failedAttempts, normalizeEmail(email))
}

// RemainingAttempts returns how many refusals are left before a lockout.
func (ap *AccessProtection) RemainingAttempts(email string) int {
	ap.attemptsMu.RLock()
	attempt, exists := ap.failedAttempts[normalizeEmail(email)]
	ap.attemptsMu.RUnlock()

	if !exists || ap.now().Sub(attempt.firstFailed) > ap.attemptWindow {
		return ap.maxFailedAttempts
	}
	return max(ap.maxFailedAttempts-attempt.count, 0)
}

func (ap *AccessProtection) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ap.cleanupStaleEntries()
		case <-ap.stop:
			return
		}
	}
}

func (ap *AccessProtection) cleanupStaleEntries() {
	now := ap.now()

	if ap.ipLimiters.clearIfExceeds(10000) {
		slog.Info("cleared access rate limiters due to size")
	}

	ap.attemptsMu.Lock()
	for email, attempt := range ap.failedAttempts {
		if now.After(attempt.lockedUntil) && now.Sub(attempt.firstFailed) > ap.attemptWindow {
			delete(ap.failedAttempts, email)
		}
	}
	ap.attemptsMu.Unlock()
}

// Middleware rate limits POST requests per IP. Other methods pass through.
func (ap *AccessProtection) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if !ap.ipLimiters.get(ip).Allow() {
			slog.WarnContext(r.Context(), "access rate limit exceeded", "ip", ip)
			http.Error(w, "Too many access requests. Please wait a moment and try again.", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
