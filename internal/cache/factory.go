// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
	"net/url"
	"time"
)

// Backend names reported by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and sizes the cache backend.
type Config struct {
	// RedisURL enables the Redis backend when set.
	RedisURL        string
	Prefix          string
	DefaultTTL      time.Duration
	MaxItems        int
	CleanupInterval time.Duration
}

// Result describes the cache New produced.
type Result struct {
	Cache    Cacher
	Backend  string
	Fallback bool
}

// New returns a Redis cache when RedisURL is set and reachable, otherwise a
// memory cache. An unreachable Redis is logged and falls back to memory.
func New(ctx context.Context, cfg Config, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.RedisURL != "" {
		opts := DefaultRedisOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.DefaultTTL > 0 {
			opts.DefaultTTL = cfg.DefaultTTL
		}

		rc, err := NewRedisCache(ctx, opts)
		if err == nil {
			logger.Info("cache backend ready", "backend", BackendRedis, "url", maskRedisURL(cfg.RedisURL))
			return Result{Cache: rc, Backend: BackendRedis}
		}
		logger.Warn("redis unavailable, using memory cache",
			"url", maskRedisURL(cfg.RedisURL), "error", err)
		return Result{Cache: newMemory(cfg), Backend: BackendMemory, Fallback: true}
	}

	logger.Info("cache backend ready", "backend", BackendMemory)
	return Result{Cache: newMemory(cfg), Backend: BackendMemory}
}

func newMemory(cfg Config) *MemoryCache {
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxItems:        cfg.MaxItems,
		CleanupInterval: cleanup,
	})
}

// maskRedisURL hides credentials before a URL reaches the logs.
func maskRedisURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = nil
	return u.Scheme + "://***@" + u.Host + u.Path
}
