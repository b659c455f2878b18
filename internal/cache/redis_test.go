// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func newTestRedis(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("INNER_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: INNER_TEST_REDIS_URL not set")
	}

	opts := DefaultRedisOptions()
	opts.URL = url
	opts.Prefix = "innercircle-test:" + t.Name() + ":"
	c, err := NewRedisCache(context.Background(), opts)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() {
		_ = c.DeleteByPrefix(context.Background(), "")
		_ = c.Close()
	})
	return c
}

func TestRedisCache_Basic(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	_ = c.Delete(ctx, "k")
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Delete err = %v, want ErrCacheMiss", err)
	}
}

func TestRedisCache_DeleteByPrefix(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	_ = c.Set(ctx, "catalog:a", []byte("1"), 0)
	_ = c.Set(ctx, "catalog:b", []byte("2"), 0)
	_ = c.Set(ctx, "keep", []byte("3"), 0)

	if err := c.DeleteByPrefix(ctx, "catalog:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}
	if _, err := c.Get(ctx, "catalog:a"); !errors.Is(err, ErrCacheMiss) {
		t.Error("catalog:a should be gone")
	}
	if _, err := c.Get(ctx, "keep"); err != nil {
		t.Errorf("keep should remain: %v", err)
	}
	if got := c.Stats().Items; got != 1 {
		t.Errorf("Items = %d, want 1", got)
	}
}

func TestRedisCache_Close(t *testing.T) {
	c := newTestRedis(t)
	_ = c.Close()
	if err := c.Ping(context.Background()); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Ping after Close err = %v, want ErrCacheClosed", err)
	}
}

func TestNewRedisCache_Errors(t *testing.T) {
	ctx := context.Background()

	if _, err := NewRedisCache(ctx, RedisOptions{}); err == nil {
		t.Error("expected error for empty URL")
	}
	if _, err := NewRedisCache(ctx, RedisOptions{URL: "not-a-url"}); err == nil {
		t.Error("expected error for invalid URL")
	}
}
