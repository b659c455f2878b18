// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/innercircle-portal/internal/apiclient"
	"github.com/olegiv/innercircle-portal/internal/cache"
	"github.com/olegiv/innercircle-portal/internal/model"
)

type fakeCatalogAPI struct {
	eventCalls  atomic.Int32
	methodCalls atomic.Int32
	event       *model.EventTeaser
	eventErr    error
	methodsErr  error
}

func (f *fakeCatalogAPI) CurrentEvent(context.Context) (*model.EventTeaser, error) {
	f.eventCalls.Add(1)
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	return f.event, nil
}

func (f *fakeCatalogAPI) PaymentMethods(context.Context) (*model.PaymentMethods, error) {
	f.methodCalls.Add(1)
	if f.methodsErr != nil {
		return nil, f.methodsErr
	}
	return &model.PaymentMethods{Methods: []model.PaymentMethod{{ID: "zelle", Name: "Zelle"}}}, nil
}

func newTestCatalog(t *testing.T, api CatalogAPI) *Catalog {
	t.Helper()
	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mem.Close() })
	return NewCatalog(api, mem, time.Minute, nil)
}

func TestCatalog_CurrentEventCached(t *testing.T) {
	api := &fakeCatalogAPI{event: &model.EventTeaser{ID: "e1", Title: "The Legacy Evening"}}
	c := newTestCatalog(t, api)
	ctx := context.Background()

	for range 3 {
		ev, found, err := c.CurrentEvent(ctx)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "The Legacy Evening", ev.Title)
	}
	assert.Equal(t, int32(1), api.eventCalls.Load())
}

func TestCatalog_NoActiveEventIsCachedAsAbsent(t *testing.T) {
	api := &fakeCatalogAPI{eventErr: &apiclient.Error{Kind: apiclient.KindNotFound, Status: http.StatusNotFound}}
	c := newTestCatalog(t, api)
	ctx := context.Background()

	for range 2 {
		ev, found, err := c.CurrentEvent(ctx)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, ev)
	}
	assert.Equal(t, int32(1), api.eventCalls.Load())
}

func TestCatalog_ErrorsAreNotCached(t *testing.T) {
	api := &fakeCatalogAPI{eventErr: &apiclient.Error{Kind: apiclient.KindServer, Status: http.StatusInternalServerError}}
	c := newTestCatalog(t, api)
	ctx := context.Background()

	_, _, err := c.CurrentEvent(ctx)
	require.Error(t, err)
	assert.True(t, apiclient.IsKind(err, apiclient.KindServer))

	api.eventErr = nil
	api.event = &model.EventTeaser{ID: "e2"}
	_, found, err := c.CurrentEvent(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int32(2), api.eventCalls.Load())
}

func TestCatalog_PaymentMethods(t *testing.T) {
	api := &fakeCatalogAPI{}
	c := newTestCatalog(t, api)
	ctx := context.Background()

	m, err := c.PaymentMethods(ctx)
	require.NoError(t, err)
	assert.True(t, m.Has("zelle"))
	_, _ = c.PaymentMethods(ctx)
	assert.Equal(t, int32(1), api.methodCalls.Load())
}

func TestCatalog_WarmAndInvalidate(t *testing.T) {
	api := &fakeCatalogAPI{event: &model.EventTeaser{ID: "e1"}}
	c := newTestCatalog(t, api)
	ctx := context.Background()

	require.NoError(t, c.Warm(ctx))
	require.NoError(t, c.Warm(ctx))
	assert.Equal(t, int32(2), api.eventCalls.Load())

	_, _, _ = c.CurrentEvent(ctx)
	assert.Equal(t, int32(2), api.eventCalls.Load(), "warm entries serve reads")

	require.NoError(t, c.Invalidate(ctx))
	_, _, _ = c.CurrentEvent(ctx)
	assert.Equal(t, int32(3), api.eventCalls.Load())
}

func TestCatalog_InvalidateKeepsOtherKeys(t *testing.T) {
	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mem.Close() })
	c := NewCatalog(&fakeCatalogAPI{event: &model.EventTeaser{ID: "e1"}}, mem, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, c.Warm(ctx))
	require.NoError(t, mem.Set(ctx, "unrelated", []byte("x"), 0))

	require.NoError(t, c.Invalidate(ctx))

	_, err := mem.Get(ctx, KeyCurrentEvent)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	_, err = mem.Get(ctx, KeyPaymentMethods)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	_, err = mem.Get(ctx, "unrelated")
	assert.NoError(t, err)
}

func TestCatalog_WarmReportsEachFailure(t *testing.T) {
	api := &fakeCatalogAPI{
		eventErr:   errors.New("event down"),
		methodsErr: errors.New("methods down"),
	}
	c := newTestCatalog(t, api)

	err := c.Warm(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "current event")
	assert.Contains(t, err.Error(), "payment methods")
}
