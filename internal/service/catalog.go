// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds portal logic that sits between handlers and the
// Inner Circle API.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/innercircle-portal/internal/apiclient"
	"github.com/olegiv/innercircle-portal/internal/cache"
	"github.com/olegiv/innercircle-portal/internal/model"
)

// Cache keys for catalog data. All of them start with keyPrefix.
const (
	keyPrefix         = "catalog:"
	KeyCurrentEvent   = keyPrefix + "event:current"
	KeyPaymentMethods = keyPrefix + "payment:methods"
)

// CatalogAPI is the part of the API client the catalog reads from.
type CatalogAPI interface {
	CurrentEvent(ctx context.Context) (*model.EventTeaser, error)
	PaymentMethods(ctx context.Context) (*model.PaymentMethods, error)
}

// currentEvent wraps the teaser so "no active event" can be cached too.
type currentEvent struct {
	Event *model.EventTeaser `json:"event"`
}

// Catalog serves data that is the same for every member.
type Catalog struct {
	api     CatalogAPI
	events  *cache.TypedCache[currentEvent]
	methods *cache.TypedCache[model.PaymentMethods]
	store   cache.Cacher
	logger  *slog.Logger
}

// NewCatalog creates a Catalog over store with entries living for ttl.
func NewCatalog(api CatalogAPI, store cache.Cacher, ttl time.Duration, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		api:     api,
		events:  cache.NewTypedCache[currentEvent](store, ttl),
		methods: cache.NewTypedCache[model.PaymentMethods](store, ttl),
		store:   store,
		logger:  logger,
	}
}

// CurrentEvent returns the featured event. found is false when no event is
// active; that answer is cached like any other.
func (c *Catalog) CurrentEvent(ctx context.Context) (ev *model.EventTeaser, found bool, err error) {
	v, err := c.events.GetOrSet(ctx, KeyCurrentEvent, c.loadEvent)
	if err != nil {
		return nil, false, err
	}
	return v.Event, !v.Event.IsZero(), nil
}

// PaymentMethods returns the accepted payment methods.
func (c *Catalog) PaymentMethods(ctx context.Context) (*model.PaymentMethods, error) {
	v, err := c.methods.GetOrSet(ctx, KeyPaymentMethods, c.loadMethods)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Warm reloads every catalog entry from the API. Entries that fail to load
// keep their previous value.
func (c *Catalog) Warm(ctx context.Context) error {
	var errs []error
	if _, err := c.events.Refresh(ctx, KeyCurrentEvent, c.loadEvent); err != nil {
		errs = append(errs, fmt.Errorf("current event: %w", err))
	}
	if _, err := c.methods.Refresh(ctx, KeyPaymentMethods, c.loadMethods); err != nil {
		errs = append(errs, fmt.Errorf("payment methods: %w", err))
	}
	return errors.Join(errs...)
}

// Invalidate drops all catalog entries.
func (c *Catalog) Invalidate(ctx context.Context) error {
	if err := c.store.DeleteByPrefix(ctx, keyPrefix); err != nil {
		return fmt.Errorf("invalidating catalog: %w", err)
	}
	return nil
}

func (c *Catalog) loadEvent(ctx context.Context) (currentEvent, error) {
	ev, found, err := apiclient.Optional(c.api.CurrentEvent(ctx))
	if err != nil {
		return currentEvent{}, err
	}
	if !found {
		c.logger.Debug("no active event")
		return currentEvent{}, nil
	}
	return currentEvent{Event: ev}, nil
}

func (c *Catalog) loadMethods(ctx context.Context) (model.PaymentMethods, error) {
	m, err := c.api.PaymentMethods(ctx)
	if err != nil {
		return model.PaymentMethods{}, err
	}
	return *m, nil
}
