// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import "context"

// CatalogWarmupJob is the name of the catalog refresh job.
const CatalogWarmupJob = "catalog-warmup"

// Warmer refreshes cached data.
type Warmer interface {
	Warm(ctx context.Context) error
}

// RegisterCatalogWarmup schedules w every five minutes. It does not run w
// immediately; call TriggerNow for that.
func (s *Scheduler) RegisterCatalogWarmup(w Warmer) error {
	return s.Register(CatalogWarmupJob,
		"Refresh the current event and payment methods cache",
		WarmCatalogSchedule, w.Warm)
}
