// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/innercircle-portal/internal/model"
)

// ProfileKey is the store key of the cached member profile.
const ProfileKey = "member_data"

// ProfileStore caches the member profile between requests.
type ProfileStore interface {
	Profile(ctx context.Context) (*model.Member, bool)
	SetProfile(ctx context.Context, m *model.Member) error
	ClearProfile(ctx context.Context)
	// Renew rotates the store's own session identifier.
	Renew(ctx context.Context) error
}

// SCSProfileStore keeps the profile as JSON in an scs session. The request
// context must have passed through the session manager's LoadAndSave.
type SCSProfileStore struct {
	sm *scs.SessionManager
}

// NewSCSProfileStore wraps sm.
func NewSCSProfileStore(sm *scs.SessionManager) *SCSProfileStore {
	return &SCSProfileStore{sm: sm}
}

// Profile returns the cached member. A corrupt record reads as absent.
func (s *SCSProfileStore) Profile(ctx context.Context) (*model.Member, bool) {
	raw := s.sm.GetBytes(ctx, ProfileKey)
	if len(raw) == 0 {
		return nil, false
	}
	var m model.Member
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return &m, true
}

// SetProfile overwrites the cached member.
func (s *SCSProfileStore) SetProfile(ctx context.Context, m *model.Member) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	s.sm.Put(ctx, ProfileKey, raw)
	return nil
}

// ClearProfile removes the cached member.
func (s *SCSProfileStore) ClearProfile(ctx context.Context) {
	s.sm.Remove(ctx, ProfileKey)
}

// Renew rotates the scs session token.
func (s *SCSProfileStore) Renew(ctx context.Context) error {
	return s.sm.RenewToken(ctx)
}
