// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the portal's view of the Inner Circle API resources:
// members, the featured event, RSVPs, payments, Legacy Passes and admin reports.
package model

import "strings"

// Membership tiers.
const (
	TierInnerCircle    = "inner_circle"
	TierVIP            = "vip"
	TierFoundingMember = "founding_member"
	TierAdmin          = "admin"
)

// Tiers lists the membership tiers in display order.
var Tiers = []string{TierInnerCircle, TierVIP, TierFoundingMember, TierAdmin}

// IsValidTier reports whether tier is a known membership tier.
func IsValidTier(tier string) bool {
	for _, t := range Tiers {
		if t == tier {
			return true
		}
	}
	return false
}

// Member is the authenticated member as returned by the API.
// The portal never edits a Member; it only replaces it with a fresher copy.
type Member struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	PhoneNumber      string    `json:"phone_number,omitempty"`
	MembershipTier   string    `json:"membership_tier"`
	MembershipNumber string    `json:"membership_number,omitempty"`
	IsActive         bool      `json:"is_active"`
	HasLoggedIn      bool      `json:"has_logged_in"`
	CreatedAt        Timestamp `json:"created_at"`
}

// FirstName returns the first word of the member's full name.
func (m *Member) FirstName() string {
	if m == nil {
		return ""
	}
	name := strings.TrimSpace(m.FullName)
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}

// HasTier reports whether the member belongs to the given tier.
func (m *Member) HasTier(tier string) bool {
	return m != nil && m.MembershipTier == tier
}

// MemberCreate is the admin request body for adding a member to the list.
type MemberCreate struct {
	Email            string `json:"email"`
	FullName         string `json:"full_name"`
	PhoneNumber      string `json:"phone_number,omitempty"`
	MembershipTier   string `json:"membership_tier"`
	MembershipNumber string `json:"membership_number,omitempty"`
}

// AccessRequest is the request body of the passwordless access endpoint.
type AccessRequest struct {
	Email string `json:"email"`
}

// TokenResponse is returned by the access endpoint on success.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Member      Member `json:"member"`
}
