// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// RSVP statuses.
const (
	RSVPAccepted = "accepted"
	RSVPDeclined = "declined"
)

// RSVPCreate is the request body for answering the invitation.
type RSVPCreate struct {
	EventID         string `json:"event_id"`
	Status          string `json:"status"`
	ResponseMessage string `json:"response_message,omitempty"`
}

// RSVP is a stored invitation answer.
type RSVP struct {
	ID              string     `json:"id"`
	MemberID        string     `json:"member_id"`
	EventID         string     `json:"event_id"`
	Status          string     `json:"status"`
	ResponseMessage string     `json:"response_message,omitempty"`
	RespondedAt     *Timestamp `json:"responded_at,omitempty"`
	CreatedAt       Timestamp  `json:"created_at"`
}

// RSVPResult is returned after answering. Accepted answers carry the
// Legacy Pass token and payment details; declined answers carry the
// appreciation message.
type RSVPResult struct {
	Status               string  `json:"status"`
	Message              string  `json:"message"`
	RSVP                 RSVP    `json:"rsvp"`
	LegacyToken          string  `json:"legacy_token,omitempty"`
	PassNumber           string  `json:"pass_number,omitempty"`
	GiftTier             string  `json:"gift_tier,omitempty"`
	AccessLevel          string  `json:"access_level,omitempty"`
	PaymentRequired      bool    `json:"payment_required,omitempty"`
	PaymentAmount        float64 `json:"payment_amount,omitempty"`
	NextSteps            string  `json:"next_steps,omitempty"`
	AppreciationMessage  string  `json:"appreciation_message,omitempty"`
	PassPreviewAvailable bool    `json:"pass_preview_available,omitempty"`
}

// Accepted reports whether the answer was an acceptance.
func (r *RSVPResult) Accepted() bool {
	return r != nil && r.RSVP.Status == RSVPAccepted
}

// RSVPStatus is the member's view of the featured event invitation,
// as returned by GET /api/rsvp/me.
type RSVPStatus struct {
	HasActiveEvent    bool   `json:"has_active_event"`
	EventID           string `json:"event_id,omitempty"`
	EventTitle        string `json:"event_title,omitempty"`
	EventDate         string `json:"event_date,omitempty"`
	HasRSVP           bool   `json:"has_rsvp"`
	RSVPStatus        string `json:"rsvp_status,omitempty"`
	RespondedAt       string `json:"responded_at,omitempty"`
	Message           string `json:"message,omitempty"`
	LegacyPassToken   string `json:"legacy_pass_token,omitempty"`
	PassNumber        string `json:"pass_number,omitempty"`
	AccessLevel       string `json:"access_level,omitempty"`
	GiftTier          string `json:"gift_tier,omitempty"`
	PaymentStatus     string `json:"payment_status,omitempty"`
	PaymentRequired   bool   `json:"payment_required,omitempty"`
	CanAccessFullPass bool   `json:"can_access_full_pass,omitempty"`
}

// Accepted reports whether the member accepted the invitation.
func (s *RSVPStatus) Accepted() bool {
	return s != nil && s.HasRSVP && s.RSVPStatus == RSVPAccepted
}

// HasPass reports whether a Legacy Pass token has been issued.
func (s *RSVPStatus) HasPass() bool {
	return s != nil && s.LegacyPassToken != ""
}
