// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// DashboardOverview holds the headline counts of the admin dashboard.
type DashboardOverview struct {
	TotalMembers int `json:"total_members"`
	TotalEvents  int `json:"total_events"`
	ActiveEvents int `json:"active_events"`
}

// DashboardEvent identifies the current event on the admin dashboard.
type DashboardEvent struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// RSVPStats counts answers for the current event.
type RSVPStats struct {
	Total    int `json:"total"`
	Accepted int `json:"accepted"`
	Declined int `json:"declined"`
	Pending  int `json:"pending"`
}

// PaymentStats counts payments by status.
type PaymentStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Verified int `json:"verified"`
	Failed   int `json:"failed"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	Type       string `json:"type"`
	MemberName string `json:"member_name"`
	EventName  string `json:"event_name"`
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
}

// AdminRef names the admin who loaded the dashboard.
type AdminRef struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Dashboard is the response of GET /api/admin/dashboard.
type Dashboard struct {
	Overview       DashboardOverview `json:"overview"`
	CurrentEvent   DashboardEvent    `json:"current_event"`
	RSVPStats      RSVPStats         `json:"rsvp_stats"`
	PaymentStats   PaymentStats      `json:"payment_stats"`
	RecentActivity []Activity        `json:"recent_activity"`
	Admin          AdminRef          `json:"admin"`
}

// RSVPRow is one row of GET /api/admin/rsvps.
type RSVPRow struct {
	RSVPID string           `json:"rsvp_id"`
	Member PaymentMemberRef `json:"member"`
	Event  struct {
		Title string `json:"title"`
		Date  string `json:"date"`
	} `json:"event"`
	Status          string `json:"status"`
	ResponseMessage string `json:"response_message,omitempty"`
	RespondedAt     string `json:"responded_at,omitempty"`
}

// RSVPSummary is the response of GET /api/admin/rsvps/summary.
type RSVPSummary struct {
	TotalResponses int     `json:"total_responses"`
	Accepted       int     `json:"accepted"`
	Declined       int     `json:"declined"`
	AcceptanceRate float64 `json:"acceptance_rate"`
	DeclineRate    float64 `json:"decline_rate"`
}
