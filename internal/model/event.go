// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// EventTeaser is the public summary of the featured event.
type EventTeaser struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle,omitempty"`
	EventDate Timestamp `json:"event_date"`
	Theme     string    `json:"theme,omitempty"`
}

// IsZero reports whether the teaser carries no event.
func (e *EventTeaser) IsZero() bool {
	return e == nil || e.ID == ""
}

// EventDetail is the full event as shown to signed-in members.
// Description is markdown.
type EventDetail struct {
	EventTeaser
	Description         string         `json:"description"`
	EventTime           string         `json:"event_time"`
	VenueName           string         `json:"venue_name"`
	VenueAddress        string         `json:"venue_address"`
	DressCode           string         `json:"dress_code,omitempty"`
	IsActive            bool           `json:"is_active"`
	Schedule            map[string]any `json:"schedule,omitempty"`
	Amenities           map[string]any `json:"amenities,omitempty"`
	SpecialInstructions string         `json:"special_instructions,omitempty"`
}
