// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// PassEventRef is the event summary embedded in a pass preview.
type PassEventRef struct {
	Name  string `json:"name"`
	Date  string `json:"date"`
	Time  string `json:"time,omitempty"`
	Venue string `json:"venue,omitempty"`
}

// PassPayment is the payment box shown on a pass preview.
type PassPayment struct {
	Required   bool    `json:"required"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Status     string  `json:"status"`
	IsVerified bool    `json:"is_verified"`
}

// PassImages holds image URLs relative to the API host.
type PassImages struct {
	Front    string `json:"front,omitempty"`
	Back     string `json:"back,omitempty"`
	FrontURL string `json:"front_url,omitempty"`
	BackURL  string `json:"back_url,omitempty"`
}

// PassPreview is the partial Legacy Pass shown before payment is verified.
type PassPreview struct {
	Token             string       `json:"token"`
	PassNumberPartial string       `json:"pass_number_partial"`
	AccessLevel       string       `json:"access_level"`
	GiftTier          string       `json:"gift_tier"`
	Event             PassEventRef `json:"event"`
	BenefitsPreview   []string     `json:"benefits_preview"`
	Payment           PassPayment  `json:"payment"`
	BlurredImages     PassImages   `json:"blurred_images"`
	Message           string       `json:"message"`
	CanAccessFull     bool         `json:"can_access_full"`
}

// PassMember is the member block of a full pass.
type PassMember struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	MembershipTier   string `json:"membership_tier"`
	MembershipNumber string `json:"membership_number,omitempty"`
}

// PassEvent is the event block of a full pass.
type PassEvent struct {
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle,omitempty"`
	Date         string `json:"date"`
	Time         string `json:"time,omitempty"`
	VenueName    string `json:"venue_name,omitempty"`
	VenueAddress string `json:"venue_address,omitempty"`
	DressCode    string `json:"dress_code,omitempty"`
}

// PassAccess describes what the pass grants.
type PassAccess struct {
	Level           string `json:"level"`
	GiftTier        string `json:"gift_tier"`
	SeatingCategory string `json:"seating_category"`
}

// PassQRCode is the entry QR code. The image itself is generated remotely.
type PassQRCode struct {
	Data         string `json:"data"`
	ImageURL     string `json:"image_url,omitempty"`
	Instructions string `json:"instructions"`
}

// PassGifts lists the gifts of the pass's gift tier.
type PassGifts struct {
	CompleteList []string            `json:"complete_list"`
	ByCategory   map[string][]string `json:"by_category"`
	TotalItems   int                 `json:"total_items"`
}

// LegacyPass is the full pass, available once payment is verified.
type LegacyPass struct {
	Token          string         `json:"token"`
	PassNumber     string         `json:"pass_number"`
	Member         PassMember     `json:"member"`
	Event          PassEvent      `json:"event"`
	Access         PassAccess     `json:"access"`
	QRCode         PassQRCode     `json:"qr_code"`
	Images         PassImages     `json:"images"`
	Gifts          PassGifts      `json:"gifts"`
	Amenities      map[string]any `json:"amenities,omitempty"`
	SpecialPerks   []string       `json:"special_perks"`
	Message        string         `json:"message"`
	IsTransferable bool           `json:"is_transferable"`
	ValidUntil     string         `json:"valid_until"`
}
