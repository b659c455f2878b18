// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Payment statuses.
const (
	PaymentPending  = "pending"
	PaymentVerified = "verified"
	PaymentFailed   = "failed"
	PaymentNone     = "no_payment"
)

// ContributionAmount is the fixed contribution in US dollars.
const ContributionAmount = 1000.00

// PaymentMethod is one accepted way to pay the contribution.
type PaymentMethod struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	ProcessingTime string `json:"processing_time"`
	Icon           string `json:"icon"`
}

// PaymentMethods is the response of GET /api/payment/methods.
type PaymentMethods struct {
	Methods []PaymentMethod `json:"methods"`
}

// Has reports whether id names one of the methods.
func (p *PaymentMethods) Has(id string) bool {
	if p == nil {
		return false
	}
	for _, m := range p.Methods {
		if m.ID == id {
			return true
		}
	}
	return false
}

// PaymentContact asks staff to get in touch about the contribution.
type PaymentContact struct {
	LegacyToken   string `json:"legacy_token"`
	ContactEmail  string `json:"contact_email"`
	PaymentMethod string `json:"payment_method"`
}

// PaymentContactResult confirms a contact request.
type PaymentContactResult struct {
	Message              string `json:"message"`
	Status               string `json:"status"`
	NextSteps            string `json:"next_steps"`
	EstimatedContactTime string `json:"estimated_contact_time"`
}

// PaymentStatus is the payment state of one Legacy Pass.
type PaymentStatus struct {
	PaymentID         string     `json:"payment_id"`
	Status            string     `json:"status"`
	IsVerified        bool       `json:"is_verified"`
	VerifiedAt        *Timestamp `json:"verified_at,omitempty"`
	CanAccessFullPass bool       `json:"can_access_full_pass"`
	Message           string     `json:"message"`
}

// Payment is a stored payment record.
type Payment struct {
	ID            string    `json:"id"`
	MemberID      string    `json:"member_id"`
	LegacyPassID  string    `json:"legacy_pass_id"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	ContactEmail  string    `json:"contact_email"`
	Status        string    `json:"status"`
	CreatedAt     Timestamp `json:"created_at"`
}

// PaymentVerify is the admin request body that confirms a payment.
type PaymentVerify struct {
	PaymentID  string `json:"payment_id"`
	VerifiedBy string `json:"verified_by"`
	Notes      string `json:"notes,omitempty"`
}

// PaymentVerifyResult is returned after a payment is verified.
type PaymentVerifyResult struct {
	Message               string  `json:"message"`
	Payment               Payment `json:"payment"`
	FullPassAccessGranted bool    `json:"full_pass_access_granted"`
}

// PaymentMemberRef is the member summary embedded in pending payments.
type PaymentMemberRef struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Tier  string `json:"tier"`
}

// PendingPayment is one row of GET /api/payment/admin/pending.
type PendingPayment struct {
	PaymentID     string           `json:"payment_id"`
	Member        PaymentMemberRef `json:"member"`
	PassNumber    string           `json:"pass_number,omitempty"`
	Amount        float64          `json:"amount"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	ContactEmail  string           `json:"contact_email"`
	SubmittedAt   string           `json:"submitted_at"`
	DaysPending   int              `json:"days_pending"`
}

// PaymentRecord is one row of GET /api/payment/admin/all.
type PaymentRecord struct {
	PaymentID     string  `json:"payment_id"`
	Status        string  `json:"status"`
	MemberName    string  `json:"member_name"`
	MemberEmail   string  `json:"member_email"`
	PassNumber    string  `json:"pass_number,omitempty"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	ContactEmail  string  `json:"contact_email"`
	SubmittedAt   string  `json:"submitted_at"`
	VerifiedAt    string  `json:"verified_at,omitempty"`
	VerifiedBy    string  `json:"verified_by,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}
