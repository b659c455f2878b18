// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/olegiv/innercircle-portal/internal/model"
)

// Auth

// RequestAccess exchanges a member email for an access token. Only the
// email is sent.
func (c *Client) RequestAccess(ctx context.Context, email string) (*model.TokenResponse, error) {
	var out model.TokenResponse
	ep := endpoint{"auth.request_access", http.MethodPost, "/api/auth/request-access"}
	if err := c.do(ctx, ep, model.AccessRequest{Email: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the member owning the context's token.
func (c *Client) Me(ctx context.Context) (*model.Member, error) {
	var out model.Member
	if err := c.do(ctx, endpoint{"auth.me", http.MethodGet, "/api/auth/me"}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the API the member signed out.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, endpoint{"auth.logout", http.MethodPost, "/api/auth/logout"}, nil, nil)
}

// Events

// CurrentEvent returns the featured event teaser. NotFound means no event is active.
func (c *Client) CurrentEvent(ctx context.Context) (*model.EventTeaser, error) {
	var out model.EventTeaser
	if err := c.do(ctx, endpoint{"events.current", http.MethodGet, "/api/events/current"}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Event returns the full event. Inactive events come back as KindForbidden.
func (c *Client) Event(ctx context.Context, id string) (*model.EventDetail, error) {
	var out model.EventDetail
	ep := endpoint{"events.detail", http.MethodGet, "/api/events/" + url.PathEscape(id)}
	if err := c.do(ctx, ep, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RSVP

// MyRSVP returns the member's invitation state. found is false when the API
// reports no record at all.
func (c *Client) MyRSVP(ctx context.Context) (status *model.RSVPStatus, found bool, err error) {
	var out model.RSVPStatus
	err = c.do(ctx, endpoint{"rsvp.me", http.MethodGet, "/api/rsvp/me"}, nil, &out)
	return Optional(&out, err)
}

// SubmitRSVP answers the invitation.
func (c *Client) SubmitRSVP(ctx context.Context, in model.RSVPCreate) (*model.RSVPResult, error) {
	var out model.RSVPResult
	if err := c.do(ctx, endpoint{"rsvp.create", http.MethodPost, "/api/rsvp/"}, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Legacy Pass

// PassPreview returns the partial pass shown before payment verification.
func (c *Client) PassPreview(ctx context.Context, token string) (*model.PassPreview, error) {
	var out model.PassPreview
	ep := endpoint{"legacy_pass.preview", http.MethodGet, "/api/legacy-pass/preview/" + url.PathEscape(token)}
	if err := c.do(ctx, ep, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pass returns the full pass. The API refuses it until payment is verified.
func (c *Client) Pass(ctx context.Context, token string) (*model.LegacyPass, error) {
	var out model.LegacyPass
	ep := endpoint{"legacy_pass.full", http.MethodGet, "/api/legacy-pass/" + url.PathEscape(token)}
	if err := c.do(ctx, ep, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download is a streamed binary response. The caller must close Body.
type Download struct {
	ContentType string
	Filename    string
	Size        int64
	Body        io.ReadCloser
}

// DownloadPass streams the pass document.
func (c *Client) DownloadPass(ctx context.Context, token string) (*Download, error) {
	ep := endpoint{"legacy_pass.download", http.MethodGet, "/api/legacy-pass/" + url.PathEscape(token) + "/download"}
	resp, err := c.send(ctx, ep, nil)
	if err != nil {
		return nil, err
	}

	d := &Download{
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
		Body:        resp.Body,
	}
	if d.ContentType == "" {
		d.ContentType = "application/octet-stream"
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		d.Filename = params["filename"]
	}
	return d, nil
}

// Payment

// PaymentMethods lists the accepted ways to pay.
func (c *Client) PaymentMethods(ctx context.Context) (*model.PaymentMethods, error) {
	var out model.PaymentMethods
	if err := c.do(ctx, endpoint{"payment.methods", http.MethodGet, "/api/payment/methods"}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestPaymentContact asks staff to contact the member about the contribution.
func (c *Client) RequestPaymentContact(ctx context.Context, in model.PaymentContact) (*model.PaymentContactResult, error) {
	var out model.PaymentContactResult
	if err := c.do(ctx, endpoint{"payment.contact", http.MethodPost, "/api/payment/contact"}, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PaymentStatus returns the payment state of a pass. found is false when no
// payment has been requested yet.
func (c *Client) PaymentStatus(ctx context.Context, token string) (status *model.PaymentStatus, found bool, err error) {
	var out model.PaymentStatus
	ep := endpoint{"payment.status", http.MethodGet, "/api/payment/status/" + url.PathEscape(token)}
	err = c.do(ctx, ep, nil, &out)
	return Optional(&out, err)
}

// VerifyPayment marks a payment as received. Admin only.
func (c *Client) VerifyPayment(ctx context.Context, in model.PaymentVerify) (*model.PaymentVerifyResult, error) {
	var out model.PaymentVerifyResult
	if err := c.do(ctx, endpoint{"payment.verify", http.MethodPost, "/api/payment/verify"}, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PendingPayments lists payments awaiting verification. Admin only.
func (c *Client) PendingPayments(ctx context.Context) ([]model.PendingPayment, error) {
	var out []model.PendingPayment
	if err := c.do(ctx, endpoint{"payment.admin_pending", http.MethodGet, "/api/payment/admin/pending"}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AllPayments lists every payment, optionally filtered by status. Admin only.
func (c *Client) AllPayments(ctx context.Context, status string) ([]model.PaymentRecord, error) {
	path := "/api/payment/admin/all"
	if status != "" {
		path += "?" + url.Values{"status_filter": {status}}.Encode()
	}
	var out []model.PaymentRecord
	if err := c.do(ctx, endpoint{"payment.admin_all", http.MethodGet, path}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Admin

// Dashboard returns the admin overview.
func (c *Client) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	var out model.Dashboard
	if err := c.do(ctx, endpoint{"admin.dashboard", http.MethodGet, "/api/admin/dashboard"}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MemberFilter narrows the admin member list.
type MemberFilter struct {
	Tier string
	// IncludeInactive lists deactivated members too.
	IncludeInactive bool
	Skip            int
	Limit           int
}

func (f MemberFilter) query() string {
	v := url.Values{}
	if f.Tier != "" {
		v.Set("tier", f.Tier)
	}
	if f.IncludeInactive {
		v.Set("active_only", "false")
	}
	if f.Skip > 0 {
		v.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// Members lists members. Admin only.
func (c *Client) Members(ctx context.Context, f MemberFilter) ([]model.Member, error) {
	var out []model.Member
	if err := c.do(ctx, endpoint{"admin.members", http.MethodGet, "/api/admin/members" + f.query()}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMember adds a member to the list. Admin only.
func (c *Client) CreateMember(ctx context.Context, in model.MemberCreate) (*model.Member, error) {
	var out model.Member
	if err := c.do(ctx, endpoint{"admin.create_member", http.MethodPost, "/api/admin/members"}, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RSVPs lists invitation answers, optionally filtered by status. Admin only.
func (c *Client) RSVPs(ctx context.Context, status string) ([]model.RSVPRow, error) {
	path := "/api/admin/rsvps"
	if status != "" {
		path += "?" + url.Values{"status_filter": {status}}.Encode()
	}
	var out []model.RSVPRow
	if err := c.do(ctx, endpoint{"admin.rsvps", http.MethodGet, path}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RSVPSummary returns answer counts and rates. Admin only.
func (c *Client) RSVPSummary(ctx context.Context) (*model.RSVPSummary, error) {
	var out model.RSVPSummary
	if err := c.do(ctx, endpoint{"admin.rsvp_summary", http.MethodGet, "/api/admin/rsvps/summary"}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks that the API answers at all. Any HTTP response counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.CurrentEvent(ctx)
	if err == nil {
		return nil
	}
	if k, ok := KindOf(err); ok && k != KindNetwork && k != KindRequest {
		return nil
	}
	return err
}
