// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/innercircle-portal/internal/apiclient"
	"github.com/olegiv/innercircle-portal/internal/model"
	"github.com/olegiv/innercircle-portal/internal/render"
	"github.com/olegiv/innercircle-portal/internal/session"
	"github.com/olegiv/innercircle-portal/internal/validation"
)

// Admin list settings.
const (
	MembersPerPage         = 50
	MaxVerificationNoteLen = 1000
)

// AdminAPI is the admin part of the API client. The API checks the admin
// role again on every call.
type AdminAPI interface {
	Dashboard(ctx context.Context) (*model.Dashboard, error)
	Members(ctx context.Context, f apiclient.MemberFilter) ([]model.Member, error)
	CreateMember(ctx context.Context, in model.MemberCreate) (*model.Member, error)
	RSVPs(ctx context.Context, status string) ([]model.RSVPRow, error)
	RSVPSummary(ctx context.Context) (*model.RSVPSummary, error)
	PendingPayments(ctx context.Context) ([]model.PendingPayment, error)
	AllPayments(ctx context.Context, status string) ([]model.PaymentRecord, error)
	VerifyPayment(ctx context.Context, in model.PaymentVerify) (*model.PaymentVerifyResult, error)
}

// CatalogRefresher drops and reloads the cached catalog.
type CatalogRefresher interface {
	Invalidate(ctx context.Context) error
	Warm(ctx context.Context) error
}

// AdminHandler serves the admin console.
type AdminHandler struct {
	renderer *render.Renderer
	api      AdminAPI
	catalog  CatalogRefresher
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(renderer *render.Renderer, api AdminAPI, catalog CatalogRefresher) *AdminHandler {
	return &AdminHandler{renderer: renderer, api: api, catalog: catalog}
}

// Dashboard handles GET /admin.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.api.Dashboard(r.Context())
	if err != nil {
		apiFailure(w, r, h.renderer, err, "loading admin dashboard", "")
		return
	}
	renderPage(w, r, h.renderer, http.StatusOK, "admin/dashboard", render.TemplateData{
		Title: "Admin Dashboard",
		Data:  dash,
	})
}

// MembersPage is the data of admin/members.
type MembersPage struct {
	Members         []model.Member
	Tier            string
	IncludeInactive bool
	Pagination      Pagination
}

// Members handles GET /admin/members.
func (h *AdminHandler) Members(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := MembersPage{
		Tier:            q.Get("tier"),
		IncludeInactive: q.Get("inactive") == "1",
		Pagination:      parsePagination(r, MembersPerPage),
	}
	if !model.IsValidTier(page.Tier) {
		page.Tier = ""
	}

	members, err := h.api.Members(r.Context(), apiclient.MemberFilter{
		Tier:            page.Tier,
		IncludeInactive: page.IncludeInactive,
		Skip:            page.Pagination.Skip(),
		Limit:           page.Pagination.Limit(),
	})
	if err != nil {
		apiFailure(w, r, h.renderer, err, "listing members", "")
		return
	}
	page.Members = trim(&page.Pagination, members)

	renderPage(w, r, h.renderer, http.StatusOK, "admin/members", render.TemplateData{
		Title: "Members",
		Data:  page,
	})
}

// MemberFormPage is the data of admin/member_new.
type MemberFormPage struct {
	Input model.MemberCreate
	Form  *validation.Form
	Error string
}

// NewMember handles GET /admin/members/new.
func (h *AdminHandler) NewMember(w http.ResponseWriter, r *http.Request) {
	h.renderMemberForm(w, r, http.StatusOK, MemberFormPage{
		Input: model.MemberCreate{MembershipTier: model.TierInnerCircle},
		Form:  validation.NewForm(),
	})
}

// CreateMember handles POST /admin/members.
func (h *AdminHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	newURL := redirectAdminMembers + RouteSuffixNew
	if !parseFormOrRedirect(w, r, h.renderer, newURL) {
		return
	}

	page := MemberFormPage{
		Input: model.MemberCreate{
			Email:            strings.TrimSpace(r.PostFormValue("email")),
			FullName:         strings.TrimSpace(r.PostFormValue("full_name")),
			PhoneNumber:      strings.TrimSpace(r.PostFormValue("phone_number")),
			MembershipTier:   r.PostFormValue("membership_tier"),
			MembershipNumber: strings.TrimSpace(r.PostFormValue("membership_number")),
		},
		Form: validation.NewForm(),
	}
	in := page.Input

	page.Form.Check("email", validation.Required(in.Email, "Email"))
	page.Form.Check("email", validation.Email(in.Email))
	page.Form.Check("full_name", validation.Required(in.FullName, "Full name"))
	page.Form.Check("full_name", validation.MinLength(in.FullName, 2, "Full name"))
	if in.PhoneNumber != "" {
		page.Form.Check("phone_number", validation.Phone(in.PhoneNumber))
	}
	if !model.IsValidTier(in.MembershipTier) {
		page.Form.Add("membership_tier", "Please choose a membership tier.")
	}
	if !page.Form.Valid() {
		h.renderMemberForm(w, r, http.StatusUnprocessableEntity, page)
		return
	}

	member, err := h.api.CreateMember(r.Context(), in)
	if err != nil {
		if apiclient.IsKind(err, apiclient.KindHTTP) {
			page.Error = apiclient.Message(err, "The member could not be created.")
			h.renderMemberForm(w, r, http.StatusUnprocessableEntity, page)
			return
		}
		apiFailure(w, r, h.renderer, err, "creating member", newURL)
		return
	}

	slog.InfoContext(r.Context(), "member created", "member_id", member.ID, "tier", member.MembershipTier)
	msg := fmt.Sprintf("%s was added to the Inner Circle.", member.FullName)
	if member.MembershipNumber != "" {
		msg = fmt.Sprintf("%s was added to the Inner Circle as %s.", member.FullName, member.MembershipNumber)
	}
	flashSuccess(w, r, h.renderer, redirectAdminMembers, msg)
}

func (h *AdminHandler) renderMemberForm(w http.ResponseWriter, r *http.Request, status int, page MemberFormPage) {
	renderPage(w, r, h.renderer, status, "admin/member_new", render.TemplateData{
		Title: "New Member",
		Data:  page,
	})
}

// RSVPsPage is the data of admin/rsvps.
type RSVPsPage struct {
	Status  string
	RSVPs   []model.RSVPRow
	Summary *model.RSVPSummary
}

// RSVPs handles GET /admin/rsvps. The list and the summary load in parallel.
func (h *AdminHandler) RSVPs(w http.ResponseWriter, r *http.Request) {
	page := RSVPsPage{Status: r.URL.Query().Get("status")}
	if page.Status != model.RSVPAccepted && page.Status != model.RSVPDeclined {
		page.Status = ""
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		rows, err := h.api.RSVPs(ctx, page.Status)
		page.RSVPs = rows
		return err
	})
	g.Go(func() error {
		summary, err := h.api.RSVPSummary(ctx)
		page.Summary = summary
		return err
	})
	if err := g.Wait(); err != nil {
		apiFailure(w, r, h.renderer, err, "listing rsvps", "")
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "admin/rsvps", render.TemplateData{
		Title: "RSVPs",
		Data:  page,
	})
}

// PaymentsPage is the data of admin/payments.
type PaymentsPage struct {
	Status  string
	Pending []model.PendingPayment
	All     []model.PaymentRecord
}

var paymentFilters = map[string]bool{
	model.PaymentPending:  true,
	model.PaymentVerified: true,
	model.PaymentFailed:   true,
}

// Payments handles GET /admin/payments.
func (h *AdminHandler) Payments(w http.ResponseWriter, r *http.Request) {
	page := PaymentsPage{Status: r.URL.Query().Get("status")}
	if !paymentFilters[page.Status] {
		page.Status = ""
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		pending, err := h.api.PendingPayments(ctx)
		page.Pending = pending
		return err
	})
	g.Go(func() error {
		all, err := h.api.AllPayments(ctx, page.Status)
		page.All = all
		return err
	})
	if err := g.Wait(); err != nil {
		apiFailure(w, r, h.renderer, err, "listing payments", "")
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "admin/payments", render.TemplateData{
		Title: "Payments",
		Data:  page,
	})
}

// VerifyPayment handles POST /admin/payments/verify. The verifier is always
// the signed-in admin.
func (h *AdminHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminPayments) {
		return
	}

	paymentID := strings.TrimSpace(r.PostFormValue("payment_id"))
	notes := strings.TrimSpace(r.PostFormValue("notes"))
	if paymentID == "" {
		flashError(w, r, h.renderer, redirectAdminPayments, "Missing payment reference.")
		return
	}
	if utf8.RuneCountInString(notes) > MaxVerificationNoteLen {
		flashError(w, r, h.renderer, redirectAdminPayments, "Verification notes are too long.")
		return
	}

	verifier := ""
	if m := session.FromContext(r.Context()).Member; m != nil {
		verifier = m.Email
	}

	result, err := h.api.VerifyPayment(r.Context(), model.PaymentVerify{
		PaymentID:  paymentID,
		VerifiedBy: verifier,
		Notes:      notes,
	})
	if err != nil {
		apiFailure(w, r, h.renderer, err, "verifying payment", redirectAdminPayments)
		return
	}

	slog.InfoContext(r.Context(), "payment verified", "payment_id", paymentID, "verified_by", verifier)
	msg := result.Message
	if msg == "" {
		msg = "Payment verified."
	}
	flashSuccess(w, r, h.renderer, redirectAdminPayments, msg)
}

// RefreshCatalog handles POST /admin/catalog/refresh. It is used after the
// event or payment methods change on the API side, so members do not wait
// for the cache to expire.
func (h *AdminHandler) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Invalidate(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "invalidating catalog", "error", err)
		flashError(w, r, h.renderer, redirectAdmin, "The cached event details could not be cleared.")
		return
	}
	if err := h.catalog.Warm(r.Context()); err != nil {
		slog.WarnContext(r.Context(), "reloading catalog", "error", err)
		flashError(w, r, h.renderer, redirectAdmin, "Cached details were cleared but could not be reloaded. They will load on the next visit.")
		return
	}
	slog.InfoContext(r.Context(), "catalog refreshed")
	flashSuccess(w, r, h.renderer, redirectAdmin, "Event and payment details were reloaded.")
}
