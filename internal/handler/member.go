// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/innercircle-portal/internal/model"
	"github.com/olegiv/innercircle-portal/internal/render"
	"github.com/olegiv/innercircle-portal/internal/session"
	"github.com/olegiv/innercircle-portal/internal/validation"
)

// MaxRSVPMessageLength bounds the optional note sent with an RSVP.
const MaxRSVPMessageLength = 500

// MemberAPI is the member-scoped part of the API client.
type MemberAPI interface {
	MyRSVP(ctx context.Context) (*model.RSVPStatus, bool, error)
	Event(ctx context.Context, id string) (*model.EventDetail, error)
	SubmitRSVP(ctx context.Context, in model.RSVPCreate) (*model.RSVPResult, error)
}

// MemberHandler serves the signed-in member's pages.
type MemberHandler struct {
	renderer *render.Renderer
	api      MemberAPI
	catalog  Catalog
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(renderer *render.Renderer, api MemberAPI, catalog Catalog) *MemberHandler {
	return &MemberHandler{renderer: renderer, api: api, catalog: catalog}
}

// DashboardPage is the data of pages/dashboard.
type DashboardPage struct {
	Member *model.Member
	Event  *model.EventTeaser
	// RSVP is nil when the API holds no invitation record for the member.
	RSVP *model.RSVPStatus
}

// PaymentURL links to the payment page of the member's pass.
func (p DashboardPage) PaymentURL() string {
	if !p.RSVP.HasPass() {
		return ""
	}
	return paymentURL(p.RSVP.LegacyPassToken)
}

// PassURL links to the member's pass.
func (p DashboardPage) PassURL() string {
	if !p.RSVP.HasPass() {
		return ""
	}
	return passURL(p.RSVP.LegacyPassToken)
}

// Dashboard handles GET /dashboard.
func (h *MemberHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := DashboardPage{Member: session.FromContext(ctx).Member}

	status, found, err := h.api.MyRSVP(ctx)
	if err != nil {
		apiFailure(w, r, h.renderer, err, "loading rsvp status", "")
		return
	}
	if found {
		page.RSVP = status
	}

	page.Event = h.currentEvent(ctx)

	renderPage(w, r, h.renderer, http.StatusOK, "pages/dashboard", render.TemplateData{
		Title: "Dashboard",
		Data:  page,
	})
}

// currentEvent returns the featured event, or nil when there is none or it
// cannot be loaded.
func (h *MemberHandler) currentEvent(ctx context.Context) *model.EventTeaser {
	event, found, err := h.catalog.CurrentEvent(ctx)
	if err != nil {
		slog.WarnContext(ctx, "loading current event", "error", err)
		return nil
	}
	if !found {
		return nil
	}
	return event
}

// EventPage is the data of pages/event.
type EventPage struct {
	Event       *model.EventDetail
	Description template.HTML
}

// Event handles GET /event.
func (h *MemberHandler) Event(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	teaser, found, err := h.catalog.CurrentEvent(ctx)
	if err != nil {
		apiFailure(w, r, h.renderer, err, "loading current event", "")
		return
	}
	if !found {
		renderPage(w, r, h.renderer, http.StatusOK, "pages/event", render.TemplateData{
			Title: "Event",
			Data:  EventPage{},
		})
		return
	}

	event, err := h.api.Event(ctx, teaser.ID)
	if err != nil {
		apiFailure(w, r, h.renderer, err, "loading event", "")
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "pages/event", render.TemplateData{
		Title: event.Title,
		Data: EventPage{
			Event:       event,
			Description: h.renderer.Markdown(event.Description),
		},
	})
}

// RSVPPage is the data of pages/rsvp.
type RSVPPage struct {
	Event   *model.EventTeaser
	Current *model.RSVPStatus
	Status  string
	Message string
	Form    *validation.Form
}

// Answered reports whether the member already replied.
func (p RSVPPage) Answered() bool {
	return p.Current != nil && p.Current.HasRSVP
}

// RSVPForm handles GET /rsvp.
func (h *MemberHandler) RSVPForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := RSVPPage{Form: validation.NewForm()}

	page.Event = h.currentEvent(ctx)
	if page.Event != nil {
		status, found, err := h.api.MyRSVP(ctx)
		if err != nil {
			apiFailure(w, r, h.renderer, err, "loading rsvp status", "")
			return
		}
		if found {
			page.Current = status
		}
	}

	h.renderRSVP(w, r, http.StatusOK, page)
}

// SubmitRSVP handles POST /rsvp. The event is always the current one; the
// form cannot choose it.
func (h *MemberHandler) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectRSVP) {
		return
	}
	ctx := r.Context()

	page := RSVPPage{
		Status:  r.PostFormValue("status"),
		Message: strings.TrimSpace(r.PostFormValue("message")),
		Form:    validation.NewForm(),
	}

	page.Event = h.currentEvent(ctx)
	if page.Event == nil {
		flashError(w, r, h.renderer, redirectDashboard, "There is no event to answer right now.")
		return
	}

	if page.Status != model.RSVPAccepted && page.Status != model.RSVPDeclined {
		page.Form.Add("status", "Please choose whether you will attend.")
	}
	if utf8.RuneCountInString(page.Message) > MaxRSVPMessageLength {
		page.Form.Add("message", "Your note is too long.")
	}
	if !page.Form.Valid() {
		h.renderRSVP(w, r, http.StatusUnprocessableEntity, page)
		return
	}

	result, err := h.api.SubmitRSVP(ctx, model.RSVPCreate{
		EventID:         page.Event.ID,
		Status:          page.Status,
		ResponseMessage: page.Message,
	})
	if err != nil {
		apiFailure(w, r, h.renderer, err, "submitting rsvp", redirectRSVP)
		return
	}

	slog.InfoContext(ctx, "rsvp submitted", "event_id", page.Event.ID, "status", page.Status)
	renderPage(w, r, h.renderer, http.StatusOK, "pages/rsvp_result", render.TemplateData{
		Title: "Thank You",
		Data:  RSVPResultPage{Event: page.Event, Result: result},
	})
}

func (h *MemberHandler) renderRSVP(w http.ResponseWriter, r *http.Request, status int, page RSVPPage) {
	renderPage(w, r, h.renderer, status, "pages/rsvp", render.TemplateData{
		Title: "RSVP",
		Data:  page,
	})
}

// RSVPResultPage is the data of pages/rsvp_result.
type RSVPResultPage struct {
	Event  *model.EventTeaser
	Result *model.RSVPResult
}

// PaymentURL links to the payment page of the new pass.
func (p RSVPResultPage) PaymentURL() string {
	if p.Result == nil || p.Result.LegacyToken == "" {
		return ""
	}
	return paymentURL(p.Result.LegacyToken)
}

// PassURL links to the new pass.
func (p RSVPResultPage) PassURL() string {
	if p.Result == nil || p.Result.LegacyToken == "" {
		return ""
	}
	return passURL(p.Result.LegacyToken)
}
