// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/innercircle-portal/internal/middleware"
	"github.com/olegiv/innercircle-portal/internal/model"
	"github.com/olegiv/innercircle-portal/internal/render"
	"github.com/olegiv/innercircle-portal/internal/session"
	"github.com/olegiv/innercircle-portal/internal/validation"
)

// Sessions is the part of the session manager the handlers drive.
type Sessions interface {
	Login(w http.ResponseWriter, r *http.Request, email string) session.LoginResult
	Logout(w http.ResponseWriter, r *http.Request)
	RefreshMember(w http.ResponseWriter, r *http.Request) (*model.Member, error)
}

// AuthHandler handles the access form, logout and profile refresh.
type AuthHandler struct {
	renderer   *render.Renderer
	sessions   Sessions
	protection *middleware.AccessProtection
}

// NewAuthHandler creates a new AuthHandler. protection may be nil.
func NewAuthHandler(renderer *render.Renderer, sessions Sessions, protection *middleware.AccessProtection) *AuthHandler {
	return &AuthHandler{renderer: renderer, sessions: sessions, protection: protection}
}

// AccessPage is the data of pages/access.
type AccessPage struct {
	Email string
	Next  string
	Form  *validation.Form
	Error string
}

// AccessForm renders the access page. Signed-in members go straight on.
func (h *AuthHandler) AccessForm(w http.ResponseWriter, r *http.Request) {
	next := middleware.SafeNext(r.URL.Query().Get("next"), "")

	if s := session.FromContext(r.Context()); s.IsAuthenticated {
		http.Redirect(w, r, middleware.SafeNext(next, RouteDashboard), http.StatusSeeOther)
		return
	}

	h.renderAccess(w, r, http.StatusOK, AccessPage{Next: next, Form: validation.NewForm()})
}

// Access handles the access form submission. Only the email is sent to the API.
func (h *AuthHandler) Access(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteAccess) {
		return
	}

	page := AccessPage{
		Email: strings.TrimSpace(r.PostFormValue("email")),
		Next:  middleware.SafeNext(r.PostFormValue("next"), ""),
		Form:  validation.NewForm(),
	}

	page.Form.Check("email", validation.Required(page.Email, "Email"))
	page.Form.Check("email", validation.Email(page.Email))
	if !page.Form.Valid() {
		h.renderAccess(w, r, http.StatusUnprocessableEntity, page)
		return
	}

	if h.protection != nil {
		if locked, remaining := h.protection.IsLocked(page.Email); locked {
			slog.WarnContext(r.Context(), "access attempt on locked email", "remaining", remaining)
			page.Error = lockedMessage(remaining)
			h.renderAccess(w, r, http.StatusTooManyRequests, page)
			return
		}
	}

	result := h.sessions.Login(w, r, page.Email)
	if !result.Success {
		page.Error = result.Error
		if !result.Rejected {
			h.renderAccess(w, r, http.StatusBadGateway, page)
			return
		}
		if h.protection != nil {
			if locked, lockDuration := h.protection.RecordFailure(page.Email); locked {
				page.Error = lockedMessage(lockDuration)
				h.renderAccess(w, r, http.StatusTooManyRequests, page)
				return
			}
		}
		h.renderAccess(w, r, http.StatusUnauthorized, page)
		return
	}

	if h.protection != nil {
		h.protection.RecordSuccess(page.Email)
	}

	welcome := "Welcome back."
	if name := result.Member.FirstName(); name != "" {
		welcome = fmt.Sprintf("Welcome back, %s.", name)
	}
	flashSuccess(w, r, h.renderer, middleware.SafeNext(page.Next, RouteDashboard), welcome)
}

func (h *AuthHandler) renderAccess(w http.ResponseWriter, r *http.Request, status int, page AccessPage) {
	renderPage(w, r, h.renderer, status, "pages/access", render.TemplateData{
		Title: "Member Access",
		Data:  page,
	})
}

// Logout handles POST /logout. The session is cleared even when the API call fails.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(w, r)
	flashAndRedirect(w, r, h.renderer, RouteRoot, "You have been signed out.", render.FlashInfo)
}

// RefreshProfile handles POST /profile/refresh.
func (h *AuthHandler) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	back := middleware.SafeNext(r.PostFormValue("next"), RouteDashboard)

	if _, err := h.sessions.RefreshMember(w, r); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			http.Redirect(w, r, RouteAccess, http.StatusSeeOther)
			return
		}
		apiFailure(w, r, h.renderer, err, "refreshing profile", back)
		return
	}

	flashSuccess(w, r, h.renderer, back, "Your profile is up to date.")
}

// lockedMessage tells the visitor how long the email stays locked.
func lockedMessage(remaining time.Duration) string {
	return "Too many attempts for this email. Please try again in " + formatDuration(remaining) + "."
}

// formatDuration formats a lockout duration for display, rounding up to whole minutes.
func formatDuration(d time.Duration) string {
	minutes := int((d + time.Minute - 1) / time.Minute)
	switch {
	case minutes <= 1:
		return "1 minute"
	case minutes < 60:
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours := (minutes + 59) / 60
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
