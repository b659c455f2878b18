// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for route protection,
// request hardening and request context handling.
package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/olegiv/innercircle-portal/internal/model"
	"github.com/olegiv/innercircle-portal/internal/session"
)

// DefaultAdminEmailDomain is the organisation domain whose addresses get the
// admin console.
const DefaultAdminEmailDomain = "paigeinnercircle.com"

// AccessPath is where unauthenticated visitors are sent.
const AccessPath = "/access"

// Access is the outcome of evaluating a session against a route.
type Access int

// Access states.
const (
	AccessLoading Access = iota
	AccessUnauthenticated
	AccessDenied
	AccessGranted
)

func (a Access) String() string {
	switch a {
	case AccessLoading:
		return "loading"
	case AccessUnauthenticated:
		return "unauthenticated"
	case AccessDenied:
		return "denied"
	default:
		return "granted"
	}
}

// AdminPolicy decides who sees the admin console. It only shapes the UI:
// the API re-checks every admin call.
type AdminPolicy struct {
	EmailDomain string
}

// IsAdmin reports whether m has tier admin or an organisation address.
func (p AdminPolicy) IsAdmin(m *model.Member) bool {
	if m == nil {
		return false
	}
	if m.MembershipTier == model.TierAdmin {
		return true
	}
	domain := p.EmailDomain
	if domain == "" {
		domain = DefaultAdminEmailDomain
	}
	return strings.HasSuffix(strings.ToLower(m.Email), "@"+strings.ToLower(domain))
}

// Evaluate decides access for s. It has no side effects.
func Evaluate(s session.Session, requireAdmin bool, policy AdminPolicy) Access {
	switch {
	case s.Loading:
		return AccessLoading
	case !s.IsAuthenticated || s.Token == "":
		return AccessUnauthenticated
	case requireAdmin && !policy.IsAdmin(s.Member):
		return AccessDenied
	default:
		return AccessGranted
	}
}

// GuardPages renders the pages a guard shows instead of the route.
type GuardPages interface {
	Loading(w http.ResponseWriter, r *http.Request)
	Denied(w http.ResponseWriter, r *http.Request)
}

// DenialRecorder counts requests a guard stopped.
type DenialRecorder interface {
	ObserveGuardDenial(guard, access string)
}

// Guard protects member and admin routes.
type Guard struct {
	policy   AdminPolicy
	pages    GuardPages
	recorder DenialRecorder
}

// NewGuard creates a guard. recorder may be nil.
func NewGuard(policy AdminPolicy, pages GuardPages, recorder DenialRecorder) *Guard {
	return &Guard{policy: policy, pages: pages, recorder: recorder}
}

// Policy returns the admin policy in force.
func (g *Guard) Policy() AdminPolicy {
	return g.policy
}

// RequireMember serves next only to authenticated members.
func (g *Guard) RequireMember(next http.Handler) http.Handler {
	return g.require("member", false, next)
}

// RequireAdmin serves next only to admins. An authenticated non-admin gets
// an inline access-denied page rather than a redirect.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return g.require("admin", true, next)
}

func (g *Guard) require(name string, requireAdmin bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := session.FromContext(r.Context())
		access := Evaluate(s, requireAdmin, g.policy)
		if access == AccessGranted {
			next.ServeHTTP(w, r)
			return
		}

		if g.recorder != nil {
			g.recorder.ObserveGuardDenial(name, access.String())
		}

		switch access {
		case AccessLoading:
			g.pages.Loading(w, r)
		case AccessUnauthenticated:
			http.Redirect(w, r, AccessURL(r), http.StatusSeeOther)
		case AccessDenied:
			memberID := ""
			if s.Member != nil {
				memberID = s.Member.ID
			}
			slog.WarnContext(r.Context(), "access denied",
				"member_id", memberID,
				"guard", name,
				"path", r.URL.Path,
			)
			g.pages.Denied(w, r)
		}
	})
}

// AccessURL returns the access page URL that brings the visitor back to r
// after signing in.
func AccessURL(r *http.Request) string {
	if r.Method != http.MethodGet {
		return AccessPath
	}
	return AccessPath + "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
}

// SafeNext returns next when it is a local path, and fallback otherwise.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return next
}
