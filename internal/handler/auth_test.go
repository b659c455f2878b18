// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/innercircle-portal/internal/apiclient"
	"github.com/olegiv/innercircle-portal/internal/middleware"
	"github.com/olegiv/innercircle-portal/internal/model"
	"github.com/olegiv/innercircle-portal/internal/session"
)

func newAuthHandler(t *testing.T, sessions *fakeSessions, protection *middleware.AccessProtection) (*AuthHandler, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	return NewAuthHandler(env.renderer, sessions, protection), env
}

func TestAccessFormRendersForVisitors(t *testing.T) {
	h, env := newAuthHandler(t, &fakeSessions{}, nil)

	rec := env.serve(h.AccessForm, getRequest("/access?next=/event"), session.Session{})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="email"`)
	assert.Contains(t, rec.Body.String(), `value="/event"`)
}

func TestAccessFormRedirectsSignedInMembers(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{name: "no next", target: "/access", want: RouteDashboard},
		{name: "local next", target: "/access?next=%2Fevent", want: "/event"},
		{name: "offsite next", target: "/access?next=%2F%2Fevil.example", want: RouteDashboard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, env := newAuthHandler(t, &fakeSessions{}, nil)

			rec := env.serve(h.AccessForm, getRequest(tt.target), memberSession())

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
		})
	}
}

func TestAccessRejectsInvalidEmail(t *testing.T) {
	sessions := &fakeSessions{}
	h, env := newAuthHandler(t, sessions, nil)

	rec := env.serve(h.Access, postForm("/access", url.Values{"email": {"not-an-email"}}), session.Session{})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "field-error")
	assert.Empty(t, sessions.logins, "invalid email must not reach the API")
}

func TestAccessSuccessRedirectsToNext(t *testing.T) {
	member := &model.Member{ID: "m1", FullName: "Ann Bee", Email: "ann@example.com"}
	sessions := &fakeSessions{result: session.LoginResult{Success: true, Member: member}}
	h, env := newAuthHandler(t, sessions, nil)

	form := url.Values{"email": {"  ann@example.com "}, "next": {"/pass/" + testToken}}
	rec := env.serve(h.Access, postForm("/access", form), session.Session{})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/pass/"+testToken, rec.Header().Get("Location"))
	assert.Equal(t, []string{"ann@example.com"}, sessions.logins)
	assert.Equal(t, "Welcome back, Ann.", env.flash(t, rec))
}

func TestAccessIgnoresOffsiteNext(t *testing.T) {
	sessions := &fakeSessions{result: session.LoginResult{Success: true, Member: &model.Member{}}}
	h, env := newAuthHandler(t, sessions, nil)

	form := url.Values{"email": {"ann@example.com"}, "next": {"https://evil.example/"}}
	rec := env.serve(h.Access, postForm("/access", form), session.Session{})

	assert.Equal(t, RouteDashboard, rec.Header().Get("Location"))
}

func TestAccessFailureShowsAPIMessage(t *testing.T) {
	sessions := &fakeSessions{result: session.LoginResult{Error: "Email not found in Inner Circle members", Rejected: true}}
	h, env := newAuthHandler(t, sessions, nil)

	rec := env.serve(h.Access, postForm("/access", url.Values{"email": {"who@example.com"}}), session.Session{})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email not found in Inner Circle members")
	assert.Contains(t, rec.Body.String(), `value="who@example.com"`)
}

func TestAccessLocksOutRepeatedRefusals(t *testing.T) {
	protection := middleware.NewAccessProtection(middleware.AccessProtectionConfig{
		MaxFailedAttempts: 2,
		LockoutDuration:   10 * time.Minute,
	})
	t.Cleanup(protection.Close)

	sessions := &fakeSessions{result: session.LoginResult{Error: "Email not found", Rejected: true}}
	h, env := newAuthHandler(t, sessions, protection)
	form := url.Values{"email": {"probe@example.com"}}

	first := env.serve(h.Access, postForm("/access", form), session.Session{})
	assert.Equal(t, http.StatusUnauthorized, first.Code)

	second := env.serve(h.Access, postForm("/access", form), session.Session{})
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "10 minutes")

	third := env.serve(h.Access, postForm("/access", form), session.Session{})
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Len(t, sessions.logins, 2, "a locked email must not reach the API")
}

func TestAccessOutageDoesNotCountAsFailure(t *testing.T) {
	protection := middleware.NewAccessProtection(middleware.AccessProtectionConfig{MaxFailedAttempts: 2})
	t.Cleanup(protection.Close)

	sessions := &fakeSessions{result: session.LoginResult{Error: "We could not reach the Inner Circle right now."}}
	h, env := newAuthHandler(t, sessions, protection)
	form := url.Values{"email": {"ann@example.com"}}

	for range 3 {
		rec := env.serve(h.Access, postForm("/access", form), session.Session{})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "We could not reach the Inner Circle right now.")
	}
	assert.Equal(t, 2, protection.RemainingAttempts("ann@example.com"))
	assert.Len(t, sessions.logins, 3)
}

func TestAccessSuccessClearsFailures(t *testing.T) {
	protection := middleware.NewAccessProtection(middleware.AccessProtectionConfig{MaxFailedAttempts: 3})
	t.Cleanup(protection.Close)

	sessions := &fakeSessions{result: session.LoginResult{Error: "nope", Rejected: true}}
	h, env := newAuthHandler(t, sessions, protection)
	form := url.Values{"email": {"ann@example.com"}}

	env.serve(h.Access, postForm("/access", form), session.Session{})
	assert.Equal(t, 2, protection.RemainingAttempts("ann@example.com"))

	sessions.result = session.LoginResult{Success: true, Member: &model.Member{FullName: "Ann"}}
	env.serve(h.Access, postForm("/access", form), session.Session{})
	assert.Equal(t, 3, protection.RemainingAttempts("ann@example.com"))
}

func TestLogout(t *testing.T) {
	sessions := &fakeSessions{}
	h, env := newAuthHandler(t, sessions, nil)

	rec := env.serve(h.Logout, postForm("/logout", nil), memberSession())

	assert.True(t, sessions.loggedOut)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteRoot, rec.Header().Get("Location"))
	assert.Equal(t, "You have been signed out.", env.flash(t, rec))
}

func TestRefreshProfile(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLoc   string
		wantFlash string
	}{
		{name: "success", wantLoc: RouteDashboard, wantFlash: "Your profile is up to date."},
		{name: "no token", err: session.ErrNotAuthenticated, wantLoc: RouteAccess},
		{
			name:      "token rejected",
			err:       apiError(apiclient.KindUnauthorized, http.StatusUnauthorized, "Invalid token"),
			wantLoc:   RouteAccess,
			wantFlash: msgSessionExpired,
		},
		{
			name:      "api down",
			err:       &apiclient.Error{Kind: apiclient.KindNetwork, Endpoint: "auth.me"},
			wantLoc:   RouteDashboard,
			wantFlash: msgUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &fakeSessions{member: memberSession().Member, refreshErr: tt.err}
			h, env := newAuthHandler(t, sessions, nil)

			rec := env.serve(h.RefreshProfile, postForm("/profile/refresh", nil), memberSession())

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
			assert.Equal(t, tt.wantFlash, env.flash(t, rec))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 10 * time.Second, want: "1 minute"},
		{in: time.Minute, want: "1 minute"},
		{in: 90 * time.Second, want: "2 minutes"},
		{in: 15 * time.Minute, want: "15 minutes"},
		{in: time.Hour, want: "1 hour"},
		{in: 5*time.Hour + time.Minute, want: "6 hours"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
