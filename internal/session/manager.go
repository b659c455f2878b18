// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session owns the member's authentication state: the persisted
// access token, the cached profile and the per-request snapshot handlers read.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/olegiv/innercircle-portal/internal/apiclient"
	"github.com/olegiv/innercircle-portal/internal/logging"
	"github.com/olegiv/innercircle-portal/internal/model"
)

// ErrNotAuthenticated is returned by operations that need a persisted token.
var ErrNotAuthenticated = errors.New("session: not authenticated")

const msgLoginFailed = "We could not sign you in. Please try again."

// Session is an immutable snapshot of the member's authentication state.
type Session struct {
	Token           string
	Member          *model.Member
	IsAuthenticated bool
	Loading         bool
}

// LoginResult reports the outcome of Login. Error is a user-facing message.
// Rejected is set when the API refused the email, as opposed to being
// unreachable or failing.
type LoginResult struct {
	Success  bool
	Rejected bool
	Member   *model.Member
	Error    string
}

// API is the subset of the API client the manager needs.
type API interface {
	RequestAccess(ctx context.Context, email string) (*model.TokenResponse, error)
	Me(ctx context.Context) (*model.Member, error)
	Logout(ctx context.Context) error
}

// Manager is the single holder of authentication state. It is safe for
// concurrent use; per-request state lives in the request context.
type Manager struct {
	api      API
	tokens   TokenStore
	profiles ProfileStore
	logger   *slog.Logger
}

// NewManager creates a manager. A nil logger uses slog.Default().
func NewManager(api API, tokens TokenStore, profiles ProfileStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{api: api, tokens: tokens, profiles: profiles, logger: logger}
}

// Initialize restores the session for r. A missing token yields an empty
// session whatever the cached profile holds. A token without a cached
// profile is checked against the API; any failure clears both.
func (m *Manager) Initialize(w http.ResponseWriter, r *http.Request) Session {
	ctx := r.Context()

	token, ok := m.tokens.Token(r)
	if !ok {
		return Session{}
	}

	if member, ok := m.profiles.Profile(ctx); ok {
		return Session{Token: token, Member: member, IsAuthenticated: true}
	}

	member, err := m.api.Me(apiclient.WithToken(ctx, token))
	if err != nil {
		m.logger.WarnContext(ctx, "session restore failed", "error", err)
		m.clear(ctx, w)
		return Session{}
	}
	if err := m.profiles.SetProfile(ctx, member); err != nil {
		m.logger.ErrorContext(ctx, "caching profile failed", "error", err)
	}
	return Session{Token: token, Member: member, IsAuthenticated: true}
}

// Login requests access for email. Only the email is sent. On success the
// token and profile are persisted; on failure a user-facing message is
// returned and nothing is persisted.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, email string) LoginResult {
	ctx := r.Context()
	email = strings.TrimSpace(email)

	resp, err := m.api.RequestAccess(ctx, email)
	if err != nil {
		m.logger.InfoContext(ctx, "access request rejected", "error", err)
		return LoginResult{Error: apiclient.Message(err, msgLoginFailed), Rejected: rejected(err)}
	}
	if resp.AccessToken == "" {
		m.logger.ErrorContext(ctx, "access response without token")
		return LoginResult{Error: msgLoginFailed}
	}

	if err := m.profiles.Renew(ctx); err != nil {
		m.logger.ErrorContext(ctx, "renewing session failed", "error", err)
		return LoginResult{Error: msgLoginFailed}
	}

	member := resp.Member
	m.tokens.SetToken(w, resp.AccessToken)
	if err := m.profiles.SetProfile(ctx, &member); err != nil {
		m.logger.ErrorContext(ctx, "caching profile failed", "error", err)
	}

	m.logger.InfoContext(ctx, "member signed in", "member_id", member.ID)
	return LoginResult{Success: true, Member: &member}
}

// rejected reports whether err is the API refusing the request rather than
// an outage.
func rejected(err error) bool {
	kind, ok := apiclient.KindOf(err)
	if !ok {
		return false
	}
	switch kind {
	case apiclient.KindHTTP, apiclient.KindNotFound, apiclient.KindForbidden, apiclient.KindUnauthorized:
		return true
	}
	return false
}

// Logout tells the API the member left, then clears the token and profile
// whether or not the API call succeeded.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if token, ok := m.tokens.Token(r); ok {
		if err := m.api.Logout(apiclient.WithToken(ctx, token)); err != nil {
			m.logger.WarnContext(ctx, "logout call failed", "error", err)
		}
	}

	m.clear(ctx, w)
	if err := m.profiles.Renew(ctx); err != nil {
		m.logger.WarnContext(ctx, "renewing session failed", "error", err)
	}
}

// RefreshMember fetches the member again and overwrites the cached profile.
func (m *Manager) RefreshMember(w http.ResponseWriter, r *http.Request) (*model.Member, error) {
	ctx := r.Context()

	token, ok := m.tokens.Token(r)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	member, err := m.api.Me(apiclient.WithToken(ctx, token))
	if err != nil {
		return nil, err
	}
	if err := m.profiles.SetProfile(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// OnUnauthorized clears the token and profile of the request in flight.
// It is registered with the API client so that a 401 from any endpoint ends
// the session.
func (m *Manager) OnUnauthorized(ctx context.Context) {
	sc, ok := ctx.Value(scopeKey{}).(*scope)
	if !ok {
		return
	}
	sc.once.Do(func() {
		m.logger.InfoContext(ctx, "api rejected token, clearing session")
		m.clear(ctx, sc.w)
	})
}

func (m *Manager) clear(ctx context.Context, w http.ResponseWriter) {
	m.tokens.ClearToken(w)
	m.profiles.ClearProfile(ctx)
}

type scopeKey struct{}

type snapshotKey struct{}

// scope carries the response writer so that OnUnauthorized can reach the
// cookie of the request whose API call failed. Parallel calls of one request
// share it, so the session is cleared at most once.
type scope struct {
	w    http.ResponseWriter
	once sync.Once
}

// Middleware initializes the session for each request and stores the
// snapshot in the request context. API calls made with the request context
// carry the member's token.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), scopeKey{}, &scope{w: w})
		r = r.WithContext(ctx)

		s := m.Initialize(w, r)

		ctx = context.WithValue(ctx, snapshotKey{}, s)
		if s.Token != "" {
			ctx = apiclient.WithToken(ctx, s.Token)
		}
		if s.Member != nil {
			ctx = logging.WithAttrs(ctx, slog.String("member_id", s.Member.ID))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the request's session snapshot. A request that never
// went through Middleware reads as loading.
func FromContext(ctx context.Context) Session {
	s, ok := ctx.Value(snapshotKey{}).(Session)
	if !ok {
		return Session{Loading: true}
	}
	return s
}

// WithSession returns a context carrying s, for handlers and tests that
// build snapshots directly.
func WithSession(ctx context.Context, s Session) context.Context {
	ctx = context.WithValue(ctx, snapshotKey{}, s)
	if s.Token != "" {
		ctx = apiclient.WithToken(ctx, s.Token)
	}
	return ctx
}
