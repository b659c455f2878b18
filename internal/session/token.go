// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenCookieName is the cookie holding the member's access token.
	TokenCookieName = "auth_token"
	// DefaultTokenTTL is the persisted token's lifetime.
	DefaultTokenTTL = 30 * 24 * time.Hour
)

// TokenStore persists the access token on the member's browser.
type TokenStore interface {
	Token(r *http.Request) (string, bool)
	SetToken(w http.ResponseWriter, token string)
	ClearToken(w http.ResponseWriter)
}

// CookieTokenStore keeps the token in an HttpOnly cookie.
type CookieTokenStore struct {
	Name   string
	TTL    time.Duration
	Secure bool
	now    func() time.Time
}

// NewCookieTokenStore returns a store for the auth_token cookie.
func NewCookieTokenStore(ttl time.Duration, secure bool) *CookieTokenStore {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &CookieTokenStore{Name: TokenCookieName, TTL: ttl, Secure: secure, now: time.Now}
}

// Token returns the persisted token.
func (s *CookieTokenStore) Token(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// SetToken persists token for TTL, or until the token's own expiry when that
// comes first.
func (s *CookieTokenStore) SetToken(w http.ResponseWriter, token string) {
	expires := s.now().Add(s.TTL)
	if exp, ok := tokenExpiry(token); ok && exp.After(s.now()) && exp.Before(expires) {
		expires = exp
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(expires.Sub(s.now()).Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearToken deletes the cookie.
func (s *CookieTokenStore) ClearToken(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// tokenExpiry reads the exp claim without verifying the signature. The value
// only bounds the cookie lifetime; the API remains the authority on validity.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
