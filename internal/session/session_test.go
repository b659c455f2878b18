// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/olegiv/innercircle-portal/internal/store"
)

// migratedDB opens an in-memory database with the real sessions schema.
func migratedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestNewStoreCookie(t *testing.T) {
	tests := []struct {
		name       string
		isDev      bool
		wantName   string
		wantSecure bool
	}{
		{name: "development", isDev: true, wantName: "portal_session", wantSecure: false},
		{name: "production", isDev: false, wantName: "__Host-portal_session", wantSecure: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStore(migratedDB(t), tt.isDev)

			if sm.Cookie.Name != tt.wantName {
				t.Errorf("Cookie.Name = %q, want %q", sm.Cookie.Name, tt.wantName)
			}
			if sm.Cookie.Secure != tt.wantSecure {
				t.Errorf("Cookie.Secure = %v, want %v", sm.Cookie.Secure, tt.wantSecure)
			}
			if sm.Cookie.Path != "/" || !sm.Cookie.HttpOnly {
				t.Errorf("cookie must be HttpOnly on /, got path=%q httpOnly=%v", sm.Cookie.Path, sm.Cookie.HttpOnly)
			}
			if sm.Cookie.SameSite != http.SameSiteLaxMode {
				t.Errorf("Cookie.SameSite = %v, want Lax", sm.Cookie.SameSite)
			}
			if sm.Lifetime != 24*time.Hour {
				t.Errorf("Lifetime = %v, want 24h", sm.Lifetime)
			}
		})
	}
}

func TestNewStorePersistsAcrossRequests(t *testing.T) {
	db := migratedDB(t)
	sm := NewStore(db, true)

	put := sm.LoadAndSave(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), "flash", "Welcome back, Ann.")
	}))
	rec := httptest.NewRecorder()
	put.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/access", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie was set")
	}

	var got string
	get := sm.LoadAndSave(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = sm.PopString(r.Context(), "flash")
	}))
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	get.ServeHTTP(httptest.NewRecorder(), req)

	if got != "Welcome back, Ann." {
		t.Errorf("flash = %q, want the stored message", got)
	}

	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&rows); err != nil {
		t.Fatalf("counting sessions: %v", err)
	}
	if rows != 1 {
		t.Errorf("sessions rows = %d, want 1", rows)
	}
}
