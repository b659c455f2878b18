package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStripTrailingSlash(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := StripTrailingSlash(next)

	tests := []struct {
		name     string
		method   string
		target   string
		wantCode int
		wantLoc  string
	}{
		{name: "root", method: http.MethodGet, target: "/", wantCode: http.StatusOK},
		{name: "no slash", method: http.MethodGet, target: "/dashboard", wantCode: http.StatusOK},
		{name: "slash", method: http.MethodGet, target: "/dashboard/", wantCode: http.StatusMovedPermanently, wantLoc: "/dashboard"},
		{name: "query kept", method: http.MethodGet, target: "/admin/rsvps/?status=accepted", wantCode: http.StatusMovedPermanently, wantLoc: "/admin/rsvps?status=accepted"},
		{name: "double slash collapsed", method: http.MethodGet, target: "/event//", wantCode: http.StatusMovedPermanently, wantLoc: "/event"},
		{name: "post untouched", method: http.MethodPost, target: "/rsvp/", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.target, nil))
			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if got := rr.Header().Get("Location"); got != tt.wantLoc {
				t.Errorf("Location = %q, want %q", got, tt.wantLoc)
			}
		})
	}
}
