package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/pass/{token}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/pass/a", "/pass/b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := testutil.ToFloat64(m.CounterRequests.WithLabelValues(http.MethodGet, "/pass/{token}", "418"))
	if got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}
}

func TestObserveAPICall(t *testing.T) {
	m := New()
	m.ObserveAPICall("auth.me", "ok", 20*time.Millisecond)
	m.ObserveAPICall("auth.me", "unauthorized", 5*time.Millisecond)

	if n := testutil.CollectAndCount(m.HistAPICallDuration); n != 2 {
		t.Errorf("series = %d, want 2", n)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveGuardDenial("admin", "denied")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "innercircle_portal_guard_denials_total") {
		t.Error("exposition missing guard denial counter")
	}
}
