package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowEnforcesLimit(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 2, CleanupInterval: time.Minute})
	defer l.Stop()

	if !l.Allow("1.2.3.4") {
		t.Error("first request should be allowed")
	}
	if !l.Allow("1.2.3.4") {
		t.Error("second request should be allowed")
	}
	if l.Allow("1.2.3.4") {
		t.Error("third request should be denied")
	}

	// Other clients have their own window.
	if !l.Allow("5.6.7.8") {
		t.Error("different client should be allowed")
	}
}

func TestNewLimiterDefaults(t *testing.T) {
	l := NewLimiter(Config{})
	defer l.Stop()

	if l.requestsPerMinute != 60 {
		t.Errorf("requestsPerMinute = %d, want default 60", l.requestsPerMinute)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	l := NewLimiter(DefaultConfig())
	l.Stop()
	l.Stop()
}

func TestMiddlewareRejectsWith429(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1, CleanupInterval: time.Minute})
	defer l.Stop()

	handler := l.Middleware(func(*http.Request) string { return "1.2.3.4" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
	}
}

func TestActiveClients(t *testing.T) {
	l := NewLimiter(DefaultConfig())
	defer l.Stop()

	l.Allow("a")
	l.Allow("b")
	l.Allow("a")

	if got := l.ActiveClients(); got != 2 {
		t.Errorf("ActiveClients() = %d, want 2", got)
	}
}
