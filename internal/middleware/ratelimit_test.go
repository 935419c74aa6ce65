// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLocalFallbackLimitsPerKey(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit:   Window(1, 2, time.Hour),
		KeyFunc: KeyByIPAndEndpoint,
	})
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(path, addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := range 2 {
		if rec := do("/projects/1", "10.0.0.1:1234"); rec.Code != http.StatusOK {
			t.Fatalf("request %d code = %d, want 200", i, rec.Code)
		}
	}

	rec := do("/projects/2", "10.0.0.1:1234")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request code = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}

	if rec := do("/tickets/2", "10.0.0.1:1234"); rec.Code != http.StatusOK {
		t.Errorf("other endpoint code = %d, want 200", rec.Code)
	}
	if rec := do("/projects/3", "10.0.0.2:1234"); rec.Code != http.StatusOK {
		t.Errorf("other client code = %d, want 200", rec.Code)
	}
}

func TestKeyByUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.RemoteAddr = "10.0.0.9:80"

	if got := KeyByUser(req); got != "ratelimit:ip:10.0.0.9" {
		t.Errorf("anonymous key = %q", got)
	}

	req = req.WithContext(WithIdentity(req.Context(), &Identity{UserID: 12}))
	if got := KeyByUser(req); got != "ratelimit:user:12" {
		t.Errorf("user key = %q", got)
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := map[string]string{
		"/tickets/15/executors/3": "/tickets/{id}/executors/{id}",
		"/users/me":               "/users/me",
		"/":                       "/",
	}
	for in, want := range tests {
		if got := normalizeEndpoint(in); got != want {
			t.Errorf("normalizeEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}
