package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(t *testing.T, rps float64, burst int) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{RequestsPerSecond: rps, Burst: burst, Now: clock.now})
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestAllowConsumesBurstThenRefills(t *testing.T) {
	rl, clock := newTestLimiter(t, 2, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Fatalf("request %d rejected within burst", i+1)
		}
	}
	if rl.Allow("a") {
		t.Fatal("request beyond burst allowed")
	}

	clock.t = clock.t.Add(500 * time.Millisecond)
	if !rl.Allow("a") {
		t.Fatal("token not refilled after 500ms at 2 rps")
	}
	if rl.Allow("a") {
		t.Fatal("only one token should have been refilled")
	}

	clock.t = clock.t.Add(time.Hour)
	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Fatalf("refill should cap at burst, request %d rejected", i+1)
		}
	}
	if rl.Allow("a") {
		t.Fatal("bucket refilled beyond burst")
	}

	if got := rl.GetMetrics().TotalHits; got != 3 {
		t.Errorf("TotalHits = %d, want 3", got)
	}
}

func TestAllowIsPerClient(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 1)
	if !rl.Allow("a") || !rl.Allow("b") {
		t.Fatal("first request of each client must pass")
	}
	if rl.Allow("a") {
		t.Fatal("client a should be limited")
	}
	if got := rl.GetMetrics().ClientCount; got != 2 {
		t.Errorf("ClientCount = %d, want 2", got)
	}
}

func TestCleanupDropsIdleClients(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, 1)
	rl.Allow("a")
	clock.t = clock.t.Add(11 * time.Minute)
	rl.Allow("b")

	rl.cleanupStaleEntries()
	if got := rl.GetMetrics().ClientCount; got != 1 {
		t.Fatalf("ClientCount = %d, want 1", got)
	}
}

func TestMiddlewareLimitsOnlyUnsafeMethods(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 1)
	h := rl.Middleware(func(*http.Request) string { return "client" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	serve := func(method string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/api/cart/lines", nil))
		return rr
	}

	if rr := serve(http.MethodPost); rr.Code != http.StatusNoContent {
		t.Fatalf("first POST status = %d", rr.Code)
	}
	rr := serve(http.MethodPost)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q, want 1", rr.Header().Get("Retry-After"))
	}
	for i := 0; i < 5; i++ {
		if rr := serve(http.MethodGet); rr.Code != http.StatusNoContent {
			t.Fatalf("GET status = %d", rr.Code)
		}
	}
}
