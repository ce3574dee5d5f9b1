package server

import (
	"testing"
	"time"
)

func TestRateLimiterWindows(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	r := newRateLimiter(2, time.Minute)
	r.now = func() time.Time { return now }

	if !r.Allow("u1") || !r.Allow("u1") {
		t.Fatalf("expected first two writes to pass")
	}
	if r.Allow("u1") {
		t.Fatalf("expected third write in window to be limited")
	}
	if !r.Allow("u2") {
		t.Fatalf("expected other users to be unaffected")
	}

	now = now.Add(time.Minute)
	if !r.Allow("u1") {
		t.Fatalf("expected a fresh window after expiry")
	}
}

func TestRateLimiterRejectsAnonymous(t *testing.T) {
	if newRateLimiter(10, time.Minute).Allow("") {
		t.Fatalf("expected empty user to be rejected")
	}
}

func TestRateLimiterSweepsExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	r := newRateLimiter(1, time.Minute)
	r.now = func() time.Time { return now }
	r.windows["stale"] = &writeWindow{start: now.Add(-2 * time.Minute)}

	r.sweep(now)
	if _, ok := r.windows["stale"]; ok {
		t.Fatalf("expected stale window to be swept")
	}
}
