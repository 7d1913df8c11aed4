package server

import (
	"testing"
	"time"
)

func TestLoginRateLimiter_BlocksAfterMaxFailures(t *testing.T) {
	limiter := newLoginRateLimiter(3, time.Minute, 5*time.Minute)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("alice|127.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
		limiter.RegisterFailure("alice|127.0.0.1")
	}

	if limiter.Allow("alice|127.0.0.1") {
		t.Fatal("expected block after max failures")
	}
}

func TestLoginRateLimiter_KeysAreIndependent(t *testing.T) {
	limiter := newLoginRateLimiter(1, time.Minute, 5*time.Minute)

	limiter.RegisterFailure("alice|127.0.0.1")
	if limiter.Allow("alice|127.0.0.1") {
		t.Fatal("expected alice to be blocked")
	}
	if !limiter.Allow("bob|127.0.0.1") {
		t.Fatal("expected bob to be unaffected")
	}
}

func TestLoginRateLimiter_ResetClearsFailures(t *testing.T) {
	limiter := newLoginRateLimiter(1, time.Minute, 5*time.Minute)

	limiter.RegisterFailure("alice|127.0.0.1")
	limiter.Reset("alice|127.0.0.1")
	if !limiter.Allow("alice|127.0.0.1") {
		t.Fatal("expected reset to unblock")
	}
}
