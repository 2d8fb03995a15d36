package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterRefill(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("burst not allowed")
	}
	if l.Allow("a") {
		t.Fatal("allowed past capacity")
	}
	if !l.Allow("b") {
		t.Fatal("keys are not independent")
	}

	now = now.Add(1500 * time.Millisecond)
	if !l.Allow("a") {
		t.Fatal("no token after refill")
	}
	if l.Allow("a") {
		t.Fatal("refill exceeded elapsed time")
	}
}

func TestLimiterDisabled(t *testing.T) {
	l := New(1, 0)
	for i := 0; i < 10; i++ {
		if !l.Allow("a") {
			t.Fatal("disabled limiter rejected a call")
		}
	}
}
