package security

import (
	"context"
	"testing"
	"time"
)

func TestAPILimiterDisabled(t *testing.T) {
	limiters := []*APILimiter{
		nil,
		NewAPILimiter(0, 5),
		NewAPILimiter(-1, 5),
	}

	for _, l := range limiters {
		for range 100 {
			if !l.Allow() {
				t.Fatal("disabled limiter denied a call")
			}
		}
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("disabled limiter Wait() error = %v", err)
		}
	}
}

func TestAPILimiterBurst(t *testing.T) {
	l := NewAPILimiter(1, 3)

	for i := range 3 {
		if !l.Allow() {
			t.Fatalf("call %d denied within burst", i)
		}
	}
	if l.Allow() {
		t.Error("call beyond burst allowed")
	}
}

func TestAPILimiterMinimumBurst(t *testing.T) {
	l := NewAPILimiter(10, 0)
	if !l.Allow() {
		t.Error("limiter with clamped burst denied first call")
	}
}

func TestAPILimiterWaitCancellation(t *testing.T) {
	l := NewAPILimiter(0.001, 1)
	if !l.Allow() {
		t.Fatal("first call denied")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err == nil {
		t.Error("Wait() returned nil on exhausted bucket with expiring context")
	}
}
