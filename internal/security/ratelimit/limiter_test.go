package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterWindow(t *testing.T) {
	l := NewLimiter(2, time.Minute)
	defer l.Stop()

	now := time.Now()
	if !l.allowAt("10.0.0.1", now) || !l.allowAt("10.0.0.1", now.Add(time.Second)) {
		t.Fatalf("first two requests should pass")
	}
	if l.allowAt("10.0.0.1", now.Add(2*time.Second)) {
		t.Fatalf("third request inside the window should be limited")
	}
	if !l.allowAt("10.0.0.2", now.Add(2*time.Second)) {
		t.Fatalf("other clients have their own bucket")
	}
	if !l.allowAt("10.0.0.1", now.Add(61*time.Second)) {
		t.Fatalf("request after the window should pass")
	}
}

func TestLimiterEmptyKeyUnlimited(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		if !l.Allow("") {
			t.Fatalf("empty key must not be limited")
		}
	}
	l.Stop()
}
