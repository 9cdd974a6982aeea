package service

import (
	"context"
	"testing"
	"time"

	"teamzen/internal/domain"
)

func TestMemoryAdviceCacheFingerprint(t *testing.T) {
	cache := NewMemoryAdviceCache()
	advice := domain.Advice{Summary: "cacheado", Source: domain.AdviceSourceAI}

	if err := cache.Set(context.Background(), "k", "fp-1", advice, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := cache.Get(context.Background(), "k", "fp-1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Summary != "cacheado" {
		t.Fatalf("summary = %q", got.Summary)
	}

	// Insumos distintos invalidan la entrada aunque la clave coincida.
	if _, ok, _ := cache.Get(context.Background(), "k", "fp-2"); ok {
		t.Fatal("expected miss on fingerprint mismatch")
	}
	if _, ok, _ := cache.Get(context.Background(), "otra", "fp-1"); ok {
		t.Fatal("expected miss on unknown key")
	}
}

func TestMemoryAdviceCacheExpiry(t *testing.T) {
	cache := NewMemoryAdviceCache()
	advice := domain.Advice{Summary: "efimero"}

	if err := cache.Set(context.Background(), "k", "fp", advice, -time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := cache.Get(context.Background(), "k", "fp"); ok {
		t.Fatal("expected miss on expired entry")
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := domain.AdviceInput{Current: domain.AdviceMetrics{AE: 10, D: 5, RP: 40, Wellbeing: 70}}
	b := domain.AdviceInput{Current: domain.AdviceMetrics{AE: 10, D: 5, RP: 40, Wellbeing: 70}}
	c := domain.AdviceInput{Current: domain.AdviceMetrics{AE: 11, D: 5, RP: 40, Wellbeing: 70}}

	if Fingerprint(a) != Fingerprint(b) {
		t.Fatal("same input must produce the same fingerprint")
	}
	if Fingerprint(a) == Fingerprint(c) {
		t.Fatal("different input must change the fingerprint")
	}
	if Fingerprint(a) == "" {
		t.Fatal("fingerprint must not be empty")
	}
}

func TestMemoryAdviceRateLimiter(t *testing.T) {
	limiter := NewMemoryAdviceRateLimiter(time.Hour, 2)

	if !limiter.Allow("k") || !limiter.Allow("k") {
		t.Fatal("first two calls should pass")
	}
	if limiter.Allow("k") {
		t.Fatal("third call within the window should be denied")
	}
	// Otra clave tiene su propio cupo.
	if !limiter.Allow("otra") {
		t.Fatal("independent key should pass")
	}
	if limiter.Allow("") {
		t.Fatal("empty key should be denied")
	}
}
