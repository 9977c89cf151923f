package cooldown

import "testing"

func TestMonotonicExtensionOnly(t *testing.T) {
	r := NewRegistry()
	tok := Token("path.hostile_slow", "player_0042", "room_forest_1")

	r.Extend(tok, 100)
	if !r.IsActive(tok, 50) {
		t.Fatal("expected active before expiry")
	}

	// Attempting to shorten must be a no-op.
	r.Extend(tok, 60)
	if !r.IsActive(tok, 80) {
		t.Fatal("shortening a cooldown must not take effect")
	}

	// Extending further should work.
	r.Extend(tok, 200)
	if !r.IsActive(tok, 150) {
		t.Fatal("extension should take effect")
	}
}

func TestSweepRemovesExpiredOnly(t *testing.T) {
	r := NewRegistry()
	r.Extend("a", 10)
	r.Extend("b", 1000)

	removed := r.Sweep(500)
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if r.IsActive("a", 500) {
		t.Fatal("expired token should no longer be active")
	}
	if !r.IsActive("b", 500) {
		t.Fatal("unexpired token should remain active")
	}
}

func TestCooldownTriggerWindow(t *testing.T) {
	r := NewRegistry()
	tok := Token("aff", "actor", "entity")
	const t0, c = 100.0, 30.0

	r.Extend(tok, t0+c)
	for ts := t0; ts < t0+c; ts += 5 {
		if !r.IsActive(tok, ts) {
			t.Fatalf("expected cooldown active at %v", ts)
		}
	}
	if r.IsActive(tok, t0+c) {
		t.Fatalf("expected cooldown expired at %v", t0+c)
	}
}
