package trace

import (
	"math"
	"testing"
)

func TestDecayedBounds(t *testing.T) {
	r := Record{Accumulated: 1.0, LastUpdated: 0}
	for _, now := range []float64{0, 1, 10, 1000, 1e6} {
		d := r.Decayed(now, 86400)
		if d < 0 || d > r.Accumulated+1e-9 {
			t.Fatalf("decayed(%v) = %v out of bounds [0, %v]", now, d, r.Accumulated)
		}
	}
}

func TestDecayHalfLifeTolerance(t *testing.T) {
	const halfLife = 86400.0
	r := Record{Accumulated: 10.0, LastUpdated: 0}

	got := r.Decayed(halfLife, halfLife)
	want := 5.0
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("after one half-life: got %v want ~%v", got, want)
	}

	got2 := r.Decayed(2*halfLife, halfLife)
	want2 := 2.5
	if math.Abs(got2-want2) > 1e-6 {
		t.Fatalf("after two half-lives: got %v want ~%v", got2, want2)
	}
}

func TestOutOfOrderClampsElapsedToZero(t *testing.T) {
	r := Record{Accumulated: 4.0, LastUpdated: 100}
	got := r.Decayed(50, 86400) // now < LastUpdated
	if got != r.Accumulated {
		t.Fatalf("expected append-without-decay, got %v want %v", got, r.Accumulated)
	}
}

func TestUpsertMonotonicLastUpdated(t *testing.T) {
	tbl := NewTable[PersonalKey]()
	key := PersonalKey{ActorID: "p1", EventType: "harm.fire"}

	tbl.Upsert(key, 100, 0.5, 0, 86400)
	rec, _ := tbl.Get(key)
	if rec.LastUpdated != 100 {
		t.Fatalf("want LastUpdated=100, got %v", rec.LastUpdated)
	}

	// Out-of-order event: timestamp earlier than LastUpdated must not move
	// LastUpdated backwards.
	tbl.Upsert(key, 50, 0.5, 0, 86400)
	rec, _ = tbl.Get(key)
	if rec.LastUpdated != 100 {
		t.Fatalf("LastUpdated regressed: got %v want 100", rec.LastUpdated)
	}
	if rec.EventCount != 2 {
		t.Fatalf("want EventCount=2, got %d", rec.EventCount)
	}
}

func TestSaturationDampensAcceptance(t *testing.T) {
	tbl := NewTable[BehaviorKey]()
	key := BehaviorKey{EventType: "offer.gift"}

	tbl.Upsert(key, 0, 1.0, 0.0, 86400)
	unsaturated, _ := tbl.Get(key)

	tbl2 := NewTable[BehaviorKey]()
	tbl2.Upsert(key, 0, 1.0, 0.9, 86400)
	saturated, _ := tbl2.Get(key)

	if saturated.Accumulated >= unsaturated.Accumulated {
		t.Fatalf("expected saturation to dampen acceptance: saturated=%v unsaturated=%v",
			saturated.Accumulated, unsaturated.Accumulated)
	}
}

func TestPrunePredicate(t *testing.T) {
	tbl := NewTable[BehaviorKey]()
	tbl.Upsert(BehaviorKey{EventType: "keep"}, 0, 1.0, 0, 86400)
	tbl.Upsert(BehaviorKey{EventType: "drop"}, 0, 0.0001, 0, 86400)

	pruned := tbl.Prune(0, func(*Record) float64 { return 86400 }, 0.001)
	if pruned != 1 {
		t.Fatalf("expected 1 pruned, got %d", pruned)
	}
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 remaining, got %d", tbl.Len())
	}
}

func TestDeepCopyIndependence(t *testing.T) {
	tbl := NewTable[BehaviorKey]()
	key := BehaviorKey{EventType: "harm.fire"}
	tbl.Upsert(key, 0, 1.0, 0, 86400)

	cp := tbl.DeepCopy()
	cp.Upsert(key, 10, 1.0, 0, 86400)

	orig, _ := tbl.Get(key)
	copied, _ := cp.Get(key)
	if orig.EventCount == copied.EventCount {
		t.Fatalf("expected deep copy to diverge: orig=%d copied=%d", orig.EventCount, copied.EventCount)
	}
}
