package affinity

import (
	"testing"

	"github.com/emberhollow/affinity/internal/trace"
)

func TestWorldTickPrunesAcrossAllRegisteredEntities(t *testing.T) {
	w := newTestWorld(t)
	cfg, err := NewConfig(WithCompaction(CompactionConfig{
		HotWindowDays: 30, WarmWindowDays: 180,
		ScarIntensityThreshold: 3.0, ScarHalfLifeDays: 365,
		PruneThreshold: 0.2,
	}))
	if err != nil {
		t.Fatal(err)
	}
	w.Configs.Swap(cfg)

	a, err := NewLocation("room_tick_1", map[string]float64{"harm.fire": -1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewLocation("room_tick_2", map[string]float64{"harm.fire": -1})
	if err != nil {
		t.Fatal(err)
	}
	a.LogEvent(cfg, Event{Type: "harm.fire", ActorID: "player_1", Intensity: 0.1, Timestamp: 0})
	b.LogEvent(cfg, Event{Type: "harm.fire", ActorID: "player_1", Intensity: 0.1, Timestamp: 0})
	w.Entities.Register(a)
	w.Entities.Register(b)

	farFuture := 100 * 86400.0
	w.Tick(farFuture, 4)

	if countPersonal(a) != 0 {
		t.Fatal("expected decayed-below-threshold trace to be pruned on entity a")
	}
	if countPersonal(b) != 0 {
		t.Fatal("expected decayed-below-threshold trace to be pruned on entity b")
	}
}

func TestWorldCompactPromotesAcrossAllRegisteredEntities(t *testing.T) {
	w := newTestWorld(t)
	cfg, err := NewConfig(WithCompaction(CompactionConfig{
		HotWindowDays: 1, WarmWindowDays: 5,
		ScarIntensityThreshold: 0.05, ScarHalfLifeDays: 365,
		PruneThreshold: 0,
	}))
	if err != nil {
		t.Fatal(err)
	}
	w.Configs.Swap(cfg)

	e, err := NewLocation("room_tick_3", map[string]float64{"harm.murder": -1})
	if err != nil {
		t.Fatal(err)
	}
	e.LogEvent(cfg, Event{Type: "harm.murder", ActorID: "player_1", Intensity: 1, Timestamp: 0})
	w.Entities.Register(e)

	w.Compact(10*86400, 2)

	rec, ok := e.behavior.Get(trace.BehaviorKey{EventType: "harm.murder"})
	if !ok {
		t.Fatal("expected a strong behavior trace to survive compaction")
	}
	if !rec.IsScar {
		t.Fatal("expected the strong behavior trace to be promoted to a scar after compaction")
	}
}

func countPersonal(e *Entity) int {
	n := 0
	e.personal.Range(func(trace.PersonalKey, *trace.Record) { n++ })
	return n
}
