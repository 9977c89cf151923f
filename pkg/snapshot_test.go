package affinity

import (
	"testing"

	"github.com/emberhollow/affinity/internal/affordance"
)

func pathingRegistry(t *testing.T) *AffordanceRegistry {
	t.Helper()
	reg := NewAffordanceRegistry()
	err := reg.Register(affordance.Affordance{
		Name:               "path_hostile_slow",
		Kind:               affordance.ActionMovement,
		HostileThreshold:   -0.3,
		FavorableThreshold: 0.3,
		HostileClamp:       affordance.ClampRange{Min: 0, Max: 1},
		FavorableClamp:     affordance.ClampRange{Min: 0, Max: 1},
		Handles:            []affordance.Handle{affordance.HandleRoomTravelTimeModifier},
		HostileTells:       []string{"the path seems to resist your steps"},
		FavorableTells:     []string{"the way opens easily before you"},
		CooldownSeconds:    60,
	})
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestSnapshotReplayMatchesOriginalTrigger(t *testing.T) {
	cfg, err := NewConfig()
	if err != nil {
		t.Fatal(err)
	}
	reg := pathingRegistry(t)

	e, err := NewLocation("room_forest_1", map[string]float64{"harm.fire": -1})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		e.LogEvent(cfg, Event{Type: "harm.fire", ActorID: "player_1", Intensity: 1, Timestamp: float64(i) * 60})
	}

	ctx := AffordanceContext{ActorID: "player_1", Entity: e, ActionType: "move.pass", Timestamp: 200}
	outcome := reg.EvaluateAffordances(cfg, ctx)
	if !outcome.Triggered {
		t.Fatal("expected the pathing affordance to trigger after repeated hostile fire events")
	}

	snap := FreezeSnapshot(cfg, ctx, outcome)

	// Perturb live traces after freezing: the snapshot must be unaffected.
	e.LogEvent(cfg, Event{Type: "harm.fire", ActorID: "player_1", Intensity: 1, Timestamp: 500})

	replayed, err := Replay(reg, snap)
	if err != nil {
		t.Fatalf("expected bit-exact replay, got mismatch: %v", err)
	}
	if replayed.Affinity != outcome.Affinity {
		t.Fatalf("affinity mismatch: replay=%v original=%v", replayed.Affinity, outcome.Affinity)
	}
	for k, v := range outcome.Adjustments {
		if replayed.Adjustments[k] != v {
			t.Fatalf("adjustment %q mismatch: replay=%v original=%v", k, replayed.Adjustments[k], v)
		}
	}
	if len(replayed.Tells) != len(outcome.Tells) {
		t.Fatalf("tell count mismatch: replay=%d original=%d", len(replayed.Tells), len(outcome.Tells))
	}
}

func TestReevalReflectsLiveTracesNotSnapshot(t *testing.T) {
	cfg, err := NewConfig()
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewLocation("room_forest_2", map[string]float64{"harm.fire": -1})
	if err != nil {
		t.Fatal(err)
	}
	e.LogEvent(cfg, Event{Type: "harm.fire", ActorID: "player_2", Intensity: 1, Timestamp: 0})

	first := Reeval(cfg, e, "player_2", nil, 10)
	e.LogEvent(cfg, Event{Type: "harm.fire", ActorID: "player_2", Intensity: 1, Timestamp: 20})
	second := Reeval(cfg, e, "player_2", nil, 30)

	if second >= first {
		t.Fatalf("expected additional hostile events to push affinity further negative: first=%v second=%v", first, second)
	}
}
