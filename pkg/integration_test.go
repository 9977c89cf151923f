package affinity

// integration_test.go exercises the six end-to-end narrative scenarios
// plus the |affinity| <= 1 bound property, all driven through World the
// way a host actually would rather than by poking individual components.
//
// © 2025 affinity-core authors. MIT License.

import (
	"math"
	"testing"

	"github.com/emberhollow/affinity/internal/affordance"
	"github.com/emberhollow/affinity/internal/snapshotstore"
)

func newIntegrationWorld(t *testing.T) *World {
	t.Helper()
	cfg, err := NewConfig()
	if err != nil {
		t.Fatal(err)
	}
	store, err := snapshotstore.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	w := NewWorld(cfg, store)
	if err := w.Affordances.Register(affordance.Affordance{
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
	}); err != nil {
		t.Fatal(err)
	}
	return w
}

// 1. Fire event -> hostile affinity -> pathing slow.
func TestScenarioFireEventTriggersHostilePathing(t *testing.T) {
	w := newIntegrationWorld(t)
	e, err := NewLocation("forest_1", map[string]float64{
		"harm.fire": -0.8, "extract.hunt": -0.4, "offer.gift": 0.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	w.Entities.Register(e)

	hunter := map[string]struct{}{"human": {}, "hunter": {}, "outsider": {}}
	if err := w.LogEvent("forest_1", Event{
		Type: "harm.fire", ActorID: "player_0042", ActorTags: hunter,
		Intensity: 1.0, Timestamp: 0,
	}); err != nil {
		t.Fatal(err)
	}

	outcome, err := w.Evaluate(AffordanceContext{
		ActorID: "player_0042", ActorTags: hunter, Entity: e,
		ActionType: "move.pass", Timestamp: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Affinity >= 0 {
		t.Fatalf("expected negative affinity after a hostile fire event, got %v", outcome.Affinity)
	}
	if !outcome.Triggered {
		t.Fatal("expected pathing to trigger on hostile affinity")
	}
	if outcome.Adjustments["room.travel_time_modifier"] <= 0 {
		t.Fatalf("expected a positive (slowing) travel time modifier, got %v", outcome.Adjustments["room.travel_time_modifier"])
	}
	if len(outcome.Tells) == 0 {
		t.Fatal("expected at least one hostile tell")
	}
}

// 2. Neutral location produces no trigger.
func TestScenarioNeutralLocationDoesNotTrigger(t *testing.T) {
	w := newIntegrationWorld(t)
	e, err := NewLocation("market_1", map[string]float64{"trade.fair": 0.3})
	if err != nil {
		t.Fatal(err)
	}
	w.Entities.Register(e)

	actorTags := map[string]struct{}{}
	if err := w.LogEvent("market_1", Event{
		Type: "move.pass", ActorID: "player_1", Intensity: 0.05, Timestamp: 0,
	}); err != nil {
		t.Fatal(err)
	}

	outcome, err := w.Evaluate(AffordanceContext{
		ActorID: "player_1", ActorTags: actorTags, Entity: e,
		ActionType: "move.pass", Timestamp: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Triggered {
		t.Fatalf("expected no trigger on a near-neutral affinity, got adjustments %v", outcome.Adjustments)
	}
	if len(outcome.Adjustments) != 0 {
		t.Fatalf("expected empty adjustments, got %v", outcome.Adjustments)
	}
	if len(outcome.Tells) != 0 {
		t.Fatalf("expected empty tells, got %v", outcome.Tells)
	}
	if math.Abs(outcome.Affinity) >= 0.3 {
		t.Fatalf("expected a mild affinity magnitude, got %v", outcome.Affinity)
	}
}

// 3. Gift counterplay cycle pulls affinity back toward neutral.
func TestScenarioGiftCounterplayPullsBackTowardNeutral(t *testing.T) {
	w := newIntegrationWorld(t)
	e, err := NewLocation("forest_2", map[string]float64{
		"harm.fire": -0.8, "offer.gift": 0.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	w.Entities.Register(e)

	hunter := map[string]struct{}{"human": {}, "hunter": {}}
	if err := w.LogEvent("forest_2", Event{
		Type: "harm.fire", ActorID: "player_1", ActorTags: hunter, Intensity: 0.6, Timestamp: 0,
	}); err != nil {
		t.Fatal(err)
	}

	cfg := w.Configs.Current()
	before := e.ComputeAffinity(cfg, 1, "player_1", hunter)
	if before >= 0 {
		t.Fatalf("expected the hostile fire event to start affinity negative, got %v", before)
	}

	for i := 0; i < 3; i++ {
		ts := float64(i+1) * 3 * 86400
		if err := w.LogEvent("forest_2", Event{
			Type: "offer.gift", ActorID: "player_1", ActorTags: hunter, Intensity: 0.5, Timestamp: ts,
		}); err != nil {
			t.Fatal(err)
		}
	}

	after := e.ComputeAffinity(cfg, 10*86400, "player_1", hunter)
	if math.Abs(after) >= math.Abs(before) {
		t.Fatalf("expected repeated gifts to pull affinity back toward neutral: before=%v after=%v", before, after)
	}
}

// 4. Decay across a personal half-life shrinks affinity magnitude. Isolated
// to the personal channel alone (weight 1.0, group/behavior/institutional
// zeroed) so the half-life boundary lines up with a single channel's decay
// curve rather than a blend of three different half-lives.
func TestScenarioDecayAcrossPersonalHalfLife(t *testing.T) {
	cfg, err := NewConfig(WithChannelWeights(ChannelWeights{Personal: 1.0}))
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewLocation("forest_3", map[string]float64{"harm.fire": -0.8})
	if err != nil {
		t.Fatal(err)
	}
	e.LogEvent(cfg, Event{Type: "harm.fire", ActorID: "player_1", Intensity: 0.6, Timestamp: 0})

	initial := e.ComputeAffinity(cfg, 0, "player_1", nil)
	halfLifeSeconds := cfg.HalfLives[EntityLocation].PersonalDays * 86400
	later := e.ComputeAffinity(cfg, halfLifeSeconds, "player_1", nil)

	if math.Abs(later) >= 0.7*math.Abs(initial) {
		t.Fatalf("expected magnitude to fall below 0.7x after one half-life: initial=%v later=%v", initial, later)
	}
}

// 5. Snapshot round-trip: replay reproduces the recorded outcome bit-exactly
// even after the live entity is perturbed.
func TestScenarioSnapshotRoundTripSurvivesLivePerturbation(t *testing.T) {
	w := newIntegrationWorld(t)
	e, err := NewLocation("forest_4", map[string]float64{"harm.fire": -0.8})
	if err != nil {
		t.Fatal(err)
	}
	w.Entities.Register(e)

	hunter := map[string]struct{}{"hunter": {}}
	for i := 0; i < 3; i++ {
		if err := w.LogEvent("forest_4", Event{
			Type: "harm.fire", ActorID: "player_1", ActorTags: hunter,
			Intensity: 0.6, Timestamp: float64(i) * 60,
		}); err != nil {
			t.Fatal(err)
		}
	}

	ctx := AffordanceContext{ActorID: "player_1", ActorTags: hunter, Entity: e, ActionType: "move.pass", Timestamp: 200}
	outcome, err := w.Evaluate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Triggered {
		t.Fatal("expected pathing to trigger before snapshotting")
	}

	history, err := w.History("forest_4", 1, 200)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("expected exactly one persisted snapshot, got %d", len(history))
	}
	triggerID := history[0].TriggerID

	// Perturb the live entity after the snapshot was captured.
	if err := w.LogEvent("forest_4", Event{
		Type: "offer.gift", ActorID: "player_1", ActorTags: hunter, Intensity: 1, Timestamp: 500,
	}); err != nil {
		t.Fatal(err)
	}

	replayed, err := w.Replay(triggerID)
	if err != nil {
		t.Fatalf("expected bit-exact replay, got: %v", err)
	}
	if replayed.Affinity != outcome.Affinity {
		t.Fatalf("affinity mismatch after replay: replay=%v original=%v", replayed.Affinity, outcome.Affinity)
	}
	for k, v := range outcome.Adjustments {
		if replayed.Adjustments[k] != v {
			t.Fatalf("adjustment %q mismatch: replay=%v original=%v", k, replayed.Adjustments[k], v)
		}
	}
	if len(replayed.Tells) != len(outcome.Tells) {
		t.Fatalf("tell count mismatch: replay=%v original=%v", replayed.Tells, outcome.Tells)
	}
}

// 6. Fire-in-forest magic penalty stacks a base clamp with a condition bonus
// and is reproducible under replay.
func TestScenarioFireInForestMagicPenaltyStacksAndReplays(t *testing.T) {
	w := newIntegrationWorld(t)
	e, err := NewLocation("forest_5", map[string]float64{"harm.fire": -0.8})
	if err != nil {
		t.Fatal(err)
	}
	w.Entities.Register(e)

	err = w.Affordances.Register(affordance.Affordance{
		Name:               "fire_spell_backfire",
		Kind:               affordance.ActionGeneral,
		Action:             "cast.fire_spell",
		HostileThreshold:   -0.3,
		FavorableThreshold: 0.9, // effectively hostile-only for this scenario
		HostileClamp:       affordance.ClampRange{Min: 0.25, Max: 0.6},
		FavorableClamp:     affordance.ClampRange{Min: 0, Max: 0},
		Handles:            []affordance.Handle{affordance.HandleSpellPowerModifier, affordance.HandleSpellBackfireChance},
		ConditionEventType: "harm.fire",
		Condition: func(affinityVal, forestFireValuation float64) (float64, bool) {
			if forestFireValuation < 0 {
				return 0.15, true
			}
			return 0, false
		},
		HostileTells:    []string{"the flames resist your will"},
		CooldownSeconds: 30,
	})
	if err != nil {
		t.Fatal(err)
	}

	hunter := map[string]struct{}{"hunter": {}}
	if err := w.LogEvent("forest_5", Event{
		Type: "harm.fire", ActorID: "player_1", ActorTags: hunter, Intensity: 1.0, Timestamp: 0,
	}); err != nil {
		t.Fatal(err)
	}

	ctx := AffordanceContext{ActorID: "player_1", ActorTags: hunter, Entity: e, ActionType: "cast.fire_spell", Timestamp: 1}
	outcome, err := w.Evaluate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Triggered {
		t.Fatalf("expected the spell penalty to trigger at mild hostility, affinity=%v", outcome.Affinity)
	}
	powerPenalty := outcome.Adjustments["spell.power_modifier"]
	backfireBump := outcome.Adjustments["spell.backfire_chance"]
	if math.Abs(powerPenalty) <= 0.25 {
		t.Fatalf("expected the condition bonus to push the power penalty beyond the base clamp, got %v", powerPenalty)
	}
	if math.Abs(backfireBump) <= 0.25 {
		t.Fatalf("expected the condition bonus to push the backfire increase beyond the base clamp, got %v", backfireBump)
	}

	history, err := w.History("forest_5", 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	replayed, err := w.Replay(history[0].TriggerID)
	if err != nil {
		t.Fatalf("expected stacked penalty to replay bit-exactly: %v", err)
	}
	if replayed.Adjustments["spell.power_modifier"] != powerPenalty {
		t.Fatalf("power penalty mismatch on replay: replay=%v original=%v", replayed.Adjustments["spell.power_modifier"], powerPenalty)
	}
	if replayed.Adjustments["spell.backfire_chance"] != backfireBump {
		t.Fatalf("backfire mismatch on replay: replay=%v original=%v", replayed.Adjustments["spell.backfire_chance"], backfireBump)
	}
}

// Universal property: |compute_affinity| <= 1.0 for a wide spread of
// intensities and event counts (spec.md §8).
func TestPropertyAffinityMagnitudeNeverExceedsOne(t *testing.T) {
	cfg, err := NewConfig()
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewLocation("stress_room", map[string]float64{
		"harm.fire": -1, "offer.gift": 1, "trade.barter": 0.6,
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 200; i++ {
		eventType := []string{"harm.fire", "offer.gift", "trade.barter"}[i%3]
		e.LogEvent(cfg, Event{
			Type: eventType, ActorID: "player_stress", Intensity: 1, Timestamp: float64(i) * 5,
		})
	}

	affinity := e.ComputeAffinity(cfg, 1000, "player_stress", nil)
	if math.Abs(affinity) > 1.0 {
		t.Fatalf("affinity magnitude exceeded 1.0: %v", affinity)
	}
}
