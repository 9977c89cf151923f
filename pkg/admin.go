package affinity

// admin.go implements C11: the read-only admin query surface a host exposes
// to privileged users (spec.md §4.11). None of these operators mutate
// trace state; Inspect, Why, and Test all route through the same pure
// helpers EvaluateAffordances and Replay use, so an admin's view of "what
// would happen" can never drift from what actually happens.
//
// © 2025 affinity-core authors. MIT License.

import (
	"fmt"

	"github.com/emberhollow/affinity/internal/affordance"
)

// InspectResult is the admin inspect() operator's return value: current
// affinity toward the caller plus its backing top traces.
type InspectResult struct {
	Affinity       float64
	ThresholdLabel string
	TopTraces      []TraceContribution
}

// Inspect returns e's current affinity toward callerActorID plus its top
// contributing traces (spec.md §4.11 inspect()). Never mutates e.
func Inspect(cfg *Config, e *Entity, callerActorID string, callerTags map[string]struct{}, now float64) InspectResult {
	affinity := e.ComputeAffinity(cfg, now, callerActorID, callerTags)

	e.mu.RLock()
	traces := topTraceContributions(cfg, e, callerActorID, callerTags, now, 5)
	e.mu.RUnlock()

	return InspectResult{
		Affinity:       affinity,
		ThresholdLabel: thresholdLabel(affinity),
		TopTraces:      traces,
	}
}

// WhyResult is the admin why() operator's return value: the per-channel
// breakdown behind a computed affinity plus its top-k contributions.
type WhyResult struct {
	Affinity         float64
	Personal         float64
	Group            float64
	Behavior         float64
	Institutional    float64
	TopContributions []TraceContribution
}

// Why returns the channel breakdown behind e's affinity toward actorID plus
// the top-k TraceContributions driving it (spec.md §4.11 why()). Never
// mutates e.
func Why(cfg *Config, e *Entity, actorID string, actorTags map[string]struct{}, now float64) WhyResult {
	if !e.HasChannels() {
		return WhyResult{}
	}
	hl := cfg.HalfLifeSeconds(e.Kind)
	scarHL := cfg.Compaction.ScarHalfLifeDays * 86400

	e.mu.RLock()
	personal := personalScore(e.personal, now, hl.Personal, scarHL, e.Profile, actorID)
	group := groupScore(e.group, now, hl.Group, scarHL, e.Profile, actorTags)
	behavior := behaviorScore(e.behavior, now, hl.Behavior, scarHL, e.Profile)
	institutional := e.institutionBiasFor(actorTags)
	traces := topTraceContributions(cfg, e, actorID, actorTags, now, 5)
	e.mu.RUnlock()

	affinity := e.ComputeAffinity(cfg, now, actorID, actorTags)

	return WhyResult{
		Affinity:         affinity,
		Personal:         personal,
		Group:            group,
		Behavior:         behavior,
		Institutional:    institutional,
		TopContributions: traces,
	}
}

// Inspect is World's inspect() operator: it supplies the current config
// snapshot to the free Inspect function so callers need only name the
// entity and caller (spec.md §4.11 inspect()).
func (w *World) Inspect(entityID, callerActorID string, callerTags map[string]struct{}, now float64) (InspectResult, error) {
	e, ok := w.Entities.Get(entityID)
	if !ok {
		return InspectResult{}, &UnknownEntity{EntityID: entityID}
	}
	return Inspect(w.Configs.Current(), e, callerActorID, callerTags, now), nil
}

// Why is World's why() operator, supplying the current config snapshot
// (spec.md §4.11 why()).
func (w *World) Why(entityID, actorID string, actorTags map[string]struct{}, now float64) (WhyResult, error) {
	e, ok := w.Entities.Get(entityID)
	if !ok {
		return WhyResult{}, &UnknownEntity{EntityID: entityID}
	}
	return Why(w.Configs.Current(), e, actorID, actorTags, now), nil
}

// History returns the AffordanceSnapshots recorded for entityID within the
// last hours hours of now, oldest first (spec.md §4.11 history()). Thin
// wrapper over the snapshotstore-backed History so admin callers have one
// surface.
func (w *World) History(entityID string, hours, now float64) ([]AffordanceSnapshot, error) {
	return History(w.Store, entityID, hours, now)
}

// Reeval recomputes entityID's current affinity toward actorID straight off
// its live traces, bypassing any frozen snapshot (spec.md §4.11 reeval(), as
// opposed to replay() which is pinned to what was recorded). Never mutates
// the entity.
func (w *World) Reeval(entityID, actorID string, actorTags map[string]struct{}, now float64) (float64, error) {
	e, ok := w.Entities.Get(entityID)
	if !ok {
		return 0, &UnknownEntity{EntityID: entityID}
	}
	return Reeval(w.Configs.Current(), e, actorID, actorTags, now), nil
}

// Replay recomputes triggerID's recorded outcome purely from its frozen
// snapshot (spec.md §4.11 replay(), as in §4.9).
func (w *World) Replay(triggerID string) (AffordanceOutcome, error) {
	snap, ok, err := LoadSnapshot(w.Store, triggerID)
	if err != nil {
		return AffordanceOutcome{}, err
	}
	if !ok {
		return AffordanceOutcome{}, fmt.Errorf("affinity: no snapshot recorded for trigger %q", triggerID)
	}
	out, err := Replay(w.Affordances, snap)
	if _, mismatched := err.(*SnapshotMismatch); mismatched {
		w.metrics.IncSnapshotMismatch()
	}
	return out, err
}

// Toggle turns affordanceName off entirely (on=false) or back on (on=true)
// without removing its registration (spec.md §4.11 toggle()).
func (w *World) Toggle(affordanceName string, on bool) {
	w.Affordances.Toggle(affordanceName, on)
}

// Test forces affordanceName to trigger along branch ("hostile" or
// "favorable") against a synthetic affinity value just past the
// affordance's threshold on that side, reusing the same appliedTrigger math
// EvaluateAffordances and Replay use (spec.md §4.11 test()). It does not
// touch e's cooldowns or traces.
func (w *World) Test(e *Entity, affordanceName, branch string) (AffordanceOutcome, error) {
	aff, ok := w.Affordances.Get(affordanceName)
	if !ok {
		return AffordanceOutcome{}, &ValidationError{Reason: fmt.Sprintf("test: unknown affordance %q", affordanceName)}
	}

	var affinityVal float64
	var hostile bool
	switch branch {
	case "hostile":
		affinityVal = aff.HostileThreshold - 0.01
		hostile = true
	case "favorable":
		affinityVal = aff.FavorableThreshold + 0.01
		hostile = false
	default:
		return AffordanceOutcome{}, &ValidationError{Reason: fmt.Sprintf("test: unknown branch %q, want \"hostile\" or \"favorable\"", branch)}
	}

	triggered, gotHostile := affordance.Crossed(aff, affinityVal)
	if !triggered || gotHostile != hostile {
		return AffordanceOutcome{}, fmt.Errorf("affinity: synthetic affinity %v did not cross %q's %s threshold", affinityVal, affordanceName, branch)
	}

	adjustments, tells := appliedTrigger(aff, affinityVal, hostile, e.Profile, "admin-test", e.ID, aff.Action)
	return AffordanceOutcome{
		Adjustments:     adjustments,
		Tells:           tells,
		Triggered:       true,
		Affinity:        affinityVal,
		ThresholdLabel:  thresholdLabel(affinityVal),
		AffordanceNames: []string{aff.Name},
	}, nil
}
