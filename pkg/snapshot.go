package affinity

// snapshot.go implements C9: freezing a triggered affordance evaluation into
// a self-contained AffordanceSnapshot, and recomputing it from that frozen
// state alone (Replay) versus against current live traces (Reeval). Replay
// never touches an Entity; it rebuilds scratch trace tables from the frozen
// entries via trace.FromEntries so recomputation cannot accidentally read
// live state (spec.md §4.9: "recompute ... from the snapshot alone").
//
// © 2025 affinity-core authors. MIT License.

import (
	"fmt"
	"math"

	"github.com/emberhollow/affinity/internal/affordance"
	"github.com/emberhollow/affinity/internal/trace"
	"github.com/emberhollow/affinity/internal/valuation"
)

// AffordanceSnapshot freezes every input and output an affordance trigger
// needs to be recomputed without consulting any live, mutable state (spec.md
// §4.9).
type AffordanceSnapshot struct {
	TriggerID  string
	Timestamp  float64
	ActorID    string
	ActorTags  map[string]struct{}
	EntityID   string
	ActionType string

	PersonalEntries []trace.Entry[trace.PersonalKey]
	GroupEntries    []trace.Entry[trace.GroupKey]
	BehaviorEntries []trace.Entry[trace.BehaviorKey]

	Profile                    valuation.Profile
	HalfLives                  ChannelHalfLifeSeconds
	Weights                    ChannelWeights
	ScarHalfLifeSeconds        float64
	AffinityScale              float64
	InstitutionalContribution  float64

	ComputedAffinity float64
	ThresholdLabel   string
	AffordanceNames  []string
	Adjustments      map[string]float64
	Tells            []string
	RedirectTarget   string
}

// FreezeSnapshot captures everything EvaluateAffordances just used to reach
// outcome, deep-copying every mutable input so later live activity on the
// entity cannot perturb the frozen record. Callers must already hold no
// lock on ctx.Entity; FreezeSnapshot takes its own read lock.
func FreezeSnapshot(cfg *Config, ctx AffordanceContext, outcome AffordanceOutcome) AffordanceSnapshot {
	e := ctx.Entity
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := AffordanceSnapshot{
		TriggerID:  fmt.Sprintf("%s|%s|%s|%.6f", e.ID, ctx.ActorID, ctx.ActionType, ctx.Timestamp),
		Timestamp:  ctx.Timestamp,
		ActorID:    ctx.ActorID,
		ActorTags:  copyTagSet(ctx.ActorTags),
		EntityID:   e.ID,
		ActionType: ctx.ActionType,

		Profile:                   copyProfile(e.Profile),
		HalfLives:                 cfg.HalfLifeSeconds(e.Kind),
		Weights:                   cfg.ChannelWeights,
		ScarHalfLifeSeconds:       cfg.Compaction.ScarHalfLifeDays * 86400,
		AffinityScale:             cfg.AffinityScale,
		InstitutionalContribution: e.institutionBiasFor(ctx.ActorTags),

		ComputedAffinity: outcome.Affinity,
		ThresholdLabel:   outcome.ThresholdLabel,
		AffordanceNames:  append([]string(nil), outcome.AffordanceNames...),
		Adjustments:      copyAdjustments(outcome.Adjustments),
		Tells:            append([]string(nil), outcome.Tells...),
		RedirectTarget:   outcome.RedirectTarget,
	}
	if e.HasChannels() {
		snap.PersonalEntries = e.personal.Entries()
		snap.GroupEntries = e.group.Entries()
		snap.BehaviorEntries = e.behavior.Entries()
	}
	return snap
}

// Replay recomputes affinity and the triggered affordances' adjustments and
// tells purely from snap, never touching a live Entity, and returns the
// recomputed outcome alongside the first SnapshotMismatch found against the
// frozen record (nil if the replay matches bit-exactly).
func Replay(reg *AffordanceRegistry, snap AffordanceSnapshot) (AffordanceOutcome, error) {
	affinityVal := computeAffinityFromSnapshot(snap)
	out := AffordanceOutcome{
		Adjustments:     make(map[string]float64),
		Affinity:        affinityVal,
		ThresholdLabel:  thresholdLabel(affinityVal),
		AffordanceNames: append([]string(nil), snap.AffordanceNames...),
	}

	for _, name := range snap.AffordanceNames {
		aff, ok := reg.Get(name)
		if !ok {
			return out, &ValidationError{Reason: fmt.Sprintf("replay %s: unknown affordance %q", snap.TriggerID, name)}
		}
		triggered, hostile := affordance.Crossed(aff, affinityVal)
		if !triggered {
			return out, &SnapshotMismatch{SnapshotID: snap.TriggerID, Field: "triggered:" + name, Want: true, Got: false}
		}

		adjustments, tells := appliedTrigger(aff, affinityVal, hostile, snap.Profile, snap.ActorID, snap.EntityID, snap.ActionType)
		for h, v := range adjustments {
			out.Adjustments[h] += v
		}
		out.Tells = append(out.Tells, tells...)
	}
	out.Triggered = len(out.AffordanceNames) > 0

	if mismatch := compareOutcomeToSnapshot(out, snap); mismatch != nil {
		return out, mismatch
	}
	return out, nil
}

// compareOutcomeToSnapshot asserts bit-exact equality between a replayed
// outcome and the snapshot it was replayed from (spec.md §4.9, §8 testable
// property "replay determinism").
func compareOutcomeToSnapshot(out AffordanceOutcome, snap AffordanceSnapshot) error {
	if out.Affinity != snap.ComputedAffinity {
		return &SnapshotMismatch{SnapshotID: snap.TriggerID, Field: "computed_affinity", Want: snap.ComputedAffinity, Got: out.Affinity}
	}
	if len(out.Adjustments) != len(snap.Adjustments) {
		return &SnapshotMismatch{SnapshotID: snap.TriggerID, Field: "adjustments.len", Want: len(snap.Adjustments), Got: len(out.Adjustments)}
	}
	for k, v := range snap.Adjustments {
		if out.Adjustments[k] != v {
			return &SnapshotMismatch{SnapshotID: snap.TriggerID, Field: "adjustments." + k, Want: v, Got: out.Adjustments[k]}
		}
	}
	if len(out.Tells) != len(snap.Tells) {
		return &SnapshotMismatch{SnapshotID: snap.TriggerID, Field: "tells.len", Want: len(snap.Tells), Got: len(out.Tells)}
	}
	for i, t := range snap.Tells {
		if out.Tells[i] != t {
			return &SnapshotMismatch{SnapshotID: snap.TriggerID, Field: fmt.Sprintf("tells[%d]", i), Want: t, Got: out.Tells[i]}
		}
	}
	return nil
}

// Reeval computes affinity for actorID/actorTags against e's current live
// traces, distinct from Replay: it is for tuning, never for regression
// assertions (spec.md §4.9).
func Reeval(cfg *Config, e *Entity, actorID string, actorTags map[string]struct{}, now float64) float64 {
	return e.ComputeAffinity(cfg, now, actorID, actorTags)
}

func computeAffinityFromSnapshot(snap AffordanceSnapshot) float64 {
	personal := personalScore(trace.FromEntries(snap.PersonalEntries), snap.Timestamp, snap.HalfLives.Personal, snap.ScarHalfLifeSeconds, snap.Profile, snap.ActorID)
	group := groupScore(trace.FromEntries(snap.GroupEntries), snap.Timestamp, snap.HalfLives.Group, snap.ScarHalfLifeSeconds, snap.Profile, snap.ActorTags)
	behavior := behaviorScore(trace.FromEntries(snap.BehaviorEntries), snap.Timestamp, snap.HalfLives.Behavior, snap.ScarHalfLifeSeconds, snap.Profile)

	raw := snap.Weights.Personal*personal + snap.Weights.Group*group + snap.Weights.Behavior*behavior + snap.Weights.Institutional*snap.InstitutionalContribution
	return math.Tanh(raw * (snap.AffinityScale / 10.0))
}

func copyTagSet(tags map[string]struct{}) map[string]struct{} {
	if tags == nil {
		return nil
	}
	out := make(map[string]struct{}, len(tags))
	for t := range tags {
		out[t] = struct{}{}
	}
	return out
}

func copyProfile(p valuation.Profile) valuation.Profile {
	out := make(valuation.Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func copyAdjustments(adj map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(adj))
	for k, v := range adj {
		out[k] = v
	}
	return out
}
