package affinity

// affordance.go implements C8: the single public evaluator that maps
// affinity to mechanical handles plus narrative tells, enforcing cooldowns
// and severity clamps (spec.md §4.8). All registration-time validation
// lives in internal/affordance; this file assembles the per-call inputs
// (affinity, valuations, trace contributions) from live Entity state and
// drives the registry's pure math.
//
// © 2025 affinity-core authors. MIT License.

import (
	"math"
	"sort"

	"github.com/emberhollow/affinity/internal/affordance"
	"github.com/emberhollow/affinity/internal/cooldown"
	"github.com/emberhollow/affinity/internal/moodband"
	"github.com/emberhollow/affinity/internal/trace"
	"github.com/emberhollow/affinity/internal/valuation"
)

// AffordanceContext carries the inputs a host supplies to evaluate a single
// actor+entity+action (spec.md §4.8).
type AffordanceContext struct {
	ActorID     string
	ActorTags   map[string]struct{}
	Entity      *Entity
	ActionType  string
	ActionTarget string // optional
	Timestamp   float64
}

// TraceContribution records one trace's weighted contribution to the
// affinity that drove a trigger (spec.md §4.8 step g, §4.11 why()).
type TraceContribution struct {
	Channel      string
	Key          string
	Contribution float64
}

// AffordanceOutcome is what EvaluateAffordances returns: adjustments keyed
// by handle name, narrative tells, the trace log backing the decision,
// cooldown tokens newly consumed, and whether anything triggered at all.
type AffordanceOutcome struct {
	Adjustments     map[string]float64
	RedirectTarget  string
	Tells           []string
	TraceLog        []TraceContribution
	CooldownsWritten []string
	Triggered       bool
	Affinity        float64
	ThresholdLabel  string
	AffordanceNames []string
}

// EvaluateAffordances runs C8's five-step algorithm against ctx using reg
// (the closed affordance registry) and cfg (the current config snapshot).
func (reg *AffordanceRegistry) EvaluateAffordances(cfg *Config, ctx AffordanceContext) AffordanceOutcome {
	now := ctx.Timestamp
	affinityVal := ctx.Entity.ComputeAffinity(cfg, now, ctx.ActorID, ctx.ActorTags)

	out := AffordanceOutcome{
		Adjustments: make(map[string]float64),
		Affinity:    affinityVal,
		ThresholdLabel: thresholdLabel(affinityVal),
	}

	candidates := reg.inner.Candidates(ctx.ActionType)

	ctx.Entity.mu.Lock()
	defer ctx.Entity.mu.Unlock()

	for _, aff := range candidates {
		triggered, hostile := affordance.Crossed(aff, affinityVal)
		if !triggered {
			continue
		}

		token := cooldown.Token(aff.Name, ctx.ActorID, ctx.Entity.ID)
		if ctx.Entity.cooldowns.IsActive(token, now) {
			continue
		}

		adjustments, tells := appliedTrigger(aff, affinityVal, hostile, ctx.Entity.Profile, ctx.ActorID, ctx.Entity.ID, ctx.ActionType)
		for h, v := range adjustments {
			out.Adjustments[h] += v
		}
		out.Tells = append(out.Tells, tells...)

		ctx.Entity.cooldowns.Extend(token, now+aff.CooldownSeconds)
		out.CooldownsWritten = append(out.CooldownsWritten, token)
		out.AffordanceNames = append(out.AffordanceNames, aff.Name)
	}

	out.Triggered = len(out.AffordanceNames) > 0
	out.TraceLog = topTraceContributions(cfg, ctx.Entity, ctx.ActorID, ctx.ActorTags, now, 5)
	return out
}

// appliedTrigger computes one triggered affordance's severity-scaled
// adjustments and deterministically-selected tell, shared by
// EvaluateAffordances, Replay, and the admin Test() operator so the three
// can never drift apart on the underlying math.
func appliedTrigger(aff *affordance.Affordance, affinityVal float64, hostile bool, profile valuation.Profile, actorID, entityID, actionType string) (map[string]float64, []string) {
	clamp := aff.FavorableClamp
	if hostile {
		clamp = aff.HostileClamp
	}
	severity := affordance.Severity(affinityVal, clamp)

	if aff.Condition != nil {
		targetValuation := valuation.Lookup(profile, aff.ConditionEventType)
		if extra, applied := aff.Condition(affinityVal, targetValuation); applied {
			severity += extra
		}
	}

	adjustments := make(map[string]float64, len(aff.Handles))
	for _, h := range aff.Handles {
		if h == affordance.HandleRoomRedirectTarget {
			continue // not a numeric adjustment; no adjustment is emitted and RedirectTarget is not set here
		}
		sign := affordance.HandleSign(h)
		if !hostile {
			sign = -sign
		}
		adjustments[string(h)] += sign * severity
	}

	tells := aff.FavorableTells
	if hostile {
		tells = aff.HostileTells
	}
	var selected []string
	if len(tells) > 0 {
		seed := actorID + "|" + entityID + "|" + actionType + "|" + aff.Name
		idx := affordance.DeterministicIndex(seed, len(tells))
		selected = append(selected, tells[idx])
	}
	return adjustments, selected
}

// thresholdLabel buckets affinity into the same bands internal/moodband
// caches per actor tag, reusing its Classify so the admin surface's labels
// can never drift from what ComputeAffinity caches alongside an entity.
func thresholdLabel(affinity float64) string {
	return string(moodband.Classify(affinity))
}

// topTraceContributions scans all three channels and returns the n traces
// with the largest absolute weighted contribution to affinity (spec.md
// §4.8 step g). Callers must already hold the entity's lock.
func topTraceContributions(cfg *Config, e *Entity, actorID string, actorTags map[string]struct{}, now float64, n int) []TraceContribution {
	if !e.HasChannels() {
		return nil
	}
	hl := cfg.HalfLifeSeconds(e.Kind)
	scarHL := cfg.Compaction.ScarHalfLifeDays * 86400

	var all []TraceContribution
	e.personal.Range(func(key trace.PersonalKey, rec *trace.Record) {
		if key.ActorID != actorID {
			return
		}
		hlEff := hl.Personal
		if rec.IsScar {
			hlEff = scarHL
		}
		c := rec.Decayed(now, hlEff) * valuation.Lookup(e.Profile, key.EventType)
		all = append(all, TraceContribution{Channel: "personal", Key: key.EventType, Contribution: c})
	})
	e.group.Range(func(key trace.GroupKey, rec *trace.Record) {
		if _, ok := actorTags[key.Tag]; !ok {
			return
		}
		hlEff := hl.Group
		if rec.IsScar {
			hlEff = scarHL
		}
		c := rec.Decayed(now, hlEff) * valuation.Lookup(e.Profile, key.EventType)
		all = append(all, TraceContribution{Channel: "group", Key: key.Tag + "/" + key.EventType, Contribution: c})
	})
	e.behavior.Range(func(key trace.BehaviorKey, rec *trace.Record) {
		hlEff := hl.Behavior
		if rec.IsScar {
			hlEff = scarHL
		}
		c := rec.Decayed(now, hlEff) * valuation.Lookup(e.Profile, key.EventType)
		all = append(all, TraceContribution{Channel: "behavior", Key: key.EventType, Contribution: c})
	})

	sort.Slice(all, func(i, j int) bool {
		return math.Abs(all[i].Contribution) > math.Abs(all[j].Contribution)
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// AffordanceRegistry wraps the closed internal/affordance.Registry with the
// cooldown/trace glue EvaluateAffordances needs. Construct with
// NewAffordanceRegistry, register every affordance, then evaluate.
type AffordanceRegistry struct {
	inner *affordance.Registry
}

// NewAffordanceRegistry constructs an empty registry.
func NewAffordanceRegistry() *AffordanceRegistry {
	return &AffordanceRegistry{inner: affordance.NewRegistry()}
}

// Register validates and adds aff, returning a *ValidationError on failure
// (spec.md §7).
func (r *AffordanceRegistry) Register(aff affordance.Affordance) error {
	if err := r.inner.Register(aff); err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	return nil
}

// Toggle enables or disables a registered affordance by name without
// removing its registration (spec.md §4.11).
func (r *AffordanceRegistry) Toggle(name string, on bool) {
	r.inner.SetEnabled(name, on)
}

// Get exposes a single affordance definition, used by the admin Test()
// operator.
func (r *AffordanceRegistry) Get(name string) (*affordance.Affordance, bool) {
	return r.inner.Get(name)
}
