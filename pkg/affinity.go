package affinity

// affinity.go implements C5: blend the three (plus institutional) channels
// through the entity's valuation profile and tanh-normalize (spec.md §4.5).
//
// © 2025 affinity-core authors. MIT License.

import (
	"math"

	"github.com/emberhollow/affinity/internal/trace"
	"github.com/emberhollow/affinity/internal/valuation"
)

// ComputeAffinity returns how entity currently regards actorID (with
// actorTags), a real number in [-1, 1]. cfg supplies the channel weights,
// half-lives, and affinity scale; now is the evaluation instant.
func (e *Entity) ComputeAffinity(cfg *Config, now float64, actorID string, actorTags map[string]struct{}) float64 {
	if !e.HasChannels() {
		return 0
	}
	hl := cfg.HalfLifeSeconds(e.Kind)
	w := cfg.ChannelWeights
	scarHL := cfg.Compaction.ScarHalfLifeDays * 86400

	e.mu.RLock()
	personal := personalScore(e.personal, now, hl.Personal, scarHL, e.Profile, actorID)
	group := groupScore(e.group, now, hl.Group, scarHL, e.Profile, actorTags)
	behavior := behaviorScore(e.behavior, now, hl.Behavior, scarHL, e.Profile)
	institutional := e.institutionBiasFor(actorTags)
	e.mu.RUnlock()

	raw := w.Personal*personal + w.Group*group + w.Behavior*behavior + w.Institutional*institutional

	affinity := math.Tanh(raw * (cfg.AffinityScale / 10.0))

	e.mu.Lock()
	e.refreshMoodBands(affinity, actorTags)
	e.mu.Unlock()

	return affinity
}

func personalScore(t *trace.Table[trace.PersonalKey], now, halfLife, scarHalfLife float64, profile valuation.Profile, actorID string) float64 {
	sum := 0.0
	t.Range(func(key trace.PersonalKey, rec *trace.Record) {
		if key.ActorID != actorID {
			return
		}
		sum += rec.Decayed(now, halfLifeFor(rec, halfLife, scarHalfLife)) * valuation.Lookup(profile, key.EventType)
	})
	return sum
}

func groupScore(t *trace.Table[trace.GroupKey], now, halfLife, scarHalfLife float64, profile valuation.Profile, actorTags map[string]struct{}) float64 {
	if len(actorTags) == 0 {
		return 0
	}
	sum := 0.0
	t.Range(func(key trace.GroupKey, rec *trace.Record) {
		if _, ok := actorTags[key.Tag]; !ok {
			return
		}
		sum += rec.Decayed(now, halfLifeFor(rec, halfLife, scarHalfLife)) * valuation.Lookup(profile, key.EventType)
	})
	return sum
}

func behaviorScore(t *trace.Table[trace.BehaviorKey], now, halfLife, scarHalfLife float64, profile valuation.Profile) float64 {
	sum := 0.0
	t.Range(func(key trace.BehaviorKey, rec *trace.Record) {
		sum += rec.Decayed(now, halfLifeFor(rec, halfLife, scarHalfLife)) * valuation.Lookup(profile, key.EventType)
	})
	return sum
}

// halfLifeFor selects the scar half-life for promoted traces, otherwise the
// channel's normal half-life — scars decay slower and are exempt from warm
// aggregation (spec.md §3).
func halfLifeFor(rec *trace.Record, normal, scar float64) float64 {
	if rec.IsScar {
		return scar
	}
	return normal
}

// GroupAffinity computes affinity toward actorTag using only the group
// channel, tanh-normalized the same way ComputeAffinity is. This is the
// query internal/institution's aggregator issues against each constituent
// entity on refresh (spec.md §4.10 step 1: "query each constituent entity
// for compute_affinity(entity, *, {actor_tag}) (using the group channel
// only)").
func (e *Entity) GroupAffinity(cfg *Config, now float64, actorTag string) float64 {
	if !e.HasChannels() {
		return 0
	}
	hl := cfg.HalfLifeSeconds(e.Kind)
	scarHL := cfg.Compaction.ScarHalfLifeDays * 86400

	e.mu.RLock()
	group := groupScore(e.group, now, hl.Group, scarHL, e.Profile, map[string]struct{}{actorTag: {}})
	e.mu.RUnlock()

	return math.Tanh(group * (cfg.AffinityScale / 10.0))
}

// institutionBiasFor returns the mean institutional bias across actorTags
// that this entity has cached (set through SetInstitutionBias). Callers
// must hold at least a read lock.
func (e *Entity) institutionBiasFor(actorTags map[string]struct{}) float64 {
	if len(e.institutionBias) == 0 || len(actorTags) == 0 {
		return 0
	}
	sum, n := 0.0, 0
	for tag := range actorTags {
		if v, ok := e.institutionBias[tag]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// SetInstitutionBias is called by InstitutionRegistry.Refresh to push
// a refreshed stance value for tag onto this entity. Never called from
// ComputeAffinity itself.
func (e *Entity) SetInstitutionBias(tag string, bias float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.institutionBias[tag] = bias
}

func (e *Entity) refreshMoodBands(affinity float64, actorTags map[string]struct{}) {
	for tag := range actorTags {
		e.moods.Refresh(tag, affinity)
	}
}
