package affinity

// compaction.go implements C6: the world tick and the separate, coarser
// compaction pass (spec.md §4.6). WorldTick is the frequent, cheap operator
// — prune dead traces, relax cached saturation, sweep expired cooldowns —
// and is required to be idempotent when no events or time intervene between
// two calls (spec.md §8). CompactTraces is the infrequent, structural
// operator that folds hot traces into warm aggregates and promotes or
// discards warm traces at the scar boundary; it is never invoked from
// WorldTick itself.
//
// Both are grounded on internal/compaction's pure age/fold math, adapted
// from internal/clockpro's ring/hand/state-machine shape (capacity-driven
// eviction there, age-driven folding here).
//
// © 2025 affinity-core authors. MIT License.

import (
	"github.com/emberhollow/affinity/internal/compaction"
	"github.com/emberhollow/affinity/internal/trace"
)

// WorldTick advances entity's cheap, idempotent per-tick state: trace
// pruning below the configured floor, linear saturation relaxation, and
// cooldown sweeping. It never folds or promotes traces — that is
// CompactTraces's job — so calling it twice with no intervening events and
// no time advance leaves every trace bit-identical.
func (e *Entity) WorldTick(cfg *Config, now float64) {
	if !e.HasChannels() {
		e.mu.Lock()
		e.cooldowns.Sweep(now)
		e.mu.Unlock()
		return
	}
	hl := cfg.HalfLifeSeconds(e.Kind)
	scarHL := cfg.Compaction.ScarHalfLifeDays * 86400
	threshold := cfg.Compaction.PruneThreshold

	e.mu.Lock()
	defer e.mu.Unlock()

	e.personal.Prune(now, func(r *trace.Record) float64 { return halfLifeFor(r, hl.Personal, scarHL) }, threshold)
	e.group.Prune(now, func(r *trace.Record) float64 { return halfLifeFor(r, hl.Group, scarHL) }, threshold)
	e.behavior.Prune(now, func(r *trace.Record) float64 { return halfLifeFor(r, hl.Behavior, scarHL) }, threshold)
	if e.bearer != nil {
		e.bearer.Prune(now, func(r *trace.Record) float64 { return defaultBearerHalfLifeSeconds }, threshold)
	}

	elapsed := now - e.LastTick
	if elapsed < 0 {
		elapsed = 0
	}
	if e.LastTick > 0 && elapsed > 0 {
		e.Saturation.Personal = compaction.SaturationDecay(e.Saturation.Personal, elapsed, hl.Personal)
		e.Saturation.Group = compaction.SaturationDecay(e.Saturation.Group, elapsed, hl.Group)
		e.Saturation.Behavior = compaction.SaturationDecay(e.Saturation.Behavior, elapsed, hl.Behavior)
	}
	e.LastTick = now

	e.cooldowns.Sweep(now)
}

// CompactTraces runs the structural hot→warm→scar pass (spec.md §4.6 steps
// 1-3). It is expected to run on a much coarser schedule than WorldTick
// (World.RunScheduler in tick.go sets the cadence) and is never called
// implicitly from WorldTick.
func (e *Entity) CompactTraces(cfg *Config, now float64) {
	if !e.HasChannels() {
		return
	}
	hl := cfg.HalfLifeSeconds(e.Kind)
	cc := cfg.Compaction
	scarHL := cc.ScarHalfLifeDays * 86400
	warmAgeSeconds := (cc.HotWindowDays + cc.WarmWindowDays) * 86400

	e.mu.Lock()
	defer e.mu.Unlock()

	dropAgedOut(e.personal, now, cc.HotWindowDays)
	foldAgedGroup(e.group, now, cc.HotWindowDays, hl.Group, cfg.InstitutionalTags)

	promoteOrPruneScars(e.group, now, hl.Group, scarHL, warmAgeSeconds, cc.ScarIntensityThreshold)
	promoteOrPruneScars(e.behavior, now, hl.Behavior, scarHL, warmAgeSeconds, cc.ScarIntensityThreshold)
	if e.bearer != nil {
		promoteOrPruneScars(e.bearer, now, defaultBearerHalfLifeSeconds, scarHL, warmAgeSeconds, cc.ScarIntensityThreshold)
	}
}

// dropAgedOut deletes every personal trace that has aged past the hot
// window: personal memory never survives into the warm tier (spec.md §4.6
// step 2 — "drop personal traces").
func dropAgedOut(t *trace.Table[trace.PersonalKey], now, hotWindowDays float64) {
	hotSeconds := hotWindowDays * 86400
	var stale []trace.PersonalKey
	t.Range(func(key trace.PersonalKey, rec *trace.Record) {
		if now-rec.LastUpdated >= hotSeconds {
			stale = append(stale, key)
		}
	})
	for _, k := range stale {
		t.Delete(k)
	}
}

// foldAgedGroup folds every non-scar group trace that has aged past the hot
// window into its institutional-or-catch-all tag bucket and its
// event-category bucket, leaving hot entries and scars untouched (spec.md
// §4.6: "fold group traces into aggregate EMAs keyed by (folded tag, folded
// category)").
func foldAgedGroup(t *trace.Table[trace.GroupKey], now, hotWindowDays, halfLife float64, institutional map[string]struct{}) {
	hotSeconds := hotWindowDays * 86400
	t.Fold(now, halfLife,
		func(key trace.GroupKey, rec *trace.Record) bool {
			return !rec.IsScar && now-rec.LastUpdated >= hotSeconds
		},
		func(key trace.GroupKey) trace.GroupKey {
			return trace.GroupKey{
				Tag:       compaction.FoldGroupTag(key.Tag, institutional),
				EventType: compaction.FoldEventCategory(key.EventType),
			}
		},
	)
}

// promoteOrPruneScars walks every warm-tier-or-older entry in t: entries
// whose decayed value still clears the scar threshold are marked as scars
// (and thereafter decay at scarHalfLife); entries that don't are deleted.
// Entries still within the hot+warm window are left untouched.
func promoteOrPruneScars[K comparable](t *trace.Table[K], now, halfLife, scarHalfLife, warmAgeSeconds, scarThreshold float64) {
	var stale []K
	t.Range(func(key K, rec *trace.Record) {
		age := now - rec.LastUpdated
		if age < warmAgeSeconds {
			return
		}
		hlEff := halfLife
		if rec.IsScar {
			hlEff = scarHalfLife
		}
		decayed := rec.Decayed(now, hlEff)
		if compaction.ScarEligible(decayed, scarThreshold) {
			rec.IsScar = true
			return
		}
		stale = append(stale, key)
	})
	for _, k := range stale {
		t.Delete(k)
	}
}
