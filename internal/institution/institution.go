// Package institution implements C10's slow-drift stance aggregator (spec.md
// §4.10): an institution blends its constituent entities' group-channel
// affinity toward an actor tag into a cached, inertial stance, decaying
// between refreshes on its own long half-life so opinions persist even past
// a constituent's destruction.
//
// This package knows nothing about pkg.Entity — constituents are queried
// through a plain ConstituentQuery closure, the same pattern
// internal/affordance uses to stay independent of pkg and avoid an import
// cycle (pkg both feeds institutions their constituent queries and reads
// back their stance to bias ComputeAffinity).
//
// © 2025 affinity-core authors. MIT License.
package institution

import (
	"math"
	"sync"
)

// ConstituentQuery returns one constituent entity's group-channel-only
// affinity toward actorTag, already tanh-normalized (spec.md §4.10 step 1).
type ConstituentQuery func(actorTag string) float64

// Institution is a single named institution: an identity, a drift rate, an
// inertia factor, a half-life, and a cached stance map refreshed on demand.
type Institution struct {
	ID           string
	DriftRate    float64
	Inertia      float64
	HalfLifeDays float64

	mu          sync.RWMutex
	stance      map[string]float64
	lastRefresh float64
	refreshed   bool
}

// New constructs an institution with an empty cached stance.
func New(id string, driftRate, inertia, halfLifeDays float64) *Institution {
	return &Institution{
		ID:           id,
		DriftRate:    driftRate,
		Inertia:      inertia,
		HalfLifeDays: halfLifeDays,
		stance:       make(map[string]float64),
	}
}

// Stance returns the cached stance for actorTag, 0 if the tag has never been
// observed. Callers consult this, never cached_stance directly, so the zero
// value for unknown tags is centralized here.
func (inst *Institution) Stance(actorTag string) float64 {
	inst.mu.RLock()
	defer inst.mu.RUnlock()
	return inst.stance[actorTag]
}

// Snapshot returns a copy of the entire cached stance map, used by admin
// inspection and tests.
func (inst *Institution) Snapshot() map[string]float64 {
	inst.mu.RLock()
	defer inst.mu.RUnlock()
	out := make(map[string]float64, len(inst.stance))
	for k, v := range inst.stance {
		out[k] = v
	}
	return out
}

// Observe ensures actorTag is tracked from the next refresh onward, seeded
// at 0 if not already present. An institution only ever refreshes tags
// already keyed in cached_stance (spec.md §4.10 step 1); a brand-new actor
// tag must be observed once before it participates in drift.
func (inst *Institution) Observe(actorTag string) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if _, ok := inst.stance[actorTag]; !ok {
		inst.stance[actorTag] = 0
	}
}

// refreshLocked applies one refresh cycle: decay every tracked tag's stance
// across the elapsed time since the last refresh, then blend in the mean
// group affinity reported by constituents (spec.md §4.10 steps 1-3). Callers
// must hold no lock; refreshLocked takes its own.
func (inst *Institution) refreshLocked(now float64, constituents []ConstituentQuery) {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	elapsed := now - inst.lastRefresh
	if !inst.refreshed {
		elapsed = 0
	}
	halfLifeSeconds := inst.HalfLifeDays * 86400

	for tag, old := range inst.stance {
		decayed := old
		if elapsed > 0 && halfLifeSeconds > 0 {
			decayed = old * math.Exp2(-elapsed/halfLifeSeconds)
		}

		mean := meanAffinity(constituents, tag)
		inst.stance[tag] = inst.Inertia*decayed + (1-inst.Inertia)*inst.DriftRate*mean
	}
	inst.lastRefresh = now
	inst.refreshed = true
}

func meanAffinity(constituents []ConstituentQuery, tag string) float64 {
	if len(constituents) == 0 {
		return 0
	}
	sum := 0.0
	for _, q := range constituents {
		sum += q(tag)
	}
	return sum / float64(len(constituents))
}
