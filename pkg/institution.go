package affinity

// institution.go wires C10's institution aggregator into the world: each
// InstitutionRegistry entry holds pointers to the constituent entities its stance
// is derived from, refreshes through internal/institution's
// singleflight-deduped aggregator, and pushes the result back onto every
// affiliated entity via SetInstitutionBias.
//
// © 2025 affinity-core authors. MIT License.

import (
	"github.com/emberhollow/affinity/internal/institution"
)

// InstitutionRegistry owns every institution in the world plus the mapping
// from institution ID to its constituent entities.
type InstitutionRegistry struct {
	agg          *institution.Aggregator
	constituents map[string][]*Entity
}

// NewInstitutionRegistry constructs an empty registry.
func NewInstitutionRegistry() *InstitutionRegistry {
	return &InstitutionRegistry{
		agg:          institution.NewAggregator(),
		constituents: make(map[string][]*Entity),
	}
}

// Register creates an institution with the given tunables and binds it to
// constituents — the entities whose group channel feed its stance.
func (r *InstitutionRegistry) Register(id string, cfg InstitutionConfig, constituents ...*Entity) {
	inst := institution.New(id, cfg.DriftRate, cfg.Inertia, cfg.HalfLifeDays)
	r.agg.Register(inst)
	r.constituents[id] = constituents
}

// Observe ensures actorTag participates in id's next refresh (spec.md
// §4.10: an institution only drifts tags already keyed in cached_stance).
func (r *InstitutionRegistry) Observe(id, actorTag string) {
	if inst, ok := r.agg.Get(id); ok {
		inst.Observe(actorTag)
	}
}

// Refresh runs one refresh cycle for institution id: every constituent is
// queried for its group-only affinity toward each tracked actor tag, the
// blended result is cached, and then pushed back onto every constituent
// entity as its institutional bias (spec.md §4.10).
func (r *InstitutionRegistry) Refresh(cfg *Config, id string, now float64) error {
	entities := r.constituents[id]
	queries := make([]institution.ConstituentQuery, len(entities))
	for i, e := range entities {
		e := e
		queries[i] = func(tag string) float64 { return e.GroupAffinity(cfg, now, tag) }
	}

	stance, err := r.agg.Refresh(id, now, queries)
	if err != nil {
		return err
	}
	for tag, bias := range stance {
		for _, e := range entities {
			e.SetInstitutionBias(tag, bias)
		}
	}
	return nil
}

// RefreshAll runs Refresh for every registered institution, used by the
// world's slow-drift scheduler (spec.md §4.10's refresh_interval_seconds).
func (r *InstitutionRegistry) RefreshAll(cfg *Config, now float64) error {
	var firstErr error
	r.agg.Each(func(inst *institution.Institution) {
		if err := r.Refresh(cfg, inst.ID, now); err != nil && firstErr == nil {
			firstErr = err
		}
	})
	return firstErr
}

// IDs returns every registered institution ID, used by World to attribute a
// refresh metric per institution.
func (r *InstitutionRegistry) IDs() []string {
	var ids []string
	r.agg.Each(func(inst *institution.Institution) {
		ids = append(ids, inst.ID)
	})
	return ids
}

// Stance returns institution id's cached stance toward actorTag.
func (r *InstitutionRegistry) Stance(id, actorTag string) float64 {
	inst, ok := r.agg.Get(id)
	if !ok {
		return 0
	}
	return inst.Stance(actorTag)
}
