package affinity

// entity.go defines the memory-bearing Entity value (spec.md §3): a
// Location, Artifact or NPC, each carrying its own valuation profile and
// channel tables, its own lock, its own cooldown registry, and its own
// cached saturation/mood-band state. Institutions are a separate virtual
// kind with no physical channels of their own (internal/institution).
//
// Locking discipline follows the per-entity model exactly, grounded on the
// per-shard sync.RWMutex in pkg/shard.go: every read or write of an
// entity's traces, saturation, cooldowns, or mood bands happens under this
// entity's own lock, and no two entity locks are ever held at once.
//
// © 2025 affinity-core authors. MIT License.

import (
	"fmt"
	"sync"

	"github.com/emberhollow/affinity/internal/cooldown"
	"github.com/emberhollow/affinity/internal/moodband"
	"github.com/emberhollow/affinity/internal/trace"
	"github.com/emberhollow/affinity/internal/valuation"
)

// SaturationState caches each channel's fullness in [0,1] — "it is a cache,
// not authoritative" (spec.md §3). Nothing in this package raises it: it
// changes only when a host sets these fields, and WorldTick relaxes it
// linearly toward 0. It is not derived from trace totals or from
// Config.SaturationCapacity.
type SaturationState struct {
	Personal float64
	Group    float64
	Behavior float64
}

// PressureRule is an artifact-specific rule evaluated against the bearer
// channel (spec.md §3: "an optional pressure-rule list"). The source spec
// does not fix a concrete shape beyond naming the concept; this
// implementation models the minimal one — a name and a threshold on the
// current holder's decayed bearer trace. Rules are stored on the entity
// only; nothing in this package evaluates them or feeds them to the
// affordance pipeline.
type PressureRule struct {
	Name      string
	Threshold float64
}

// Entity is a memory-bearing Location, Artifact or NPC. Construct with
// NewLocation, NewArtifact or NewNPC.
type Entity struct {
	mu sync.RWMutex

	ID   string
	Kind EntityKind

	Profile valuation.Profile

	personal *trace.Table[trace.PersonalKey]
	group    *trace.Table[trace.GroupKey]
	behavior *trace.Table[trace.BehaviorKey]
	bearer   *trace.Table[trace.BearerKey] // artifact only; nil for locations

	Saturation SaturationState
	LastTick   float64

	// institutionBias is set by InstitutionRegistry.Refresh (institution.go):
	// actor tag -> cached stance, consulted (read-only) by ComputeAffinity
	// as the fourth, small channel.
	institutionBias map[string]float64

	cooldowns *cooldown.Registry
	moods     *moodband.Cache

	PressureRules []PressureRule // artifact only
}

// NewLocation constructs a persistent Location entity with all three
// channels. Returns a ValidationError if profile carries a weight outside
// [-1, 1] (spec.md §7: a fatal, load-time check).
func NewLocation(id string, profile valuation.Profile) (*Entity, error) {
	return newEntity(id, EntityLocation, profile, true)
}

// NewArtifact constructs a mobile Artifact entity. If withLocationChannels
// is false, the artifact carries only bearer memory (spec.md §3). Returns a
// ValidationError if profile carries a weight outside [-1, 1].
func NewArtifact(id string, profile valuation.Profile, withLocationChannels bool) (*Entity, error) {
	e, err := newEntity(id, EntityArtifact, profile, withLocationChannels)
	if err != nil {
		return nil, err
	}
	e.bearer = trace.NewTable[trace.BearerKey]()
	return e, nil
}

// NewNPC constructs a mobile, animate memory-bearing entity sharing the
// Location-style three channels under its own half-life tier. Returns a
// ValidationError if profile carries a weight outside [-1, 1].
func NewNPC(id string, profile valuation.Profile) (*Entity, error) {
	return newEntity(id, EntityNPC, profile, true)
}

func newEntity(id string, kind EntityKind, profile valuation.Profile, withChannels bool) (*Entity, error) {
	if !valuation.Validate(profile) {
		return nil, &ValidationError{Reason: fmt.Sprintf("entity %q: valuation profile weights must lie in [-1, 1]", id)}
	}
	e := &Entity{
		ID:              id,
		Kind:            kind,
		Profile:         profile,
		institutionBias: make(map[string]float64),
		cooldowns:       cooldown.NewRegistry(),
		moods:           moodband.NewCache(),
	}
	if withChannels {
		e.personal = trace.NewTable[trace.PersonalKey]()
		e.group = trace.NewTable[trace.GroupKey]()
		e.behavior = trace.NewTable[trace.BehaviorKey]()
	}
	return e, nil
}

// HasChannels reports whether this entity carries the personal/group/
// behavior channels (false only for bearer-only artifacts).
func (e *Entity) HasChannels() bool {
	return e.personal != nil
}
