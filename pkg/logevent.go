package affinity

// logevent.go implements C3's single public mutator: LogEvent. Per
// spec.md §4.3, a single event updates exactly one personal trace, one
// group trace per actor tag, and one behavior trace — atomically under the
// entity's own lock. The store "treats logging as total": there is no
// failure path here, only clamping.
//
// © 2025 affinity-core authors. MIT License.

import (
	"github.com/emberhollow/affinity/internal/trace"
)

// LogEvent applies ev to e under cfg's currently active half-lives. cfg
// should be the caller's current ConfigRegistry.Current() snapshot — taken
// once per call so a concurrent reload cannot tear a single LogEvent in
// half (spec.md §5).
func (e *Entity) LogEvent(cfg *Config, ev Event) {
	if !e.HasChannels() {
		return
	}

	hl := cfg.HalfLifeSeconds(e.Kind)
	if ev.Intensity < 0 {
		ev.Intensity = 0
	} else if ev.Intensity > 1 {
		ev.Intensity = 1
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// 1. Personal entry keyed by (actor, event type).
	e.personal.Upsert(
		trace.PersonalKey{ActorID: ev.ActorID, EventType: ev.Type},
		ev.Timestamp, ev.Intensity, e.Saturation.Personal, hl.Personal,
	)

	// 2. One group entry per actor tag.
	for tag := range ev.ActorTags {
		e.group.Upsert(
			trace.GroupKey{Tag: tag, EventType: ev.Type},
			ev.Timestamp, ev.Intensity, e.Saturation.Group, hl.Group,
		)
	}

	// 3. Behavior entry keyed by event type alone.
	e.behavior.Upsert(
		trace.BehaviorKey{EventType: ev.Type},
		ev.Timestamp, ev.Intensity, e.Saturation.Behavior, hl.Behavior,
	)
}

// LogBearerEvent updates an artifact's bearer channel, keyed by the current
// holder's identity (ev.ActorID). Artifacts log bearer events independently
// of whatever location-style channels they may also carry — holding an
// artifact is not, by itself, a harm/heal/trespass/etc. event against a
// place.
func (e *Entity) LogBearerEvent(ev Event) {
	if e.bearer == nil {
		return
	}
	if ev.Intensity < 0 {
		ev.Intensity = 0
	} else if ev.Intensity > 1 {
		ev.Intensity = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bearer.Upsert(
		trace.BearerKey{HolderID: ev.ActorID},
		ev.Timestamp, ev.Intensity, 0, defaultBearerHalfLifeSeconds,
	)
}

// defaultBearerHalfLifeSeconds is the half-life of every artifact's bearer
// channel (logging, pruning and compaction all use it; Config has no bearer
// half-life of its own); the bearer channel is always artifact-specific and short-lived relative to institutional memory
// (spec.md §3 table: "Bearer (artifact only) ... artifact-specific").
const defaultBearerHalfLifeSeconds = 7 * 86400
