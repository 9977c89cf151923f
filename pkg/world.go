package affinity

// world.go assembles every component into the single object a host embeds:
// the config registry, entity and institution registries, the closed
// affordance registry, the snapshot store, the metrics sink, and the
// logger. Nothing here holds business logic of its own — World is wiring,
// grounded on the top-level Cache struct in pkg/cache.go, which
// plays the same "one object a caller constructs and holds" role.
//
// © 2025 affinity-core authors. MIT License.

import (
	"github.com/emberhollow/affinity/internal/obs"
	"github.com/emberhollow/affinity/internal/snapshotstore"
	"go.uber.org/zap"
)

// World is the top-level handle a host constructs once and keeps for the
// lifetime of the process.
type World struct {
	Configs      *ConfigRegistry
	Entities     *EntityRegistry
	Institutions *InstitutionRegistry
	Affordances  *AffordanceRegistry
	Store        *snapshotstore.Store

	clock   Clock
	metrics obs.Sink
	log     *zap.Logger
}

// WorldOption configures a World at construction time.
type WorldOption func(*World)

// WithMetricsSink overrides the default noop metrics sink.
func WithMetricsSink(sink obs.Sink) WorldOption {
	return func(w *World) { w.metrics = sink }
}

// WithLogger overrides the default nop zap logger.
func WithLogger(log *zap.Logger) WorldOption {
	return func(w *World) { w.log = log }
}

// WithClock overrides the default SystemClock, letting a host (or a test)
// supply its own monotonic time source for the host-facing Now() helper
// used to stamp live events and drive scheduled ticks.
func WithClock(c Clock) WorldOption {
	return func(w *World) { w.clock = c }
}

// NewWorld constructs a World around an already-validated initial config
// and an open snapshot store. Callers own the store's lifetime (Close it
// when the world shuts down).
func NewWorld(initialConfig *Config, store *snapshotstore.Store, opts ...WorldOption) *World {
	w := &World{
		Configs:      NewConfigRegistry(initialConfig),
		Entities:     NewEntityRegistry(),
		Institutions: NewInstitutionRegistry(),
		Affordances:  NewAffordanceRegistry(),
		Store:        store,
		clock:        NewSystemClock(),
		metrics:      obs.NewNoopSink(),
		log:          obs.NopLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Now returns the World's monotonic clock reading — SystemClock by default,
// or whatever WithClock substituted (tests use internal/testclock.Fake).
func (w *World) Now() float64 {
	return w.clock.Now()
}

// LogEvent routes a memory event to entityID, recording a metric and a
// structured log line alongside the underlying trace write (spec.md §4.4
// log_event). Returns UnknownEntity if the host never registered entityID.
func (w *World) LogEvent(entityID string, ev Event) error {
	e, ok := w.Entities.Get(entityID)
	if !ok {
		return &UnknownEntity{EntityID: entityID}
	}
	cfg := w.Configs.Current()
	e.LogEvent(cfg, ev)
	w.metrics.IncTraceUpsert(ev.channelLabel())
	w.log.Debug("logged event",
		zap.String("entity_id", entityID),
		zap.String("event_type", ev.Type),
		zap.String("actor_id", ev.ActorID),
		zap.Float64("intensity", ev.Intensity),
	)
	return nil
}

// LogBearerEvent routes a bearer-channel event to an artifact entity
// (spec.md §3: bearer memory is artifact-only and keyed by current holder).
// Returns UnknownEntity if the host never registered entityID.
func (w *World) LogBearerEvent(entityID string, ev Event) error {
	e, ok := w.Entities.Get(entityID)
	if !ok {
		return &UnknownEntity{EntityID: entityID}
	}
	e.LogBearerEvent(ev)
	w.metrics.IncTraceUpsert("bearer")
	return nil
}

// Evaluate runs the affordance pipeline against ctx, persists one snapshot
// of the whole outcome when anything triggered, and records metrics for
// each triggered affordance
// (spec.md §4.8, §4.9). Returns UnknownEntity if ctx.Entity is nil.
func (w *World) Evaluate(ctx AffordanceContext) (AffordanceOutcome, error) {
	if ctx.Entity == nil {
		return AffordanceOutcome{}, &UnknownEntity{EntityID: ""}
	}
	cfg := w.Configs.Current()
	outcome := w.Affordances.EvaluateAffordances(cfg, ctx)

	if outcome.Triggered {
		snap := FreezeSnapshot(cfg, ctx, outcome)
		if w.Store != nil {
			if err := PersistSnapshot(w.Store, snap); err != nil {
				w.log.Warn("failed to persist affordance snapshot",
					zap.String("trigger_id", snap.TriggerID), zap.Error(err))
			}
		}
		for _, name := range outcome.AffordanceNames {
			aff, _ := w.Affordances.Get(name)
			hostile := aff != nil && outcome.Affinity <= aff.HostileThreshold
			w.metrics.IncAffordanceTrigger(name, hostile)
		}
	}
	return outcome, nil
}

// RefreshInstitutions runs one refresh cycle for every registered
// institution (spec.md §4.10's refresh_interval_seconds scheduler).
func (w *World) RefreshInstitutions(now float64) error {
	cfg := w.Configs.Current()
	err := w.Institutions.RefreshAll(cfg, now)
	for _, id := range w.Institutions.IDs() {
		w.metrics.IncInstitutionRefresh(id)
	}
	return err
}

func (e Event) channelLabel() string {
	if len(e.ActorTags) > 0 {
		return "group"
	}
	return "personal"
}
