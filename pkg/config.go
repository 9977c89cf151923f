package affinity

// config.go defines the frozen configuration snapshot consulted by every
// other component, plus the functional-options constructor that builds and
// validates it. The shape is the usual functional-options one:
// defaults are filled in first, options mutate the struct under construction, and
// validation runs once at the end — the difference is that here validation
// failures are a first-class ValidationError (spec.md §7) rather than a bare
// error, because this is a library other code loads at startup and must be
// able to distinguish "refuses to start" from "runtime hiccup".
//
// The snapshot is immutable once built. Hot reload (spec.md §5) is done by
// building a brand new *Config and swapping the atomic.Pointer held by a
// ConfigRegistry; readers never observe a half-updated snapshot.
//
// © 2025 affinity-core authors. MIT License.

import (
	"fmt"
	"sync/atomic"
)

// EntityKind distinguishes the memory-bearing entity kinds that own a
// half-life tier in configuration (spec.md §4.1). Location and Artifact are
// the two concrete kinds named in the data model (spec.md §3); NPC extends
// the same tiering to mobile, animate memory-bearing entities the
// half-life table also names.
type EntityKind int

const (
	EntityLocation EntityKind = iota
	EntityArtifact
	EntityNPC
)

func (k EntityKind) String() string {
	switch k {
	case EntityLocation:
		return "location"
	case EntityArtifact:
		return "artifact"
	case EntityNPC:
		return "npc"
	default:
		return "unknown"
	}
}

// ChannelHalfLives holds the half-life, in days, for each of the three
// scored channels.
type ChannelHalfLives struct {
	PersonalDays float64
	GroupDays    float64
	BehaviorDays float64
}

// ChannelWeights holds the blend weights consumed by ComputeAffinity. By
// convention personal+group+behavior+institutional should sum to 1.0, but
// this is not enforced — only non-negativity and the institutional <=
// behavior constraint are (spec.md §9 Open Question 3).
type ChannelWeights struct {
	Personal      float64
	Group         float64
	Behavior      float64
	Institutional float64
}

// SaturationCapacities holds a per-channel saturation capacity. The values
// are carried in Config but nothing in this package reads them: saturation
// is not derived from decayed weight over capacity (see SaturationState).
type SaturationCapacities struct {
	Personal float64
	Group    float64
	Behavior float64
}

// CompactionConfig holds the age-tiered compaction tunables (spec.md §4.6).
type CompactionConfig struct {
	HotWindowDays          float64
	WarmWindowDays         float64
	ScarIntensityThreshold float64
	ScarHalfLifeDays       float64
	PruneThreshold         float64
}

// InstitutionConfig holds the slow-drift institutional aggregation tunables
// (spec.md §4.10).
type InstitutionConfig struct {
	DriftRate              float64
	Inertia                float64
	HalfLifeDays           float64
	RefreshIntervalSeconds float64
}

// Config is the frozen, validated configuration snapshot. Construct with
// NewConfig; never mutate a *Config in place — build a new one and swap it
// through a ConfigRegistry instead.
type Config struct {
	HalfLives            map[EntityKind]ChannelHalfLives
	ChannelWeights       ChannelWeights
	SaturationCapacity   SaturationCapacities
	WorldTickIntervalSec float64
	Compaction           CompactionConfig
	Institutions         InstitutionConfig
	InstitutionalTags    map[string]struct{}
	AffinityScale        float64
}

// ConfigOption mutates a config under construction. Applied in order inside
// NewConfig, after the defaults are filled in and before validation.
type ConfigOption func(*Config)

// defaultConfig returns sane defaults matching the magnitudes used in
// spec.md §8's worked scenarios (personal half-life short enough that
// scenario 4's "less than 0.7x after one half-life" is meaningful within a
// few in-game days).
func defaultConfig() *Config {
	return &Config{
		HalfLives: map[EntityKind]ChannelHalfLives{
			EntityLocation: {PersonalDays: 3, GroupDays: 14, BehaviorDays: 60},
			EntityArtifact: {PersonalDays: 5, GroupDays: 20, BehaviorDays: 90},
			EntityNPC:      {PersonalDays: 2, GroupDays: 10, BehaviorDays: 45},
		},
		ChannelWeights: ChannelWeights{
			Personal: 0.5, Group: 0.3, Behavior: 0.2, Institutional: 0.0,
		},
		SaturationCapacity: SaturationCapacities{
			Personal: 5.0, Group: 10.0, Behavior: 20.0,
		},
		WorldTickIntervalSec: 60,
		Compaction: CompactionConfig{
			HotWindowDays:          30,
			WarmWindowDays:         180,
			ScarIntensityThreshold: 3.0,
			ScarHalfLifeDays:       365,
			PruneThreshold:         0.01,
		},
		Institutions: InstitutionConfig{
			DriftRate:              0.1,
			Inertia:                0.9,
			HalfLifeDays:           120,
			RefreshIntervalSeconds: 3600,
		},
		InstitutionalTags: map[string]struct{}{},
		AffinityScale:     10.0,
	}
}

// WithHalfLives overrides the half-life tier for one entity kind.
func WithHalfLives(kind EntityKind, hl ChannelHalfLives) ConfigOption {
	return func(c *Config) { c.HalfLives[kind] = hl }
}

// WithChannelWeights overrides the blend weights.
func WithChannelWeights(w ChannelWeights) ConfigOption {
	return func(c *Config) { c.ChannelWeights = w }
}

// WithSaturationCapacity overrides per-channel saturation capacities.
func WithSaturationCapacity(sc SaturationCapacities) ConfigOption {
	return func(c *Config) { c.SaturationCapacity = sc }
}

// WithWorldTickInterval overrides the world-tick schedule period.
func WithWorldTickInterval(seconds float64) ConfigOption {
	return func(c *Config) { c.WorldTickIntervalSec = seconds }
}

// WithCompaction overrides compaction tunables.
func WithCompaction(cc CompactionConfig) ConfigOption {
	return func(c *Config) { c.Compaction = cc }
}

// WithInstitutions overrides institutional aggregation tunables.
func WithInstitutions(ic InstitutionConfig) ConfigOption {
	return func(c *Config) { c.Institutions = ic }
}

// WithInstitutionalTags sets the closed set of tags preserved verbatim
// through hot->warm compaction; any tag not in this set collapses into a
// catch-all during folding.
func WithInstitutionalTags(tags ...string) ConfigOption {
	return func(c *Config) {
		set := make(map[string]struct{}, len(tags))
		for _, t := range tags {
			set[t] = struct{}{}
		}
		c.InstitutionalTags = set
	}
}

// WithAffinityScale overrides the tanh-normalizer denominator multiplier.
func WithAffinityScale(scale float64) ConfigOption {
	return func(c *Config) { c.AffinityScale = scale }
}

// NewConfig builds a validated, immutable Config. Any violated invariant
// from spec.md §6 ("Required to validate at load time") returns a
// *ValidationError instead of the snapshot.
func NewConfig(opts ...ConfigOption) (*Config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(c *Config) error {
	w := c.ChannelWeights
	if w.Personal < 0 || w.Group < 0 || w.Behavior < 0 || w.Institutional < 0 {
		return &ValidationError{Reason: "channel_weights entries must be nonnegative"}
	}
	if w.Institutional > w.Behavior {
		return &ValidationError{Reason: "channel_weights.institutional must not exceed channel_weights.behavior"}
	}
	if c.AffinityScale <= 0 {
		return &ValidationError{Reason: "affinity_scale must be > 0"}
	}
	for kind, hl := range c.HalfLives {
		if hl.PersonalDays <= 0 || hl.GroupDays <= 0 || hl.BehaviorDays <= 0 {
			return &ValidationError{Reason: fmt.Sprintf("half_lives.%s entries must be positive", kind)}
		}
	}
	if c.Compaction.ScarHalfLifeDays <= 0 {
		return &ValidationError{Reason: "compaction.scar_half_life_days must be positive"}
	}
	if c.Compaction.HotWindowDays <= 0 || c.Compaction.WarmWindowDays <= c.Compaction.HotWindowDays {
		return &ValidationError{Reason: "compaction windows must be positive and increasing (hot < warm)"}
	}
	if c.Compaction.PruneThreshold < 0 {
		return &ValidationError{Reason: "compaction.prune_threshold must be nonnegative"}
	}
	if c.Institutions.HalfLifeDays <= 0 {
		return &ValidationError{Reason: "institutions.half_life_days must be positive"}
	}
	if c.Institutions.Inertia < 0 || c.Institutions.Inertia > 1 {
		return &ValidationError{Reason: "institutions.inertia must be within [0,1]"}
	}
	if c.WorldTickIntervalSec <= 0 {
		return &ValidationError{Reason: "world_tick_interval_seconds must be positive"}
	}
	return nil
}

// ChannelHalfLifeSeconds holds half-lives already converted to seconds, the
// unit every decay computation actually operates in.
type ChannelHalfLifeSeconds struct {
	Personal float64
	Group    float64
	Behavior float64
}

// HalfLifeSeconds converts the configured per-channel half-lives (days) into
// seconds for the given kind, falling back to EntityLocation's tier if kind
// is unregistered (callers do not hit this path in practice: NewLocation,
// NewArtifact and NewNPC only produce kinds that defaultConfig registers).
func (c *Config) HalfLifeSeconds(kind EntityKind) ChannelHalfLifeSeconds {
	hl, ok := c.HalfLives[kind]
	if !ok {
		hl = c.HalfLives[EntityLocation]
	}
	return ChannelHalfLifeSeconds{
		Personal: hl.PersonalDays * 86400,
		Group:    hl.GroupDays * 86400,
		Behavior: hl.BehaviorDays * 86400,
	}
}

// ConfigRegistry holds the currently active Config behind an atomic pointer
// so readers never block and never observe a torn update — spec.md §5:
// "reload atomically swaps the whole snapshot pointer; readers see either
// the old or new config consistently for the duration of a single
// operation."
type ConfigRegistry struct {
	p atomic.Pointer[Config]
}

// NewConfigRegistry constructs a registry seeded with the given config.
func NewConfigRegistry(initial *Config) *ConfigRegistry {
	r := &ConfigRegistry{}
	r.p.Store(initial)
	return r
}

// Current returns the active config snapshot.
func (r *ConfigRegistry) Current() *Config {
	return r.p.Load()
}

// Swap atomically replaces the active config snapshot with next.
func (r *ConfigRegistry) Swap(next *Config) {
	r.p.Store(next)
}
