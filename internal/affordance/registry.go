package affordance

// registry.go defines the Affordance value type and its load-time
// validation, grounded on the validate-once-in-NewConfig pattern in
// pkg/config.go: every invariant is checked once, at registration, and a
// violation is fatal rather than silently tolerated.

import (
	"fmt"
	"hash/fnv"
)

// ActionKind distinguishes the single movement affordance (pathing) from
// every other, generically-dispatched affordance (spec.md §9 Open
// Question: "only pathing fires for move.pass" is locked behavior).
type ActionKind int

const (
	ActionGeneral ActionKind = iota
	ActionMovement
)

// ClampRange bounds the severity an affordance may emit in one direction.
type ClampRange struct {
	Min, Max float64
}

// Condition is an optional, affordance-specific additional modifier (spec.md
// §4.8 step c, the fire-magic-in-forest example): given the computed
// affinity and the entity's valuation of the affordance's
// ConditionEventType, it may add extra severity and return whether it
// applied at all.
type Condition func(affinity, targetValuation float64) (extraSeverity float64, applied bool)

// Affordance is a single registered rule: threshold, cooldown,
// hostile/favorable clamp pair, at most two handle names, tell tables, and
// an optional condition. There is no subclass polymorphism here — every
// affordance is a value, and the set is closed once registered.
type Affordance struct {
	Name   string
	Kind   ActionKind
	Action string // action type label (e.g. "harvest.gather") used when the admin Test operator seeds tell selection; Candidates does not filter on it: every enabled ActionGeneral affordance is a candidate for any action other than "move.pass"

	HostileThreshold   float64 // affinity < this triggers hostile path (strict)
	FavorableThreshold float64 // affinity > this triggers favorable path (strict)

	HostileClamp   ClampRange
	FavorableClamp ClampRange

	Handles []Handle

	HostileTells   []string
	FavorableTells []string

	CooldownSeconds float64

	// ConditionEventType names the event type whose valuation on the
	// target entity is passed to Condition as targetValuation (spec.md
	// scenario 6: "harm.fire valuation < -0.5"); Condition itself decides
	// whether that value applies. Condition, if set, is called on every
	// trigger; an empty ConditionEventType passes the valuation looked up
	// for the empty event type.
	ConditionEventType string
	Condition          Condition
}

// Validate checks every load-time invariant from spec.md §7. Violations
// return a descriptive error; callers surface this as a ValidationError.
func (a Affordance) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("affordance: empty name")
	}
	if len(a.Handles) == 0 || len(a.Handles) > 2 {
		return fmt.Errorf("affordance %q: must reference 1 or 2 handles, got %d", a.Name, len(a.Handles))
	}
	for _, h := range a.Handles {
		if !IsValidHandle(h) {
			return fmt.Errorf("affordance %q: unknown handle %q", a.Name, h)
		}
	}
	if a.HostileThreshold >= 0 {
		return fmt.Errorf("affordance %q: hostile threshold must be negative", a.Name)
	}
	if a.FavorableThreshold <= 0 {
		return fmt.Errorf("affordance %q: favorable threshold must be positive", a.Name)
	}
	if a.CooldownSeconds < 0 {
		return fmt.Errorf("affordance %q: cooldown must be nonnegative", a.Name)
	}
	for _, tell := range a.HostileTells {
		if !ValidTell(tell) {
			return fmt.Errorf("affordance %q: hostile tell %q matches a forbidden pattern", a.Name, tell)
		}
	}
	for _, tell := range a.FavorableTells {
		if !ValidTell(tell) {
			return fmt.Errorf("affordance %q: favorable tell %q matches a forbidden pattern", a.Name, tell)
		}
	}
	return nil
}

// Registry is the closed, inspectable set of registered affordances, kept
// in fixed registration order (spec.md §4.8 step 3: "For each candidate in
// fixed registration order").
type Registry struct {
	order    []string
	byName   map[string]*Affordance
	disabled map[string]bool
}

// NewRegistry constructs an empty affordance registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string]*Affordance),
		disabled: make(map[string]bool),
	}
}

// Register validates and adds aff. A validation failure is returned
// verbatim; the caller (pkg.NewWorld) wraps it in a *ValidationError.
func (r *Registry) Register(aff Affordance) error {
	if err := aff.Validate(); err != nil {
		return err
	}
	if _, exists := r.byName[aff.Name]; !exists {
		r.order = append(r.order, aff.Name)
	}
	cp := aff
	r.byName[aff.Name] = &cp
	return nil
}

// Candidates returns, in fixed registration order, the affordances eligible
// for actionType: exactly the ActionMovement-kind affordance when
// actionType is "move.pass" (spec.md §9's locked single-primary-effect
// rule), otherwise every enabled ActionGeneral affordance.
func (r *Registry) Candidates(actionType string) []*Affordance {
	var out []*Affordance
	for _, name := range r.order {
		aff := r.byName[name]
		if r.disabled[name] {
			continue
		}
		if actionType == "move.pass" {
			if aff.Kind == ActionMovement {
				out = append(out, aff)
			}
			continue
		}
		if aff.Kind == ActionMovement {
			continue
		}
		out = append(out, aff)
	}
	return out
}

// Get returns a single affordance by name.
func (r *Registry) Get(name string) (*Affordance, bool) {
	aff, ok := r.byName[name]
	return aff, ok
}

// SetEnabled implements the admin Toggle operator (spec.md §4.11): turns an
// affordance off entirely without removing its registration.
func (r *Registry) SetEnabled(name string, on bool) {
	r.disabled[name] = !on
}

// DeterministicIndex derives a stable index into an n-length tell table
// from seed, so that replay (recomputing from a frozen snapshot with the
// same actor/entity/timestamp seed) always selects the same tell (spec.md
// §4.8 step e, §4.9 bit-exact replay).
func DeterministicIndex(seed string, n int) int {
	if n <= 0 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return int(h.Sum32() % uint32(n))
}
