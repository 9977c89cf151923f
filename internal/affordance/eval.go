package affordance

// eval.go holds the pure, side-effect-free math behind affordance
// triggering: threshold crossing, clamp-scaled severity, and the per-handle
// sign convention that decides whether a given handle moves up or down
// under a hostile vs favorable trigger.

import "math"

// HandleSign returns +1 if hostile affinity should push h's value up
// (slower travel, wider aggro radius, higher backfire chance, ...) and -1
// if hostile affinity should push it down (less yield, less healing, lower
// power, ...). Favorable triggers use the opposite sign.
func HandleSign(h Handle) float64 {
	switch h {
	case HandleRoomTravelTimeModifier, HandleRoomEncounterRateModifier,
		HandleNPCAggroRadiusModifier, HandleSpellBackfireChance:
		return 1
	default:
		return -1
	}
}

// ClampValue bounds v into [lo, hi] (hi >= lo assumed; callers validate
// ranges at registration).
func ClampValue(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Crossed reports whether affinity crosses aff's hostile or favorable
// threshold (strict inequality; the neutral band between the two
// thresholds never triggers — spec.md §4.8 step a).
func Crossed(aff *Affordance, affinity float64) (triggered, hostile bool) {
	if affinity < aff.HostileThreshold {
		return true, true
	}
	if affinity > aff.FavorableThreshold {
		return true, false
	}
	return false, false
}

// Severity computes the raw magnitude for a triggered branch: |affinity|
// scaled into the branch's clamp range. The clamp's Max acts as a ceiling on
// how far any single affordance may swing a handle; Min is a floor applied
// once triggered (an affordance that fires at all always moves its handles
// by at least Min).
func Severity(affinity float64, clamp ClampRange) float64 {
	return ClampValue(math.Abs(affinity), clamp.Min, clamp.Max)
}
