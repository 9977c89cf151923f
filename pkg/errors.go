package affinity

// errors.go declares the error taxonomy of spec.md §7, by kind rather than
// by one grab-bag error type: ValidationError is fatal at load time,
// UnknownEntity and SnapshotMismatch surface to the runtime caller,
// everything else (TransientClampedInput) is silently absorbed by the
// component that would otherwise raise it.
//
// © 2025 affinity-core authors. MIT License.

import "fmt"

// ValidationError reports a load-time configuration or registration defect:
// an affordance with more than two handles, an unknown handle name, a tell
// matching a forbidden pattern, a config field out of range, or a profile
// weight outside [-1,1]. Always fatal to startup.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("affinity: validation error: %s", e.Reason)
}

// UnknownEntity reports that the host referenced an entity id the core has
// not seen. No mutation occurs when this is returned.
type UnknownEntity struct {
	EntityID string
}

func (e *UnknownEntity) Error() string {
	return fmt.Sprintf("affinity: unknown entity %q", e.EntityID)
}

// SnapshotMismatch reports that Replay produced a result differing from the
// recorded snapshot. Fatal for tests; ordinary servers log and alert instead
// of panicking.
type SnapshotMismatch struct {
	SnapshotID string
	Field      string
	Want       any
	Got        any
}

func (e *SnapshotMismatch) Error() string {
	return fmt.Sprintf("affinity: snapshot %q mismatch on %s: want %v got %v",
		e.SnapshotID, e.Field, e.Want, e.Got)
}
