package trace

// keys.go defines the comparable key shapes for each channel (spec.md §3
// table). Keys live outside the Record on purpose — they are the map key,
// not stored data.

// PersonalKey identifies a personal-channel trace: one actor, one event type.
type PersonalKey struct {
	ActorID   string
	EventType string
}

// GroupKey identifies a group-channel trace: one actor tag, one event type.
type GroupKey struct {
	Tag       string
	EventType string
}

// BehaviorKey identifies a behavior-channel trace: event type only.
type BehaviorKey struct {
	EventType string
}

// BearerKey identifies an artifact's bearer-channel trace: holder identity
// only. Artifacts that carry no location-style channels use only this one.
type BearerKey struct {
	HolderID string
}
