package affinity

// snapshotstore.go bridges AffordanceSnapshot to internal/snapshotstore's
// byte-oriented Badger wrapper: every successful trigger is persisted both
// under its own trigger ID and into its entity's append-only trigger log
// (spec.md §9 "Snapshots persist alongside an append-only trigger log"),
// read back later by the admin history/replay operators.
//
// © 2025 affinity-core authors. MIT License.

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/emberhollow/affinity/internal/snapshotstore"
)

// PersistSnapshot gob-encodes snap and writes it to store under both its
// direct trigger-ID key and its entity's chronological trigger log.
func PersistSnapshot(store *snapshotstore.Store, snap AffordanceSnapshot) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("persist snapshot %s: %w", snap.TriggerID, err)
	}
	payload := buf.Bytes()

	if err := store.Put(snapshotstore.SnapshotKey(snap.TriggerID), payload); err != nil {
		return err
	}
	return store.Put(snapshotstore.TriggerLogKey(snap.EntityID, snap.Timestamp, snap.TriggerID), payload)
}

// LoadSnapshot retrieves and decodes the snapshot recorded under triggerID.
func LoadSnapshot(store *snapshotstore.Store, triggerID string) (AffordanceSnapshot, bool, error) {
	raw, ok, err := store.Get(snapshotstore.SnapshotKey(triggerID))
	if err != nil || !ok {
		return AffordanceSnapshot{}, ok, err
	}
	var snap AffordanceSnapshot
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&snap); err != nil {
		return AffordanceSnapshot{}, false, fmt.Errorf("decode snapshot %s: %w", triggerID, err)
	}
	return snap, true, nil
}

// History returns the snapshots recorded for entityID within the last hours
// hours of now, oldest first (hours <= 0 means unbounded) — a bounded
// key-prefix scan over the trigger log backing the admin history() operator
// (spec.md §4.11 "history(entity, hours)").
func History(store *snapshotstore.Store, entityID string, hours, now float64) ([]AffordanceSnapshot, error) {
	var out []AffordanceSnapshot
	cutoff := now - hours*3600
	err := store.IteratePrefix(snapshotstore.TriggerLogPrefix(entityID), func(key string, value []byte) error {
		var snap AffordanceSnapshot
		if err := gob.NewDecoder(bytes.NewReader(value)).Decode(&snap); err != nil {
			return fmt.Errorf("decode trigger log entry %s: %w", key, err)
		}
		if hours > 0 && snap.Timestamp < cutoff {
			return nil
		}
		out = append(out, snap)
		return nil
	})
	return out, err
}
