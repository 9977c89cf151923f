// Package snapshotstore is a thin, byte-oriented wrapper over an embedded
// Badger database, grounded directly on examples/disk_eject/main.go ("a
// second-level on-disk store... evicted items are written to Badger").
// Here the store holds frozen affordance
// snapshots and their append-only per-entity trigger log instead of evicted
// cache values, but the Put/Get/iterate shape is the same.
//
// This package is deliberately byte-level and knows nothing about
// AffordanceSnapshot — pkg/snapshotstore.go encodes/decodes with encoding/gob
// on the pkg side, so this package stays free of an import cycle back to
// pkg.
//
// © 2025 affinity-core authors. MIT License.
package snapshotstore

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// Store wraps an embedded Badger database.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) a Badger database rooted at dir.
func Open(dir string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("snapshotstore: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes value under key, overwriting any existing entry.
func (s *Store) Put(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Get returns the value stored under key, and false if key is absent.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var out []byte
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		found = true
		return item.Value(func(b []byte) error {
			out = append([]byte(nil), b...)
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return out, found, nil
}

// IteratePrefix calls fn for every key carrying prefix, in key order, until
// fn returns an error or the prefix is exhausted.
func (s *Store) IteratePrefix(prefix string, fn func(key string, value []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			var val []byte
			if err := item.Value(func(b []byte) error {
				val = append([]byte(nil), b...)
				return nil
			}); err != nil {
				return err
			}
			if err := fn(string(item.Key()), val); err != nil {
				return err
			}
		}
		return nil
	})
}

// SnapshotKey is the direct-lookup key for a single trigger's snapshot.
func SnapshotKey(triggerID string) string {
	return "snap:" + triggerID
}

// TriggerLogKey is the append-only, time-ordered key for entityID's trigger
// log: the zero-padded timestamp keeps entries in chronological order under
// lexicographic iteration.
func TriggerLogKey(entityID string, timestamp float64, triggerID string) string {
	return fmt.Sprintf("trig:%s:%020.6f:%s", entityID, timestamp, triggerID)
}

// TriggerLogPrefix returns the iteration prefix covering every trigger log
// entry for entityID.
func TriggerLogPrefix(entityID string) string {
	return fmt.Sprintf("trig:%s:", entityID)
}
