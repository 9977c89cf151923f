package trace

// Table is a generic per-channel map of key -> *Record. One Table per
// channel per entity (personal, group, behavior, bearer). All mutation
// assumes the caller holds the owning entity's lock.
type Table[K comparable] struct {
	m map[K]*Record
}

// NewTable constructs an empty table.
func NewTable[K comparable]() *Table[K] {
	return &Table[K]{m: make(map[K]*Record)}
}

// Upsert applies the fixed update sequence from spec.md §4.3: decay the
// existing record to now, fold in the saturation-dampened intensity, and
// bump bookkeeping. saturation is the channel's cached SaturationState value
// (read, never changed here; WorldTick only relaxes it). Returns the
// resulting record.
func (t *Table[K]) Upsert(key K, timestamp, intensity, saturation, halfLifeSeconds float64) *Record {
	if t.m == nil {
		t.m = make(map[K]*Record)
	}
	rec, ok := t.m[key]
	if !ok {
		rec = &Record{}
		t.m[key] = rec
	}

	decayed := rec.Decayed(timestamp, halfLifeSeconds)
	effective := intensity * (1 - saturation*saturation)

	rec.Accumulated = decayed + effective
	if timestamp > rec.LastUpdated {
		rec.LastUpdated = timestamp
	}
	rec.EventCount++
	return rec
}

// Get returns the record for key, if present, without mutating it.
func (t *Table[K]) Get(key K) (*Record, bool) {
	if t.m == nil {
		return nil, false
	}
	rec, ok := t.m[key]
	return rec, ok
}

// Delete removes key from the table.
func (t *Table[K]) Delete(key K) {
	delete(t.m, key)
}

// Len returns the number of live keys.
func (t *Table[K]) Len() int {
	return len(t.m)
}

// Range calls fn for every (key, record) pair. fn must not mutate the table.
func (t *Table[K]) Range(fn func(key K, rec *Record)) {
	for k, r := range t.m {
		fn(k, r)
	}
}

// Prune deletes every entry whose decayed magnitude at now is below
// threshold (spec.md §4.6 step 1). Scars are still subject to pruning using
// their own (longer) half-life — callers pass the correct half-life per
// entry via halfLifeFor.
func (t *Table[K]) Prune(now float64, halfLifeFor func(rec *Record) float64, threshold float64) int {
	pruned := 0
	for k, r := range t.m {
		hl := halfLifeFor(r)
		if r.Decayed(now, hl) < threshold {
			delete(t.m, k)
			pruned++
		}
	}
	return pruned
}

// Fold rewrites every entry selected by shouldFold, merging them under the
// key keyFn returns for it: accumulated values are decayed to now and
// summed, LastUpdated becomes now, EventCount accumulates. Entries shouldFold
// rejects are left untouched. Used for hot→warm group-trace folding (spec.md
// §4.6 step 2), where recently-touched tags stay distinct but aged-out tags
// collapse into their institutional or catch-all bucket.
func (t *Table[K]) Fold(now, halfLifeSeconds float64, shouldFold func(key K, rec *Record) bool, keyFn func(key K) K) {
	merged := make(map[K]*Record, len(t.m))
	for k, r := range t.m {
		if !shouldFold(k, r) {
			merged[k] = r
		}
	}
	for k, r := range t.m {
		if !shouldFold(k, r) {
			continue
		}
		decayed := r.Decayed(now, halfLifeSeconds)
		if decayed <= 0 {
			continue
		}
		nk := keyFn(k)
		dst, ok := merged[nk]
		if !ok {
			dst = &Record{}
			merged[nk] = dst
		}
		dst.Accumulated += decayed
		if now > dst.LastUpdated {
			dst.LastUpdated = now
		}
		dst.EventCount += r.EventCount
	}
	t.m = merged
}

// DeepCopy returns an independent copy of the table, used when freezing a
// snapshot (spec.md §4.9: "the entity's three-channel trace tables (deep
// copies)").
func (t *Table[K]) DeepCopy() *Table[K] {
	out := NewTable[K]()
	for k, r := range t.m {
		cp := *r
		out.m[k] = &cp
	}
	return out
}

// Entry is one (key, record) pair, used to export a table's contents for
// serialization (internal/snapshotstore, pkg/snapshot.go) without exposing
// the table's internal map.
type Entry[K comparable] struct {
	Key    K
	Record Record
}

// Entries returns every entry in the table as a flat, independently owned
// slice, suitable for freezing into a snapshot or encoding to disk.
func (t *Table[K]) Entries() []Entry[K] {
	out := make([]Entry[K], 0, len(t.m))
	for k, r := range t.m {
		out = append(out, Entry[K]{Key: k, Record: *r})
	}
	return out
}

// FromEntries rebuilds a Table from a previously captured entry slice, used
// when thawing a frozen snapshot for replay.
func FromEntries[K comparable](entries []Entry[K]) *Table[K] {
	t := NewTable[K]()
	for _, e := range entries {
		cp := e.Record
		t.m[e.Key] = &cp
	}
	return t
}
