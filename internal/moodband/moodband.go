// Package moodband implements the disposable, derived per-actor-tag mood
// cache mentioned in spec.md §4.5: "A derived MoodBand cache may be kept
// alongside the entity keyed by actor tag; it is disposable — the compute
// function never consults mood bands, only refreshes them."
package moodband

// Band labels the same threshold buckets used by the affordance pipeline
// (spec.md §6), reused here purely as a cached, human-legible hint — never
// read back by ComputeAffinity.
type Band string

const (
	Hostile     Band = "hostile"
	Unwelcoming Band = "unwelcoming"
	Neutral     Band = "neutral"
	Favorable   Band = "favorable"
	Aligned     Band = "aligned"
)

// Classify buckets a raw affinity value into its Band.
func Classify(affinity float64) Band {
	switch {
	case affinity <= -0.7:
		return Hostile
	case affinity <= -0.3:
		return Unwelcoming
	case affinity < 0.3:
		return Neutral
	case affinity < 0.7:
		return Favorable
	default:
		return Aligned
	}
}

// Cache is a disposable map of actor tag -> last-computed Band. It is never
// consulted as an input to affinity computation — only refreshed after the
// fact, so deleting or zeroing it has no effect on correctness.
type Cache struct {
	bands map[string]Band
}

// NewCache constructs an empty mood-band cache.
func NewCache() *Cache {
	return &Cache{bands: make(map[string]Band)}
}

// Refresh records tag's current band, overwriting any prior value.
func (c *Cache) Refresh(tag string, affinity float64) {
	c.bands[tag] = Classify(affinity)
}

// Get returns the last-refreshed band for tag, if any.
func (c *Cache) Get(tag string) (Band, bool) {
	b, ok := c.bands[tag]
	return b, ok
}
