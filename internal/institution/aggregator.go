package institution

// aggregator.go wires multiple Institutions behind a registry whose Refresh
// de-duplicates concurrent callers the way pkg/loader.go's loaderGroup
// de-duplicates concurrent cache misses: if two actor threads both trigger a
// refresh for the same institution before the first completes, only one
// refresh actually runs and both callers observe its result.

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Aggregator owns every registered Institution and de-duplicates concurrent
// refreshes per institution ID.
type Aggregator struct {
	mu           sync.RWMutex
	institutions map[string]*Institution
	sf           singleflight.Group
}

// NewAggregator constructs an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{institutions: make(map[string]*Institution)}
}

// Register adds inst to the aggregator.
func (a *Aggregator) Register(inst *Institution) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.institutions[inst.ID] = inst
}

// Get returns a registered institution by ID.
func (a *Aggregator) Get(id string) (*Institution, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	inst, ok := a.institutions[id]
	return inst, ok
}

// Each calls fn for every registered institution, in no particular order.
func (a *Aggregator) Each(fn func(*Institution)) {
	a.mu.RLock()
	insts := make([]*Institution, 0, len(a.institutions))
	for _, inst := range a.institutions {
		insts = append(insts, inst)
	}
	a.mu.RUnlock()
	for _, inst := range insts {
		fn(inst)
	}
}

// Refresh runs one refresh cycle for institution id against constituents,
// de-duplicated via singleflight so concurrent callers for the same id share
// a single execution and its resulting stance snapshot.
func (a *Aggregator) Refresh(id string, now float64, constituents []ConstituentQuery) (map[string]float64, error) {
	v, err, _ := a.sf.Do(id, func() (any, error) {
		inst, ok := a.Get(id)
		if !ok {
			return nil, fmt.Errorf("institution: unknown id %q", id)
		}
		inst.refreshLocked(now, constituents)
		return inst.Snapshot(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]float64), nil
}
