package affinity

// tick.go wires Entity.WorldTick and Entity.CompactTraces (C6) to the
// world-wide entity registry, sharding per entity as spec.md §5 requires:
// "The world tick acquires each entity's lock in turn ... it may be
// sharded across worker threads with one shard per entity." Grounded on
// the shard-parallel eviction sweep pattern in pkg/cache.go.
//
// © 2025 affinity-core authors. MIT License.

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Tick runs WorldTick across every registered entity, parallelized one
// goroutine per entity (bounded by concurrency) since each entity owns its
// own lock and no cross-entity lock is ever held (spec.md §5).
func (w *World) Tick(now float64, concurrency int) {
	if concurrency <= 0 {
		concurrency = 1
	}
	cfg := w.Configs.Current()
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	w.Entities.Each(func(e *Entity) {
		wg.Add(1)
		sem <- struct{}{}
		go func(e *Entity) {
			defer wg.Done()
			defer func() { <-sem }()
			e.WorldTick(cfg, now)
		}(e)
	})
	wg.Wait()
}

// Compact runs CompactTraces across every registered entity, recording a
// compaction-fold metric per entity processed. Intended to run on a much
// coarser schedule than Tick (spec.md §4.6: structural compaction, not the
// frequent cheap tick).
func (w *World) Compact(now float64, concurrency int) {
	if concurrency <= 0 {
		concurrency = 1
	}
	cfg := w.Configs.Current()
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	w.Entities.Each(func(e *Entity) {
		wg.Add(1)
		sem <- struct{}{}
		go func(e *Entity) {
			defer wg.Done()
			defer func() { <-sem }()
			e.CompactTraces(cfg, now)
			w.metrics.IncCompactionFold(e.Kind.String())
		}(e)
	})
	wg.Wait()
}

// RunScheduler drives Tick, Compact, and RefreshInstitutions off the
// World's own clock on three independent ticker loops — the cheap per-tick
// sweep at cfg.WorldTickIntervalSec, structural compaction at ten times
// that period (spec.md §4.6 distinguishes the frequent cheap tick from
// coarser structural compaction), and institution refresh at
// cfg.Institutions.RefreshIntervalSeconds. Intended to run in its own
// goroutine for the lifetime of a host process; returns once ctx is
// cancelled. concurrency bounds the per-entity goroutine fan-out for both
// Tick and Compact, grounded on the polling-ticker CLI pattern
// (cmd/arena-cache-inspect/main.go's watch loop, now also reused by
// cmd/affinity-admin).
func (w *World) RunScheduler(ctx context.Context, concurrency int) {
	cfg := w.Configs.Current()

	tickEvery := time.Duration(cfg.WorldTickIntervalSec * float64(time.Second))
	compactEvery := tickEvery * 10
	refreshEvery := time.Duration(cfg.Institutions.RefreshIntervalSeconds * float64(time.Second))
	if tickEvery <= 0 {
		tickEvery = time.Minute
		compactEvery = 10 * time.Minute
	}
	if refreshEvery <= 0 {
		refreshEvery = time.Hour
	}

	tickTicker := time.NewTicker(tickEvery)
	compactTicker := time.NewTicker(compactEvery)
	refreshTicker := time.NewTicker(refreshEvery)
	defer tickTicker.Stop()
	defer compactTicker.Stop()
	defer refreshTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tickTicker.C:
			w.Tick(w.Now(), concurrency)
		case <-compactTicker.C:
			w.Compact(w.Now(), concurrency)
		case <-refreshTicker.C:
			if err := w.RefreshInstitutions(w.Now()); err != nil {
				w.log.Warn("institution refresh failed", zap.Error(err))
			}
		}
	}
}
