// Package obs centralizes the ambient observability surface: a metrics sink
// interface with a noop default and a Prometheus-backed implementation, and
// a zap logger convention, grounded directly on pkg/metrics.go
// ("metricsSink interface abstracting away the concrete backend ... noop
// when the user opts out") and a zap.NewNop()-by-default logger.
//
// © 2025 affinity-core authors. MIT License.
package obs

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Sink abstracts the metrics backend so that pkg's World (the only caller)
// never pays for metric updates when no registry was configured.
// ObserveComputeAffinity is part of the interface but World does not call it.
type Sink interface {
	IncTraceUpsert(channel string)
	IncAffordanceTrigger(name string, hostile bool)
	IncCompactionFold(tier string)
	IncInstitutionRefresh(institutionID string)
	IncSnapshotMismatch()
	ObserveComputeAffinity(seconds float64)
}

type noopSink struct{}

func (noopSink) IncTraceUpsert(string)          {}
func (noopSink) IncAffordanceTrigger(string, bool) {}
func (noopSink) IncCompactionFold(string)        {}
func (noopSink) IncInstitutionRefresh(string)    {}
func (noopSink) IncSnapshotMismatch()            {}
func (noopSink) ObserveComputeAffinity(float64)  {}

// NewNoopSink returns a Sink that discards every observation, used when no
// *prometheus.Registry is configured.
func NewNoopSink() Sink { return noopSink{} }

type promSink struct {
	traceUpserts         *prometheus.CounterVec
	affordanceTriggers   *prometheus.CounterVec
	compactionFolds      *prometheus.CounterVec
	institutionRefreshes *prometheus.CounterVec
	snapshotMismatches   prometheus.Counter
	computeAffinity      prometheus.Histogram
}

// NewPromSink builds a Sink backed by reg. Returns a noop sink if reg is
// nil, matching the newMetricsSink factory's nil-registry fallback.
func NewPromSink(reg *prometheus.Registry) Sink {
	if reg == nil {
		return noopSink{}
	}
	ps := &promSink{
		traceUpserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "affinity_core", Name: "trace_upserts_total",
			Help: "Number of trace upserts by channel.",
		}, []string{"channel"}),
		affordanceTriggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "affinity_core", Name: "affordance_triggers_total",
			Help: "Number of affordance triggers by name and branch.",
		}, []string{"name", "hostile"}),
		compactionFolds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "affinity_core", Name: "compaction_folds_total",
			Help: "Number of hot/warm/scar compaction operations by tier.",
		}, []string{"tier"}),
		institutionRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "affinity_core", Name: "institution_refreshes_total",
			Help: "Number of institution stance refreshes.",
		}, []string{"institution"}),
		snapshotMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "affinity_core", Name: "snapshot_mismatches_total",
			Help: "Number of replay results that diverged from their frozen snapshot.",
		}),
		computeAffinity: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "affinity_core", Name: "compute_affinity_seconds",
			Help:    "Latency of a single ComputeAffinity call.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(ps.traceUpserts, ps.affordanceTriggers, ps.compactionFolds,
		ps.institutionRefreshes, ps.snapshotMismatches, ps.computeAffinity)
	return ps
}

func (p *promSink) IncTraceUpsert(channel string) {
	p.traceUpserts.WithLabelValues(channel).Inc()
}

func (p *promSink) IncAffordanceTrigger(name string, hostile bool) {
	p.affordanceTriggers.WithLabelValues(name, strconv.FormatBool(hostile)).Inc()
}

func (p *promSink) IncCompactionFold(tier string) {
	p.compactionFolds.WithLabelValues(tier).Inc()
}

func (p *promSink) IncInstitutionRefresh(institutionID string) {
	p.institutionRefreshes.WithLabelValues(institutionID).Inc()
}

func (p *promSink) IncSnapshotMismatch() {
	p.snapshotMismatches.Inc()
}

func (p *promSink) ObserveComputeAffinity(seconds float64) {
	p.computeAffinity.Observe(seconds)
}

// NopLogger returns a zap logger that discards everything, the default used
// until a caller supplies its own via an option.
func NopLogger() *zap.Logger {
	return zap.NewNop()
}
