package obs

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNoopSinkNeverPanics(t *testing.T) {
	s := NewNoopSink()
	s.IncTraceUpsert("personal")
	s.IncAffordanceTrigger("path_hostile_slow", true)
	s.IncCompactionFold("warm")
	s.IncInstitutionRefresh("ironguard")
	s.IncSnapshotMismatch()
	s.ObserveComputeAffinity(0.001)
}

func TestPromSinkNilRegistryReturnsNoop(t *testing.T) {
	s := NewPromSink(nil)
	if _, ok := s.(noopSink); !ok {
		t.Fatal("expected a nil registry to fall back to the noop sink")
	}
}

func TestPromSinkRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewPromSink(reg)
	s.IncTraceUpsert("group")

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) == 0 {
		t.Fatal("expected at least one registered metric family")
	}
}
