package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/chatpaint/paintd/pkg/paint"
	"github.com/chatpaint/paintd/pkg/registry"
)

func TestObserverCounters(t *testing.T) {
	promReg := prometheus.NewRegistry()
	m := New(WithRegistry(promReg), WithNamespace("test"))
	reg := registry.New(registry.WithObserver(m))
	m.TrackRegistry(reg)

	reg.BulkMerge([]paint.Record{
		{"id": "p1", "function": "linear-gradient", "users": []any{"alice", "bob"}},
		{"id": "p2", "function": "unknown-thing"},
		{"id": "p3", "function": "url", "image_url": "https://cdn.example/x.webp"},
	})
	reg.AddKnownPaint(paint.Record{"id": "p1", "function": "linear-gradient"})
	reg.Assign("p404", "carol")
	reg.Clear("p9", "alice")

	if got := testutil.ToFloat64(m.paintsSkipped.WithLabelValues(string(registry.SkipUnknownFunction))); got != 1 {
		t.Errorf("unknown_function skips = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.paintsSkipped.WithLabelValues(string(registry.SkipImageUnresolved))); got != 1 {
		t.Errorf("image_unresolved skips = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.duplicatePaints); got != 1 {
		t.Errorf("duplicates = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.assignmentsDropped); got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.clearsIgnored); got != 1 {
		t.Errorf("ignored = %v, want 1", got)
	}

	expected := `
# HELP test_assigned_users Number of users with an assigned paint
# TYPE test_assigned_users gauge
test_assigned_users 2
# HELP test_known_paints Number of paints known to the registry
# TYPE test_known_paints gauge
test_known_paints 1
`
	if err := testutil.GatherAndCompare(promReg, strings.NewReader(expected), "test_known_paints", "test_assigned_users"); err != nil {
		t.Error(err)
	}
}

func TestRecordCatalogLoadAndEvents(t *testing.T) {
	m := New(WithRegistry(prometheus.NewRegistry()))

	m.RecordCatalogLoad(nil)
	m.RecordCatalogLoad(errors.New("boom"))
	m.RecordCatalogLoad(errors.New("boom"))
	m.RecordEvent("entitlement.create")
	m.BulkMerged(registry.MergeResult{}, 5*time.Millisecond)

	if got := testutil.ToFloat64(m.catalogLoads.WithLabelValues("success")); got != 1 {
		t.Errorf("success loads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.catalogLoads.WithLabelValues("error")); got != 2 {
		t.Errorf("error loads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues("entitlement.create")); got != 1 {
		t.Errorf("events = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.mergeDuration); got != 1 {
		t.Errorf("merge histogram series = %d, want 1", got)
	}
}
