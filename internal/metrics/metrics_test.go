package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRender(t *testing.T) {
	m := New()

	m.ObserveRender(3, 1, 5, 2*time.Millisecond)
	m.ObserveRender(2, 2, 1, time.Millisecond)

	if got := testutil.ToFloat64(m.renderPasses); got != 2 {
		t.Fatalf("render_passes_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.markers.WithLabelValues("single")); got != 2 {
		t.Fatalf("markers{kind=single} = %v, want 2 (last pass)", got)
	}
	if got := testutil.ToFloat64(m.markers.WithLabelValues("group")); got != 2 {
		t.Fatalf("markers{kind=group} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.culled); got != 6 {
		t.Fatalf("culled_stations_total = %v, want 6", got)
	}
	if n := testutil.CollectAndCount(m.renderDuration); n != 1 {
		t.Fatalf("histogram series = %d, want 1", n)
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.IncViewportChange()
	m.IncViewportChange()
	m.IncAccommodation()
	m.IncClick("marker")
	m.IncClick("background")
	m.IncClick("marker")

	if got := testutil.ToFloat64(m.viewportChanges); got != 2 {
		t.Fatalf("viewport_changes_total = %v", got)
	}
	if got := testutil.ToFloat64(m.accommodations); got != 1 {
		t.Fatalf("accommodations_total = %v", got)
	}
	if got := testutil.ToFloat64(m.clicks.WithLabelValues("marker")); got != 2 {
		t.Fatalf("clicks_total{target=marker} = %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRender(1, 1, 1, time.Second)
	m.IncViewportChange()
	m.IncAccommodation()
	m.IncClick("pick")
	if s, err := m.Summary(); err != nil || s != "" {
		t.Fatalf("Summary on nil = %q, %v", s, err)
	}
}

func TestSummary(t *testing.T) {
	m := New()
	m.ObserveRender(4, 0, 0, time.Millisecond)
	m.IncClick("cluster")

	s, err := m.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	for _, want := range []string{
		"refillmap_render_passes_total 1",
		`refillmap_markers{kind="single"} 4`,
		`refillmap_clicks_total{target="cluster"} 1`,
		"refillmap_render_pass_duration_seconds count=1",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}
