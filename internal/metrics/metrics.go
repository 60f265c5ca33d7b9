// Package metrics counts what the map engine does per frame. The registry is
// private and never served; Summary renders it for the debug log on exit.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds the engine collectors. A nil *Metrics is a no-op.
type Metrics struct {
	registry        *prometheus.Registry
	renderPasses    prometheus.Counter
	renderDuration  prometheus.Histogram
	markers         *prometheus.GaugeVec
	culled          prometheus.Counter
	viewportChanges prometheus.Counter
	accommodations  prometheus.Counter
	clicks          *prometheus.CounterVec
}

// New creates a fresh registry with the engine metrics registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	renderPasses := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "refillmap",
		Name:      "render_passes_total",
		Help:      "Number of culling and clustering passes",
	})

	renderDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "refillmap",
		Name:      "render_pass_duration_seconds",
		Help:      "Time spent culling and clustering one frame",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	markers := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "refillmap",
		Name:      "markers",
		Help:      "Markers produced by the most recent pass",
	}, []string{"kind"})

	culled := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "refillmap",
		Name:      "culled_stations_total",
		Help:      "Stations dropped because they were outside the padded view",
	})

	viewportChanges := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "refillmap",
		Name:      "viewport_changes_total",
		Help:      "Viewport mutations that changed state",
	})

	accommodations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "refillmap",
		Name:      "accommodations_total",
		Help:      "Camera transitions started for a new selection",
	})

	clicks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "refillmap",
		Name:      "clicks_total",
		Help:      "Clicks by what they hit",
	}, []string{"target"})

	registry.MustRegister(
		renderPasses,
		renderDuration,
		markers,
		culled,
		viewportChanges,
		accommodations,
		clicks,
	)

	return &Metrics{
		registry:        registry,
		renderPasses:    renderPasses,
		renderDuration:  renderDuration,
		markers:         markers,
		culled:          culled,
		viewportChanges: viewportChanges,
		accommodations:  accommodations,
		clicks:          clicks,
	}
}

// ObserveRender records one culling/clustering pass.
func (m *Metrics) ObserveRender(singles, groups, culled int, duration time.Duration) {
	if m == nil {
		return
	}
	m.renderPasses.Inc()
	m.renderDuration.Observe(duration.Seconds())
	m.markers.WithLabelValues("single").Set(float64(singles))
	m.markers.WithLabelValues("group").Set(float64(groups))
	m.culled.Add(float64(culled))
}

// IncViewportChange counts a viewport mutation.
func (m *Metrics) IncViewportChange() {
	if m == nil {
		return
	}
	m.viewportChanges.Inc()
}

// IncAccommodation counts a camera transition.
func (m *Metrics) IncAccommodation() {
	if m == nil {
		return
	}
	m.accommodations.Inc()
}

// IncClick counts a click against target ("marker", "cluster", "background", "pick").
func (m *Metrics) IncClick(target string) {
	if m == nil {
		return
	}
	m.clicks.WithLabelValues(target).Inc()
}

// Registry exposes the underlying registry for tests and Summary.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Summary renders every sample as "name{labels} value", one per line, sorted.
func (m *Metrics) Summary() (string, error) {
	if m == nil {
		return "", nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			lines = append(lines, mf.GetName()+labelString(metric.GetLabel())+" "+sampleString(mf.GetType(), metric))
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n"), nil
}

func labelString(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, lp := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func sampleString(kind dto.MetricType, metric *dto.Metric) string {
	switch kind {
	case dto.MetricType_COUNTER:
		return fmt.Sprintf("%g", metric.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		return fmt.Sprintf("%g", metric.GetGauge().GetValue())
	case dto.MetricType_HISTOGRAM:
		h := metric.GetHistogram()
		return fmt.Sprintf("count=%d sum=%gs", h.GetSampleCount(), h.GetSampleSum())
	default:
		return "?"
	}
}
