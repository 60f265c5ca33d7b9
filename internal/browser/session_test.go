package browser

import (
	"math"
	"strings"
	"testing"
	"time"

	"refillmap/internal/cluster"
	"refillmap/internal/geo"
	"refillmap/internal/metrics"
	"refillmap/internal/station"
	"refillmap/internal/viewport"
)

var screen = geo.Size{W: 800, H: 600}

type recorder struct {
	NopListener
	viewports  int
	background int
	clicked    []string
	picked     []geo.Point
}

func (r *recorder) ViewportChanged(geo.Viewport) { r.viewports++ }
func (r *recorder) BackgroundClicked()           { r.background++ }
func (r *recorder) MarkerClicked(id string)      { r.clicked = append(r.clicked, id) }
func (r *recorder) LocationPicked(p geo.Point)   { r.picked = append(r.picked, p) }

func planeOptions() Options {
	return Options{
		Space:  geo.Plane{},
		Limits: viewport.Limits{MinScale: 0.25, MaxScale: 64},
		Center: geo.Pt(400, 300),
		Zoom:   0,
		Cluster: cluster.Options{
			Enabled:     true,
			PixelRadius: 60,
			MinCount:    2,
			DisableZoom: 3,
			Padding:     0.5,
		},
		HitRadius: 12,
		FitMargin: 40,
	}
}

func newSession(t *testing.T, opts Options, stations ...station.Station) (*Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := New(opts, rec, nil)
	s.SetSize(screen)
	s.SetStations(stations)
	return s, rec
}

func st(id string, x, y float64) station.Station {
	return station.Station{ID: id, Position: geo.Pt(x, y)}
}

func click(s *Session, p geo.Point) {
	s.Gestures().Down(p)
	s.Gestures().Up(p)
}

func near(a, b geo.Point) bool {
	return math.Abs(a.X-b.X) < 1e-6 && math.Abs(a.Y-b.Y) < 1e-6
}

func TestInitialLayoutCentersView(t *testing.T) {
	s, _ := newSession(t, planeOptions())
	vp := s.Viewport()
	if vp.Scale != 1 || vp.Translation != geo.Pt(0, 0) {
		t.Fatalf("initial viewport = %+v", vp)
	}
}

func TestZoomAboutCenterScenario(t *testing.T) {
	s, rec := newSession(t, planeOptions())
	before := rec.viewports

	s.ZoomBy(1.5)

	vp := s.Viewport()
	if vp.Scale != 1.5 {
		t.Fatalf("scale = %g, want 1.5", vp.Scale)
	}
	if got := s.Projection().ScreenToWorld(geo.Pt(400, 300), vp, screen); !near(got, geo.Pt(400, 300)) {
		t.Fatalf("world under the anchor moved to %v", got)
	}
	if n := rec.viewports - before; n != 1 {
		t.Fatalf("viewport notifications = %d, want 1", n)
	}
}

func TestMarkerClickSelectsAndAccommodates(t *testing.T) {
	s, rec := newSessionWithCamera(t, 150, st("a", 100, 100))

	click(s, geo.Pt(103, 98))

	if len(rec.clicked) != 1 || rec.clicked[0] != "a" {
		t.Fatalf("marker clicks = %v", rec.clicked)
	}
	if s.SelectedID() != "a" {
		t.Fatalf("selected = %q", s.SelectedID())
	}
	got := s.Projection().WorldToScreen(geo.Pt(100, 100), s.Viewport(), screen)
	if !near(got, geo.Pt(400, 150)) {
		t.Fatalf("selected station at %v, want (400,150)", got)
	}

	markers := s.Markers()
	last := markers[len(markers)-1]
	if !last.Selected || last.Station.ID != "a" {
		t.Fatalf("selected marker should be on top, got %+v", last)
	}
}

func newSessionWithCamera(t *testing.T, offset float64, stations ...station.Station) (*Session, *recorder) {
	t.Helper()
	opts := planeOptions()
	opts.Camera.OffsetPx = offset
	return newSession(t, opts, stations...)
}

func TestBackgroundClickClearsSelection(t *testing.T) {
	s, rec := newSessionWithCamera(t, 150, st("a", 100, 100))
	s.Select("a")

	click(s, geo.Pt(700, 550))

	if rec.background != 1 {
		t.Fatalf("background clicks = %d", rec.background)
	}
	if s.SelectedID() != "" {
		t.Fatal("selection should be cleared")
	}
}

func TestAccommodationOncePerSelection(t *testing.T) {
	m := metrics.New()
	opts := planeOptions()
	opts.Camera.OffsetPx = 150
	s := New(opts, nil, m)
	s.SetSize(screen)
	s.SetStations([]station.Station{st("a", 100, 100), st("b", 500, 500)})

	s.Select("a")
	s.Pan(50, 50)
	s.Select("a")
	after := s.Viewport()
	if after.Translation != geo.Pt(350, 100) {
		t.Fatalf("reselecting the same station must not move the camera, got %+v", after)
	}

	s.ClearSelection()
	s.Select("a")
	s.Select("b")

	summary, err := m.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(summary, "refillmap_accommodations_total 3") {
		t.Fatalf("want three accommodations:\n%s", summary)
	}
}

func TestSelectBeforeLayoutAccommodatesOnResize(t *testing.T) {
	m := metrics.New()
	opts := planeOptions()
	opts.Camera.OffsetPx = 150
	s := New(opts, nil, m)
	s.SetStations([]station.Station{st("a", 400, 300)})

	s.Select("a")
	if s.Animating() {
		t.Fatal("nothing can move before the screen has a size")
	}

	s.SetSize(screen)
	got := s.Projection().WorldToScreen(geo.Pt(400, 300), s.Viewport(), screen)
	if !near(got, geo.Pt(400, 150)) {
		t.Fatalf("selected station at %v, want (400,150)", got)
	}

	s.Pan(30, 0)
	s.Select("a")
	s.SetSize(geo.Size{W: 1000, H: 700})
	summary, err := m.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(summary, "refillmap_accommodations_total 1") {
		t.Fatalf("want one accommodation:\n%s", summary)
	}
}

func TestSelectBeforeStationArrivesAccommodates(t *testing.T) {
	s, _ := newSessionWithCamera(t, 150)

	s.Select("a")
	if vp := s.Viewport(); vp.Translation != geo.Pt(0, 0) {
		t.Fatalf("an unknown station must not move the camera, got %+v", vp)
	}

	s.SetStations([]station.Station{st("a", 100, 100)})
	got := s.Projection().WorldToScreen(geo.Pt(100, 100), s.Viewport(), screen)
	if !near(got, geo.Pt(400, 150)) {
		t.Fatalf("selected station at %v, want (400,150)", got)
	}
}

func TestPickModeYieldsCoordinate(t *testing.T) {
	s, rec := newSession(t, planeOptions(), st("a", 100, 100))
	s.Select("a")
	s.EnterPickMode()

	if len(s.Markers()) != 0 {
		t.Fatal("markers should be suppressed while picking")
	}

	vp := s.Viewport()
	p := geo.Pt(123, 45)
	click(s, p)

	if len(rec.picked) != 1 {
		t.Fatalf("picked = %v", rec.picked)
	}
	want := s.Projection().ScreenToWorld(p, vp, screen)
	if !near(rec.picked[0], want) {
		t.Fatalf("picked %v, want %v", rec.picked[0], want)
	}
	if s.SelectedID() != "a" || rec.background != 0 {
		t.Fatal("a pick must not clear the selection")
	}

	s.ExitPickMode()
	if len(s.Markers()) == 0 {
		t.Fatal("markers should return after picking")
	}
}

func TestClusterClickZoomsToBounds(t *testing.T) {
	s, rec := newSession(t, planeOptions(), st("b", 200, 200), st("c", 240, 230))

	markers := s.Markers()
	if len(markers) != 1 || markers[0].Kind != cluster.Group {
		t.Fatalf("expected one group, got %d markers", len(markers))
	}
	click(s, markers[0].Screen)

	vp := s.Viewport()
	if want := 520.0 / 30; math.Abs(vp.Scale-want) > 1e-9 {
		t.Fatalf("scale = %g, want %g", vp.Scale, want)
	}
	if got := s.Projection().WorldToScreen(geo.Pt(220, 215), vp, screen); !near(got, screen.Center()) {
		t.Fatalf("group center at %v", got)
	}
	if len(rec.clicked) != 0 || s.SelectedID() != "" {
		t.Fatal("a cluster click is not a marker click")
	}
}

func TestClusterClickClampsZoom(t *testing.T) {
	s, _ := newSession(t, planeOptions(), st("b", 200, 200), st("c", 200, 200))

	click(s, geo.Pt(200, 200))

	if got := s.Viewport().Scale; got != 64 {
		t.Fatalf("scale = %g, want max 64", got)
	}
}

func TestDragIsNotAClick(t *testing.T) {
	s, rec := newSession(t, planeOptions(), st("a", 100, 100))

	g := s.Gestures()
	g.Down(geo.Pt(100, 100))
	g.Move(geo.Pt(130, 110))
	g.Up(geo.Pt(160, 120))

	if len(rec.clicked) != 0 || rec.background != 0 {
		t.Fatal("a drag must not produce clicks")
	}
	if got := s.Viewport().Translation; got != geo.Pt(60, 20) {
		t.Fatalf("translation = %v", got)
	}
}

func TestGestureCancelsAnimation(t *testing.T) {
	opts := planeOptions()
	opts.Camera.OffsetPx = 150
	opts.Duration = time.Second
	s, _ := newSession(t, opts, st("a", 100, 100))

	s.Select("a")
	if !s.Animating() {
		t.Fatal("selection should start a transition")
	}

	s.Gestures().Wheel(geo.Pt(10, 10), 100)
	if s.Animating() {
		t.Fatal("wheel input should cancel the transition")
	}
	held := s.Viewport()
	s.Tick(time.Now().Add(time.Hour))
	if s.Viewport() != held {
		t.Fatal("a cancelled transition must not move the camera")
	}
}

func TestTickFinishesTransition(t *testing.T) {
	opts := planeOptions()
	opts.Duration = 500 * time.Millisecond
	s, _ := newSession(t, opts, st("a", 100, 100))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }

	s.CenterOn(geo.Pt(100, 100))
	if !s.Tick(start.Add(100 * time.Millisecond)) {
		t.Fatal("transition should still be running")
	}
	if s.Tick(start.Add(time.Second)) {
		t.Fatal("transition should be done")
	}
	if got := s.Projection().WorldToScreen(geo.Pt(100, 100), s.Viewport(), screen); !near(got, screen.Center()) {
		t.Fatalf("centered point at %v", got)
	}
}

func TestHitTestPrefersTopmost(t *testing.T) {
	opts := planeOptions()
	opts.Cluster.Enabled = false
	s, _ := newSession(t, opts, st("a", 100, 100), st("b", 104, 100))
	s.Select("b")

	// selection already accommodated; find b on screen
	bScreen := s.Projection().WorldToScreen(geo.Pt(104, 100), s.Viewport(), screen)
	m, ok := s.HitTest(bScreen.Add(geo.Pt(-2, 0)))
	if !ok || m.Station.ID != "b" {
		t.Fatalf("hit %+v, want selected b", m)
	}
}

func TestResizeKeepsCenter(t *testing.T) {
	s, _ := newSession(t, planeOptions())
	s.Pan(-25, 40)
	before := s.Projection().Center(s.Viewport(), screen)

	bigger := geo.Size{W: 1200, H: 900}
	s.SetSize(bigger)

	if after := s.Projection().Center(s.Viewport(), bigger); !near(after, before) {
		t.Fatalf("center moved from %v to %v", before, after)
	}
}

func TestFit(t *testing.T) {
	s, _ := newSession(t, planeOptions())
	if s.Fit(nil) {
		t.Fatal("nothing to fit")
	}

	stations := []station.Station{st("a", 0, 0), st("b", 100, 50), {ID: "n", Position: geo.Pt(math.NaN(), 0)}}
	if !s.Fit(stations) {
		t.Fatal("fit should succeed")
	}
	vp := s.Viewport()
	if want := 720.0 / 100; vp.Scale != want {
		t.Fatalf("scale = %g, want %g", vp.Scale, want)
	}
}
