// Package browser ties the viewport, gestures, clustering and camera
// together into one map session driven from the UI loop.
package browser

import (
	"math"
	"time"

	"refillmap/internal/camera"
	"refillmap/internal/cluster"
	"refillmap/internal/config"
	"refillmap/internal/debug"
	"refillmap/internal/geo"
	"refillmap/internal/gesture"
	"refillmap/internal/metrics"
	"refillmap/internal/station"
	"refillmap/internal/viewport"
)

// Listener receives session notifications. Embed NopListener to implement
// only some of them.
type Listener interface {
	ViewportChanged(vp geo.Viewport)
	BackgroundClicked()
	MarkerClicked(id string)
	LocationPicked(world geo.Point)
}

// NopListener ignores every notification
type NopListener struct{}

func (NopListener) ViewportChanged(geo.Viewport) {}
func (NopListener) BackgroundClicked()           {}
func (NopListener) MarkerClicked(string)         {}
func (NopListener) LocationPicked(geo.Point)     {}

// Options configures a session
type Options struct {
	Space     geo.Space
	Limits    viewport.Limits
	Center    geo.Point // world point shown at the screen center on first layout
	Zoom      float64
	Cluster   cluster.Options
	Camera    camera.Options
	Duration  time.Duration // camera transition length
	Gesture   gesture.Options
	HitRadius float64 // pixels
	FitMargin float64 // pixels left around fitted bounds
}

// OptionsFromConfig maps application configuration onto session options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Space:  cfg.Space(),
		Limits: cfg.Limits(),
		Center: cfg.InitialCenter(),
		Zoom:   cfg.Initial.Zoom,
		Cluster: cluster.Options{
			Enabled:     cfg.Cluster.Enabled,
			PixelRadius: cfg.Cluster.PixelRadius,
			MinCount:    cfg.Cluster.MinCount,
			DisableZoom: cfg.Cluster.DisableZoom,
			Padding:     cfg.VisibilityPadding,
		},
		Camera: camera.Options{
			OffsetPx:  cfg.Accommodation.OffsetPx,
			FocusZoom: cfg.Accommodation.FocusZoom,
		},
		Duration: cfg.Accommodation.Duration,
		Gesture: gesture.Options{
			WheelSensitivity: cfg.Gesture.WheelSensitivity,
			ClickEpsilon:     cfg.Gesture.ClickEpsilonPx,
		},
		HitRadius: cfg.HitRadiusPx,
		FitMargin: 40,
	}
}

// Session is the map core for one view. It is not safe for concurrent use;
// every call belongs on the UI goroutine.
type Session struct {
	opts     Options
	proj     *geo.Projection
	ctrl     *viewport.Controller
	gestures *gesture.Handler
	engine   *cluster.Engine
	acc      *camera.Accommodator
	anim     *camera.Animator
	metrics  *metrics.Metrics
	listener Listener
	now      func() time.Time

	stations []station.Station
	size     geo.Size
	placed   bool
	selected string
	picking  bool

	markers []cluster.Marker
	dirty   bool
}

// New creates a session. listener and m may be nil.
func New(opts Options, listener Listener, m *metrics.Metrics) *Session {
	if listener == nil {
		listener = NopListener{}
	}
	if opts.HitRadius <= 0 {
		opts.HitRadius = 12
	}

	s := &Session{
		opts:     opts,
		proj:     geo.NewProjection(opts.Space),
		metrics:  m,
		listener: listener,
		now:      time.Now,
		dirty:    true,
	}

	initial := geo.Viewport{Scale: geo.ScaleForZoom(opts.Zoom)}
	s.ctrl = viewport.New(initial, opts.Limits, viewport.ListenerFunc(s.viewportChanged))
	s.engine = cluster.NewEngine(s.proj, opts.Cluster, m)
	s.acc = camera.NewAccommodator(s.proj, opts.Camera)
	s.anim = camera.NewAnimator(s.ctrl, opts.Duration)

	// the user taking over always wins against a camera transition
	s.gestures = gesture.NewHandler(s.ctrl, opts.Gesture)
	s.gestures.OnGesture(s.anim.Cancel)
	s.gestures.OnClick(s.click)

	return s
}

func (s *Session) viewportChanged(vp geo.Viewport) {
	s.dirty = true
	s.metrics.IncViewportChange()
	s.listener.ViewportChanged(vp)
}

// Viewport returns the current transform
func (s *Session) Viewport() geo.Viewport {
	return s.ctrl.Viewport()
}

// Projection returns the coordinate model used by the session
func (s *Session) Projection() *geo.Projection {
	return s.proj
}

// Limits returns the scale bounds
func (s *Session) Limits() viewport.Limits {
	return s.ctrl.Limits()
}

// Size returns the current screen size in pixels
func (s *Session) Size() geo.Size {
	return s.size
}

// Gestures returns the pointer handler the UI feeds raw input into
func (s *Session) Gestures() *gesture.Handler {
	return s.gestures
}

// Animating reports whether a camera transition is in flight
func (s *Session) Animating() bool {
	return s.anim.Active()
}

// SetStations replaces the station set. The slice is copied.
func (s *Session) SetStations(stations []station.Station) {
	s.stations = append(s.stations[:0:0], stations...)
	s.dirty = true
	s.retryAccommodation()
}

// Stations returns the current station set
func (s *Session) Stations() []station.Station {
	return s.stations
}

// SetSize updates the screen size. The first usable size centers the
// initial view; later resizes keep the world point at the center in place.
func (s *Session) SetSize(size geo.Size) {
	if size == s.size {
		return
	}
	old := s.size
	s.size = size
	s.dirty = true

	if size.Empty() {
		return
	}
	vp := s.ctrl.Viewport()
	switch {
	case !s.placed:
		s.placed = true
		s.ctrl.SetViewport(s.proj.Centered(s.opts.Center, vp.Scale, size))
	case !old.Empty():
		s.ctrl.SetViewport(s.proj.Centered(s.proj.Center(vp, old), vp.Scale, size))
	}
	s.retryAccommodation()
}

// Markers returns the render list for the current state. Picking mode
// suppresses every marker.
func (s *Session) Markers() []cluster.Marker {
	if s.picking {
		return nil
	}
	if s.dirty {
		s.markers = s.engine.Render(cluster.Frame{
			Stations:   s.stations,
			Viewport:   s.ctrl.Viewport(),
			Size:       s.size,
			SelectedID: s.selected,
		})
		s.dirty = false
	}
	return s.markers
}

// Tick advances any camera transition. It returns true while one is running.
func (s *Session) Tick(now time.Time) bool {
	return s.anim.Step(now)
}

// Selected returns the selected station
func (s *Session) Selected() (*station.Station, bool) {
	if s.selected == "" {
		return nil, false
	}
	return s.find(s.selected)
}

// SelectedID returns the selected station id, or ""
func (s *Session) SelectedID() string {
	return s.selected
}

func (s *Session) find(id string) (*station.Station, bool) {
	for i := range s.stations {
		if s.stations[i].ID == id {
			return &s.stations[i], true
		}
	}
	return nil, false
}

// Select makes id the selection and moves the camera if the selection changed
func (s *Session) Select(id string) {
	if id == "" {
		s.ClearSelection()
		return
	}
	if id != s.selected {
		s.selected = id
		s.dirty = true
	}

	s.accommodate()
}

// accommodate feeds the selection to the accommodator and starts the move
// it asks for
func (s *Session) accommodate() {
	id := s.selected
	pos := geo.Pt(math.NaN(), math.NaN())
	if st, ok := s.find(id); ok {
		pos = st.Position
	}
	target, move := s.acc.Observe(id, pos, s.ctrl.Viewport(), s.size, s.ctrl.Limits())
	if !move {
		return
	}
	debug.Log("Accommodating selection %s", id)
	s.metrics.IncAccommodation()
	s.anim.Start(target, s.now())
}

// retryAccommodation accommodates a selection that could not be placed when
// it was made
func (s *Session) retryAccommodation() {
	if s.selected != "" && s.acc.LastID() != s.selected {
		s.accommodate()
	}
}

// ClearSelection drops the selection and resets accommodation tracking
func (s *Session) ClearSelection() {
	if s.selected != "" {
		s.selected = ""
		s.dirty = true
	}
	s.acc.Observe("", geo.Point{}, s.ctrl.Viewport(), s.size, s.ctrl.Limits())
}

// EnterPickMode switches clicks to yield coordinates instead of selections
func (s *Session) EnterPickMode() {
	s.picking = true
}

// ExitPickMode returns to normal browsing
func (s *Session) ExitPickMode() {
	if s.picking {
		s.picking = false
		s.dirty = true
	}
}

// Picking reports whether picking mode is active
func (s *Session) Picking() bool {
	return s.picking
}

// Pan moves the map by a screen delta, as a drag would
func (s *Session) Pan(dx, dy float64) {
	s.anim.Cancel()
	s.ctrl.ApplyDelta(dx, dy)
}

// ZoomBy zooms about the screen center
func (s *Session) ZoomBy(factor float64) {
	s.anim.Cancel()
	s.ctrl.ZoomAt(s.size.Center(), factor)
}

// CenterOn flies to world at the current scale
func (s *Session) CenterOn(world geo.Point) {
	if !world.Finite() || s.size.Empty() {
		return
	}
	s.anim.Start(s.proj.Centered(world, s.ctrl.Viewport().Scale, s.size), s.now())
}

// Fit flies to the view that shows every positioned station. It returns
// false when there is nothing to fit.
func (s *Session) Fit(stations []station.Station) bool {
	var (
		bounds geo.Rect
		found  bool
	)
	for i := range stations {
		if !stations[i].HasPosition() {
			continue
		}
		if !found {
			bounds = geo.Rect{Min: stations[i].Position, Max: stations[i].Position}
			found = true
			continue
		}
		bounds = bounds.Extend(stations[i].Position)
	}
	if !found {
		return false
	}
	return s.FitBounds(bounds)
}

// FitBounds flies to the largest scale at which bounds fits on screen,
// clamped to the limits
func (s *Session) FitBounds(bounds geo.Rect) bool {
	if s.size.Empty() || !bounds.Min.Finite() || !bounds.Max.Finite() {
		return false
	}

	scale := s.proj.ScaleToFit(bounds, s.size, s.opts.FitMargin)
	if math.IsNaN(scale) {
		scale = s.ctrl.Viewport().Scale
	}
	scale = s.ctrl.Limits().Clamp(scale)

	space := s.proj.Space()
	plane := geo.RectOf(space.Project(bounds.Min), space.Project(bounds.Max))
	center := space.Unproject(plane.Center())

	s.anim.Start(s.proj.Centered(center, scale, s.size), s.now())
	return true
}

// HitTest returns the topmost marker within the hit radius of p
func (s *Session) HitTest(p geo.Point) (cluster.Marker, bool) {
	markers := s.Markers()
	for i := len(markers) - 1; i >= 0; i-- {
		if markers[i].Screen.Dist(p) <= s.opts.HitRadius {
			return markers[i], true
		}
	}
	return cluster.Marker{}, false
}

func (s *Session) click(p geo.Point) {
	if s.picking {
		world := s.proj.ScreenToWorld(p, s.ctrl.Viewport(), s.size)
		s.metrics.IncClick("pick")
		s.listener.LocationPicked(world)
		return
	}

	m, hit := s.HitTest(p)
	switch {
	case !hit:
		s.metrics.IncClick("background")
		s.listener.BackgroundClicked()
		s.ClearSelection()
	case m.Kind == cluster.Group:
		s.metrics.IncClick("cluster")
		debug.Log("Zooming into cluster of %d", m.Count)
		s.FitBounds(m.Bounds)
	default:
		s.metrics.IncClick("marker")
		s.listener.MarkerClicked(m.Station.ID)
		s.Select(m.Station.ID)
	}
}
