// Package gesture turns raw pointer and wheel input into viewport mutations.
package gesture

import (
	"math"

	"refillmap/internal/geo"
	"refillmap/internal/viewport"
)

// Target is the subset of the viewport controller the handler drives
type Target interface {
	Viewport() geo.Viewport
	Limits() viewport.Limits
	ApplyDelta(dx, dy float64)
	ZoomAt(anchor geo.Point, factor float64)
}

// Options tunes wheel and click behaviour
type Options struct {
	// WheelSensitivity is k in newScale = scale * exp(-delta * k)
	WheelSensitivity float64
	// ClickEpsilon is the largest net pointer movement, in pixels, that still
	// counts as a click rather than a drag
	ClickEpsilon float64
}

// DefaultOptions returns browser-like wheel sensitivity
func DefaultOptions() Options {
	return Options{
		WheelSensitivity: 0.0015,
		ClickEpsilon:     4,
	}
}

// ClickFunc receives pointer releases that did not move beyond the epsilon
type ClickFunc func(p geo.Point)

// Handler tracks a single pointer. It is not safe for concurrent use; feed
// it from the goroutine that owns the viewport.
type Handler struct {
	target  Target
	opts    Options
	onClick ClickFunc
	onInput func()

	down  bool
	start geo.Point
	last  geo.Point
}

// NewHandler creates a gesture handler over the given target
func NewHandler(target Target, opts Options) *Handler {
	if opts.WheelSensitivity <= 0 {
		opts.WheelSensitivity = DefaultOptions().WheelSensitivity
	}
	if opts.ClickEpsilon < 0 {
		opts.ClickEpsilon = 0
	}
	return &Handler{target: target, opts: opts}
}

// OnClick registers the receiver for background/marker clicks
func (h *Handler) OnClick(fn ClickFunc) {
	h.onClick = fn
}

// OnGesture registers a hook that runs before any pan or zoom is applied
func (h *Handler) OnGesture(fn func()) {
	h.onInput = fn
}

// Dragging reports whether a pointer is currently held down
func (h *Handler) Dragging() bool {
	return h.down
}

// Down starts tracking a pointer press
func (h *Handler) Down(p geo.Point) {
	if !p.Finite() {
		return
	}
	h.down = true
	h.start = p
	h.last = p
}

// Move pans by the delta since the last tracked position
func (h *Handler) Move(p geo.Point) {
	if !h.down || !p.Finite() {
		return
	}
	delta := p.Sub(h.last)
	h.last = p
	if delta.X == 0 && delta.Y == 0 {
		return
	}
	h.gesture()
	h.target.ApplyDelta(delta.X, delta.Y)
}

// Up ends the drag. A release close to where the press started is a click.
func (h *Handler) Up(p geo.Point) {
	if !h.down {
		return
	}
	if p.Finite() {
		h.Move(p)
	}
	h.down = false

	if h.last.Dist(h.start) <= h.opts.ClickEpsilon && h.onClick != nil {
		h.onClick(h.last)
	}
}

// Leave ends any drag without producing a click
func (h *Handler) Leave() {
	h.down = false
}

// Wheel zooms about p. Positive delta zooms out, negative zooms in.
func (h *Handler) Wheel(p geo.Point, delta float64) {
	if delta == 0 || math.IsNaN(delta) || !p.Finite() {
		return
	}

	vp := h.target.Viewport()
	newScale := h.target.Limits().Clamp(vp.Scale * math.Exp(-delta*h.opts.WheelSensitivity))
	if newScale == vp.Scale || !(vp.Scale > 0) {
		return
	}

	h.gesture()
	h.target.ZoomAt(p, newScale/vp.Scale)
}

func (h *Handler) gesture() {
	if h.onInput != nil {
		h.onInput()
	}
}
