// Package viewport owns the map's pan/zoom transform. Every mutation goes
// through Controller so the scale bounds hold after each call.
package viewport

import (
	"math"

	"refillmap/internal/geo"
)

// Limits bounds the scale a viewport may take
type Limits struct {
	MinScale float64
	MaxScale float64
}

// Clamp returns scale limited to [MinScale, MaxScale]
func (l Limits) Clamp(scale float64) float64 {
	if math.IsNaN(scale) {
		return l.MinScale
	}
	return math.Max(l.MinScale, math.Min(l.MaxScale, scale))
}

// snap absorbs rounding error from scale*factor products near a bound
func (l Limits) snap(scale float64) float64 {
	const rel = 1e-12
	if math.Abs(scale-l.MinScale) <= rel*l.MinScale {
		return l.MinScale
	}
	if math.Abs(scale-l.MaxScale) <= rel*l.MaxScale {
		return l.MaxScale
	}
	return scale
}

// Valid reports a usable, non-empty range of positive scales
func (l Limits) Valid() bool {
	return l.MinScale > 0 && l.MaxScale >= l.MinScale && !math.IsInf(l.MaxScale, 0)
}

// Listener is notified after the viewport changes
type Listener interface {
	ViewportChanged(vp geo.Viewport)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(vp geo.Viewport)

func (f ListenerFunc) ViewportChanged(vp geo.Viewport) { f(vp) }

// Controller is the single authoritative mutator of the viewport
// Calls are synchronous; listeners run before the call returns
type Controller struct {
	vp        geo.Viewport
	limits    Limits
	listeners []Listener
}

// New creates a controller with the initial transform clamped into limits
func New(initial geo.Viewport, limits Limits, listeners ...Listener) *Controller {
	if !limits.Valid() {
		limits = Limits{MinScale: 1, MaxScale: 1}
	}
	c := &Controller{limits: limits, listeners: listeners}
	c.vp = geo.Viewport{Scale: limits.MinScale}
	c.store(initial, false)
	return c
}

// Subscribe adds a listener for viewport changes
func (c *Controller) Subscribe(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Viewport returns the current transform
func (c *Controller) Viewport() geo.Viewport {
	return c.vp
}

// Limits returns the scale bounds
func (c *Controller) Limits() Limits {
	return c.limits
}

// SetViewport replaces translation and scale wholesale. Scale is clamped;
// translation is not, panning is unbounded.
func (c *Controller) SetViewport(next geo.Viewport) {
	c.store(next, true)
}

// ApplyDelta pans by a screen-space delta, scale unchanged
func (c *Controller) ApplyDelta(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	next := c.vp
	next.Translation = next.Translation.Add(geo.Pt(dx, dy))
	c.store(next, true)
}

// ZoomAt scales the viewport by factor while keeping the world point under
// anchor fixed on screen
func (c *Controller) ZoomAt(anchor geo.Point, factor float64) {
	c.SetViewport(ZoomAbout(c.vp, anchor, factor, c.limits))
}

// ZoomAbout computes the viewport that results from zooming vp by factor
// about anchor, with the new scale clamped into limits. Degenerate input
// returns vp unchanged.
func ZoomAbout(vp geo.Viewport, anchor geo.Point, factor float64, limits Limits) geo.Viewport {
	if !(factor > 0) || math.IsInf(factor, 0) || !anchor.Finite() {
		return vp
	}
	if !(vp.Scale > 0) || math.IsInf(vp.Scale, 0) {
		return vp
	}

	newScale := limits.snap(limits.Clamp(vp.Scale * factor))
	change := newScale / vp.Scale

	return geo.Viewport{
		Translation: anchor.Sub(anchor.Sub(vp.Translation).Mul(change)),
		Scale:       newScale,
	}
}

func (c *Controller) store(next geo.Viewport, notify bool) {
	if !next.Translation.Finite() {
		next.Translation = c.vp.Translation
	}
	next.Scale = c.limits.Clamp(next.Scale)
	if math.IsInf(next.Scale, 0) || !(next.Scale > 0) {
		next.Scale = c.vp.Scale
	}

	if next == c.vp {
		return
	}
	c.vp = next

	if notify {
		for _, l := range c.listeners {
			l.ViewportChanged(next)
		}
	}
}
