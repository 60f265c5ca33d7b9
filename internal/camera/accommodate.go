// Package camera moves the viewport in response to selection changes so the
// selected marker stays clear of the detail sheet.
package camera

import (
	"refillmap/internal/geo"
	"refillmap/internal/viewport"
)

// Options tunes accommodation
type Options struct {
	OffsetPx  float64 // the marker lands this far above the screen center
	FocusZoom float64 // zoom to fly to on selection, 0 keeps the current scale
}

// Accommodator is an edge-triggered state machine over the selected id:
//
//	none|A -> B (B != A)  compute a target, lastID = B
//	none|A -> B, unplaced lastID = "" so a later observation of B fires
//	B -> B                nothing
//	any -> none           lastID = ""
type Accommodator struct {
	proj   *geo.Projection
	opts   Options
	lastID string
}

// NewAccommodator creates an accommodator using proj for screen math
func NewAccommodator(proj *geo.Projection, opts Options) *Accommodator {
	return &Accommodator{proj: proj, opts: opts}
}

// LastID returns the id of the most recently accommodated selection
func (a *Accommodator) LastID() string {
	return a.lastID
}

// Observe feeds the current selection. It reports a target viewport only on
// a transition to a new station with a usable position. A transition that
// cannot be placed yet, for lack of a position, a screen size or a valid
// viewport, is not consumed.
func (a *Accommodator) Observe(id string, world geo.Point, vp geo.Viewport, size geo.Size, limits viewport.Limits) (geo.Viewport, bool) {
	if id == "" {
		a.lastID = ""
		return geo.Viewport{}, false
	}
	if id == a.lastID {
		return geo.Viewport{}, false
	}
	if !world.Finite() || size.Empty() || !vp.Valid() {
		// stays pending until a later observation can place it
		a.lastID = ""
		return geo.Viewport{}, false
	}
	a.lastID = id
	return a.Target(world, vp, size, limits), true
}

// Target returns the viewport that shows world at (w/2, h/2 - offset). At an
// unchanged scale this is the same as moving the world point offset pixels
// below world's screen position to the screen center.
func (a *Accommodator) Target(world geo.Point, vp geo.Viewport, size geo.Size, limits viewport.Limits) geo.Viewport {
	scale := vp.Scale
	if a.opts.FocusZoom > 0 {
		scale = limits.Clamp(geo.ScaleForZoom(a.opts.FocusZoom))
	}

	anchor := size.Center().Sub(geo.Pt(0, a.opts.OffsetPx))
	return a.proj.ViewportFor(world, anchor, scale)
}
