package geo

import (
	"math"
)

// Viewport is the pan/zoom transform between the projected plane and the
// screen: screen = plane * Scale + Translation
type Viewport struct {
	Translation Point
	Scale       float64
}

// Zoom returns the zoom level, log2 of the scale
func (v Viewport) Zoom() float64 {
	return math.Log2(v.Scale)
}

// ScaleForZoom is the inverse of Viewport.Zoom
func ScaleForZoom(zoom float64) float64 {
	return math.Exp2(zoom)
}

// Valid reports whether the transform is invertible and finite
func (v Viewport) Valid() bool {
	return v.Scale > 0 && finite(v.Scale) && v.Translation.Finite()
}

// Projection handles conversion between world and screen coordinates for a
// given viewport, composing a coordinate Space with the viewport's affine map
type Projection struct {
	space Space
}

// NewProjection creates a projection over the given coordinate space
func NewProjection(space Space) *Projection {
	if space == nil {
		space = Plane{}
	}
	return &Projection{space: space}
}

// Space returns the coordinate space the projection was built with
func (p *Projection) Space() Space {
	return p.space
}

// WorldToScreen converts a world point to screen coordinates.
// No rounding is applied; that is left to whoever draws.
func (p *Projection) WorldToScreen(world Point, vp Viewport, _ Size) Point {
	return p.space.Project(world).Mul(vp.Scale).Add(vp.Translation)
}

// ScreenToWorld converts screen coordinates back to a world point
func (p *Projection) ScreenToWorld(screen Point, vp Viewport, _ Size) Point {
	return p.space.Unproject(p.ScreenToPlane(screen, vp))
}

// PlaneToScreen applies only the affine part of the transform
func (p *Projection) PlaneToScreen(plane Point, vp Viewport) Point {
	return plane.Mul(vp.Scale).Add(vp.Translation)
}

// ScreenToPlane inverts the affine part of the transform
func (p *Projection) ScreenToPlane(screen Point, vp Viewport) Point {
	scale := vp.Scale
	if !(scale > 0) || !finite(scale) {
		scale = 1
	}
	return screen.Sub(vp.Translation).Mul(1 / scale)
}

// Center returns the world point currently at the screen center
func (p *Projection) Center(vp Viewport, size Size) Point {
	return p.ScreenToWorld(size.Center(), vp, size)
}

// ViewportFor builds the viewport that puts world at the screen point anchor
// with the given scale
func (p *Projection) ViewportFor(world Point, anchor Point, scale float64) Viewport {
	plane := p.space.Project(world)
	return Viewport{
		Translation: anchor.Sub(plane.Mul(scale)),
		Scale:       scale,
	}
}

// Centered builds the viewport that centers world on a surface of the given size
func (p *Projection) Centered(world Point, scale float64, size Size) Viewport {
	return p.ViewportFor(world, size.Center(), scale)
}

// VisibleBounds returns the world-space rectangle visible on screen
func (p *Projection) VisibleBounds(vp Viewport, size Size) Rect {
	topLeft := p.ScreenToWorld(Point{}, vp, size)
	bottomRight := p.ScreenToWorld(Point{X: size.W, Y: size.H}, vp, size)
	return RectOf(topLeft, bottomRight)
}

// ScaleToFit returns the largest scale at which the world rectangle fits in
// size, leaving margin pixels on every side
func (p *Projection) ScaleToFit(bounds Rect, size Size, margin float64) float64 {
	a := p.space.Project(bounds.Min)
	b := p.space.Project(bounds.Max)
	plane := RectOf(a, b)

	availW := size.W - 2*margin
	availH := size.H - 2*margin
	if availW <= 0 || availH <= 0 {
		return math.NaN()
	}

	scaleX := math.Inf(1)
	if plane.Width() > 0 {
		scaleX = availW / plane.Width()
	}
	scaleY := math.Inf(1)
	if plane.Height() > 0 {
		scaleY = availH / plane.Height()
	}

	return math.Min(scaleX, scaleY)
}
