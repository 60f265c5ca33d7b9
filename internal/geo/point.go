package geo

import "math"

// Point is a 2D coordinate. In screen space X grows right and Y grows down.
// In geographic world space X is longitude and Y is latitude.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// LatLng builds a geographic world point
func LatLng(lat, lng float64) Point {
	return Point{X: lng, Y: lat}
}

// Lat returns the latitude of a geographic world point
func (p Point) Lat() float64 { return p.Y }

// Lng returns the longitude of a geographic world point
func (p Point) Lng() float64 { return p.X }

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

func (p Point) Mul(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// Dist returns the euclidean distance between p and q
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Finite reports whether both components are finite numbers
func (p Point) Finite() bool {
	return finite(p.X) && finite(p.Y)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Size is the pixel extent of the rendering surface
type Size struct {
	W float64
	H float64
}

// Empty reports a zero-area (or invalid) surface
func (s Size) Empty() bool {
	return !(s.W > 0 && s.H > 0) || !finite(s.W) || !finite(s.H)
}

// Center returns the screen-space center of the surface
func (s Size) Center() Point {
	return Point{X: s.W / 2, Y: s.H / 2}
}

// Rect is an axis-aligned rectangle
type Rect struct {
	Min Point
	Max Point
}

// RectOf returns the smallest rectangle containing both points
func RectOf(a, b Point) Rect {
	return Rect{
		Min: Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// Extend grows r to include p
func (r Rect) Extend(p Point) Rect {
	return Rect{
		Min: Point{X: math.Min(r.Min.X, p.X), Y: math.Min(r.Min.Y, p.Y)},
		Max: Point{X: math.Max(r.Max.X, p.X), Y: math.Max(r.Max.Y, p.Y)},
	}
}

// Contains checks if a point is within the rectangle, edges inclusive
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Pad expands each edge outward by ratio times the rectangle's extent on
// that axis, so Pad(0.5) doubles both width and height.
func (r Rect) Pad(ratio float64) Rect {
	dx := r.Width() * ratio
	dy := r.Height() * ratio
	return Rect{
		Min: Point{X: r.Min.X - dx, Y: r.Min.Y - dy},
		Max: Point{X: r.Max.X + dx, Y: r.Max.Y + dy},
	}
}
