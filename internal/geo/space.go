package geo

import "math"

// Space maps world coordinates onto the flat plane the viewport transform
// operates on. Implementations must be exact inverses of each other.
type Space interface {
	Project(world Point) Point
	Unproject(plane Point) Point
	Name() string
}

// Plane is the normalized-plane space: world coordinates are percentages
// (0-100) of a fixed logical canvas and map to the plane unchanged.
type Plane struct{}

func (Plane) Project(world Point) Point { return world }
func (Plane) Unproject(plane Point) Point { return plane }
func (Plane) Name() string { return "plane" }

// MaxMercatorLatitude is the latitude at which spherical Mercator reaches the
// edge of the square world
const MaxMercatorLatitude = 85.0511287798

// TileSize is the plane width of the whole world at scale 1, so that
// scale = 2^zoom matches web map zoom levels
const TileSize = 256.0

// Mercator is spherical Web Mercator. World points are latitude/longitude in
// degrees (X = longitude, Y = latitude); the plane is TileSize units square
// with the origin at the north-west corner.
type Mercator struct{}

func (Mercator) Name() string { return "geographic" }

// Project converts lat/lon to plane coordinates
func (Mercator) Project(world Point) Point {
	lat := math.Max(math.Min(world.Y, MaxMercatorLatitude), -MaxMercatorLatitude)
	sin := math.Sin(lat * math.Pi / 180.0)

	x := (world.X + 180.0) / 360.0
	y := 0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)

	return Point{X: x * TileSize, Y: y * TileSize}
}

// Unproject converts plane coordinates back to lat/lon
func (Mercator) Unproject(plane Point) Point {
	x := plane.X/TileSize*360.0 - 180.0
	n := math.Pi - 2*math.Pi*plane.Y/TileSize
	lat := 180.0 / math.Pi * math.Atan(math.Sinh(n))

	return Point{X: x, Y: lat}
}

// SpaceByName returns the space for a config mode string
func SpaceByName(name string) (Space, bool) {
	switch name {
	case "plane", "normalized":
		return Plane{}, true
	case "geographic", "geo", "mercator", "":
		return Mercator{}, true
	default:
		return nil, false
	}
}
