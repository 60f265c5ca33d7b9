package geo

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func near(a, b Point, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestWorldScreenInverse(t *testing.T) {
	size := Size{W: 800, H: 600}
	viewports := []Viewport{
		{Translation: Pt(0, 0), Scale: 1},
		{Translation: Pt(-123.5, 42.25), Scale: 3.75},
		{Translation: Pt(1e6, -2e6), Scale: 0.01},
	}

	tests := []struct {
		name   string
		space  Space
		points []Point
		tol    float64
	}{
		{"plane", Plane{}, []Point{Pt(0, 0), Pt(50, 50), Pt(100, 12.5), Pt(-3, 250)}, 1e-7},
		{"mercator", Mercator{}, []Point{LatLng(51.5074, -0.1278), LatLng(0, 0), LatLng(-33.86, 151.2), LatLng(80, -179.9)}, 1e-7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proj := NewProjection(tt.space)
			for _, vp := range viewports {
				for _, p := range tt.points {
					got := proj.ScreenToWorld(proj.WorldToScreen(p, vp, size), vp, size)
					if !near(got, p, tt.tol) {
						t.Errorf("round trip %v with %+v = %v", p, vp, got)
					}
				}
			}
		})
	}
}

func TestPlaneAffine(t *testing.T) {
	proj := NewProjection(Plane{})
	vp := Viewport{Translation: Pt(10, -20), Scale: 2}

	got := proj.WorldToScreen(Pt(5, 5), vp, Size{W: 100, H: 100})
	if got != Pt(20, -10) {
		t.Fatalf("WorldToScreen = %v, want (20,-10)", got)
	}
}

func TestMercatorKnownValues(t *testing.T) {
	m := Mercator{}

	origin := m.Project(LatLng(0, 0))
	if !near(origin, Pt(128, 128), tolerance) {
		t.Fatalf("equator/prime meridian = %v, want (128,128)", origin)
	}

	edge := m.Project(LatLng(MaxMercatorLatitude, -180))
	if !near(edge, Pt(0, 0), 1e-6) {
		t.Fatalf("north-west corner = %v, want (0,0)", edge)
	}

	clamped := m.Project(LatLng(90, 0))
	if !clamped.Finite() {
		t.Fatalf("pole should clamp to a finite value, got %v", clamped)
	}
}

func TestCenterAndCentered(t *testing.T) {
	size := Size{W: 640, H: 384}
	for _, space := range []Space{Plane{}, Mercator{}} {
		proj := NewProjection(space)
		world := LatLng(51.5, -0.12)
		if space.Name() == "plane" {
			world = Pt(40, 60)
		}

		vp := proj.Centered(world, 4096, size)
		if got := proj.Center(vp, size); !near(got, world, 1e-7) {
			t.Errorf("%s: center = %v, want %v", space.Name(), got, world)
		}
	}
}

func TestVisibleBoundsPlane(t *testing.T) {
	proj := NewProjection(Plane{})
	vp := Viewport{Translation: Pt(-100, -50), Scale: 2}

	b := proj.VisibleBounds(vp, Size{W: 800, H: 600})
	want := Rect{Min: Pt(50, 25), Max: Pt(450, 325)}
	if !near(b.Min, want.Min, tolerance) || !near(b.Max, want.Max, tolerance) {
		t.Fatalf("bounds = %+v, want %+v", b, want)
	}
}

func TestVisibleBoundsMercatorOrientation(t *testing.T) {
	proj := NewProjection(Mercator{})
	size := Size{W: 800, H: 600}
	vp := proj.Centered(LatLng(51.5074, -0.1278), ScaleForZoom(14), size)

	b := proj.VisibleBounds(vp, size)
	if b.Min.Y >= b.Max.Y || b.Min.X >= b.Max.X {
		t.Fatalf("degenerate bounds %+v", b)
	}
	if !b.Contains(LatLng(51.5074, -0.1278)) {
		t.Fatalf("bounds %+v should contain the center", b)
	}
}

func TestScaleToFit(t *testing.T) {
	proj := NewProjection(Plane{})
	scale := proj.ScaleToFit(Rect{Min: Pt(0, 0), Max: Pt(100, 50)}, Size{W: 220, H: 220}, 10)
	if math.Abs(scale-2) > tolerance {
		t.Fatalf("scale = %v, want 2", scale)
	}

	if s := proj.ScaleToFit(Rect{Min: Pt(1, 1), Max: Pt(1, 1)}, Size{W: 100, H: 100}, 0); !math.IsInf(s, 1) {
		t.Fatalf("single point should fit at any scale, got %v", s)
	}
}

func TestRectPad(t *testing.T) {
	r := Rect{Min: Pt(0, 0), Max: Pt(10, 20)}.Pad(0.5)
	want := Rect{Min: Pt(-5, -10), Max: Pt(15, 30)}
	if r != want {
		t.Fatalf("Pad = %+v, want %+v", r, want)
	}
}

func TestZoomScaleRoundTrip(t *testing.T) {
	vp := Viewport{Scale: ScaleForZoom(15)}
	if math.Abs(vp.Zoom()-15) > tolerance {
		t.Fatalf("zoom = %v, want 15", vp.Zoom())
	}
}

func TestSpaceByName(t *testing.T) {
	for name, want := range map[string]string{"plane": "plane", "geographic": "geographic", "": "geographic"} {
		s, ok := SpaceByName(name)
		if !ok || s.Name() != want {
			t.Errorf("SpaceByName(%q) = %v, %v", name, s, ok)
		}
	}
	if _, ok := SpaceByName("polar"); ok {
		t.Error("unknown space should not resolve")
	}
}
