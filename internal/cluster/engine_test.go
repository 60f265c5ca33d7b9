package cluster

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"refillmap/internal/geo"
	"refillmap/internal/station"
)

var screen = geo.Size{W: 800, H: 600}

func planeEngine(opts Options) *Engine {
	return NewEngine(geo.NewProjection(geo.Plane{}), opts, nil)
}

func at(id string, x, y float64) station.Station {
	return station.Station{ID: id, Position: geo.Pt(x, y), Kind: station.KindFountain}
}

func identity() geo.Viewport {
	return geo.Viewport{Scale: 1}
}

func TestCullingMonotonicity(t *testing.T) {
	opts := DefaultOptions()
	opts.Enabled = false
	e := planeEngine(opts)

	var stations []station.Station
	for x := -1000.0; x <= 1800; x += 50 {
		for y := -1000.0; y <= 1600; y += 50 {
			stations = append(stations, at(fmt.Sprintf("%g,%g", x, y), x, y))
		}
	}

	markers := e.Render(Frame{Stations: stations, Viewport: identity(), Size: screen})
	got := make(map[string]bool, len(markers))
	for _, m := range markers {
		got[m.Station.ID] = true
	}

	view := geo.Rect{Max: geo.Pt(800, 600)}
	padded := view.Pad(0.5)
	for _, st := range stations {
		switch {
		case view.Contains(st.Position) && !got[st.ID]:
			t.Errorf("station %s inside the view was culled", st.ID)
		case !padded.Contains(st.Position) && got[st.ID]:
			t.Errorf("station %s outside the padded view was kept", st.ID)
		}
	}
	if !got["-400,-300"] || !got["1200,900"] {
		t.Error("padded rectangle edges should be inclusive")
	}
}

func TestClusteringDisabledAtHighZoom(t *testing.T) {
	opts := DefaultOptions()
	opts.DisableZoom = 3
	e := planeEngine(opts)

	var stations []station.Station
	for i := 0; i < 20; i++ {
		stations = append(stations, at(fmt.Sprintf("s%02d", i), 50+float64(i)*0.1, 40))
	}

	// zoom 3: scale 8, spread 16px, far inside the radius
	vp := geo.Viewport{Scale: 8}
	for _, m := range e.Render(Frame{Stations: stations, Viewport: vp, Size: screen}) {
		if m.Kind == Group {
			t.Fatal("no cluster may be emitted at the disable zoom")
		}
	}

	vp.Scale = math.Exp2(2.9)
	markers := e.Render(Frame{Stations: stations, Viewport: vp, Size: screen})
	if len(markers) != 1 || markers[0].Kind != Group || markers[0].Count != 20 {
		t.Fatalf("below the disable zoom the stations should form one group, got %d markers", len(markers))
	}
}

func TestSelectedStationIsExempt(t *testing.T) {
	e := planeEngine(DefaultOptions())
	stations := []station.Station{
		at("a", 100, 100),
		at("b", 105, 100),
		at("c", 110, 100),
	}

	markers := e.Render(Frame{Stations: stations, Viewport: identity(), Size: screen, SelectedID: "b"})
	if len(markers) != 2 {
		t.Fatalf("got %d markers, want group + selected", len(markers))
	}

	last := markers[len(markers)-1]
	if last.Kind != Single || last.Station.ID != "b" || !last.Selected {
		t.Fatalf("selected station should be the last single marker, got %+v", last)
	}
	for _, m := range markers[:len(markers)-1] {
		if m.Z >= last.Z {
			t.Fatalf("selected marker Z %d is not the highest (%d)", last.Z, m.Z)
		}
		if m.Kind == Group {
			for _, member := range m.Members {
				if member.ID == "b" {
					t.Fatal("selected station was grouped")
				}
			}
		}
	}
	if markers[0].Kind != Group || markers[0].Count != 2 {
		t.Fatalf("remaining stations should group, got %+v", markers[0])
	}
}

func TestSelectedStationOutsideView(t *testing.T) {
	e := planeEngine(DefaultOptions())
	stations := []station.Station{at("far", 5000, 5000), at("near", 10, 10)}

	markers := e.Render(Frame{Stations: stations, Viewport: identity(), Size: screen, SelectedID: "far"})
	if len(markers) != 1 || markers[0].Station.ID != "near" || markers[0].Selected {
		t.Fatalf("a selected station outside the padded view should be culled, got %+v", markers)
	}

	markers = e.Render(Frame{Stations: []station.Station{at("far", 5000, 5000)}, Viewport: identity(), Size: screen, SelectedID: "far"})
	if len(markers) != 0 {
		t.Fatalf("got %d markers, want none", len(markers))
	}
}

func TestDeterministicOutput(t *testing.T) {
	e := planeEngine(DefaultOptions())

	rng := rand.New(rand.NewSource(7))
	var stations []station.Station
	for i := 0; i < 200; i++ {
		stations = append(stations, at(fmt.Sprintf("id-%03d", i), rng.Float64()*800, rng.Float64()*600))
	}
	f := Frame{Stations: stations, Viewport: identity(), Size: screen}
	first := e.Render(f)

	shuffled := append([]station.Station(nil), stations...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	f.Stations = shuffled

	for run := 0; run < 3; run++ {
		again := e.Render(f)
		if len(again) != len(first) {
			t.Fatalf("run %d: %d markers, want %d", run, len(again), len(first))
		}
		for i := range first {
			if first[i].ID() != again[i].ID() || first[i].Count != again[i].Count || first[i].Z != again[i].Z {
				t.Fatalf("run %d: marker %d differs: %s/%d vs %s/%d", run, i,
					first[i].ID(), first[i].Count, again[i].ID(), again[i].Count)
			}
		}
	}
}

func TestGroupsRespectPairwiseRadius(t *testing.T) {
	opts := DefaultOptions()
	e := planeEngine(opts)

	rng := rand.New(rand.NewSource(42))
	var stations []station.Station
	for i := 0; i < 300; i++ {
		stations = append(stations, at(fmt.Sprintf("p%03d", i), rng.Float64()*800, rng.Float64()*600))
	}

	f := Frame{Stations: stations, Viewport: identity(), Size: screen}
	markers := e.Render(f)

	total := 0
	for _, m := range markers {
		total += m.Count
		if m.Kind != Group {
			continue
		}
		if m.Count < opts.MinCount || len(m.Members) != m.Count {
			t.Fatalf("group %s has count %d and %d members", m.ID(), m.Count, len(m.Members))
		}
		for i, a := range m.Members {
			for _, b := range m.Members[i+1:] {
				if d := a.Position.Dist(b.Position); d > opts.PixelRadius {
					t.Fatalf("members %s and %s are %.1fpx apart", a.ID, b.ID, d)
				}
			}
			if !m.Bounds.Contains(a.Position) {
				t.Fatalf("bounds of %s miss member %s", m.ID(), a.ID)
			}
		}
	}
	if want := len(e.Visible(f)); total != want {
		t.Fatalf("markers cover %d stations, %d are visible", total, want)
	}
}

func TestMinCount(t *testing.T) {
	opts := DefaultOptions()
	opts.MinCount = 3
	e := planeEngine(opts)

	markers := e.Render(Frame{
		Stations: []station.Station{at("a", 100, 100), at("b", 110, 100)},
		Viewport: identity(),
		Size:     screen,
	})
	if len(markers) != 2 || markers[0].Kind != Single || markers[1].Kind != Single {
		t.Fatalf("a pair below min count should render individually, got %d markers", len(markers))
	}
}

func TestNonFinitePositionsExcluded(t *testing.T) {
	opts := DefaultOptions()
	opts.Enabled = false
	e := planeEngine(opts)

	stations := []station.Station{
		at("good", 10, 10),
		at("nan", math.NaN(), 10),
		at("inf", 10, math.Inf(1)),
		at("also-good", 20, 20),
	}
	markers := e.Render(Frame{Stations: stations, Viewport: identity(), Size: screen, SelectedID: "nan"})
	if len(markers) != 2 {
		t.Fatalf("got %d markers, want 2", len(markers))
	}
	for _, m := range markers {
		if !m.Screen.Finite() {
			t.Fatalf("marker %s has a non-finite screen position", m.ID())
		}
	}
}

func TestZeroAreaShowsNothing(t *testing.T) {
	e := planeEngine(DefaultOptions())
	stations := []station.Station{at("a", 0, 0)}

	for _, size := range []geo.Size{{}, {W: 800}, {H: 600}, {W: -1, H: 10}} {
		if markers := e.Render(Frame{Stations: stations, Viewport: identity(), Size: size}); len(markers) != 0 {
			t.Errorf("size %v: got %d markers", size, len(markers))
		}
	}
}

func TestGeographicLondonGroup(t *testing.T) {
	stations, err := station.Default()
	if err != nil {
		t.Fatal(err)
	}
	proj := geo.NewProjection(geo.Mercator{})
	e := NewEngine(proj, DefaultOptions(), nil)

	center := geo.LatLng(51.5174, -0.1400)
	vp := proj.Centered(center, geo.ScaleForZoom(10), screen)
	markers := e.Render(Frame{Stations: stations, Viewport: vp, Size: screen})
	if len(markers) != 1 || markers[0].Kind != Group || markers[0].Count != 5 {
		t.Fatalf("at zoom 10 central London should be one group of 5, got %d markers", len(markers))
	}
	c := markers[0].Centroid
	if !markers[0].Bounds.Pad(0.01).Contains(c) {
		t.Fatalf("centroid %v outside member bounds %v", c, markers[0].Bounds)
	}

	vp = proj.Centered(center, geo.ScaleForZoom(16), screen)
	markers = e.Render(Frame{Stations: stations, Viewport: vp, Size: screen})
	for _, m := range markers {
		if m.Kind == Group {
			t.Fatal("zoom 16 is past the disable zoom")
		}
	}
}

type fakeRecorder struct {
	passes, singles, groups, culled int
}

func (r *fakeRecorder) ObserveRender(singles, groups, culled int, _ time.Duration) {
	r.passes++
	r.singles, r.groups, r.culled = singles, groups, culled
}

func TestRecorder(t *testing.T) {
	rec := &fakeRecorder{}
	e := NewEngine(geo.NewProjection(nil), DefaultOptions(), rec)

	e.Render(Frame{
		Stations: []station.Station{at("a", 10, 10), at("b", 12, 10), at("c", 400, 300), at("d", 9000, 0)},
		Viewport: identity(),
		Size:     screen,
	})
	if rec.passes != 1 || rec.singles != 1 || rec.groups != 1 || rec.culled != 1 {
		t.Fatalf("recorder saw %+v", rec)
	}
}
