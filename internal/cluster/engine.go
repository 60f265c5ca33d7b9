// Package cluster reduces the station set to the markers drawn for one frame:
// culled to a padded view, grouped by screen proximity, selection on top.
package cluster

import (
	"sort"
	"time"

	"refillmap/internal/geo"
	"refillmap/internal/station"
)

// Options controls culling and clustering
type Options struct {
	Enabled     bool
	PixelRadius float64 // any two members of a group are at most this far apart on screen
	MinCount    int     // smallest group drawn as a cluster
	DisableZoom float64 // at or above this zoom every station is drawn individually
	Padding     float64 // fraction of the view added on each side before culling
}

// DefaultOptions returns the geographic-mode defaults
func DefaultOptions() Options {
	return Options{
		Enabled:     true,
		PixelRadius: 60,
		MinCount:    2,
		DisableZoom: 15,
		Padding:     0.5,
	}
}

// Kind tells single markers from groups
type Kind int

const (
	Single Kind = iota
	Group
)

func (k Kind) String() string {
	if k == Group {
		return "group"
	}
	return "single"
}

// Marker is one renderable item
type Marker struct {
	Kind     Kind
	Station  *station.Station   // set for Single
	Members  []*station.Station // set for Group, ordered by id
	Count    int
	Centroid geo.Point // world
	Screen   geo.Point // screen position, unrounded
	Bounds   geo.Rect  // world bounds of the members
	Selected bool
	Z        int // stacking order, higher draws above
}

// ID returns the station id for singles and a stable key for groups
func (m *Marker) ID() string {
	if m.Kind == Single {
		return m.Station.ID
	}
	return "group:" + m.Members[0].ID
}

// Frame is everything one render pass depends on
type Frame struct {
	Stations   []station.Station
	Viewport   geo.Viewport
	Size       geo.Size
	SelectedID string
}

// Recorder receives per-pass statistics
type Recorder interface {
	ObserveRender(singles, groups, culled int, duration time.Duration)
}

// Engine computes marker lists. It holds no per-frame state, so Render is
// pure given the same Frame.
type Engine struct {
	proj *geo.Projection
	opts Options
	rec  Recorder
}

// NewEngine creates an engine over proj. rec may be nil.
func NewEngine(proj *geo.Projection, opts Options, rec Recorder) *Engine {
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	return &Engine{proj: proj, opts: opts, rec: rec}
}

// Options returns the engine configuration
func (e *Engine) Options() Options {
	return e.opts
}

type placed struct {
	st     *station.Station
	screen geo.Point
}

// CullRect returns the padded screen rectangle used for culling
func (e *Engine) CullRect(size geo.Size) geo.Rect {
	return geo.Rect{Max: geo.Pt(size.W, size.H)}.Pad(e.opts.Padding)
}

// ClusteringActive reports whether grouping applies at vp
func (e *Engine) ClusteringActive(vp geo.Viewport) bool {
	return e.opts.Enabled &&
		e.opts.PixelRadius > 0 &&
		e.opts.MinCount >= 2 &&
		vp.Zoom() < e.opts.DisableZoom
}

// Render culls and clusters f.Stations. The selected station is never
// grouped and comes last, with the highest Z.
func (e *Engine) Render(f Frame) []Marker {
	start := time.Now()
	if f.Size.Empty() || !f.Viewport.Valid() {
		e.observe(0, 0, len(f.Stations), start)
		return nil
	}

	visible, selected, culled := e.cull(f)

	var markers []Marker
	if e.ClusteringActive(f.Viewport) {
		markers = e.group(visible, f)
	} else {
		markers = make([]Marker, 0, len(visible)+1)
		for _, p := range visible {
			markers = append(markers, e.single(p))
		}
	}

	sort.SliceStable(markers, func(i, j int) bool {
		a, b := &markers[i], &markers[j]
		if a.Screen.Y != b.Screen.Y {
			return a.Screen.Y < b.Screen.Y
		}
		if a.Screen.X != b.Screen.X {
			return a.Screen.X < b.Screen.X
		}
		return a.ID() < b.ID()
	})

	if selected != nil {
		m := e.single(*selected)
		m.Selected = true
		markers = append(markers, m)
	}

	groups := 0
	for i := range markers {
		markers[i].Z = i + 1
		if markers[i].Kind == Group {
			groups++
		}
	}
	e.observe(len(markers)-groups, groups, culled, start)

	return markers
}

// Visible returns the stations that survive culling, ordered by id,
// selection included
func (e *Engine) Visible(f Frame) []*station.Station {
	if f.Size.Empty() || !f.Viewport.Valid() {
		return nil
	}
	visible, selected, _ := e.cull(f)
	out := make([]*station.Station, 0, len(visible)+1)
	for _, p := range visible {
		out = append(out, p.st)
	}
	if selected != nil {
		out = append(out, selected.st)
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	return out
}

// cull projects every station, drops the ones outside the padded view or
// without a usable position, and splits off the selected station. The
// selected station is culled like any other.
func (e *Engine) cull(f Frame) ([]placed, *placed, int) {
	rect := e.CullRect(f.Size)

	ordered := make([]*station.Station, 0, len(f.Stations))
	for i := range f.Stations {
		ordered = append(ordered, &f.Stations[i])
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var (
		visible  []placed
		selected *placed
		culled   int
	)
	for _, st := range ordered {
		if !st.HasPosition() {
			culled++
			continue
		}
		screen := e.proj.WorldToScreen(st.Position, f.Viewport, f.Size)
		if !screen.Finite() {
			culled++
			continue
		}
		if !rect.Contains(screen) {
			culled++
			continue
		}
		p := placed{st: st, screen: screen}
		if f.SelectedID != "" && st.ID == f.SelectedID && selected == nil {
			selected = &p
			continue
		}
		visible = append(visible, p)
	}
	return visible, selected, culled
}

// group is a greedy complete-linkage pass: seeds are taken in id order and
// absorb their nearest unassigned neighbours while every pair in the group
// stays within the radius.
func (e *Engine) group(visible []placed, f Frame) []Marker {
	radius := e.opts.PixelRadius
	points := make([]geo.Point, len(visible))
	for i, p := range visible {
		points[i] = p.screen
	}
	index := newGrid(radius, points)
	assigned := make([]bool, len(visible))
	markers := make([]Marker, 0, len(visible))

	for seed := range visible {
		if assigned[seed] {
			continue
		}

		var candidates []int
		for _, i := range index.within(points[seed], radius) {
			if i != seed && !assigned[i] {
				candidates = append(candidates, i)
			}
		}
		sort.SliceStable(candidates, func(a, b int) bool {
			return points[candidates[a]].Dist(points[seed]) < points[candidates[b]].Dist(points[seed])
		})

		members := []int{seed}
		for _, c := range candidates {
			fits := true
			for _, m := range members {
				if points[c].Dist(points[m]) > radius {
					fits = false
					break
				}
			}
			if fits {
				members = append(members, c)
			}
		}

		if len(members) < e.opts.MinCount {
			assigned[seed] = true
			markers = append(markers, e.single(visible[seed]))
			continue
		}

		sort.Ints(members)
		for _, m := range members {
			assigned[m] = true
		}
		markers = append(markers, e.cluster(visible, members, f))
	}

	return markers
}

func (e *Engine) single(p placed) Marker {
	return Marker{
		Kind:     Single,
		Station:  p.st,
		Count:    1,
		Centroid: p.st.Position,
		Screen:   p.screen,
		Bounds:   geo.Rect{Min: p.st.Position, Max: p.st.Position},
	}
}

// cluster builds a group marker. The centroid is averaged in screen space
// and mapped back, so it sits where the members appear.
func (e *Engine) cluster(visible []placed, members []int, f Frame) Marker {
	m := Marker{
		Kind:    Group,
		Count:   len(members),
		Members: make([]*station.Station, 0, len(members)),
	}

	first := visible[members[0]].st.Position
	m.Bounds = geo.Rect{Min: first, Max: first}
	var sum geo.Point
	for _, i := range members {
		p := visible[i]
		m.Members = append(m.Members, p.st)
		m.Bounds = m.Bounds.Extend(p.st.Position)
		sum = sum.Add(p.screen)
	}

	m.Screen = sum.Mul(1 / float64(len(members)))
	m.Centroid = e.proj.ScreenToWorld(m.Screen, f.Viewport, f.Size)
	return m
}

func (e *Engine) observe(singles, groups, culled int, start time.Time) {
	if e.rec != nil {
		e.rec.ObserveRender(singles, groups, culled, time.Since(start))
	}
}
