package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"refillmap/internal/cluster"
	"refillmap/internal/debug"
	"refillmap/internal/geo"
	"refillmap/internal/station"
)

// CellSize is the pixel footprint of one terminal cell, so screen-space
// distances keep their pixel meaning
type CellSize struct {
	W float64
	H float64
}

// ToCell returns the cell containing the screen pixel p
func (c CellSize) ToCell(p geo.Point) (int, int) {
	return int(math.Floor(p.X / c.W)), int(math.Floor(p.Y / c.H))
}

// ToPixel returns the screen pixel at the centre of a cell
func (c CellSize) ToPixel(col, row int) geo.Point {
	return geo.Pt((float64(col)+0.5)*c.W, (float64(row)+0.5)*c.H)
}

// Screen returns the pixel size of a cols x rows area
func (c CellSize) Screen(cols, rows int) geo.Size {
	return geo.Size{W: float64(cols) * c.W, H: float64(rows) * c.H}
}

// MapRenderer renders basemap features and station markers to a canvas
type MapRenderer struct {
	projection *geo.Projection
	layers     geo.Layers
	canvas     *Canvas
	cell       CellSize
}

// NewMapRenderer creates a new map renderer
func NewMapRenderer(projection *geo.Projection, layers geo.Layers, canvas *Canvas, cell CellSize) *MapRenderer {
	return &MapRenderer{
		projection: projection,
		layers:     layers,
		canvas:     canvas,
		cell:       cell,
	}
}

// RenderBasemap draws every feature that overlaps the view
func (m *MapRenderer) RenderBasemap(vp geo.Viewport, size geo.Size) {
	if len(m.layers) == 0 || size.Empty() {
		return
	}
	bounds := m.projection.VisibleBounds(vp, size)

	drawn := 0
	for _, ftype := range geo.DrawOrder {
		visible := geo.FilterByBounds(m.layers[ftype], bounds)
		for _, feature := range visible {
			m.RenderFeature(feature, vp, size)
		}
		drawn += len(visible)
	}

	if debug.Enabled() {
		debug.Log("Rendered %d of %d basemap features", drawn, m.layers.Count())
	}
}

// RenderFeature draws a single basemap polyline
func (m *MapRenderer) RenderFeature(feature *geo.Feature, vp geo.Viewport, size geo.Size) {
	style := GetStyleForFeature(feature.Type)
	char := GetCharForFeature(feature.Type)

	for i := 0; i < len(feature.Points)-1; i++ {
		p1 := m.projection.WorldToScreen(feature.Points[i], vp, size)
		p2 := m.projection.WorldToScreen(feature.Points[i+1], vp, size)
		if !p1.Finite() || !p2.Finite() {
			continue
		}
		x0, y0 := m.cell.ToCell(p1)
		x1, y1 := m.cell.ToCell(p2)
		if offCanvas(x0, y0, x1, y1, m.canvas.Width(), m.canvas.Height()) {
			continue
		}
		m.DrawLine(x0, y0, x1, y1, char, style)
	}
}

// offCanvas reports a segment entirely on one outer side of the canvas
func offCanvas(x0, y0, x1, y1, w, h int) bool {
	return (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) ||
		(x0 >= w && x1 >= w) || (y0 >= h && y1 >= h)
}

// RenderMarkers draws markers in list order, so later (higher Z) markers
// overwrite earlier ones
func (m *MapRenderer) RenderMarkers(markers []cluster.Marker) {
	for i := range markers {
		mk := &markers[i]
		x, y := m.cell.ToCell(mk.Screen)

		if mk.Kind == cluster.Group {
			label := fmt.Sprintf("(%d)", mk.Count)
			m.canvas.DrawText(x-len(label)/2, y, label, ClusterStyle(mk.Count))
			continue
		}

		st := mk.Station
		glyph := st.Kind.Glyph()
		if st.Status == station.StatusBroken {
			glyph = '!'
		}
		m.canvas.Set(x, y, glyph, StationStyle(st, mk.Selected))

		if mk.Selected {
			name := " " + st.DisplayName()
			m.canvas.DrawTextClipped(x+1, y, m.canvas.Width()-x-1, name, StyleLabel)
		}
	}
}

// RenderCrosshair marks the screen centre while picking a location
func (m *MapRenderer) RenderCrosshair() {
	cx, cy := m.canvas.Width()/2, m.canvas.Height()/2
	m.canvas.Set(cx, cy, '+', StyleCrosshair)
	m.canvas.Set(cx-1, cy, '─', StyleCrosshair)
	m.canvas.Set(cx+1, cy, '─', StyleCrosshair)
	m.canvas.Set(cx, cy-1, '│', StyleCrosshair)
	m.canvas.Set(cx, cy+1, '│', StyleCrosshair)
}

// DrawLine draws a line of char between two cells
func (m *MapRenderer) DrawLine(x0, y0, x1, y1 int, char rune, style tcell.Style) {
	bresenham(x0, y0, x1, y1, func(x, y int) {
		m.canvas.Set(x, y, char, style)
	})
}

// bresenham visits every grid point on the line from (x0,y0) to (x1,y1)
func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)

	sx := -1
	if x0 < x1 {
		sx = 1
	}

	sy := -1
	if y0 < y1 {
		sy = 1
	}

	err := dx - dy

	for {
		plot(x0, y0)

		if x0 == x1 && y0 == y1 {
			break
		}

		e2 := 2 * err

		if e2 > -dy {
			err -= dy
			x0 += sx
		}

		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// abs returns the absolute value of an integer
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// UpdateCanvas updates the renderer's canvas
func (m *MapRenderer) UpdateCanvas(canvas *Canvas) {
	m.canvas = canvas
}

// SetLayers replaces the basemap
func (m *MapRenderer) SetLayers(layers geo.Layers) {
	m.layers = layers
}
