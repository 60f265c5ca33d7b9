package ui

import (
	"github.com/gdamore/tcell/v2"

	"refillmap/internal/browser"
	"refillmap/internal/geo"
	"refillmap/internal/render"
)

// MapView displays the basemap and the session's markers
type MapView struct {
	renderer *render.MapRenderer
	canvas   *render.Canvas
	cell     render.CellSize
	width    int
	height   int
}

// NewMapView creates a new map view
func NewMapView(width, height int, projection *geo.Projection, layers geo.Layers, cell render.CellSize) *MapView {
	canvas := render.NewCanvas(width, height)
	return &MapView{
		renderer: render.NewMapRenderer(projection, layers, canvas, cell),
		canvas:   canvas,
		cell:     cell,
		width:    width,
		height:   height,
	}
}

// Draw renders the map view to the screen
func (m *MapView) Draw(screen tcell.Screen, s *browser.Session) {
	m.canvas.Clear()

	m.renderer.RenderBasemap(s.Viewport(), s.Size())
	m.renderer.RenderMarkers(s.Markers())
	if s.Picking() {
		m.renderer.RenderCrosshair()
	}

	m.canvas.Blit(screen, 0, 0)
}

// ScreenSize returns the pixel size of the map area
func (m *MapView) ScreenSize() geo.Size {
	return m.cell.Screen(m.width, m.height)
}

// UpdateDimensions updates the view dimensions when the screen is resized
func (m *MapView) UpdateDimensions(width, height int) {
	m.width = width
	m.height = height
	m.canvas.Resize(width, height)
}
