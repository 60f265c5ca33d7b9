package ui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"refillmap/internal/browser"
	"refillmap/internal/debug"
	"refillmap/internal/geo"
	"refillmap/internal/metrics"
	"refillmap/internal/render"
	"refillmap/internal/station"
)

const (
	frameInterval = 33 * time.Millisecond
	panStep       = 64.0 // px per arrow key press

	listWidth    = 34
	listHeight   = 14
	detailHeight = 10
)

// Options configures the terminal front end
type Options struct {
	Session   browser.Options
	Layers    geo.Layers
	Cell      render.CellSize
	WheelStep float64 // wheel delta per notch
}

// App is the main application controller
type App struct {
	screen     tcell.Screen
	catalog    *station.Catalog
	session    *browser.Session
	mapView    *MapView
	listView   *ListView
	detailView *DetailView
	filter     station.Filter
	cell       render.CellSize
	wheelStep  float64
	showList   bool

	buttons    tcell.ButtonMask
	panelPress bool
	quit       chan struct{}
}

// NewApp initialises screen and builds a map session over the catalog
func NewApp(screen tcell.Screen, catalog *station.Catalog, opts Options, m *metrics.Metrics) (*App, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.EnableMouse()
	screen.EnableFocus()
	screen.Clear()

	if opts.WheelStep <= 0 {
		opts.WheelStep = 100
	}

	a := &App{
		screen:    screen,
		catalog:   catalog,
		cell:      opts.Cell,
		wheelStep: opts.WheelStep,
		quit:      make(chan struct{}),
	}
	a.session = browser.New(opts.Session, a, m)

	width, height := screen.Size()
	a.mapView = NewMapView(width, height, a.session.Projection(), opts.Layers, opts.Cell)
	a.listView = NewListView(0, 0, listWidth, listHeight)
	a.detailView = NewDetailView(0, 0, width, detailHeight)

	a.refresh()
	a.handleResize()
	return a, nil
}

// Session returns the map session driven by the app
func (a *App) Session() *browser.Session {
	return a.session
}

// Run starts the application main loop
func (a *App) Run() error {
	defer a.cleanup()

	events := make(chan tcell.Event, 16)
	go a.screen.ChannelEvents(events, a.quit)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	a.render()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !a.HandleEvent(ev) {
				return nil // Quit requested
			}
			a.render()

		case now := <-ticker.C:
			if a.session.Tick(now) {
				a.render()
			}
		}
	}
}

// refresh reapplies the filter to the catalog and hands the result to the session
func (a *App) refresh() {
	stations := a.filter.Apply(a.catalog.All())
	a.session.SetStations(stations)
	a.listView.Update(a.session.Stations())

	if id := a.session.SelectedID(); id != "" && !a.listView.SelectID(id) {
		a.session.ClearSelection()
	}
}

// ViewportChanged is called by the session; frames are redrawn after every event
func (a *App) ViewportChanged(geo.Viewport) {}

// BackgroundClicked is called by the session after an empty-map click
func (a *App) BackgroundClicked() {}

// MarkerClicked keeps the list cursor on the clicked station
func (a *App) MarkerClicked(id string) {
	a.listView.SelectID(id)
}

// LocationPicked adds a draft station where the user clicked and selects it
func (a *App) LocationPicked(world geo.Point) {
	draft := a.catalog.AddDraft(world)
	debug.Log("Added draft %s at %s", draft.ID, draft.PositionString())

	a.session.ExitPickMode()
	a.refresh()
	a.session.Select(draft.ID)
	a.listView.SelectID(draft.ID)
}

// render renders the current view to the screen
func (a *App) render() {
	a.screen.Clear()

	a.mapView.Draw(a.screen, a.session)

	if a.showList {
		a.listView.Draw(a.screen)
	}
	if st, ok := a.session.Selected(); ok && !a.session.Picking() {
		a.detailView.SetStation(st)
		a.detailView.Draw(a.screen)
	}
	a.drawStatus()

	a.screen.Show()
}

func (a *App) drawStatus() {
	width, height := a.screen.Size()
	if height == 0 {
		return
	}
	y := height - 1

	var text string
	if a.session.Picking() {
		text = " PICK  click the map to place a new refill point   esc: cancel"
	} else {
		filter := ""
		if a.filter.Active() {
			filter = " (" + a.filter.String() + ")"
		}
		text = fmt.Sprintf(" zoom %.1f  %d/%d stations%s   tab: list  a: add  f/p/i/o: filter  c: fit  q: quit",
			a.session.Viewport().Zoom(), len(a.session.Stations()), a.catalog.Len(), filter)
	}

	used := drawText(a.screen, 0, y, width, text, render.StyleStatusBar)
	for x := used; x < width; x++ {
		a.screen.SetContent(x, y, ' ', nil, render.StyleStatusBar)
	}
}

// HandleEvent processes one terminal event. It returns false when the app
// should quit.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)

	case *tcell.EventMouse:
		a.handleMouse(ev)

	case *tcell.EventFocus:
		if !ev.Focused {
			a.session.Gestures().Leave()
			a.buttons = 0
			a.panelPress = false
		}

	case *tcell.EventResize:
		a.screen.Sync()
		a.handleResize()
	}

	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		switch {
		case a.session.Picking():
			a.session.ExitPickMode()
		case a.session.SelectedID() != "":
			a.session.ClearSelection()
		default:
			return false
		}

	case tcell.KeyEnter:
		if a.showList {
			if st := a.listView.GetSelected(); st != nil {
				a.session.Select(st.ID)
			}
		}

	case tcell.KeyTab:
		a.showList = !a.showList

	case tcell.KeyUp:
		if a.showList {
			a.listView.SelectPrev()
		} else {
			a.session.Pan(0, panStep)
		}

	case tcell.KeyDown:
		if a.showList {
			a.listView.SelectNext()
		} else {
			a.session.Pan(0, -panStep)
		}

	case tcell.KeyLeft:
		a.session.Pan(panStep, 0)

	case tcell.KeyRight:
		a.session.Pan(-panStep, 0)

	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return false

		case '+', '=':
			a.session.ZoomBy(2)

		case '-', '_':
			a.session.ZoomBy(0.5)

		case 'a', 'A':
			if a.session.Picking() {
				a.session.ExitPickMode()
			} else {
				a.session.EnterPickMode()
			}

		case 'f', 'F':
			a.filter.FreeOnly = !a.filter.FreeOnly
			a.refresh()

		case 'p', 'P':
			a.filter.PublicOnly = !a.filter.PublicOnly
			a.refresh()

		case 'i', 'I':
			a.filter.Indoor = !a.filter.Indoor
			a.refresh()

		case 'o', 'O':
			a.filter.Outdoor = !a.filter.Outdoor
			a.refresh()

		case 'c', 'C':
			a.session.Fit(a.session.Stations())
		}
	}

	return true
}

// handleMouse turns cell-based mouse reports into pixel gestures. Presses
// that start on an open panel stay with the panel until release.
func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	p := a.cell.ToPixel(x, y)
	g := a.session.Gestures()
	buttons := ev.Buttons()
	wasDown := a.buttons&tcell.Button1 != 0
	a.buttons = buttons & tcell.Button1

	switch {
	case buttons&tcell.WheelUp != 0:
		g.Wheel(p, -a.wheelStep)

	case buttons&tcell.WheelDown != 0:
		g.Wheel(p, a.wheelStep)

	case buttons&tcell.Button1 != 0 && !wasDown:
		if a.pressPanel(x, y) {
			a.panelPress = true
			return
		}
		g.Down(p)

	case buttons&tcell.Button1 != 0:
		if !a.panelPress {
			g.Move(p)
		}

	case wasDown:
		if a.panelPress {
			a.panelPress = false
			return
		}
		g.Up(p)
	}
}

// pressPanel handles a press on the list or detail sheet
func (a *App) pressPanel(x, y int) bool {
	if a.showList && a.listView.contains(x, y) {
		if st, ok := a.listView.ItemAt(x, y); ok {
			a.session.Select(st.ID)
		}
		return true
	}
	if _, ok := a.session.Selected(); ok && !a.session.Picking() && a.detailView.contains(x, y) {
		return true
	}
	return false
}

// handleResize lays out the map and panels for the current terminal size
func (a *App) handleResize() {
	width, height := a.screen.Size()
	mapHeight := max(height-1, 0) // last row is the status bar

	a.mapView.UpdateDimensions(width, mapHeight)
	a.session.SetSize(a.mapView.ScreenSize())

	a.listView.UpdateDimensions(0, 0, min(listWidth, width), min(listHeight, mapHeight))

	h := min(detailHeight, mapHeight)
	a.detailView.UpdateDimensions(0, mapHeight-h, width, h)
}

// cleanup performs cleanup before exit
func (a *App) cleanup() {
	close(a.quit)

	if a.screen != nil {
		a.screen.Fini()
	}
}
