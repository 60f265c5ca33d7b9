package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"refillmap/internal/render"
	"refillmap/internal/station"
)

// ListView displays a scrollable list of stations
type ListView struct {
	panel
	stations      []station.Station
	selectedIndex int
	scrollOffset  int
	maxVisible    int
}

// NewListView creates a new station list view
func NewListView(x, y, width, height int) *ListView {
	l := &ListView{}
	l.UpdateDimensions(x, y, width, height)
	return l
}

// Update refreshes the station list
func (l *ListView) Update(stations []station.Station) {
	l.stations = stations

	if l.selectedIndex >= len(l.stations) {
		l.selectedIndex = len(l.stations) - 1
	}
	if l.selectedIndex < 0 {
		l.selectedIndex = 0
	}

	l.adjustScroll()
}

// SelectNext moves selection down
func (l *ListView) SelectNext() {
	if l.selectedIndex < len(l.stations)-1 {
		l.selectedIndex++
		l.adjustScroll()
	}
}

// SelectPrev moves selection up
func (l *ListView) SelectPrev() {
	if l.selectedIndex > 0 {
		l.selectedIndex--
		l.adjustScroll()
	}
}

// SelectID moves the cursor to the station with the given id
func (l *ListView) SelectID(id string) bool {
	for i := range l.stations {
		if l.stations[i].ID == id {
			l.selectedIndex = i
			l.adjustScroll()
			return true
		}
	}
	return false
}

// adjustScroll adjusts scroll offset to keep selected item visible
func (l *ListView) adjustScroll() {
	if l.selectedIndex >= l.scrollOffset+l.maxVisible {
		l.scrollOffset = l.selectedIndex - l.maxVisible + 1
	}

	if l.selectedIndex < l.scrollOffset {
		l.scrollOffset = l.selectedIndex
	}

	if l.scrollOffset < 0 {
		l.scrollOffset = 0
	}
}

// GetSelected returns the station under the cursor
func (l *ListView) GetSelected() *station.Station {
	if l.selectedIndex >= 0 && l.selectedIndex < len(l.stations) {
		return &l.stations[l.selectedIndex]
	}
	return nil
}

// ItemAt returns the station drawn on the given screen cell
func (l *ListView) ItemAt(x, y int) (*station.Station, bool) {
	if !l.contains(x, y) || y == l.y || y == l.y+l.height-1 {
		return nil, false
	}
	i := l.scrollOffset + y - l.y - 1
	if i < 0 || i >= len(l.stations) {
		return nil, false
	}
	l.selectedIndex = i
	return &l.stations[i], true
}

// Draw renders the list view to the screen
func (l *ListView) Draw(screen tcell.Screen) {
	l.clear(screen)
	l.drawFrame(screen, fmt.Sprintf("Stations (%d)", len(l.stations)))

	visibleCount := min(l.maxVisible, len(l.stations)-l.scrollOffset)
	for i := 0; i < visibleCount; i++ {
		index := l.scrollOffset + i
		st := &l.stations[index]

		style := render.StyleListItem
		if index == l.selectedIndex {
			style = render.StyleListSelected
		}

		x := l.x + 1
		y := l.y + i + 1
		used := drawText(screen, x, y, l.width-2, st.ListDisplay(), style)
		for j := used; j < l.width-2; j++ {
			screen.SetContent(x+j, y, ' ', nil, style)
		}
	}

	if len(l.stations) > l.maxVisible {
		screen.SetContent(l.x+l.width-2, l.y, '↕', nil, render.StyleLabel)
	}
}

// UpdateDimensions updates the view dimensions
func (l *ListView) UpdateDimensions(x, y, width, height int) {
	l.resize(x, y, width, height)
	l.maxVisible = height - 2
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
	l.adjustScroll()
}
