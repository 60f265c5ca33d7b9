package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"refillmap/internal/render"
	"refillmap/internal/station"
)

// DetailView is the bottom sheet describing the selected station
type DetailView struct {
	panel
	station *station.Station
}

// NewDetailView creates a new detail view
func NewDetailView(x, y, width, height int) *DetailView {
	d := &DetailView{}
	d.resize(x, y, width, height)
	return d
}

// SetStation sets the station to display
func (d *DetailView) SetStation(st *station.Station) {
	d.station = st
}

// Lines returns the sheet contents for a station
func Lines(st *station.Station) []string {
	price := "Free"
	if !st.Free {
		price = "Paid"
	}
	access := "Public"
	if !st.PublicAccess {
		access = "Customers only"
	}
	if st.Setting != station.SettingUnknown {
		access += ", " + string(st.Setting)
	}

	var amenities []string
	if st.Amenities.DogFriendly {
		amenities = append(amenities, "dog friendly")
	}
	if st.Amenities.Cold {
		amenities = append(amenities, "cold")
	}
	if st.Amenities.Accessible {
		amenities = append(amenities, "accessible")
	}
	if len(amenities) == 0 {
		amenities = append(amenities, "none listed")
	}

	lines := []string{
		fmt.Sprintf("%s · %s · %s", st.Kind.Label(), statusText(st.Status), price),
		fmt.Sprintf("Address:    %s", orDash(st.Address)),
		fmt.Sprintf("Position:   %s", st.PositionString()),
		fmt.Sprintf("Open to:    %s", access),
		fmt.Sprintf("Amenities:  %s", strings.Join(amenities, ", ")),
	}
	if st.Rating > 0 {
		lines = append(lines, fmt.Sprintf("Rating:     %.1f / 5", st.Rating))
	}
	if st.LastConfirmed != "" {
		lines = append(lines, fmt.Sprintf("Confirmed:  %s", st.LastConfirmed))
	}
	if st.AccessNotes != "" {
		lines = append(lines, fmt.Sprintf("Access:     %s", st.AccessNotes))
	}
	return lines
}

func statusText(s station.Status) string {
	switch s {
	case station.StatusWorking:
		return "Working"
	case station.StatusBroken:
		return "Out of order"
	default:
		return "Status unknown"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Draw renders the detail view to the screen
func (d *DetailView) Draw(screen tcell.Screen) {
	if d.station == nil {
		return
	}
	d.clear(screen)
	d.drawFrame(screen, d.station.DisplayName())

	for i, line := range Lines(d.station) {
		y := d.y + 1 + i
		if y >= d.y+d.height-1 {
			break
		}
		drawText(screen, d.x+2, y, d.width-4, line, render.StyleLabel)
	}

	hint := " esc: close  c: fit all "
	drawText(screen, d.x+d.width-len(hint)-1, d.y+d.height-1, d.width-2, hint, render.StyleDim)
}

// UpdateDimensions updates the view dimensions
func (d *DetailView) UpdateDimensions(x, y, width, height int) {
	d.resize(x, y, width, height)
}
