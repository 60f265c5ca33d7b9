package render

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"refillmap/internal/geo"
	"refillmap/internal/station"
)

// Palette shared by the terminal and raster renderers
var (
	ColorPrimary    = colorful.Color{R: 0.075, G: 0.498, B: 0.925} // #137fec
	ColorUnknown    = colorful.Color{R: 0.580, G: 0.639, B: 0.722} // slate-400
	ColorBroken     = colorful.Color{R: 0.863, G: 0.149, B: 0.149} // red-600
	ColorClusterLow = colorful.Color{R: 0.384, G: 0.604, B: 0.812}
	ColorClusterHi  = colorful.Color{R: 0.118, G: 0.227, B: 0.541}
	ColorBackground = colorful.Color{R: 0.945, G: 0.961, B: 0.976} // slate-100
	ColorLand       = colorful.Color{R: 0.580, G: 0.639, B: 0.722}
	ColorWater      = colorful.Color{R: 0.576, G: 0.773, B: 0.992}
	ColorRoad       = colorful.Color{R: 0.796, G: 0.835, B: 0.882}
)

// Style definitions for basemap features and markers
var (
	StyleBorder       = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	StyleRoad         = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	StyleRiver        = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	StyleCoastline    = tcell.StyleDefault.Foreground(tcell.ColorDarkBlue)
	StyleWater        = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	StyleLabel        = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleDim          = tcell.StyleDefault.Foreground(tcell.ColorGray)
	StyleHeader       = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	StyleListItem     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleListSelected = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	StyleCrosshair    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	StyleStatusBar    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

// TcellColor converts a palette colour for the terminal
func TcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// RGBA converts a palette colour to an opaque image colour
func RGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// StationColor returns the marker colour for a station's status
func StationColor(st *station.Station, selected bool) colorful.Color {
	switch {
	case selected:
		return ColorPrimary
	case st.Status == station.StatusBroken:
		return ColorBroken
	case st.Status == station.StatusUnknown:
		return ColorUnknown
	default:
		return ColorPrimary
	}
}

// ClusterColor darkens with the member count, blended in Lab so the ramp
// stays perceptually even. Counts of 100 and above share the darkest shade.
func ClusterColor(count int) colorful.Color {
	t := 0.0
	if count > 2 {
		t = math.Min(1, math.Log(float64(count)/2)/math.Log(50))
	}
	return ColorClusterLow.BlendLab(ColorClusterHi, t)
}

// ClusterDiameter follows the small/medium/large tiers of the web map, in px
func ClusterDiameter(count int) float64 {
	switch {
	case count > 50:
		return 50
	case count > 10:
		return 40
	default:
		return 32
	}
}

// MarkerDiameter is the pin size in px
func MarkerDiameter(selected bool) float64 {
	if selected {
		return 56
	}
	return 40
}

// StationStyle returns the terminal style for a single marker
func StationStyle(st *station.Station, selected bool) tcell.Style {
	style := tcell.StyleDefault.Foreground(TcellColor(StationColor(st, selected))).Bold(true)
	if selected {
		style = style.Reverse(true)
	}
	return style
}

// ClusterStyle returns the terminal style for a group marker
func ClusterStyle(count int) tcell.Style {
	return tcell.StyleDefault.
		Foreground(tcell.ColorWhite).
		Background(TcellColor(ClusterColor(count))).
		Bold(true)
}

// GetStyleForFeature returns the appropriate style for a feature type
func GetStyleForFeature(ftype geo.FeatureType) tcell.Style {
	switch ftype {
	case geo.FeatureBorder:
		return StyleBorder
	case geo.FeatureRoad:
		return StyleRoad
	case geo.FeatureRiver:
		return StyleRiver
	case geo.FeatureCoastline:
		return StyleCoastline
	case geo.FeatureWater:
		return StyleWater
	default:
		return tcell.StyleDefault
	}
}

// GetCharForFeature returns the appropriate character for drawing a feature
func GetCharForFeature(ftype geo.FeatureType) rune {
	switch ftype {
	case geo.FeatureBorder:
		return '-'
	case geo.FeatureRoad:
		return '='
	case geo.FeatureRiver, geo.FeatureWater:
		return '~'
	case geo.FeatureCoastline:
		return '-'
	default:
		return '·'
	}
}

// FeatureColor returns the raster colour for a feature type
func FeatureColor(ftype geo.FeatureType) colorful.Color {
	switch ftype {
	case geo.FeatureRiver, geo.FeatureWater, geo.FeatureCoastline:
		return ColorWater
	case geo.FeatureRoad:
		return ColorRoad
	default:
		return ColorLand
	}
}
