package station

import (
	"fmt"
	"strings"

	"refillmap/internal/geo"
)

// Kind is the category of a refill point, used for marker iconography
type Kind string

const (
	KindFountain     Kind = "fountain"
	KindBottleFiller Kind = "bottle_filler"
	KindCafe         Kind = "cafe"
	KindPublicTap    Kind = "public_tap"
)

// Kinds lists every known kind in display order
var Kinds = []Kind{KindFountain, KindBottleFiller, KindCafe, KindPublicTap}

// ParseKind normalises a kind string, accepting a few common aliases
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fountain":
		return KindFountain, true
	case "bottle_filler", "bottle-filler", "filler":
		return KindBottleFiller, true
	case "cafe", "café":
		return KindCafe, true
	case "public_tap", "tap":
		return KindPublicTap, true
	default:
		return "", false
	}
}

// Label returns a human readable kind name
func (k Kind) Label() string {
	switch k {
	case KindFountain:
		return "Public Fountain"
	case KindBottleFiller:
		return "Bottle Filler"
	case KindCafe:
		return "Cafe"
	case KindPublicTap:
		return "Public Tap"
	default:
		return "Refill Point"
	}
}

// Glyph returns the terminal marker character for the kind
func (k Kind) Glyph() rune {
	switch k {
	case KindFountain:
		return 'F'
	case KindBottleFiller:
		return 'B'
	case KindCafe:
		return 'C'
	case KindPublicTap:
		return 'T'
	default:
		return '●'
	}
}

// Status is the operational state reported for a station
type Status string

const (
	StatusWorking Status = "working"
	StatusBroken  Status = "broken"
	StatusUnknown Status = "unknown"
)

// ParseStatus normalises a status string; anything unrecognised is unknown
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusWorking:
		return StatusWorking
	case StatusBroken:
		return StatusBroken
	default:
		return StatusUnknown
	}
}

// Setting says whether a station is indoors or outdoors
type Setting string

const (
	SettingIndoor  Setting = "indoor"
	SettingOutdoor Setting = "outdoor"
	SettingUnknown Setting = ""
)

// ParseSetting normalises a setting string; anything unrecognised is unknown
func ParseSetting(s string) Setting {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "indoor", "indoors", "inside":
		return SettingIndoor
	case "outdoor", "outdoors", "outside":
		return SettingOutdoor
	default:
		return SettingUnknown
	}
}

// Amenities are the optional extras at a station
type Amenities struct {
	DogFriendly bool `yaml:"dog_friendly"`
	Cold        bool `yaml:"cold"`
	Accessible  bool `yaml:"accessible"`
}

// Station is a geo-tagged refill point. The map core treats it as read-only.
type Station struct {
	ID            string
	Name          string
	Kind          Kind
	Position      geo.Point // world coordinates; X = longitude, Y = latitude in geographic mode
	Address       string
	Status        Status
	Free          bool
	PublicAccess  bool // usable without being a customer or visitor
	Setting       Setting
	Amenities     Amenities
	Rating        float64
	AccessNotes   string
	LastConfirmed string
}

// HasPosition returns true if the station has finite coordinates
func (s *Station) HasPosition() bool {
	return s.Position.Finite()
}

// DisplayName returns the name if available, otherwise the id
func (s *Station) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// PositionString returns a formatted lat/lon string
func (s *Station) PositionString() string {
	if !s.HasPosition() {
		return "Position Unknown"
	}

	lat := s.Position.Lat()
	lon := s.Position.Lng()

	latDir := "N"
	if lat < 0 {
		latDir = "S"
		lat = -lat
	}

	lonDir := "E"
	if lon < 0 {
		lonDir = "W"
		lon = -lon
	}

	return fmt.Sprintf("%.4f°%s, %.4f°%s", lat, latDir, lon, lonDir)
}

// ListDisplay returns the formatted string for the station list
// Format: "[F] Hyde Park Fountain" with "!" replacing the kind glyph when broken
func (s *Station) ListDisplay() string {
	glyph := s.Kind.Glyph()
	if s.Status == StatusBroken {
		glyph = '!'
	}
	return fmt.Sprintf("[%c] %s", glyph, s.DisplayName())
}

// Draft builds an unconfirmed, in-memory station for a picked location
func Draft(id string, pos geo.Point) Station {
	return Station{
		ID:           id,
		Name:         "New point " + id,
		Kind:         KindPublicTap,
		Position:     pos,
		Status:       StatusUnknown,
		Free:         true,
		PublicAccess: true,
	}
}
