package station

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"refillmap/internal/debug"
	"refillmap/internal/geo"
)

//go:embed stations.yaml
var defaultDataset []byte

// record is the on-disk shape of a station. Geographic datasets use lat/lng,
// normalized-plane datasets use x/y.
type record struct {
	ID            string    `yaml:"id"`
	Name          string    `yaml:"name"`
	Type          string    `yaml:"type"`
	Lat           *float64  `yaml:"lat"`
	Lng           *float64  `yaml:"lng"`
	X             *float64  `yaml:"x"`
	Y             *float64  `yaml:"y"`
	Address       string    `yaml:"address"`
	Status        string    `yaml:"status"`
	Free          *bool     `yaml:"free"`
	PublicAccess  *bool     `yaml:"public_access"`
	Setting       string    `yaml:"setting"`
	Amenities     Amenities `yaml:"amenities"`
	Rating        float64   `yaml:"rating"`
	AccessNotes   string    `yaml:"access_notes"`
	LastConfirmed string    `yaml:"last_confirmed"`
}

type dataset struct {
	Stations []record `yaml:"stations"`
}

func (r record) position() geo.Point {
	switch {
	case r.Lat != nil && r.Lng != nil:
		return geo.LatLng(*r.Lat, *r.Lng)
	case r.X != nil && r.Y != nil:
		return geo.Pt(*r.X, *r.Y)
	default:
		return geo.Pt(math.NaN(), math.NaN())
	}
}

func (r record) station() (Station, bool) {
	if strings.TrimSpace(r.ID) == "" {
		return Station{}, false
	}

	kind, ok := ParseKind(r.Type)
	if !ok {
		kind = KindPublicTap
	}

	free := true
	if r.Free != nil {
		free = *r.Free
	}
	public := true
	if r.PublicAccess != nil {
		public = *r.PublicAccess
	}

	return Station{
		ID:            strings.TrimSpace(r.ID),
		Name:          strings.TrimSpace(r.Name),
		Kind:          kind,
		Position:      r.position(),
		Address:       r.Address,
		Status:        ParseStatus(r.Status),
		Free:          free,
		PublicAccess:  public,
		Setting:       ParseSetting(r.Setting),
		Amenities:     r.Amenities,
		Rating:        r.Rating,
		AccessNotes:   r.AccessNotes,
		LastConfirmed: r.LastConfirmed,
	}, true
}

// Default returns the built-in London dataset
func Default() ([]Station, error) {
	return ParseYAML(bytes.NewReader(defaultDataset))
}

// Load reads stations from a YAML or CSV file, chosen by extension
func Load(path string) ([]Station, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open station dataset: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(file)
	case ".csv":
		return ParseCSV(file)
	default:
		return nil, fmt.Errorf("unsupported station dataset format: %s", path)
	}
}

// ParseYAML decodes a `stations:` list. Records without an id are skipped.
func ParseYAML(r io.Reader) ([]Station, error) {
	var ds dataset
	if err := yaml.NewDecoder(r).Decode(&ds); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode stations YAML: %w", err)
	}

	stations := make([]Station, 0, len(ds.Stations))
	for i, rec := range ds.Stations {
		st, ok := rec.station()
		if !ok {
			debug.Log("Skipping station record %d: missing id", i)
			continue
		}
		stations = append(stations, st)
	}
	return stations, nil
}

// ParseCSV reads stations from a CSV file with a header row.
// Required columns are id plus either lat/lng or x/y; rows that fail to
// parse are skipped.
func ParseCSV(r io.Reader) ([]Station, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndices := make(map[string]int)
	for i, col := range header {
		colIndices[strings.ToLower(strings.TrimSpace(col))] = i
	}

	if _, ok := colIndices["id"]; !ok {
		return nil, fmt.Errorf("missing required column: id")
	}
	_, hasLat := colIndices["lat"]
	_, hasLng := colIndices["lng"]
	_, hasX := colIndices["x"]
	_, hasY := colIndices["y"]
	if !(hasLat && hasLng) && !(hasX && hasY) {
		return nil, fmt.Errorf("missing required columns: lat,lng or x,y")
	}

	field := func(row []string, name string) (string, bool) {
		i, ok := colIndices[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}
	number := func(row []string, name string) (*float64, error) {
		s, ok := field(row, name)
		if !ok || s == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
	flag := func(row []string, name string) bool {
		s, _ := field(row, name)
		b, _ := strconv.ParseBool(s)
		return b
	}

	var stations []Station
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			debug.Log("Skipping CSV line %d: %v", line, err)
			continue
		}

		var rec record
		rec.ID, _ = field(row, "id")
		rec.Name, _ = field(row, "name")
		rec.Type, _ = field(row, "type")
		rec.Address, _ = field(row, "address")
		rec.Status, _ = field(row, "status")
		rec.AccessNotes, _ = field(row, "access_notes")
		rec.LastConfirmed, _ = field(row, "last_confirmed")
		rec.Setting, _ = field(row, "setting")
		if s, ok := field(row, "free"); ok && s != "" {
			b := flag(row, "free")
			rec.Free = &b
		}
		if s, ok := field(row, "public_access"); ok && s != "" {
			b := flag(row, "public_access")
			rec.PublicAccess = &b
		}
		rec.Amenities = Amenities{
			DogFriendly: flag(row, "dog_friendly"),
			Cold:        flag(row, "cold"),
			Accessible:  flag(row, "accessible"),
		}

		var bad error
		for _, c := range []struct {
			name string
			dst  **float64
		}{{"lat", &rec.Lat}, {"lng", &rec.Lng}, {"x", &rec.X}, {"y", &rec.Y}} {
			if *c.dst, err = number(row, c.name); err != nil {
				bad = fmt.Errorf("column %s: %w", c.name, err)
				break
			}
		}
		if bad == nil {
			if rating, err := number(row, "rating"); err != nil {
				bad = fmt.Errorf("column rating: %w", err)
			} else if rating != nil {
				rec.Rating = *rating
			}
		}
		if bad != nil {
			debug.Log("Skipping CSV line %d: %v", line, bad)
			continue
		}

		st, ok := rec.station()
		if !ok {
			debug.Log("Skipping CSV line %d: missing id", line)
			continue
		}
		stations = append(stations, st)
	}

	return stations, nil
}
