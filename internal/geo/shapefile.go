package geo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonas-p/go-shp"

	"refillmap/internal/debug"
)

// ShapefileLoader loads basemap polylines from ESRI shapefiles
type ShapefileLoader struct {
	dataDir string
}

// NewShapefileLoader creates a new shapefile loader
func NewShapefileLoader(dataDir string) *ShapefileLoader {
	return &ShapefileLoader{
		dataDir: dataDir,
	}
}

// ClassifyShapefile guesses the feature type from a shapefile's base name,
// following Natural Earth and OS OpenData naming
func ClassifyShapefile(name string) (FeatureType, bool) {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	switch {
	case strings.Contains(base, "coast"):
		return FeatureCoastline, true
	case strings.Contains(base, "river"):
		return FeatureRiver, true
	case strings.Contains(base, "lake"), strings.Contains(base, "water"):
		return FeatureWater, true
	case strings.Contains(base, "road"), strings.Contains(base, "street"):
		return FeatureRoad, true
	case strings.Contains(base, "admin"), strings.Contains(base, "border"), strings.Contains(base, "boundar"):
		return FeatureBorder, true
	default:
		return 0, false
	}
}

// LoadAll loads every recognised shapefile in the data directory
// Unreadable files are skipped with a warning; the map works without a basemap
func (s *ShapefileLoader) LoadAll() (Layers, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read basemap directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".shp") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	layers := make(Layers)
	for _, name := range names {
		ftype, ok := ClassifyShapefile(name)
		if !ok {
			debug.Log("Skipping unrecognised shapefile %s", name)
			continue
		}

		features, err := s.LoadShapefile(filepath.Join(s.dataDir, name), ftype)
		if err != nil {
			debug.Logger().Warn().Err(err).Str("file", name).Msg("failed to load shapefile")
			continue
		}
		layers[ftype] = append(layers[ftype], features...)
		debug.Log("Loaded %d %s features from %s", len(features), ftype, name)
	}

	return layers, nil
}

// LoadShapefile loads a shapefile and converts it to Feature objects
// Polygons contribute their outline; point records are ignored
func (s *ShapefileLoader) LoadShapefile(path string, ftype FeatureType) ([]*Feature, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer shape.Close()

	features := make([]*Feature, 0)

	for shape.Next() {
		_, p := shape.Shape()

		switch geom := p.(type) {
		case *shp.PolyLine:
			features = append(features, splitParts(ftype, geom.Parts, geom.Points)...)
		case *shp.Polygon:
			features = append(features, splitParts(ftype, geom.Parts, geom.Points)...)
		}
	}

	return features, nil
}

// splitParts breaks a multi-part shape into one feature per part so that
// separate rings are not joined by a stray segment
func splitParts(ftype FeatureType, parts []int32, points []shp.Point) []*Feature {
	if len(parts) == 0 {
		parts = []int32{0}
	}

	var out []*Feature
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || end > int32(len(points)) || end-start < 2 {
			continue
		}

		line := make([]Point, 0, end-start)
		for _, pt := range points[start:end] {
			line = append(line, Point{X: pt.X, Y: pt.Y})
		}
		out = append(out, NewLineFeature(ftype, line))
	}
	return out
}
