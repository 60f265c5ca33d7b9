package geo

// FeatureType represents the type of basemap feature
type FeatureType int

const (
	FeatureCoastline FeatureType = iota
	FeatureRiver
	FeatureBorder
	FeatureRoad
	FeatureWater
)

// String returns a string representation of the feature type
func (f FeatureType) String() string {
	switch f {
	case FeatureCoastline:
		return "Coastline"
	case FeatureRiver:
		return "River"
	case FeatureBorder:
		return "Border"
	case FeatureRoad:
		return "Road"
	case FeatureWater:
		return "Water"
	default:
		return "Unknown"
	}
}

// Feature is a basemap polyline drawn underneath the station markers
type Feature struct {
	Type   FeatureType
	Points []Point // world coordinates
	bounds Rect
}

// NewLineFeature creates a new polyline feature and caches its bounds
func NewLineFeature(ftype FeatureType, points []Point) *Feature {
	f := &Feature{Type: ftype, Points: points}
	if len(points) > 0 {
		f.bounds = RectOf(points[0], points[0])
		for _, p := range points[1:] {
			f.bounds = f.bounds.Extend(p)
		}
	}
	return f
}

// Bounds returns the world-space bounding box of the feature
func (f *Feature) Bounds() Rect {
	return f.bounds
}

// Intersects reports whether the feature's bounding box overlaps r
func (f *Feature) Intersects(r Rect) bool {
	if len(f.Points) == 0 {
		return false
	}
	return f.bounds.Min.X <= r.Max.X && f.bounds.Max.X >= r.Min.X &&
		f.bounds.Min.Y <= r.Max.Y && f.bounds.Max.Y >= r.Min.Y
}

// FilterByBounds filters features to those whose extent overlaps bounds
func FilterByBounds(features []*Feature, bounds Rect) []*Feature {
	filtered := make([]*Feature, 0)
	for _, feature := range features {
		if feature.Intersects(bounds) {
			filtered = append(filtered, feature)
		}
	}
	return filtered
}

// Layers is the basemap grouped by feature type
type Layers map[FeatureType][]*Feature

// DrawOrder lists feature types from bottom to top
var DrawOrder = []FeatureType{FeatureWater, FeatureCoastline, FeatureRiver, FeatureBorder, FeatureRoad}

// Count returns the total number of features across all layers
func (l Layers) Count() int {
	n := 0
	for _, fs := range l {
		n += len(fs)
	}
	return n
}
