package station

import "strings"

// Filter is the predicate stage that runs before the map core. The zero
// value keeps everything. Indoor and Outdoor each keep their setting, so
// both together keep either; once one is set, stations of unknown setting
// are dropped.
type Filter struct {
	FreeOnly   bool
	PublicOnly bool
	HideBroken bool
	Indoor     bool
	Outdoor    bool
	Kinds      map[Kind]bool // empty means every kind
}

// Match reports whether st passes the filter
func (f Filter) Match(st *Station) bool {
	if f.FreeOnly && !st.Free {
		return false
	}
	if f.PublicOnly && !st.PublicAccess {
		return false
	}
	if f.HideBroken && st.Status == StatusBroken {
		return false
	}
	if f.Indoor || f.Outdoor {
		if !(f.Indoor && st.Setting == SettingIndoor) && !(f.Outdoor && st.Setting == SettingOutdoor) {
			return false
		}
	}
	if len(f.Kinds) > 0 && !f.Kinds[st.Kind] {
		return false
	}
	return true
}

// Apply returns the matching stations, preserving order
func (f Filter) Apply(stations []Station) []Station {
	out := make([]Station, 0, len(stations))
	for i := range stations {
		if f.Match(&stations[i]) {
			out = append(out, stations[i])
		}
	}
	return out
}

// Active reports whether the filter removes anything at all
func (f Filter) Active() bool {
	return f.FreeOnly || f.PublicOnly || f.HideBroken || f.Indoor || f.Outdoor || len(f.Kinds) > 0
}

// String lists the active toggles, e.g. "free, indoor"
func (f Filter) String() string {
	var parts []string
	for _, t := range []struct {
		on   bool
		name string
	}{
		{f.FreeOnly, "free"},
		{f.PublicOnly, "public"},
		{f.HideBroken, "working"},
		{f.Indoor, "indoor"},
		{f.Outdoor, "outdoor"},
	} {
		if t.on {
			parts = append(parts, t.name)
		}
	}
	if len(f.Kinds) > 0 {
		parts = append(parts, "kinds")
	}
	return strings.Join(parts, ", ")
}
