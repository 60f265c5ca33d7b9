package station

import (
	"fmt"
	"sort"

	"refillmap/internal/geo"
)

// Catalog holds the station dataset supplied at startup, ordered by id.
// Drafts added at runtime live only as long as the process.
type Catalog struct {
	stations []Station
	index    map[string]int
	drafts   int
}

// NewCatalog builds a catalog, dropping records with an empty or duplicate id
func NewCatalog(stations []Station) *Catalog {
	c := &Catalog{index: make(map[string]int)}
	for _, st := range stations {
		if st.ID == "" {
			continue
		}
		if _, dup := c.index[st.ID]; dup {
			continue
		}
		c.index[st.ID] = len(c.stations)
		c.stations = append(c.stations, st)
	}
	c.sort()
	return c
}

func (c *Catalog) sort() {
	sort.SliceStable(c.stations, func(i, j int) bool {
		return c.stations[i].ID < c.stations[j].ID
	})
	for i, st := range c.stations {
		c.index[st.ID] = i
	}
}

// Get retrieves a station by id
func (c *Catalog) Get(id string) (*Station, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return &c.stations[i], true
}

// All returns all stations sorted by id. The slice is a copy.
func (c *Catalog) All() []Station {
	out := make([]Station, len(c.stations))
	copy(out, c.stations)
	return out
}

// Len returns the number of stations
func (c *Catalog) Len() int {
	return len(c.stations)
}

// AddDraft stores a new unconfirmed station at pos and returns it
func (c *Catalog) AddDraft(pos geo.Point) Station {
	for {
		c.drafts++
		id := fmt.Sprintf("draft-%d", c.drafts)
		if _, taken := c.index[id]; taken {
			continue
		}
		st := Draft(id, pos)
		c.index[id] = len(c.stations)
		c.stations = append(c.stations, st)
		c.sort()
		return st
	}
}
