package cluster

import (
	"math"
	"sort"

	"refillmap/internal/geo"
)

type cellKey struct {
	x, y int
}

// grid is a uniform bucket index over screen points. With the cell size
// equal to the clustering radius, every point within radius of p lives in
// the 3x3 block of cells around p.
type grid struct {
	size   float64
	points []geo.Point
	cells  map[cellKey][]int
}

func newGrid(size float64, points []geo.Point) *grid {
	g := &grid{
		size:   size,
		points: points,
		cells:  make(map[cellKey][]int, len(points)),
	}
	for i, p := range points {
		k := g.key(p)
		g.cells[k] = append(g.cells[k], i)
	}
	return g
}

func (g *grid) key(p geo.Point) cellKey {
	return cellKey{
		x: int(math.Floor(p.X / g.size)),
		y: int(math.Floor(p.Y / g.size)),
	}
}

// within returns the indices of points no further than radius from p, in
// ascending index order
func (g *grid) within(p geo.Point, radius float64) []int {
	k := g.key(p)
	var out []int
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			for _, i := range g.cells[cellKey{x: k.x + dx, y: k.y + dy}] {
				if g.points[i].Dist(p) <= radius {
					out = append(out, i)
				}
			}
		}
	}
	sort.Ints(out)
	return out
}
