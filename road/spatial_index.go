package road

import "math"

// defaultCellSize is the edge length of one grid cell in metres. City road
// segments are typically tens of metres long, so one segment lands in a
// handful of cells.
const defaultCellSize = 50.0

type gridCell struct {
	X, Y int
}

// gridIndex is a uniform grid over the XY plane mapping cells to arena
// indices of segments whose bounding rect overlaps the cell. Binning ignores
// Z: the planar distance to a cell is a lower bound on the 3D distance, so
// pruning stays conservative.
//
// It is not safe for concurrent use; the owning RoadGraph serializes access.
type gridIndex struct {
	cellSize float64
	cells    map[gridCell][]int

	// Occupied cell bounds, valid when count > 0.
	minCell gridCell
	maxCell gridCell
	count   int
}

func newGridIndex(cellSize float64) *gridIndex {
	if cellSize <= 0 {
		cellSize = defaultCellSize
	}
	return &gridIndex{
		cellSize: cellSize,
		cells:    make(map[gridCell][]int),
	}
}

func (g *gridIndex) cellOf(x, y float64) gridCell {
	return gridCell{
		X: int(math.Floor(x / g.cellSize)),
		Y: int(math.Floor(y / g.cellSize)),
	}
}

// insert registers the segment at arena index idx under every cell its
// bounding rect overlaps.
func (g *gridIndex) insert(idx int, bounds Rect) {
	min, max := bounds.Min(), bounds.Max()
	lo := g.cellOf(min.X, min.Y)
	hi := g.cellOf(max.X, max.Y)

	for cx := lo.X; cx <= hi.X; cx++ {
		for cy := lo.Y; cy <= hi.Y; cy++ {
			c := gridCell{X: cx, Y: cy}
			g.cells[c] = append(g.cells[c], idx)
		}
	}

	if g.count == 0 {
		g.minCell, g.maxCell = lo, hi
	} else {
		if lo.X < g.minCell.X {
			g.minCell.X = lo.X
		}
		if lo.Y < g.minCell.Y {
			g.minCell.Y = lo.Y
		}
		if hi.X > g.maxCell.X {
			g.maxCell.X = hi.X
		}
		if hi.Y > g.maxCell.Y {
			g.maxCell.Y = hi.Y
		}
	}
	g.count++
}

// nearest walks cells in expanding rings around the query point and returns
// the arena index minimizing the exact point-to-segment distance, with ties
// broken by lowest segment id. It returns -1 when the index is empty.
//
// Ring k can only hold geometry at planar distance >= (k-1)*cellSize from the
// query point, so the walk stops once that lower bound exceeds the best exact
// distance found so far.
func (g *gridIndex) nearest(p Location, segments []*RoadSegment) (int, float64) {
	if g.count == 0 {
		return -1, math.Inf(1)
	}

	center := g.cellOf(p.X, p.Y)
	maxRing := g.maxChebyshevTo(center)

	bestIdx := -1
	bestDist := math.Inf(1)
	visited := make(map[int]struct{})

	for ring := 0; ring <= maxRing; ring++ {
		if bestIdx >= 0 && float64(ring-1)*g.cellSize > bestDist {
			break
		}
		g.forEachRingCell(center, ring, func(c gridCell) {
			for _, idx := range g.cells[c] {
				if _, seen := visited[idx]; seen {
					continue
				}
				visited[idx] = struct{}{}

				seg := segments[idx]
				if seg.BoundingRect().DistanceTo(p) > bestDist {
					continue
				}
				d := seg.DistanceTo(p)
				if d < bestDist || (d == bestDist && (bestIdx < 0 || seg.ID() < segments[bestIdx].ID())) {
					bestDist = d
					bestIdx = idx
				}
			}
		})
	}
	return bestIdx, bestDist
}

// maxChebyshevTo returns the largest ring around c that still touches an
// occupied cell.
func (g *gridIndex) maxChebyshevTo(c gridCell) int {
	max := 0
	for _, d := range []int{
		abs(c.X - g.minCell.X), abs(c.X - g.maxCell.X),
		abs(c.Y - g.minCell.Y), abs(c.Y - g.maxCell.Y),
	} {
		if d > max {
			max = d
		}
	}
	return max
}

// forEachRingCell invokes fn for every cell at Chebyshev distance exactly
// ring from center, skipping cells outside the occupied bounds.
func (g *gridIndex) forEachRingCell(center gridCell, ring int, fn func(gridCell)) {
	if ring == 0 {
		g.visitIfOccupiedRange(center, fn)
		return
	}
	for cx := center.X - ring; cx <= center.X+ring; cx++ {
		g.visitIfOccupiedRange(gridCell{X: cx, Y: center.Y - ring}, fn)
		g.visitIfOccupiedRange(gridCell{X: cx, Y: center.Y + ring}, fn)
	}
	for cy := center.Y - ring + 1; cy <= center.Y+ring-1; cy++ {
		g.visitIfOccupiedRange(gridCell{X: center.X - ring, Y: cy}, fn)
		g.visitIfOccupiedRange(gridCell{X: center.X + ring, Y: cy}, fn)
	}
}

func (g *gridIndex) visitIfOccupiedRange(c gridCell, fn func(gridCell)) {
	if c.X < g.minCell.X || c.X > g.maxCell.X || c.Y < g.minCell.Y || c.Y > g.maxCell.Y {
		return
	}
	fn(c)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
