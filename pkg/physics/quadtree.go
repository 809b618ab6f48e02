// pkg/physics/quadtree.go
package physics

// maxQuadDepth bounds subdivision so that many coincident points cannot
// recurse forever; leaves at this depth grow past Capacity instead.
const maxQuadDepth = 12

// QuadTree for spatial partitioning of integer handles by point
type QuadTree struct {
	Boundary  Rect
	Capacity  int
	Points    []Vector2D
	Items     []int
	Divided   bool
	depth     int
	NorthWest *QuadTree
	NorthEast *QuadTree
	SouthWest *QuadTree
	SouthEast *QuadTree
}

// Rect represents a rectangular area
type Rect struct {
	Center Vector2D
	Width  float64
	Height float64
}

// Contains reports whether point lies in the half-open rect
func (r Rect) Contains(point Vector2D) bool {
	return point.X >= r.Center.X-r.Width/2 &&
		point.X < r.Center.X+r.Width/2 &&
		point.Y >= r.Center.Y-r.Height/2 &&
		point.Y < r.Center.Y+r.Height/2
}

// RectAround returns the square of the given half extent centered on p
func RectAround(p Vector2D, halfExtent float64) Rect {
	return Rect{Center: p, Width: 2 * halfExtent, Height: 2 * halfExtent}
}

// NewQuadTree creates a new quad tree with the given boundary and capacity
func NewQuadTree(boundary Rect, capacity int) *QuadTree {
	if capacity < 1 {
		capacity = 1
	}
	return &QuadTree{
		Boundary: boundary,
		Capacity: capacity,
		Points:   make([]Vector2D, 0, capacity),
		Items:    make([]int, 0, capacity),
	}
}

// Insert adds item at point. It returns false when point lies outside the
// tree's boundary.
func (qt *QuadTree) Insert(point Vector2D, item int) bool {
	if !qt.Boundary.Contains(point) {
		return false
	}

	if !qt.Divided && (len(qt.Points) < qt.Capacity || qt.depth >= maxQuadDepth) {
		qt.Points = append(qt.Points, point)
		qt.Items = append(qt.Items, item)
		return true
	}

	if !qt.Divided {
		qt.Subdivide()
	}

	if !qt.insertChild(point, item) {
		// Float rounding at quadrant edges; keep it here.
		qt.Points = append(qt.Points, point)
		qt.Items = append(qt.Items, item)
	}
	return true
}

func (qt *QuadTree) insertChild(point Vector2D, item int) bool {
	return qt.NorthWest.Insert(point, item) ||
		qt.NorthEast.Insert(point, item) ||
		qt.SouthWest.Insert(point, item) ||
		qt.SouthEast.Insert(point, item)
}

// Subdivide splits the quadtree into four quadrants and pushes the points
// it already holds down into them.
func (qt *QuadTree) Subdivide() {
	x := qt.Boundary.Center.X
	y := qt.Boundary.Center.Y
	w := qt.Boundary.Width / 2
	h := qt.Boundary.Height / 2

	nw := Rect{Center: Vector2D{X: x - w/2, Y: y + h/2}, Width: w, Height: h}
	ne := Rect{Center: Vector2D{X: x + w/2, Y: y + h/2}, Width: w, Height: h}
	sw := Rect{Center: Vector2D{X: x - w/2, Y: y - h/2}, Width: w, Height: h}
	se := Rect{Center: Vector2D{X: x + w/2, Y: y - h/2}, Width: w, Height: h}

	qt.NorthWest = qt.child(nw)
	qt.NorthEast = qt.child(ne)
	qt.SouthWest = qt.child(sw)
	qt.SouthEast = qt.child(se)
	qt.Divided = true

	points, items := qt.Points, qt.Items
	qt.Points, qt.Items = nil, nil
	for i, p := range points {
		if !qt.insertChild(p, items[i]) {
			qt.Points = append(qt.Points, p)
			qt.Items = append(qt.Items, items[i])
		}
	}
}

func (qt *QuadTree) child(r Rect) *QuadTree {
	c := NewQuadTree(r, qt.Capacity)
	c.depth = qt.depth + 1
	return c
}

// Query returns the items whose points fall within area, in no particular
// order.
func (qt *QuadTree) Query(area Rect) []int {
	return qt.query(area, nil)
}

func (qt *QuadTree) query(area Rect, found []int) []int {
	if !qt.intersects(area) {
		return found
	}

	for i, point := range qt.Points {
		if area.Contains(point) {
			found = append(found, qt.Items[i])
		}
	}

	if !qt.Divided {
		return found
	}

	found = qt.NorthWest.query(area, found)
	found = qt.NorthEast.query(area, found)
	found = qt.SouthWest.query(area, found)
	found = qt.SouthEast.query(area, found)
	return found
}

func (qt *QuadTree) intersects(area Rect) bool {
	return !(area.Center.X-area.Width/2 > qt.Boundary.Center.X+qt.Boundary.Width/2 ||
		area.Center.X+area.Width/2 < qt.Boundary.Center.X-qt.Boundary.Width/2 ||
		area.Center.Y-area.Height/2 > qt.Boundary.Center.Y+qt.Boundary.Height/2 ||
		area.Center.Y+area.Height/2 < qt.Boundary.Center.Y-qt.Boundary.Height/2)
}
