// pkg/physics/geometry.go
package physics

import "math"

// Segment is a line segment between two endpoints
type Segment struct {
	A Vector2D
	B Vector2D
}

// ClosestPoint returns the point on the segment nearest to p
func (s Segment) ClosestPoint(p Vector2D) Vector2D {
	ab := s.B.Sub(s.A)
	lengthSq := ab.LengthSquared()
	if lengthSq == 0 {
		return s.A
	}
	t := p.Sub(s.A).Dot(ab) / lengthSq
	t = math.Max(0, math.Min(1, t))
	return s.A.Add(ab.Scale(t))
}

// Triangle is a triangle given by three vertices in either winding
type Triangle struct {
	A Vector2D
	B Vector2D
	C Vector2D
}

// Contains reports whether p lies inside the triangle or on its edges.
// Degenerate triangles contain nothing.
func (t Triangle) Contains(p Vector2D) bool {
	d1 := t.B.Sub(t.A).Cross(p.Sub(t.A))
	d2 := t.C.Sub(t.B).Cross(p.Sub(t.B))
	d3 := t.A.Sub(t.C).Cross(p.Sub(t.C))
	if t.B.Sub(t.A).Cross(t.C.Sub(t.A)) == 0 {
		return false
	}
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// SignedDistance returns the distance from p to the triangle's perimeter,
// negated when p is inside the triangle.
func (t Triangle) SignedDistance(p Vector2D) float64 {
	edges := [3]Segment{{A: t.A, B: t.B}, {A: t.B, B: t.C}, {A: t.C, B: t.A}}
	minSq := math.MaxFloat64
	for _, e := range edges {
		if d := p.DistanceSquared(e.ClosestPoint(p)); d < minSq {
			minSq = d
		}
	}
	dist := math.Sqrt(minSq)
	if t.Contains(p) {
		return -dist
	}
	return dist
}

// Centroid returns the arithmetic mean of points, or the origin when there
// are none.
func Centroid(points []Vector2D) Vector2D {
	var c Vector2D
	if len(points) == 0 {
		return c
	}
	for _, p := range points {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(points)))
}

// SegmentsFromLoop joins each point to the next, closing the loop back to
// the first. Loops with fewer than three points produce no segments.
func SegmentsFromLoop(points []Vector2D) []Segment {
	if len(points) < 3 {
		return nil
	}
	segments := make([]Segment, len(points))
	for i, p := range points {
		segments[i] = Segment{A: p, B: points[(i+1)%len(points)]}
	}
	return segments
}

// ClosestPointOnSegments returns the nearest point to q across all segments
// together with its squared distance. The first segment wins ties. ok is
// false when there are no segments.
func ClosestPointOnSegments(segments []Segment, q Vector2D) (closest Vector2D, distSq float64, ok bool) {
	distSq = math.MaxFloat64
	for _, s := range segments {
		p := s.ClosestPoint(q)
		if d := q.DistanceSquared(p); d < distSq {
			closest, distSq, ok = p, d, true
		}
	}
	return closest, distSq, ok
}

// SoftOverlap maps each triangle's signed distance from q to a weight in
// [0,1] that is 1 at radius depth inside and 0 at radius distance outside,
// sums the weights and clamps the total to [0,1]. Summing blends the seams
// between adjacent triangles.
func SoftOverlap(triangles []Triangle, q Vector2D, radius float64) float64 {
	if radius <= 0 {
		return 0
	}
	total := 0.0
	for _, t := range triangles {
		w := (-t.SignedDistance(q)/radius + 1) / 2
		total += clamp01(w)
	}
	return clamp01(total)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// signedArea is positive for counter-clockwise loops
func signedArea(points []Vector2D) float64 {
	area := 0.0
	for i, p := range points {
		area += p.Cross(points[(i+1)%len(points)])
	}
	return area / 2
}

// Triangulate splits a simple polygon of either winding into triangles by
// ear clipping. Collinear runs are dropped. If clipping stalls, as it can
// on self-intersecting input, the remainder is fanned from its first
// vertex.
func Triangulate(points []Vector2D) []Triangle {
	if len(points) < 3 {
		return nil
	}
	area := signedArea(points)
	if area == 0 {
		return nil
	}
	orient := 1.0
	if area < 0 {
		orient = -1
	}

	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	turn := func(i int) float64 {
		n := len(idx)
		a, b, c := points[idx[(i+n-1)%n]], points[idx[i]], points[idx[(i+1)%n]]
		return orient * b.Sub(a).Cross(c.Sub(b))
	}

	triangles := make([]Triangle, 0, len(points)-2)
	for len(idx) > 3 {
		clipped := false
		for i := range idx {
			if turn(i) <= 0 {
				continue
			}
			n := len(idx)
			ear := Triangle{A: points[idx[(i+n-1)%n]], B: points[idx[i]], C: points[idx[(i+1)%n]]}
			if earBlocked(ear, points, idx, i) {
				continue
			}
			triangles = append(triangles, ear)
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if clipped {
			continue
		}

		// Drop a straight or spike vertex before giving up on clipping.
		for i := range idx {
			if turn(i) == 0 {
				idx = append(idx[:i], idx[i+1:]...)
				clipped = true
				break
			}
		}
		if !clipped {
			for i := 1; i < len(idx)-1; i++ {
				t := Triangle{A: points[idx[0]], B: points[idx[i]], C: points[idx[i+1]]}
				if t.B.Sub(t.A).Cross(t.C.Sub(t.A)) != 0 {
					triangles = append(triangles, t)
				}
			}
			return triangles
		}
	}

	if len(idx) == 3 {
		t := Triangle{A: points[idx[0]], B: points[idx[1]], C: points[idx[2]]}
		if t.B.Sub(t.A).Cross(t.C.Sub(t.A)) != 0 {
			triangles = append(triangles, t)
		}
	}
	return triangles
}

// earBlocked reports whether any remaining vertex other than the ear's own
// corners lies inside the candidate ear.
func earBlocked(ear Triangle, points []Vector2D, idx []int, i int) bool {
	n := len(idx)
	for j, k := range idx {
		if j == i || j == (i+n-1)%n || j == (i+1)%n {
			continue
		}
		p := points[k]
		if p == ear.A || p == ear.B || p == ear.C {
			continue
		}
		if ear.Contains(p) {
			return true
		}
	}
	return false
}
