// Package collider holds the static and trigger shapes that bodies are
// resolved against.
package collider

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/opd-ai/go-zenith/pkg/physics"
)

// Boundary is the collision geometry of a closed polygon loop. It is built
// once and not mutated; reshaping a collider replaces its Boundary.
type Boundary struct {
	Points    []physics.Vector2D
	Segments  []physics.Segment
	Triangles []physics.Triangle
	Center    physics.Vector2D
	// BoundRadiusSq is the squared distance from Center to the farthest
	// vertex.
	BoundRadiusSq float64
}

// NewBoundary builds the segments, triangulation and bounding circle of a
// polygon loop. Fewer than three points yields an inert boundary.
func NewBoundary(points []physics.Vector2D) *Boundary {
	pts := make([]physics.Vector2D, len(points))
	copy(pts, points)

	b := &Boundary{Points: pts, Center: physics.Centroid(pts)}
	if len(pts) < 3 {
		return b
	}

	for _, p := range pts {
		b.BoundRadiusSq = math.Max(b.BoundRadiusSq, p.DistanceSquared(b.Center))
	}
	b.Segments = physics.SegmentsFromLoop(pts)
	b.Triangles = physics.Triangulate(pts)
	return b
}

// Inert reports whether the boundary has no geometry to collide with
func (b *Boundary) Inert() bool {
	return len(b.Segments) == 0
}

// Pruned reports whether a body at q is certainly out of reach: its squared
// distance to Center, less marginSq, exceeds BoundRadiusSq. Inert
// boundaries are always pruned.
func (b *Boundary) Pruned(q physics.Vector2D, marginSq float64) bool {
	if b.Inert() {
		return true
	}
	return q.DistanceSquared(b.Center)-marginSq > b.BoundRadiusSq
}

// ClosestPoint returns the point on the boundary's perimeter nearest q and
// its squared distance. ok is false for inert boundaries.
func (b *Boundary) ClosestPoint(q physics.Vector2D) (physics.Vector2D, float64, bool) {
	return physics.ClosestPointOnSegments(b.Segments, q)
}

// SoftOverlap returns the overlap intensity in [0,1] of a circle at q with
// the given radius.
func (b *Boundary) SoftOverlap(q physics.Vector2D, radius float64) float64 {
	return physics.SoftOverlap(b.Triangles, q, radius)
}

// BoundRadius is the radius of the bounding circle
func (b *Boundary) BoundRadius() float64 {
	return math.Sqrt(b.BoundRadiusSq)
}

// BB returns the axis-aligned box around the bounding circle
func (b *Boundary) BB() cp.BB {
	return cp.NewBBForCircle(cp.Vector{X: b.Center.X, Y: b.Center.Y}, b.BoundRadius())
}
