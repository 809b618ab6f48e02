package engine

import (
	"math"
	"sort"

	"github.com/jakecoffman/cp"

	"github.com/opd-ai/go-zenith/pkg/collider"
	"github.com/opd-ai/go-zenith/pkg/physics"
)

// colliderIndex is the broad phase over the colliders of one kind. It is
// rebuilt whenever colliders are added, removed or reshaped.
type colliderIndex struct {
	tree      *physics.QuadTree
	maxRadius float64
}

// buildIndex indexes every non-inert collider of kind by its boundary
// center. The root covers the merged bounding boxes of all of them.
func buildIndex(colliders []*collider.Collider, kind collider.Kind, capacity int) colliderIndex {
	var (
		ix     colliderIndex
		bounds cp.BB
		found  bool
	)
	for _, c := range colliders {
		if c == nil || c.Kind != kind || c.Boundary.Inert() {
			continue
		}
		bb := c.Boundary.BB()
		if found {
			bounds = bounds.Merge(bb)
		} else {
			bounds, found = bb, true
		}
		ix.maxRadius = math.Max(ix.maxRadius, c.Boundary.BoundRadius())
	}
	if !found {
		return ix
	}

	center := bounds.Center()
	side := math.Max(bounds.R-bounds.L, bounds.T-bounds.B) + 2
	ix.tree = physics.NewQuadTree(physics.Rect{
		Center: physics.Vector2D{X: center.X, Y: center.Y},
		Width:  side,
		Height: side,
	}, capacity)

	for _, c := range colliders {
		if c == nil || c.Kind != kind || c.Boundary.Inert() {
			continue
		}
		ix.tree.Insert(c.Boundary.Center, int(c.Handle))
	}
	return ix
}

// near returns the indexed colliders whose broad-phase test might pass for
// a body at pos, ordered by handle. The query square is wide enough to
// hold the center of every collider within reach.
func (ix colliderIndex) near(colliders []*collider.Collider, pos physics.Vector2D, radius, pruneFactor float64) []*collider.Collider {
	if ix.tree == nil {
		return nil
	}
	half := ix.maxRadius + math.Sqrt(pruneFactor)*radius + 1
	handles := ix.tree.Query(physics.RectAround(pos, half))
	sort.Ints(handles)

	out := make([]*collider.Collider, 0, len(handles))
	for _, h := range handles {
		out = append(out, colliders[h])
	}
	return out
}
