package collision

import (
	"context"
	"math"

	"github.com/opd-ai/go-zenith/pkg/body"
	"github.com/opd-ai/go-zenith/pkg/physics"
)

// Integrate moves b by its velocity for one tick in steps of at most
// MaxStepLength, resolving static collisions after each step so that thin
// boundaries cannot be skipped over. The distance covered is fixed by the
// speed at the start of the tick even if a bounce changes it. A speed at
// or below RestThreshold is snapped to zero. It reports whether any static
// collision was resolved.
func (r *Resolver) Integrate(ctx context.Context, b *body.Body) bool {
	left := b.Vel.Length()
	if math.IsInf(left, 0) || math.IsNaN(left) {
		r.logger.Warn(ctx, "non-finite body velocity, stopping body",
			"body", int(b.Handle),
			"vx", b.Vel.X,
			"vy", b.Vel.Y,
		)
		b.Vel = physics.Vector2D{}
		return false
	}

	collided := false
	for left > 0 {
		if b.Vel.Length() <= r.cfg.RestThreshold {
			b.Vel = physics.Vector2D{}
			break
		}
		step := math.Min(left, r.cfg.MaxStepLength)
		b.SetFloatPos(b.FloatPos().Add(b.Vel.Normalize().Scale(step)))
		if r.ResolveStatic(ctx, b) {
			collided = true
		}
		left -= step
	}
	return collided
}
