// Package collision resolves bodies against static surfaces and trigger
// volumes and integrates their motion in bounded sub-steps.
package collision

import (
	"context"
	"math"

	"github.com/opd-ai/go-zenith/pkg/body"
	"github.com/opd-ai/go-zenith/pkg/collider"
	"github.com/opd-ai/go-zenith/pkg/config"
	"github.com/opd-ai/go-zenith/pkg/entity"
	"github.com/opd-ai/go-zenith/pkg/logging"
	"github.com/opd-ai/go-zenith/pkg/physics"
)

// Scene supplies the colliders a body can reach. Implementations must
// return candidates in a stable order (ascending handle) since the first
// of two equally near colliders wins, and must not be mutated while a
// Resolver is using them.
type Scene interface {
	// StaticsNear returns static colliders that may lie within reach of a
	// body at pos. It may return extras; it must not omit any collider that
	// survives the broad phase.
	StaticsNear(pos physics.Vector2D, radius float64) []*collider.Collider
	// TriggersNear is StaticsNear for trigger colliders.
	TriggersNear(pos physics.Vector2D, radius float64) []*collider.Collider
	// Owner resolves the game object a collider reports contacts against.
	Owner(c *collider.Collider) (entity.ID, bool)
}

// Resolver applies collision response to one body at a time. It only
// mutates the body it is given, so separate bodies may be resolved
// concurrently with the same Resolver.
type Resolver struct {
	cfg    config.PhysicsConfig
	scene  Scene
	logger *logging.Logger
}

// NewResolver creates a resolver over scene
func NewResolver(cfg *config.PhysicsConfig, scene Scene, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Resolver{cfg: *cfg, scene: scene, logger: logger}
}

// Tick runs one full simulation step for b: its previous contacts are
// cleared, it is moved with static resolution after every sub-step, and
// the triggers at its final position are sampled.
func (r *Resolver) Tick(ctx context.Context, b *body.Body) {
	b.ResetFrame()
	r.Integrate(ctx, b)
	r.ResolveTriggers(ctx, b)
}

// ResolveStatic finds the nearest static surface touching b and, if b is
// moving into it, reflects b's velocity by the surface's bounciness and
// friction and pushes b out to exactly one radius from the contact point.
// It reports whether a collision was resolved.
func (r *Resolver) ResolveStatic(ctx context.Context, b *body.Body) bool {
	pos := b.FloatPos()
	radiusSq := b.Radius * b.Radius
	marginSq := radiusSq * r.cfg.StaticPruneFactor

	var (
		hit       *collider.Collider
		hitPoint  physics.Vector2D
		minDistSq = math.MaxFloat64
	)
	for _, c := range r.scene.StaticsNear(pos, b.Radius) {
		if !c.Participates() || c.Boundary.Pruned(pos, marginSq) {
			continue
		}
		p, distSq, ok := c.Boundary.ClosestPoint(pos)
		if ok && distSq < minDistSq {
			hit, hitPoint, minDistSq = c, p, distSq
		}
	}
	if hit == nil || minDistSq > radiusSq {
		return false
	}

	normal := pos.Sub(hitPoint).Normalize()
	incoming := b.Vel
	normalSpeed := incoming.Dot(normal)
	if normalSpeed >= 0 {
		return false
	}

	surface := hit.Surface
	tangential := incoming.Sub(normal.Scale(normalSpeed))
	b.Vel = tangential.Scale(1 - surface.Friction).Sub(normal.Scale(normalSpeed * surface.Bounciness))

	normal = pos.Sub(hitPoint).Normalize()
	pos = pos.Add(normal.Scale(b.Radius - pos.Distance(hitPoint)))
	b.SetFloatPos(pos)

	owner, ok := r.owner(ctx, b, hit)
	if ok {
		b.RecordContact(body.Contact{
			Owner:        owner,
			Point:        hitPoint,
			Normal:       normal,
			NormalSpeed:  normalSpeed,
			TangentSpeed: incoming.Dot(normal.Perp()),
		})
	}
	return true
}

// ResolveTriggers records the overlap intensity of every trigger b
// touches. It never changes b's motion.
func (r *Resolver) ResolveTriggers(ctx context.Context, b *body.Body) {
	pos := b.FloatPos()
	marginSq := b.Radius * b.Radius * r.cfg.TriggerPruneFactor

	for _, c := range r.scene.TriggersNear(pos, b.Radius) {
		if !c.Participates() || c.Boundary.Pruned(pos, marginSq) {
			continue
		}
		intensity := c.Boundary.SoftOverlap(pos, b.Radius)
		if intensity < r.cfg.TriggerThreshold {
			continue
		}
		owner, ok := r.owner(ctx, b, c)
		if !ok {
			continue
		}
		b.RecordOverlap(body.Overlap{Owner: owner, Intensity: intensity})
	}
}

func (r *Resolver) owner(ctx context.Context, b *body.Body, c *collider.Collider) (entity.ID, bool) {
	owner, ok := r.scene.Owner(c)
	if !ok {
		r.logger.Warn(ctx, "collider owner not found, skipping record",
			"body", int(b.Handle),
			"collider", int(c.Handle),
			"kind", c.Kind.String(),
			"owner", uint64(c.Owner),
		)
	}
	return owner, ok
}
