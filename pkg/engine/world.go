// pkg/engine/world.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/go-zenith/pkg/body"
	"github.com/opd-ai/go-zenith/pkg/collider"
	"github.com/opd-ai/go-zenith/pkg/collision"
	"github.com/opd-ai/go-zenith/pkg/config"
	"github.com/opd-ai/go-zenith/pkg/entity"
	"github.com/opd-ai/go-zenith/pkg/event"
	"github.com/opd-ai/go-zenith/pkg/logging"
	"github.com/opd-ai/go-zenith/pkg/physics"
	"github.com/opd-ai/go-zenith/pkg/validation"
)

var (
	ErrUnknownObject   = errors.New("unknown object")
	ErrUnknownCollider = errors.New("unknown collider")
	ErrUnknownBody     = errors.New("unknown body")
)

// World owns the objects, colliders and bodies of one simulation. Colliders
// and bodies live in arenas indexed by stable handles; a removed slot stays
// empty so later handles never shift.
type World struct {
	EventBus *event.Bus

	cfg       config.PhysicsConfig
	mu        sync.Mutex
	objects   *entity.Registry
	colliders []*collider.Collider
	bodies    []*body.Body
	statics   colliderIndex
	triggers  colliderIndex
	dirty     bool
	tick      uint64
	resolver  *collision.Resolver
	logger    *logging.Logger
}

// NewWorld creates an empty world. A nil logger discards all output.
func NewWorld(cfg *config.PhysicsConfig, logger *logging.Logger) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid physics config: %w", err)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	w := &World{
		EventBus: event.NewEventBus(),
		cfg:      *cfg,
		objects:  entity.NewRegistry(),
		logger:   logger,
	}
	w.resolver = collision.NewResolver(&w.cfg, worldScene{w}, logger)
	return w, nil
}

// Config returns the physics configuration the world was created with
func (w *World) Config() config.PhysicsConfig {
	return w.cfg
}

// AddObject registers a game object that colliders can name as owner
func (w *World) AddObject(obj entity.Object) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.objects.Add(obj); err != nil {
		return fmt.Errorf("add object: %w", err)
	}
	return nil
}

// RemoveObject forgets an object. Colliders it owned stay in the world but
// their contacts are no longer recorded until they are removed or the
// object is registered again.
func (w *World) RemoveObject(id entity.ID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.objects.Remove(id) {
		return fmt.Errorf("remove object %d: %w", id, ErrUnknownObject)
	}
	return nil
}

// SetObjectActive changes an object's active flag. With Trickle set the
// change reaches its colliders at the start of the next Step.
func (w *World) SetObjectActive(id entity.ID, active bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	obj, ok := w.objects.Get(id)
	if !ok {
		return fmt.Errorf("set active on object %d: %w", id, ErrUnknownObject)
	}
	obj.Active = active
	return nil
}

// Object returns a copy of a registered object
func (w *World) Object(id entity.ID) (entity.Object, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	obj, ok := w.objects.Get(id)
	if !ok {
		return entity.Object{}, false
	}
	return *obj, true
}

// AddStatic adds a solid surface owned by owner
func (w *World) AddStatic(ctx context.Context, owner entity.ID, points []physics.Vector2D, surface collider.StaticSurface) (collider.Handle, error) {
	if err := validation.ValidateSurface(surface.Bounciness, surface.Friction); err != nil {
		return 0, fmt.Errorf("add static: %w", err)
	}
	if err := validatePoints(points); err != nil {
		return 0, fmt.Errorf("add static: %w", err)
	}
	return w.addCollider(ctx, collider.NewStatic(owner, points, surface))
}

// AddTrigger adds an observational volume owned by owner
func (w *World) AddTrigger(ctx context.Context, owner entity.ID, points []physics.Vector2D, volume collider.TriggerVolume) (collider.Handle, error) {
	if err := validatePoints(points); err != nil {
		return 0, fmt.Errorf("add trigger: %w", err)
	}
	return w.addCollider(ctx, collider.NewTrigger(owner, points, volume))
}

func validatePoints(points []physics.Vector2D) error {
	for i, p := range points {
		if err := validation.ValidateVector(fmt.Sprintf("point %d", i), p); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) addCollider(ctx context.Context, c *collider.Collider) (collider.Handle, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.objects.Get(c.Owner); !ok {
		return 0, fmt.Errorf("add %s collider for object %d: %w", c.Kind, c.Owner, ErrUnknownObject)
	}
	c.Handle = collider.Handle(len(w.colliders))
	w.colliders = append(w.colliders, c)
	w.dirty = true

	if c.Boundary.Inert() {
		w.logger.Warn(ctx, "degenerate boundary, collider is inert",
			"collider", int(c.Handle),
			"kind", c.Kind.String(),
			"owner", uint64(c.Owner),
			"points", len(c.Boundary.Points),
		)
	}
	return c.Handle, nil
}

// RemoveCollider deletes a collider. Its handle is never reused.
func (w *World) RemoveCollider(h collider.Handle) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.collider(h); err != nil {
		return fmt.Errorf("remove collider: %w", err)
	}
	w.colliders[h] = nil
	w.dirty = true
	return nil
}

// SetColliderPoints reshapes a collider. The new boundary is used from the
// next Step on.
func (w *World) SetColliderPoints(ctx context.Context, h collider.Handle, points []physics.Vector2D) error {
	if err := validatePoints(points); err != nil {
		return fmt.Errorf("reshape collider %d: %w", h, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	c, err := w.collider(h)
	if err != nil {
		return fmt.Errorf("reshape collider: %w", err)
	}
	c.SetPoints(points)
	w.dirty = true

	if c.Boundary.Inert() {
		w.logger.Warn(ctx, "degenerate boundary, collider is inert",
			"collider", int(h),
			"kind", c.Kind.String(),
			"points", len(points),
		)
	}
	return nil
}

// SetColliderActive changes one collider's active flag. Colliders of a
// Trickle object are overwritten by their owner on the next Step.
func (w *World) SetColliderActive(h collider.Handle, active bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, err := w.collider(h)
	if err != nil {
		return fmt.Errorf("set active on collider: %w", err)
	}
	c.Active = active
	return nil
}

// Collider returns a copy of a collider. The Boundary is shared and must
// not be modified.
func (w *World) Collider(h collider.Handle) (collider.Collider, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, err := w.collider(h)
	if err != nil {
		return collider.Collider{}, err
	}
	return *c, nil
}

func (w *World) collider(h collider.Handle) (*collider.Collider, error) {
	if h < 0 || int(h) >= len(w.colliders) || w.colliders[h] == nil {
		return nil, fmt.Errorf("collider %d: %w", h, ErrUnknownCollider)
	}
	return w.colliders[h], nil
}

// AddBody adds a moving circle
func (w *World) AddBody(pos, vel physics.Vector2D, radius float64) (body.Handle, error) {
	if err := validation.ValidateRadius(radius); err != nil {
		return 0, fmt.Errorf("add body: %w", err)
	}
	if err := validation.ValidateVector("position", pos); err != nil {
		return 0, fmt.Errorf("add body: %w", err)
	}
	if err := validation.ValidateVector("velocity", vel); err != nil {
		return 0, fmt.Errorf("add body: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	b := body.New(pos, vel, radius, w.cfg.MaxCollisionsPerFrame)
	b.Handle = body.Handle(len(w.bodies))
	w.bodies = append(w.bodies, b)
	return b.Handle, nil
}

// RemoveBody deletes a body. Its handle is never reused.
func (w *World) RemoveBody(h body.Handle) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.body(h); err != nil {
		return fmt.Errorf("remove body: %w", err)
	}
	w.bodies[h] = nil
	return nil
}

// SetBodyVelocity replaces a body's velocity
func (w *World) SetBodyVelocity(h body.Handle, vel physics.Vector2D) error {
	if err := validation.ValidateVector("velocity", vel); err != nil {
		return fmt.Errorf("set velocity: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	b, err := w.body(h)
	if err != nil {
		return fmt.Errorf("set velocity: %w", err)
	}
	b.Vel = vel
	return nil
}

// Body returns a snapshot of one body including the contacts and overlaps
// of the last tick.
func (w *World) Body(h body.Handle) (body.Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	b, err := w.body(h)
	if err != nil {
		return body.Snapshot{}, err
	}
	return b.Snapshot(), nil
}

func (w *World) body(h body.Handle) (*body.Body, error) {
	if h < 0 || int(h) >= len(w.bodies) || w.bodies[h] == nil {
		return nil, fmt.Errorf("body %d: %w", h, ErrUnknownBody)
	}
	return w.bodies[h], nil
}

// Snapshot returns every live body in handle order
func (w *World) Snapshot() []body.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]body.Snapshot, 0, len(w.bodies))
	for _, b := range w.bodies {
		if b != nil {
			out = append(out, b.Snapshot())
		}
	}
	return out
}

// Tick returns the number of completed steps
func (w *World) Tick() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tick
}

// Counts returns the number of objects, live colliders and live bodies
func (w *World) Counts() (objects, colliders, bodies int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, c := range w.colliders {
		if c != nil {
			colliders++
		}
	}
	for _, b := range w.bodies {
		if b != nil {
			bodies++
		}
	}
	return w.objects.Len(), colliders, bodies
}

// PropagateActive copies the active flag of every Trickle object onto the
// colliders it owns. Step does this itself before resolving.
func (w *World) PropagateActive(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.propagateActive(ctx)
}

func (w *World) propagateActive(ctx context.Context) {
	for _, c := range w.colliders {
		if c == nil {
			continue
		}
		obj, ok := w.objects.Get(c.Owner)
		if !ok {
			w.logger.Warn(ctx, "collider owner not found, skipping active propagation",
				"collider", int(c.Handle),
				"owner", uint64(c.Owner),
			)
			continue
		}
		if obj.Trickle {
			c.Active = obj.Active
		}
	}
}

// Step advances the world by one tick: active flags are propagated, every
// body is moved and resolved against the statics, triggers are sampled,
// and the resulting contacts are published on EventBus after the world is
// unlocked. Bodies are resolved in parallel when Workers > 1; the
// outcome is the same either way.
func (w *World) Step(ctx context.Context) error {
	events, err := w.step(ctx)
	if err != nil {
		return err
	}
	for _, e := range events {
		w.EventBus.Publish(e)
	}
	return nil
}

func (w *World) step(ctx context.Context) ([]event.Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("step %d: %w", w.tick+1, err)
	}

	w.tick++
	w.propagateActive(ctx)
	w.refreshIndex()

	live := make([]*body.Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		if b != nil {
			live = append(live, b)
		}
	}

	if w.cfg.Workers > 1 && len(live) > 1 {
		var g errgroup.Group
		g.SetLimit(w.cfg.Workers)
		for _, b := range live {
			b := b
			g.Go(func() error {
				w.resolver.Tick(ctx, b)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("step %d: %w", w.tick, err)
		}
	} else {
		for _, b := range live {
			w.resolver.Tick(ctx, b)
		}
	}

	var events []event.Event
	for _, b := range live {
		for _, c := range b.Contacts() {
			events = append(events, event.NewContactEvent(w, w.tick, b.Handle, c))
		}
		for _, o := range b.Overlaps() {
			events = append(events, event.NewOverlapEvent(w, w.tick, b.Handle, o, b.FloatPos()))
		}
	}

	w.logger.Debug(ctx, "tick resolved",
		"tick", w.tick,
		"bodies", len(live),
		"events", len(events),
	)
	return events, nil
}

func (w *World) refreshIndex() {
	if !w.dirty {
		return
	}
	w.statics = buildIndex(w.colliders, collider.KindStatic, w.cfg.IndexCapacity)
	w.triggers = buildIndex(w.colliders, collider.KindTrigger, w.cfg.IndexCapacity)
	w.dirty = false
}

// worldScene exposes a locked world to the resolver
type worldScene struct {
	w *World
}

func (s worldScene) StaticsNear(pos physics.Vector2D, radius float64) []*collider.Collider {
	return s.w.statics.near(s.w.colliders, pos, radius, s.w.cfg.StaticPruneFactor)
}

func (s worldScene) TriggersNear(pos physics.Vector2D, radius float64) []*collider.Collider {
	return s.w.triggers.near(s.w.colliders, pos, radius, s.w.cfg.TriggerPruneFactor)
}

func (s worldScene) Owner(c *collider.Collider) (entity.ID, bool) {
	if _, ok := s.w.objects.Get(c.Owner); !ok {
		return 0, false
	}
	return c.Owner, true
}
