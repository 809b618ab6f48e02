package engine

import (
	"context"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-zenith/pkg/body"
	"github.com/opd-ai/go-zenith/pkg/logging"
)

// PhysicsPriority runs the physics system before systems that read body
// positions in the same frame.
const PhysicsPriority = 100

// maxStepsPerUpdate bounds catch-up after a long frame
const maxStepsPerUpdate = 5

var (
	_ ecs.System      = (*PhysicsSystem)(nil)
	_ ecs.Prioritizer = (*PhysicsSystem)(nil)
)

// PhysicsSystem drives a World from an ecs.World. Frame times are
// accumulated and the world is stepped at its fixed TickRate.
type PhysicsSystem struct {
	World *World

	ctx         context.Context
	logger      *logging.Logger
	entities    map[uint64]body.Handle
	accumulator float64
	interval    float64
}

// NewPhysicsSystem creates a system that steps world. ctx is passed to
// every Step.
func NewPhysicsSystem(ctx context.Context, world *World, logger *logging.Logger) *PhysicsSystem {
	if logger == nil {
		logger = logging.Discard()
	}
	return &PhysicsSystem{
		World:    world,
		ctx:      ctx,
		logger:   logger,
		entities: make(map[uint64]body.Handle),
		interval: 1 / float64(world.Config().TickRate),
	}
}

// Add binds an entity to a body already in the world
func (s *PhysicsSystem) Add(basic *ecs.BasicEntity, h body.Handle) {
	s.entities[basic.ID()] = h
}

// Remove satisfies the ecs.System interface. The entity's body is removed
// from the world.
func (s *PhysicsSystem) Remove(basic ecs.BasicEntity) {
	h, ok := s.entities[basic.ID()]
	if !ok {
		return
	}
	delete(s.entities, basic.ID())
	if err := s.World.RemoveBody(h); err != nil {
		s.logger.Warn(s.ctx, "entity body already gone", "entity", basic.ID(), "body", int(h))
	}
}

// Handle returns the body bound to an entity
func (s *PhysicsSystem) Handle(basic ecs.BasicEntity) (body.Handle, bool) {
	h, ok := s.entities[basic.ID()]
	return h, ok
}

// Update satisfies the ecs.System interface. It runs as many fixed steps as
// dt covers, at most maxStepsPerUpdate; time beyond that is dropped.
func (s *PhysicsSystem) Update(dt float32) {
	s.accumulator += float64(dt)

	steps := 0
	for s.accumulator >= s.interval {
		if steps == maxStepsPerUpdate {
			s.logger.Debug(s.ctx, "physics falling behind, dropping time",
				"dropped_seconds", s.accumulator,
			)
			s.accumulator = 0
			return
		}
		if err := s.World.Step(s.ctx); err != nil {
			s.logger.Error(s.ctx, "physics step failed", err)
			s.accumulator = 0
			return
		}
		s.accumulator -= s.interval
		steps++
	}
}

// Priority satisfies the ecs.Prioritizer interface
func (s *PhysicsSystem) Priority() int {
	return PhysicsPriority
}
