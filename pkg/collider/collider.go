package collider

import (
	"github.com/opd-ai/go-zenith/pkg/entity"
	"github.com/opd-ai/go-zenith/pkg/physics"
)

// Handle is a stable index of a collider in its world
type Handle int

// Kind distinguishes physical surfaces from observational triggers
type Kind int

const (
	KindStatic Kind = iota
	KindTrigger
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindTrigger:
		return "trigger"
	default:
		return "unknown"
	}
}

// StaticSurface is the physical response of a static collider
type StaticSurface struct {
	// Bounciness is the fraction of normal velocity kept on a bounce.
	Bounciness float64
	// Friction is the fraction of tangential velocity removed per contact.
	Friction float64
}

// TriggerVolume reports overlap intensity without affecting motion
type TriggerVolume struct {
	// RefreshPeriod is a cadence hint for consumers, in ticks.
	RefreshPeriod uint32
}

// Collider pairs a Boundary with either a StaticSurface or a TriggerVolume.
// Owner is the game object that contacts are reported against.
type Collider struct {
	Handle   Handle
	Owner    entity.ID
	Kind     Kind
	Boundary *Boundary
	Surface  StaticSurface
	Trigger  TriggerVolume
	Active   bool
}

// NewStatic creates an active static collider
func NewStatic(owner entity.ID, points []physics.Vector2D, surface StaticSurface) *Collider {
	return &Collider{
		Owner:    owner,
		Kind:     KindStatic,
		Boundary: NewBoundary(points),
		Surface:  surface,
		Active:   true,
	}
}

// NewTrigger creates an active trigger collider
func NewTrigger(owner entity.ID, points []physics.Vector2D, trigger TriggerVolume) *Collider {
	return &Collider{
		Owner:    owner,
		Kind:     KindTrigger,
		Boundary: NewBoundary(points),
		Trigger:  trigger,
		Active:   true,
	}
}

// SetPoints replaces the collider's geometry with a freshly built Boundary.
// Callers must not reshape a collider while a tick is resolving.
func (c *Collider) SetPoints(points []physics.Vector2D) {
	c.Boundary = NewBoundary(points)
}

// Participates reports whether the collider takes part in resolution
func (c *Collider) Participates() bool {
	return c.Active && c.Boundary != nil && !c.Boundary.Inert()
}
