// Package body holds the moving circular bodies ("dynos") and the contacts
// they collect during a tick.
package body

import (
	"github.com/opd-ai/go-zenith/pkg/entity"
	"github.com/opd-ai/go-zenith/pkg/physics"
)

// DefaultMaxCollisions is the per-tick contact capacity used when a body is
// created with a non-positive limit.
const DefaultMaxCollisions = 8

// Handle is a stable index of a body in its world
type Handle int

// Contact describes a static surface touch recorded during a tick
type Contact struct {
	Owner entity.ID
	// Point is the world-space point on the surface that was hit.
	Point  physics.Vector2D
	Normal physics.Vector2D
	// NormalSpeed and TangentSpeed are the incoming velocity projected on
	// Normal and on Normal.Perp().
	NormalSpeed  float64
	TangentSpeed float64
}

// Overlap is a trigger intensity recorded during a tick
type Overlap struct {
	Owner     entity.ID
	Intensity float64
}

// Body is a moving circle. Its position is committed as an integer Pos
// plus a fractional Rem so that rounding never accumulates drift.
type Body struct {
	Handle Handle
	Pos    physics.Point
	Rem    physics.Vector2D
	Vel    physics.Vector2D
	Radius float64

	maxCollisions int
	contacts      []Contact
	contactIndex  map[entity.ID]int
	overlaps      []Overlap
	overlapIndex  map[entity.ID]int
}

// New creates a body at pos. maxCollisions bounds both per-tick sets.
func New(pos physics.Vector2D, vel physics.Vector2D, radius float64, maxCollisions int) *Body {
	if maxCollisions <= 0 {
		maxCollisions = DefaultMaxCollisions
	}
	b := &Body{
		Vel:           vel,
		Radius:        radius,
		maxCollisions: maxCollisions,
		contactIndex:  make(map[entity.ID]int, maxCollisions),
		overlapIndex:  make(map[entity.ID]int, maxCollisions),
	}
	b.SetFloatPos(pos)
	return b
}

// FloatPos returns the full-precision position
func (b *Body) FloatPos() physics.Vector2D {
	return b.Pos.Vec().Add(b.Rem)
}

// SetFloatPos commits pos, keeping the integer part in Pos and the
// fraction in Rem.
func (b *Body) SetFloatPos(pos physics.Vector2D) {
	b.Pos, b.Rem = pos.Round()
}

// MaxCollisions returns the per-tick capacity of each contact set
func (b *Body) MaxCollisions() int {
	return b.maxCollisions
}

// ResetFrame clears the contacts and overlaps of the previous tick
func (b *Body) ResetFrame() {
	b.contacts = b.contacts[:0]
	b.overlaps = b.overlaps[:0]
	clear(b.contactIndex)
	clear(b.overlapIndex)
}

// RecordContact stores c under its owner. A repeat owner overwrites its
// earlier entry in place; a new owner is dropped once the set is full.
// It reports whether c was stored.
func (b *Body) RecordContact(c Contact) bool {
	if i, ok := b.contactIndex[c.Owner]; ok {
		b.contacts[i] = c
		return true
	}
	if len(b.contacts) >= b.maxCollisions {
		return false
	}
	b.contactIndex[c.Owner] = len(b.contacts)
	b.contacts = append(b.contacts, c)
	return true
}

// RecordOverlap stores an intensity under its owner with the same capacity
// rules as RecordContact.
func (b *Body) RecordOverlap(o Overlap) bool {
	if i, ok := b.overlapIndex[o.Owner]; ok {
		b.overlaps[i] = o
		return true
	}
	if len(b.overlaps) >= b.maxCollisions {
		return false
	}
	b.overlapIndex[o.Owner] = len(b.overlaps)
	b.overlaps = append(b.overlaps, o)
	return true
}

// Contact returns the contact recorded for owner this tick
func (b *Body) Contact(owner entity.ID) (Contact, bool) {
	i, ok := b.contactIndex[owner]
	if !ok {
		return Contact{}, false
	}
	return b.contacts[i], true
}

// Intensity returns the trigger intensity recorded for owner this tick
func (b *Body) Intensity(owner entity.ID) (float64, bool) {
	i, ok := b.overlapIndex[owner]
	if !ok {
		return 0, false
	}
	return b.overlaps[i].Intensity, true
}

// Contacts returns a copy of this tick's contacts in the order found
func (b *Body) Contacts() []Contact {
	out := make([]Contact, len(b.contacts))
	copy(out, b.contacts)
	return out
}

// Overlaps returns a copy of this tick's overlaps in the order found
func (b *Body) Overlaps() []Overlap {
	out := make([]Overlap, len(b.overlaps))
	copy(out, b.overlaps)
	return out
}

// Snapshot is a read-only view of a body after a tick
type Snapshot struct {
	Handle   Handle
	Pos      physics.Point
	Rem      physics.Vector2D
	Vel      physics.Vector2D
	Radius   float64
	Contacts []Contact
	Overlaps []Overlap
}

// Snapshot copies the body's state and this tick's contact sets
func (b *Body) Snapshot() Snapshot {
	return Snapshot{
		Handle:   b.Handle,
		Pos:      b.Pos,
		Rem:      b.Rem,
		Vel:      b.Vel,
		Radius:   b.Radius,
		Contacts: b.Contacts(),
		Overlaps: b.Overlaps(),
	}
}
