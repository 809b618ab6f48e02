// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-zenith/pkg/body"
	"github.com/opd-ai/go-zenith/pkg/entity"
	"github.com/opd-ai/go-zenith/pkg/physics"
)

// Type represents the type of event
type Type string

// Event types published by a world
const (
	StaticContact  Type = "static_contact"
	TriggerOverlap Type = "trigger_overlap"
	LevelLoaded    Type = "level_loaded"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// SubscriptionID identifies a handler registered with Subscribe
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]subscription
	nextID   SubscriptionID
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscription),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})
	return id
}

// Unsubscribe removes a handler. It reports whether the handler was found.
func (b *Bus) Unsubscribe(eventType Type, id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

// Publish sends an event to all subscribed handlers in subscription order.
// Handlers run on the caller's goroutine.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// ContactEvent reports a static surface touch resolved during a tick
type ContactEvent struct {
	BaseEvent
	Tick    uint64
	Body    body.Handle
	Contact body.Contact
}

// NewContactEvent creates a new contact event
func NewContactEvent(source interface{}, tick uint64, h body.Handle, c body.Contact) *ContactEvent {
	return &ContactEvent{
		BaseEvent: BaseEvent{
			EventType: StaticContact,
			Source:    source,
		},
		Tick:    tick,
		Body:    h,
		Contact: c,
	}
}

// OverlapEvent reports a trigger intensity sampled at the end of a tick
type OverlapEvent struct {
	BaseEvent
	Tick      uint64
	Body      body.Handle
	Owner     entity.ID
	Intensity float64
	Position  physics.Vector2D
}

// NewOverlapEvent creates a new overlap event
func NewOverlapEvent(source interface{}, tick uint64, h body.Handle, o body.Overlap, pos physics.Vector2D) *OverlapEvent {
	return &OverlapEvent{
		BaseEvent: BaseEvent{
			EventType: TriggerOverlap,
			Source:    source,
		},
		Tick:      tick,
		Body:      h,
		Owner:     o.Owner,
		Intensity: o.Intensity,
		Position:  pos,
	}
}

// LevelEvent reports a level definition applied to a world
type LevelEvent struct {
	BaseEvent
	Path      string
	Objects   int
	Colliders int
	Bodies    int
}

// NewLevelEvent creates a new level event
func NewLevelEvent(source interface{}, path string, objects, colliders, bodies int) *LevelEvent {
	return &LevelEvent{
		BaseEvent: BaseEvent{
			EventType: LevelLoaded,
			Source:    source,
		},
		Path:      path,
		Objects:   objects,
		Colliders: colliders,
		Bodies:    bodies,
	}
}
