// pkg/entity/entity.go
package entity

import (
	"fmt"
	"sort"
)

// ID is a unique identifier for a game object that owns colliders
type ID uint64

// Object is a game object in the scene graph. Colliders name it as their
// owner; when Trickle is set its Active flag is forced onto every collider
// it owns at the start of each tick.
type Object struct {
	ID      ID
	Name    string
	Active  bool
	Trickle bool
}

// Registry holds the game objects known to a world
type Registry struct {
	objects map[ID]*Object
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{objects: make(map[ID]*Object)}
}

// Add registers an object. IDs must be unique.
func (r *Registry) Add(obj Object) (*Object, error) {
	if _, exists := r.objects[obj.ID]; exists {
		return nil, fmt.Errorf("object %d already registered", obj.ID)
	}
	o := obj
	r.objects[o.ID] = &o
	return &o, nil
}

// Get returns the object with the given ID
func (r *Registry) Get(id ID) (*Object, bool) {
	o, ok := r.objects[id]
	return o, ok
}

// Remove forgets an object. Colliders it owned keep their owner ID and
// will fail lookups until they are removed too.
func (r *Registry) Remove(id ID) bool {
	if _, ok := r.objects[id]; !ok {
		return false
	}
	delete(r.objects, id)
	return true
}

// Len returns the number of registered objects
func (r *Registry) Len() int {
	return len(r.objects)
}

// IDs returns every registered ID in ascending order
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.objects))
	for id := range r.objects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
