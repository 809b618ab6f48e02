// pkg/entity/entity_test.go
package entity

import (
	"testing"
)

func TestRegistry_AddGet(t *testing.T) {
	r := NewRegistry()

	obj, err := r.Add(Object{ID: 42, Name: "replenish", Active: true, Trickle: true})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	got, ok := r.Get(42)
	if !ok {
		t.Fatal("Get(42) found nothing")
	}
	if got != obj {
		t.Error("Get() should return the registered pointer")
	}
	if got.Name != "replenish" || !got.Active || !got.Trickle {
		t.Errorf("Get() = %+v, fields not preserved", got)
	}

	obj.Active = false
	if got, _ := r.Get(42); got.Active {
		t.Error("mutation through returned pointer not visible")
	}
}

func TestRegistry_DuplicateID(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Add(Object{ID: 1}); err != nil {
		t.Fatalf("first Add() failed: %v", err)
	}
	if _, err := r.Add(Object{ID: 1}); err == nil {
		t.Error("expected error for duplicate ID")
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	r.Add(Object{ID: 3})
	r.Add(Object{ID: 1})
	r.Add(Object{ID: 2})

	if !r.Remove(3) {
		t.Error("Remove(3) should report true")
	}
	if r.Remove(3) {
		t.Error("second Remove(3) should report false")
	}
	if _, ok := r.Get(3); ok {
		t.Error("object 3 still present after Remove")
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}

	ids := r.IDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("IDs() = %v, want [1 2]", ids)
	}
}
