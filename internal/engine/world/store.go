package world

import (
	"errors"
	"fmt"
)

// ErrUnknownObject is returned when an ObjectID is not in the store.
var ErrUnknownObject = errors.New("unknown object")

// Store owns the object records. IDs are dense and reused after removal.
type Store struct {
	objects []*Object
	free    []ObjectID
	count   int
}

// NewStore creates an empty object store.
func NewStore() *Store {
	return &Store{}
}

// Add registers obj, assigns its ID and returns it.
func (s *Store) Add(obj *Object) ObjectID {
	var id ObjectID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
		s.objects[id] = obj
	} else {
		id = ObjectID(len(s.objects))
		s.objects = append(s.objects, obj)
	}
	obj.ID = id
	if obj.Radius == 0 {
		obj.UpdateBounds()
	}
	s.count++
	return id
}

// Object returns the object with the given ID, or nil.
func (s *Store) Object(id ObjectID) *Object {
	if int(id) >= len(s.objects) {
		return nil
	}
	return s.objects[id]
}

// Remove discards an object record. Callers must hide the object in the
// renderer first; the store does not know about render lists.
func (s *Store) Remove(id ObjectID) error {
	if s.Object(id) == nil {
		return fmt.Errorf("removing object %d: %w", id, ErrUnknownObject)
	}
	s.objects[id] = nil
	s.free = append(s.free, id)
	s.count--
	return nil
}

// Len returns the number of live objects.
func (s *Store) Len() int {
	return s.count
}

// Each calls fn for every live object in ID order.
func (s *Store) Each(fn func(obj *Object)) {
	for _, obj := range s.objects {
		if obj != nil {
			fn(obj)
		}
	}
}
