// Package solver is the rigid-body solver driven by the physics world.
// It owns dense, generation-tagged storage for bodies, colliders and
// joints, advances the simulation one fixed tick at a time and answers
// ray queries. Its handles are volatile: a freed slot is reused with a
// bumped generation, so they must never be persisted.
package solver

import "fmt"

// Handle is an index into an arena, tagged with the generation of the
// slot it was minted for. A handle goes stale when its slot is freed.
type Handle struct {
	Index      uint32
	Generation uint32
}

func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.Index, h.Generation)
}

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Arena is dense generational storage. The zero value is ready to use.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// Insert stores v and returns its handle. Freed slots are reused before
// the arena grows.
func (a *Arena[T]) Insert(v T) Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.value = v
		s.occupied = true
		a.count++
		return Handle{Index: idx, Generation: s.generation}
	}
	a.slots = append(a.slots, slot[T]{value: v, occupied: true})
	a.count++
	return Handle{Index: uint32(len(a.slots) - 1)}
}

// Get returns a pointer to the value at h, or nil if h is stale.
func (a *Arena[T]) Get(h Handle) *T {
	if int(h.Index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[h.Index]
	if !s.occupied || s.generation != h.Generation {
		return nil
	}
	return &s.value
}

// Remove frees the slot at h and returns the removed value.
func (a *Arena[T]) Remove(h Handle) (T, bool) {
	var zero T
	if a.Get(h) == nil {
		return zero, false
	}
	s := &a.slots[h.Index]
	v := s.value
	s.value = zero
	s.occupied = false
	s.generation++
	a.free = append(a.free, h.Index)
	a.count--
	return v, true
}

func (a *Arena[T]) Len() int {
	return a.count
}

// Handles returns live handles in ascending index order. The order is
// what gives saves their stable numbering.
func (a *Arena[T]) Handles() []Handle {
	out := make([]Handle, 0, a.count)
	for i := range a.slots {
		if a.slots[i].occupied {
			out = append(out, Handle{Index: uint32(i), Generation: a.slots[i].generation})
		}
	}
	return out
}
