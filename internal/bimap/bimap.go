// Package bimap provides an injective bidirectional map used for the
// engine-handle to solver-handle translation tables.
package bimap

// Map is a mutable bidirectional mapping. At any instant every key maps
// to exactly one value and every value to exactly one key.
type Map[K comparable, V comparable] struct {
	forward  map[K]V
	backward map[V]K
}

func New[K comparable, V comparable]() *Map[K, V] {
	return &Map[K, V]{
		forward:  make(map[K]V),
		backward: make(map[V]K),
	}
}

// Insert adds the pair (k, v). A pair already holding k or v is removed
// first so the mapping stays injective.
func (m *Map[K, V]) Insert(k K, v V) {
	if old, ok := m.forward[k]; ok {
		delete(m.backward, old)
	}
	if old, ok := m.backward[v]; ok {
		delete(m.forward, old)
	}
	m.forward[k] = v
	m.backward[v] = k
}

// RemoveByKey removes the pair holding k.
func (m *Map[K, V]) RemoveByKey(k K) (V, bool) {
	v, ok := m.forward[k]
	if ok {
		delete(m.forward, k)
		delete(m.backward, v)
	}
	return v, ok
}

// RemoveByValue removes the pair holding v.
func (m *Map[K, V]) RemoveByValue(v V) (K, bool) {
	k, ok := m.backward[v]
	if ok {
		delete(m.forward, k)
		delete(m.backward, v)
	}
	return k, ok
}

// ValueOf looks up the value mapped to k.
func (m *Map[K, V]) ValueOf(k K) (V, bool) {
	v, ok := m.forward[k]
	return v, ok
}

// KeyOf looks up the key mapped to v.
func (m *Map[K, V]) KeyOf(v V) (K, bool) {
	k, ok := m.backward[v]
	return k, ok
}

func (m *Map[K, V]) Len() int {
	return len(m.forward)
}

// Forward returns the forward map. Callers must not mutate it.
func (m *Map[K, V]) Forward() map[K]V {
	return m.forward
}

// Clone returns an independent copy of the map.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := New[K, V]()
	for k, v := range m.forward {
		c.forward[k] = v
		c.backward[v] = k
	}
	return c
}
