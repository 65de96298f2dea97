package sim

import "sync"

// Attributes is the per-entity extension store that lets pipeline stages attach
// derived values without changing the entity types.
//
// Distinct keys may be written concurrently. Two writers racing on the same key of
// the same entity is a pipeline design error; the store does not arbitrate it.
type Attributes struct {
	m sync.Map
}

// Get returns the value stored under key.
func (a *Attributes) Get(key string) (any, bool) {
	return a.m.Load(key)
}

// Set stores value under key, replacing any previous value.
func (a *Attributes) Set(key string, value any) {
	a.m.Store(key, value)
}

// Delete removes key.
func (a *Attributes) Delete(key string) {
	a.m.Delete(key)
}

// Len returns the number of keys currently stored.
func (a *Attributes) Len() int {
	n := 0
	a.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Range calls fn for each key/value pair until fn returns false.
// No ordering is guaranteed.
func (a *Attributes) Range(fn func(key string, value any) bool) {
	a.m.Range(func(k, v any) bool {
		return fn(k.(string), v)
	})
}

// AttributeAs returns the value under key if it exists and has type T.
func AttributeAs[T any](a *Attributes, key string) (T, bool) {
	var zero T
	v, ok := a.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
