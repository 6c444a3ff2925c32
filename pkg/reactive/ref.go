package reactive

import "runtime"

// Ref is an observed single value.
//
// Get subscribes the active effect; Set notifies subscribers when the new
// value differs from the old one (see SameValue).
type Ref[T any] struct {
	h     Handle
	store *Store
	value T

	// equal overrides SameValue when set.
	equal func(T, T) bool
}

// NewRef creates a ref holding initial.
func NewRef[T any](initial T) *Ref[T] {
	return NewRefIn(defaultStore, initial)
}

// NewRefIn is NewRef for an explicit Store.
func NewRefIn[T any](s *Store, initial T) *Ref[T] {
	r := &Ref[T]{store: s, value: initial}
	r.h = s.NewHandle()
	runtime.AddCleanup(r, s.Release, r.h)
	return r
}

// Get returns the current value and subscribes the active effect.
func (r *Ref[T]) Get() T {
	r.store.Track(r.h, valueKey{})
	return r.value
}

// Peek returns the current value without subscribing.
func (r *Ref[T]) Peek() T {
	return r.value
}

// Set stores value and notifies subscribers if it changed.
func (r *Ref[T]) Set(value T) {
	old := r.value
	r.value = value
	if r.equals(old, value) {
		return
	}
	r.store.Trigger(r.h, valueKey{})
}

// Update sets the value to fn(current). The read of the current value is not tracked.
func (r *Ref[T]) Update(fn func(T) T) {
	r.Set(fn(r.value))
}

// WithEquals configures a custom equality function and returns the ref.
func (r *Ref[T]) WithEquals(fn func(T, T) bool) *Ref[T] {
	r.equal = fn
	return r
}

// Handle returns the identity of the ref in its Store.
func (r *Ref[T]) Handle() Handle {
	return r.h
}

// RefValue implements Box.
func (r *Ref[T]) RefValue() any {
	return r.Get()
}

func (r *Ref[T]) equals(a, b T) bool {
	if r.equal != nil {
		return r.equal(a, b)
	}
	return SameValue(a, b)
}
