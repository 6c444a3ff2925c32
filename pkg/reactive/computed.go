package reactive

import "runtime"

// Computed is a lazily evaluated, cached derivation.
//
// The getter runs on the first Get and again only after one of its
// dependencies changed. Effects that read a Computed are notified when it
// becomes stale, and pull the new value on their next Get.
type Computed[T any] struct {
	h      Handle
	store  *Store
	effect *Effect
	value  T
	dirty  bool
}

// NewComputed creates a Computed for getter.
func NewComputed[T any](getter func() T) *Computed[T] {
	s := defaultStore
	c := &Computed[T]{store: s, dirty: true}
	c.h = s.NewHandle()
	h := c.h
	c.effect = NewEffect(func() any { return getter() }, WithScheduler(func() {
		if !c.dirty {
			c.dirty = true
			s.Trigger(h, valueKey{})
		}
	}))
	runtime.AddCleanup(c, s.Release, c.h)
	return c
}

// Get returns the cached value, recomputing it if a dependency changed.
func (c *Computed[T]) Get() T {
	c.store.Track(c.h, valueKey{})
	if c.dirty {
		c.dirty = false
		v, _ := c.effect.Run().(T)
		c.value = v
	}
	return c.value
}

// RefValue implements Box.
func (c *Computed[T]) RefValue() any {
	return c.Get()
}

// Stop detaches the computed from its dependencies. The last value stays cached.
func (c *Computed[T]) Stop() {
	c.effect.Stop()
}
