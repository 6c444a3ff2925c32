package reactive

import (
	"reflect"
	"runtime"
	"sync"
	"weak"
)

// Handle identifies an observed value in a Store.
type Handle uint64

// iterateKey is the pseudo-key tracked by operations that depend on the set
// of keys (Keys, Len) rather than on one key's value.
type iterateKey struct{}

// lengthKey is the pseudo-key tracking a List's length.
type lengthKey struct{}

// valueKey is the key used by single-value boxes (Ref, Computed).
type valueKey struct{}

// dep is the set of effects interested in one (handle, key) pair.
// Effects are kept in subscription order.
type dep struct {
	store   *Store
	handle  Handle
	key     any
	effects []*Effect
}

func (d *dep) add(e *Effect) bool {
	for _, existing := range d.effects {
		if existing == e {
			return false
		}
	}
	d.effects = append(d.effects, e)
	return true
}

func (d *dep) remove(e *Effect) {
	for i, existing := range d.effects {
		if existing == e {
			d.effects = append(d.effects[:i], d.effects[i+1:]...)
			return
		}
	}
}

// wrapperEntry remembers the wrapper created for a raw map.
type wrapperEntry struct {
	handle Handle
	ptr    any // weak.Pointer[Map[K]]
}

type wrapperKey struct {
	id     uintptr
	handle Handle
}

// Store is the dependency table shared by observed values.
//
// It maps each Handle to its keys and each key to the effects that read it
// during their most recent run. The store holds no reference to observed
// values; wrappers release their entries when they are garbage collected.
type Store struct {
	mu       sync.Mutex
	next     Handle
	targets  map[Handle]map[any]*dep
	wrappers map[uintptr]wrapperEntry
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		targets:  make(map[Handle]map[any]*dep),
		wrappers: make(map[uintptr]wrapperEntry),
	}
}

// defaultStore backs the package-level constructors.
var defaultStore = NewStore()

// DefaultStore returns the Store used by NewRef, NewRecord, Observe and friends.
func DefaultStore() *Store {
	return defaultStore
}

// NewHandle allocates a fresh handle.
func (s *Store) NewHandle() Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newHandleLocked()
}

func (s *Store) newHandleLocked() Handle {
	s.next++
	return s.next
}

// Track records the active effect, if any, as interested in (h, key).
func (s *Store) Track(h Handle, key any) {
	e := activeEffect()
	if e == nil || e.stopped {
		return
	}

	s.mu.Lock()
	keys := s.targets[h]
	if keys == nil {
		keys = make(map[any]*dep)
		s.targets[h] = keys
	}
	d := keys[key]
	if d == nil {
		d = &dep{store: s, handle: h, key: key}
		keys[key] = d
	}
	added := d.add(e)
	s.mu.Unlock()

	if added {
		e.deps = append(e.deps, d)
	}
}

// Trigger notifies every effect interested in (h, key).
//
// The interested set is copied before any effect runs, so effects that
// re-subscribe (or unsubscribe) while being notified do not disturb the
// iteration.
func (s *Store) Trigger(h Handle, key any) {
	s.mu.Lock()
	var effects []*Effect
	if d := s.targets[h][key]; d != nil && len(d.effects) > 0 {
		effects = make([]*Effect, len(d.effects))
		copy(effects, d.effects)
	}
	s.mu.Unlock()

	for _, e := range effects {
		e.notify()
	}
}

// Subscribers returns how many effects are interested in (h, key).
func (s *Store) Subscribers(h Handle, key any) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d := s.targets[h][key]; d != nil {
		return len(d.effects)
	}
	return 0
}

// Len returns the number of handles that currently have subscribers.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.targets)
}

// Release drops every entry recorded for h. Effects still holding one of the
// dropped sets simply stop being notified through it.
func (s *Store) Release(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.targets, h)
}

// untrack removes e from d and prunes the set once it is empty.
func (s *Store) untrack(d *dep, e *Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.remove(e)
	if len(d.effects) > 0 {
		return
	}
	keys := s.targets[d.handle]
	if keys[d.key] != d {
		return
	}
	delete(keys, d.key)
	if len(keys) == 0 {
		delete(s.targets, d.handle)
	}
}

// releaseWrapper is the cleanup attached to map wrappers.
func (s *Store) releaseWrapper(k wrapperKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.wrappers[k.id]; ok && entry.handle == k.handle {
		delete(s.wrappers, k.id)
	}
	delete(s.targets, k.handle)
}

// observeMap returns the wrapper for raw, reusing the live wrapper when raw
// has been observed before.
func observeMap[K comparable](s *Store, raw map[K]any) *Map[K] {
	if raw == nil {
		m := &Map[K]{store: s, raw: make(map[K]any)}
		m.h = s.NewHandle()
		runtime.AddCleanup(m, s.Release, m.h)
		return m
	}

	id := reflect.ValueOf(raw).Pointer()

	s.mu.Lock()
	if entry, ok := s.wrappers[id]; ok {
		if wp, ok := entry.ptr.(weak.Pointer[Map[K]]); ok {
			if m := wp.Value(); m != nil {
				s.mu.Unlock()
				return m
			}
		}
	}
	m := &Map[K]{store: s, raw: raw}
	m.h = s.newHandleLocked()
	s.wrappers[id] = wrapperEntry{handle: m.h, ptr: weak.Make(m)}
	s.mu.Unlock()

	runtime.AddCleanup(m, s.releaseWrapper, wrapperKey{id: id, handle: m.h})
	return m
}
