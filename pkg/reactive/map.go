package reactive

import (
	"cmp"
	"fmt"
	"runtime"
	"slices"
)

// Map is an observed map.
//
// Reading a key subscribes the active effect to that key; writing it
// notifies the subscribers when the value changed. Adding or removing keys
// also notifies effects that iterated the map.
type Map[K comparable] struct {
	h     Handle
	store *Store
	raw   map[K]any

	// nested caches the wrapper handed out for each structured slot. The
	// cache keeps nested wrappers, and with them their handles, alive for as
	// long as the parent map.
	nested map[K]Observed
}

// Record is an observed string-keyed map, the usual shape for component state.
type Record = Map[string]

// NewRecord observes raw. A nil raw creates an empty record.
func NewRecord(raw map[string]any) *Record {
	return observeMap(defaultStore, raw)
}

// NewMap observes raw. A nil raw creates an empty map.
func NewMap[K comparable](raw map[K]any) *Map[K] {
	return observeMap(defaultStore, raw)
}

// NewRecordIn is NewRecord for an explicit Store.
func NewRecordIn(s *Store, raw map[string]any) *Record {
	return observeMap(s, raw)
}

// Handle implements Observed.
func (m *Map[K]) Handle() Handle {
	return m.h
}

// Raw returns the underlying map. Mutating it directly bypasses notification.
func (m *Map[K]) Raw() map[K]any {
	return m.raw
}

// Get returns the value under k, tracking the read.
func (m *Map[K]) Get(k K) any {
	m.store.Track(m.h, k)
	return m.wrap(k, m.raw[k])
}

// Lookup is Get that also reports whether k is present.
func (m *Map[K]) Lookup(k K) (any, bool) {
	m.store.Track(m.h, k)
	v, ok := m.raw[k]
	return m.wrap(k, v), ok
}

// Has reports whether k is present, tracking the read.
func (m *Map[K]) Has(k K) bool {
	m.store.Track(m.h, k)
	_, ok := m.raw[k]
	return ok
}

// Set stores v under k and reports whether the value changed.
func (m *Map[K]) Set(k K, v any) bool {
	old, existed := m.raw[k]
	m.raw[k] = v

	changed := !existed || !SameValue(old, v)
	if changed {
		if _, isList := v.([]any); !isList {
			delete(m.nested, k)
		}
		m.store.Trigger(m.h, k)
	}
	if !existed {
		m.store.Trigger(m.h, iterateKey{})
	}
	return changed
}

// Delete removes k and reports whether it was present.
func (m *Map[K]) Delete(k K) bool {
	if _, ok := m.raw[k]; !ok {
		return false
	}
	delete(m.raw, k)
	delete(m.nested, k)
	m.store.Trigger(m.h, k)
	m.store.Trigger(m.h, iterateKey{})
	return true
}

// Len returns the number of keys, tracking key additions and removals.
func (m *Map[K]) Len() int {
	m.store.Track(m.h, iterateKey{})
	return len(m.raw)
}

// Keys implements Observed. Keys are ordered by their formatted value.
func (m *Map[K]) Keys() []any {
	keys := m.sortedKeys()
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}

// Range calls fn for each entry in key order until fn returns false.
// Every visited key is tracked.
func (m *Map[K]) Range(fn func(k K, v any) bool) {
	for _, k := range m.sortedKeys() {
		if !fn(k, m.Get(k)) {
			return
		}
	}
}

// Read implements Observed. Keys of the wrong type read as nil.
func (m *Map[K]) Read(key any) any {
	k, ok := key.(K)
	if !ok {
		return nil
	}
	return m.Get(k)
}

// Write implements Observed. Keys of the wrong type are ignored.
func (m *Map[K]) Write(key, value any) bool {
	k, ok := key.(K)
	if !ok {
		return false
	}
	return m.Set(k, value)
}

// String formats the underlying map without tracking.
func (m *Map[K]) String() string {
	return fmt.Sprint(m.raw)
}

func (m *Map[K]) sortedKeys() []K {
	m.store.Track(m.h, iterateKey{})
	keys := make([]K, 0, len(m.raw))
	for k := range m.raw {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b K) int {
		return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
	})
	return keys
}

// wrap observes nested structured values lazily, on the way out of a read.
func (m *Map[K]) wrap(k K, v any) any {
	switch v.(type) {
	case []any:
		return m.listAt(k)
	case map[string]any, map[any]any:
		if o := m.nested[k]; o != nil && sameRaw(o, v) {
			return o
		}
		o := observeIn(m.store, v).(Observed)
		m.cache(k, o)
		return o
	}
	return observeIn(m.store, v)
}

func (m *Map[K]) cache(k K, o Observed) {
	if m.nested == nil {
		m.nested = make(map[K]Observed)
	}
	m.nested[k] = o
}

// listAt returns the List bound to slot k.
func (m *Map[K]) listAt(k K) *List {
	if l, ok := m.nested[k].(*List); ok {
		return l
	}
	l := &List{store: m.store}
	l.h = m.store.NewHandle()
	l.load = func() []any {
		s, _ := m.raw[k].([]any)
		return s
	}
	l.save = func(s []any) {
		m.raw[k] = s
	}
	runtime.AddCleanup(l, m.store.Release, l.h)

	m.cache(k, l)
	return l
}
