package reactive

import (
	"fmt"
	"runtime"
)

// List is an observed sequence.
//
// Each index is tracked separately, and the length is tracked as its own key,
// so an effect that only reads Len is not re-run when an element changes.
type List struct {
	h     Handle
	store *Store

	// load and save access the backing slice. A standalone list owns it;
	// a nested list reads and writes its parent's slot.
	load func() []any
	save func([]any)

	// nested caches the wrapper handed out for each structured index.
	nested map[int]Observed
}

// NewList observes values. The list takes ownership of the slice.
func NewList(values []any) *List {
	return newList(defaultStore, values)
}

func newList(s *Store, values []any) *List {
	own := values
	l := &List{store: s}
	l.h = s.NewHandle()
	l.load = func() []any { return own }
	l.save = func(v []any) { own = v }
	runtime.AddCleanup(l, s.Release, l.h)
	return l
}

// Handle implements Observed.
func (l *List) Handle() Handle {
	return l.h
}

// Len returns the number of elements, tracking the length.
func (l *List) Len() int {
	l.store.Track(l.h, lengthKey{})
	return len(l.load())
}

// Get returns element i, tracking the read. Out of range indexes read as nil.
func (l *List) Get(i int) any {
	l.store.Track(l.h, i)
	values := l.load()
	if i < 0 || i >= len(values) {
		return nil
	}
	return l.wrap(i, values[i])
}

// Set stores v at index i and reports whether the value changed.
// Setting index Len() appends.
func (l *List) Set(i int, v any) bool {
	values := l.load()
	switch {
	case i == len(values):
		l.Append(v)
		return true
	case i < 0 || i > len(values):
		panic(fmt.Sprintf("reactive: List.Set index %d out of range [0:%d]", i, len(values)))
	}

	old := values[i]
	values[i] = v
	if SameValue(old, v) {
		return false
	}
	if _, isList := v.([]any); !isList {
		delete(l.nested, i)
	}
	l.store.Trigger(l.h, i)
	return true
}

// Append adds values to the end of the list.
func (l *List) Append(values ...any) {
	if len(values) == 0 {
		return
	}
	start := len(l.load())
	l.save(append(l.load(), values...))
	for i := range values {
		l.store.Trigger(l.h, start+i)
	}
	l.store.Trigger(l.h, lengthKey{})
}

// Truncate shortens the list to n elements.
func (l *List) Truncate(n int) {
	values := l.load()
	if n < 0 || n >= len(values) {
		return
	}
	l.save(values[:n])
	for i := n; i < len(values); i++ {
		delete(l.nested, i)
		l.store.Trigger(l.h, i)
	}
	l.store.Trigger(l.h, lengthKey{})
}

// Values returns a copy of the elements, tracking the length and every index.
func (l *List) Values() []any {
	n := l.Len()
	out := make([]any, n)
	for i := range n {
		out[i] = l.Get(i)
	}
	return out
}

// Keys implements Observed.
func (l *List) Keys() []any {
	n := l.Len()
	keys := make([]any, n)
	for i := range n {
		keys[i] = i
	}
	return keys
}

// Read implements Observed.
func (l *List) Read(key any) any {
	i, ok := key.(int)
	if !ok {
		return nil
	}
	return l.Get(i)
}

// Write implements Observed. Non-int or out of range keys are ignored.
func (l *List) Write(key, value any) bool {
	i, ok := key.(int)
	if !ok || i < 0 || i > len(l.load()) {
		return false
	}
	return l.Set(i, value)
}

// String formats the elements without tracking.
func (l *List) String() string {
	return fmt.Sprint(l.load())
}

func (l *List) wrap(i int, v any) any {
	switch v.(type) {
	case []any:
		return l.listAt(i)
	case map[string]any, map[any]any:
		if o := l.nested[i]; o != nil && sameRaw(o, v) {
			return o
		}
		o := observeIn(l.store, v).(Observed)
		l.cache(i, o)
		return o
	}
	return observeIn(l.store, v)
}

func (l *List) cache(i int, o Observed) {
	if l.nested == nil {
		l.nested = make(map[int]Observed)
	}
	l.nested[i] = o
}

func (l *List) listAt(i int) *List {
	if nested, ok := l.nested[i].(*List); ok {
		return nested
	}
	nested := &List{store: l.store}
	nested.h = l.store.NewHandle()
	nested.load = func() []any {
		values := l.load()
		if i >= len(values) {
			return nil
		}
		s, _ := values[i].([]any)
		return s
	}
	nested.save = func(s []any) {
		if values := l.load(); i < len(values) {
			values[i] = s
		}
	}
	runtime.AddCleanup(nested, l.store.Release, nested.h)

	l.cache(i, nested)
	return nested
}
