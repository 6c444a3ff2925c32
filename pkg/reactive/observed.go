package reactive

import "reflect"

// Observed is the capability shared by every observed container.
//
// Read and Keys register the active effect; Write notifies the effects that
// read the key, but only when the value actually changed.
type Observed interface {
	// Handle returns the identity of the container in its Store.
	Handle() Handle

	// Read returns the value stored under key. Structured values are
	// returned wrapped.
	Read(key any) any

	// Write stores value under key and reports whether it changed.
	Write(key, value any) bool

	// Keys returns the keys of the container in a stable order.
	Keys() []any
}

// Box is implemented by single-value sources (Ref, Computed).
type Box interface {
	// RefValue returns the boxed value, tracking the read.
	RefValue() any
}

// Observe returns the observed form of v.
//
// map[string]any becomes a *Record, map[any]any a *Map[any] and []any a
// *List. Values that are already observed are returned unchanged, and so are
// values of any other type. Observing the same raw map twice returns the same
// wrapper for as long as that wrapper is alive. A raw slice has no identity,
// so each call takes ownership of the slice in a new List.
func Observe(v any) any {
	return observeIn(defaultStore, v)
}

func observeIn(s *Store, v any) any {
	switch t := v.(type) {
	case Observed:
		return t
	case map[string]any:
		return observeMap(s, t)
	case map[any]any:
		return observeMap(s, t)
	case []any:
		return newList(s, t)
	}
	return v
}

// IsObserved reports whether v is an observed container.
func IsObserved(v any) bool {
	_, ok := v.(Observed)
	return ok
}

// ToRaw returns the plain value behind an observed container, recursively
// unwrapping nothing: nested values are returned as stored.
func ToRaw(v any) any {
	switch t := v.(type) {
	case *Map[string]:
		return t.raw
	case *Map[any]:
		return t.raw
	case *List:
		return t.load()
	}
	return v
}

// sameRaw reports whether the wrapper o still stands for the raw map v.
// Slots can be rewritten through Raw without notification.
func sameRaw(o Observed, v any) bool {
	raw := ToRaw(o)
	if reflect.TypeOf(raw) != reflect.TypeOf(v) {
		return false
	}
	return reflect.ValueOf(raw).Pointer() == reflect.ValueOf(v).Pointer()
}
