package reactive

import "reflect"

// Traverse reads every value nested in v so that the active effect depends
// on all of them. Observed containers are walked key by key, boxes through
// their value, and plain slices, arrays, maps, structs and pointers by
// reflection. Cycles are visited once. v is returned unchanged.
func Traverse(v any) any {
	traverse(v, make(map[any]struct{}))
	return v
}

type seenPtr struct {
	kind reflect.Kind
	ptr  uintptr
}

func traverse(v any, seen map[any]struct{}) {
	switch t := v.(type) {
	case nil:
		return
	case Observed:
		if !markSeen(seen, t.Handle()) {
			return
		}
		for _, k := range t.Keys() {
			traverse(t.Read(k), seen)
		}
		return
	case Box:
		if !markSeen(seen, t) {
			return
		}
		traverse(t.RefValue(), seen)
		return
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() || !markSeen(seen, seenPtr{rv.Kind(), rv.Pointer()}) {
			return
		}
		fallthrough
	case reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			traverseValue(rv.Index(i), seen)
		}
	case reflect.Map:
		if rv.IsNil() || !markSeen(seen, seenPtr{rv.Kind(), rv.Pointer()}) {
			return
		}
		iter := rv.MapRange()
		for iter.Next() {
			traverseValue(iter.Value(), seen)
		}
	case reflect.Pointer:
		if rv.IsNil() || !markSeen(seen, seenPtr{rv.Kind(), rv.Pointer()}) {
			return
		}
		traverseValue(rv.Elem(), seen)
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			traverseValue(rv.Field(i), seen)
		}
	}
}

func traverseValue(rv reflect.Value, seen map[any]struct{}) {
	if !rv.IsValid() || !rv.CanInterface() {
		return
	}
	traverse(rv.Interface(), seen)
}

func markSeen(seen map[any]struct{}, key any) bool {
	if _, ok := seen[key]; ok {
		return false
	}
	seen[key] = struct{}{}
	return true
}
