package reactive

import (
	"math"
	"reflect"
)

// SameValue reports whether a and b are the same value for change detection.
//
// Comparable values compare with ==, except that NaN equals NaN and +0 does
// not equal -0. Maps, slices, pointers and channels compare by identity.
// Functions are never the same unless both are nil.
func SameValue(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && sameFloat(av, bv)
	case float32:
		bv, ok := b.(float32)
		return ok && sameFloat(float64(av), float64(bv))
	}

	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Func:
		return va.IsNil() && vb.IsNil()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if va.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	if a == 0 && b == 0 {
		return math.Signbit(a) == math.Signbit(b)
	}
	return a == b
}

// Changed is the negation of SameValue.
func Changed(newValue, oldValue any) bool {
	return !SameValue(newValue, oldValue)
}
