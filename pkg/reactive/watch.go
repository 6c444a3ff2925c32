package reactive

import (
	"reflect"

	"github.com/vango-dev/reactor/internal/errors"
)

// WatchCallback receives the new and previous value of a watch.
// For multi-source watches both are []any in source order. The previous
// value is nil on the first immediate call.
type WatchCallback func(newValue, oldValue any)

// StopHandle stops a watch.
type StopHandle func()

type watchOptions struct {
	immediate bool
	deep      bool
}

// WatchOption configures Watch.
type WatchOption func(*watchOptions)

// Immediate runs the callback once at setup with the initial value.
func Immediate() WatchOption {
	return func(o *watchOptions) {
		o.immediate = true
	}
}

// Deep tracks every nested value of the watched value. With Deep the
// callback fires on every notification, since the top-level value usually
// keeps its identity while its contents change.
func Deep() WatchOption {
	return func(o *watchOptions) {
		o.deep = true
	}
}

// Watch calls cb whenever the value derived from source changes.
//
// source may be:
//   - a getter: func() any, or any func with no arguments and one result
//   - a Box (Ref, Computed); its value is watched
//   - an Observed container; it is watched deeply
//   - a []any of the above, watched together
//
// Unless Immediate is given, the source is evaluated once at setup to record
// the initial value and cb is not called.
func Watch(source any, cb WatchCallback, opts ...WatchOption) (StopHandle, error) {
	var o watchOptions
	for _, opt := range opts {
		opt(&o)
	}

	getter, multi, forceDeep, err := watchGetter(source)
	if err != nil {
		return nil, err
	}
	if forceDeep {
		o.deep = true
	}
	if o.deep {
		base := getter
		getter = func() any { return Traverse(base()) }
	}

	var (
		effect   *Effect
		oldValue any
		first    = true
	)
	job := func() {
		if effect.Stopped() {
			return
		}
		newValue := effect.Run()
		fire := o.deep || (first && o.immediate)
		if !fire {
			if multi {
				fire = anyChanged(newValue, oldValue)
			} else {
				fire = !SameValue(newValue, oldValue)
			}
		}
		first = false
		if fire {
			prev := oldValue
			oldValue = newValue
			cb(newValue, prev)
		}
	}
	effect = NewEffect(getter, WithScheduler(job))

	if o.immediate {
		job()
	} else {
		oldValue = effect.Run()
		first = false
	}
	return effect.Stop, nil
}

// WatchEffect runs fn now and again whenever anything it read changes.
// Dependencies are re-collected on every run.
func WatchEffect(fn func()) StopHandle {
	e := NewEffect(func() any {
		fn()
		return nil
	})
	e.Run()
	return e.Stop
}

// watchGetter builds the getter for a watch source.
func watchGetter(source any) (getter func() any, multi, deep bool, err error) {
	if sources, ok := source.([]any); ok {
		getters := make([]func() any, len(sources))
		for i, s := range sources {
			g, d, ok := sourceGetter(s)
			if !ok {
				return nil, false, false, invalidSource(s)
			}
			if d {
				g = deepGetter(g)
			}
			getters[i] = g
		}
		return func() any {
			values := make([]any, len(getters))
			for i, g := range getters {
				values[i] = g()
			}
			return values
		}, true, false, nil
	}

	g, d, ok := sourceGetter(source)
	if !ok {
		return nil, false, false, invalidSource(source)
	}
	return g, false, d, nil
}

// sourceGetter returns the getter for a single source and whether the
// source is watched deeply by default.
func sourceGetter(s any) (getter func() any, deep, ok bool) {
	switch t := s.(type) {
	case nil:
		return nil, false, false
	case func() any:
		return t, false, true
	case Box:
		return t.RefValue, false, true
	case Observed:
		return func() any { return t }, true, true
	}

	fv := reflect.ValueOf(s)
	if fv.Kind() == reflect.Func && fv.Type().NumIn() == 0 && fv.Type().NumOut() == 1 && !fv.IsNil() {
		return func() any { return fv.Call(nil)[0].Interface() }, false, true
	}
	return nil, false, false
}

func deepGetter(g func() any) func() any {
	return func() any { return Traverse(g()) }
}

func anyChanged(newValue, oldValue any) bool {
	next, _ := newValue.([]any)
	prev, _ := oldValue.([]any)
	for i, v := range next {
		var old any
		if i < len(prev) {
			old = prev[i]
		}
		if !SameValue(v, old) {
			return true
		}
	}
	return false
}

func invalidSource(s any) error {
	return errors.New(errors.CodeInvalidSource).WithDetailf("got %T", s)
}
