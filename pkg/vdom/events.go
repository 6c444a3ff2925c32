package vdom

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// event creates an EventHandler with the given name and handler.
// The name is capitalized and prefixed with "on" ("click" becomes "onClick").
func event(name string, handler any) EventHandler {
	return EventHandler{Event: EventKey(name), Handler: handler}
}

// On handles an arbitrary event, including component events sent with Emit.
func On(name string, handler any) EventHandler { return event(name, handler) }

// Mouse events

// OnClick handles click events.
func OnClick(handler any) EventHandler { return event("click", handler) }

// OnDblClick handles double-click events.
func OnDblClick(handler any) EventHandler { return event("dblclick", handler) }

// Keyboard events

// OnKeyDown handles keydown events.
func OnKeyDown(handler any) EventHandler { return event("keydown", handler) }

// Form events

// OnInput handles input events (fired when value changes).
func OnInput(handler any) EventHandler { return event("input", handler) }

// OnChange handles change events (fired when value is committed).
func OnChange(handler any) EventHandler { return event("change", handler) }

// OnSubmit handles form submit events.
func OnSubmit(handler any) EventHandler { return event("submit", handler) }

// EventKey returns the prop key for an event name: "on" followed by the
// name with its first letter upper-cased.
func EventKey(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 {
		return "on"
	}
	return "on" + string(unicode.ToUpper(r)) + name[size:]
}

// IsEventKey reports whether key names an event handler: "on" followed by
// a character that is not a lower-case letter.
func IsEventKey(key string) bool {
	rest, ok := strings.CutPrefix(key, "on")
	if !ok || rest == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !unicode.IsLower(r)
}

// EventName is the inverse of EventKey: "onClick" becomes "click".
func EventName(key string) string {
	rest := strings.TrimPrefix(key, "on")
	r, size := utf8.DecodeRuneInString(rest)
	if size == 0 {
		return ""
	}
	return string(unicode.ToLower(r)) + rest[size:]
}

// IsFunc reports whether v is a non-nil function.
func IsFunc(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// Call invokes handler with args if it has one of the supported shapes:
// func(), func(any), func(...any), or func([]any) taking all args. It
// reports whether handler was called.
func Call(handler any, args ...any) bool {
	switch fn := handler.(type) {
	case func():
		fn()
	case func(any):
		var first any
		if len(args) > 0 {
			first = args[0]
		}
		fn(first)
	case func(...any):
		fn(args...)
	case func([]any):
		fn(args)
	default:
		return false
	}
	return true
}
