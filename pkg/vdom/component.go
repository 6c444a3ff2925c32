package vdom

import "github.com/vango-dev/reactor/pkg/reactive"

// Component is a component descriptor.
//
// Exactly one of the following supplies the render function, in priority
// order: a function returned by Setup, Render, or Template compiled by the
// registered compiler.
type Component struct {
	// Name is used in logs, metrics and traces.
	Name string

	// Props lists the declared prop keys. Raw props under these keys are
	// copied into the reactive props record; the rest are passed through as
	// attrs.
	Props []string

	// Setup runs once per instance, before the first render.
	Setup SetupFunc

	// Render produces the component's node tree.
	Render RenderFunc

	// Template is source text for the registered compiler.
	Template string
}

// DisplayName returns Name, or "Anonymous" when it is empty.
func (c *Component) DisplayName() string {
	if c == nil || c.Name == "" {
		return "Anonymous"
	}
	return c.Name
}

// Declares reports whether key is a declared prop.
func (c *Component) Declares(key string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Props {
		if p == key {
			return true
		}
	}
	return false
}

// SetupFunc initializes a component instance.
//
// A returned RenderFunc, func() any or func() *VNode becomes the render
// function. Any other value is kept as the instance state and exposed to
// Render through Scope.State.
type SetupFunc func(props *reactive.Record, ctx *SetupContext) any

// SetupContext is passed to SetupFunc.
type SetupContext struct {
	// Attrs holds the raw props that are not declared.
	Attrs Props

	// Emit calls the handler the parent passed for event, found under the
	// prop "on" + the capitalized event name.
	Emit func(event string, args ...any)
}

// RenderFunc produces a component's node tree. The result is normalized,
// so it may be a *VNode, a string, or any value formatted as text.
type RenderFunc func(s Scope) any

// Scope is what a render function sees of its instance.
type Scope interface {
	// Props returns the declared props. Reading them inside a render
	// subscribes the component to changes.
	Props() *reactive.Record

	// Attrs returns the undeclared raw props.
	Attrs() Props

	// State returns the non-function value returned by Setup, if any.
	State() any

	// Emit calls the handler the parent passed for event.
	Emit(event string, args ...any)
}
