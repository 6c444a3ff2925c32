// Package vdom provides the node model produced by component renders.
//
// A render pass returns a tree of VNodes. The renderer in pkg/render diffs
// that tree against the previous one and turns the difference into host
// operations.
//
// # Core Types
//
// VNode is a tagged variant: an element (tag, props, ordered children), a
// text node, or a component (descriptor plus raw props). Once mounted, a
// VNode carries the opaque host handle it maps to in El, and component nodes
// also carry their live instance.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    Button(OnClick(increment), Textf("count: %d", n)),
//	)
//
// Event handlers are ordinary props whose key is "on" followed by the
// capitalized event name, so OnClick(fn) is the prop "onClick".
//
// # Components
//
// A Component is a descriptor: declared prop keys plus a setup function, a
// render function or a template. C(comp, props) places a component in a tree.
package vdom
