// Package vtest provides testing helpers for reactor components.
//
// Mount renders a component into an in-memory host tree and unmounts it
// when the test ends. The returned Harness finds nodes, fires events and
// asserts on the rendered HTML.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.Mount(t, counter.New(nil))
//	    h.Click(h.ByID("increment"))
//	    h.ExpectContains("Clicked 1 times")
//	}
//
// # Render Assertions
//
// Assert on rendered HTML output:
//
//	h.ExpectContains("Welcome")
//	h.ExpectNotContains("Error")
//	h.ExpectHTML(`<p>exact</p>`)
//
// # One-Liner Shorthand
//
// For components without interaction, render straight to a string:
//
//	html := vtest.RenderToString(t, Greeting)
package vtest
