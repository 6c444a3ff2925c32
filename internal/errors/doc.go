// Package errors provides structured, actionable error messages for reactor.
//
// Every failure the runtime reports to its embedder is a *ReactorError
// carrying a stable code (e.g. "E001"), a category, a short message and an
// optional longer explanation and fix hint.
//
// # Error Categories
//
//   - runtime: failures raised while mounting or updating components
//   - reactive: misuse of the dependency-tracking API (invalid watch sources)
//   - compile: template compilation failures reported by the registered compiler
//   - host: failures talking to a host tree (unknown node, missing handler)
//   - config: invalid project configuration
//   - storage: snapshot persistence failures
//
// # Usage
//
//	err := errors.New("E001").
//	    WithDetail(`component "Counter" has no render function`).
//	    WithSuggestion("Return a render function from Setup or set Render")
//
//	fmt.Println(err.Format())
package errors
