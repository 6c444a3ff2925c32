// Package live serves a component tree to browsers and keeps them in sync.
//
// A Server owns one host.Tree and one renderer. All runtime work (the first
// render, event dispatch, the re-renders those events trigger and reads of
// the tree for HTTP responses) happens on a single event-loop goroutine
// started by Run, so component code never runs concurrently with itself.
//
// Routes:
//
//	GET /         HTML snapshot of the tree plus the client script
//	GET /ws       WebSocket: server sends ops, client sends events
//	GET /metrics  Prometheus metrics, when configured with WithMetrics
//
// The client first receives an "init" message holding ops that rebuild the
// whole tree, then one "ops" message per batch of changes. Events are sent
// as {"node": id, "event": "click", "args": [...]}.
package live
