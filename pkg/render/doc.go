// Package render mounts components and keeps a host tree in sync with them.
//
// The renderer never touches a host tree directly. Everything goes through
// HostOps, a narrow set of operations supplied by the embedding environment
// (pkg/host provides an in-memory implementation).
//
// # Basic Usage
//
//	r := render.New(tree, render.WithLogger(logger))
//	inst, err := r.Render(app, tree.Root())
//
// Each mounted component owns one reactive effect. When state read by its
// render changes, the effect re-runs the render and the new node tree is
// patched against the previous one.
//
// # Patching
//
// Children are matched by index. A node whose kind, tag or component differs
// from the previous node at the same position is replaced. Old children past
// the end of the new list are unmounted, and props present only in the old
// render are cleared by patching them to nil. Host nodes are removed only if
// the HostOps also implements Remover.
//
// Element subtrees are walked with an explicit work stack; only component
// boundaries nest Go calls.
//
// # Templates
//
// Components that supply only a Template are compiled by the function
// passed to RegisterCompiler (or WithCompiler). Mounting one without a
// compiler fails with E002.
//
// A Renderer and the trees it manages are not safe for concurrent use.
package render
