package vtest

import (
	"strings"
	"testing"

	"github.com/vango-dev/reactor/pkg/host"
	"github.com/vango-dev/reactor/pkg/render"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Harness is a mounted component under test.
type Harness struct {
	t        testing.TB
	Tree     *host.Tree
	Instance *render.Instance
}

// Mount renders comp into a fresh host tree. The test fails immediately if
// rendering returns an error. The component is unmounted on cleanup.
//
// Example:
//
//	h := vtest.Mount(t, MyComponent, render.WithLogger(logger))
func Mount(t testing.TB, comp *vdom.Component, opts ...render.Option) *Harness {
	t.Helper()
	tree := host.NewTree()
	inst, err := render.New(tree, opts...).Render(comp, tree.Root())
	if err != nil {
		t.Fatalf("vtest: render %s: %v", comp.DisplayName(), err)
	}
	t.Cleanup(inst.Unmount)
	return &Harness{t: t, Tree: tree, Instance: inst}
}

// RenderToString mounts comp, returns its HTML and unmounts it.
//
// Example:
//
//	html := vtest.RenderToString(t, Greeting)
//	if !strings.Contains(html, "expected text") {
//	    t.Error("missing expected text")
//	}
func RenderToString(t testing.TB, comp *vdom.Component, opts ...render.Option) string {
	t.Helper()
	h := Mount(t, comp, opts...)
	defer h.Instance.Unmount()
	return h.HTML()
}

// HTML returns the current HTML of the tree.
func (h *Harness) HTML() string {
	return h.Tree.HTML()
}

// Text returns the text content of the tree.
func (h *Harness) Text() string {
	return h.Tree.Root().TextContent()
}

// ByID returns the element whose id prop is id. The test fails if there
// is none.
func (h *Harness) ByID(id string) *host.Node {
	h.t.Helper()
	nodes := h.Tree.Find(func(n *host.Node) bool { return n.Props["id"] == id })
	if len(nodes) == 0 {
		h.t.Fatalf("vtest: no element with id %q in %s", id, h.HTML())
	}
	return nodes[0]
}

// ByTag returns the i-th element with the given tag in document order.
// The test fails if there is none.
func (h *Harness) ByTag(tag string, i int) *host.Node {
	h.t.Helper()
	nodes := h.Tree.ByTag(tag)
	if i < 0 || i >= len(nodes) {
		h.t.Fatalf("vtest: no <%s> at index %d (found %d)", tag, i, len(nodes))
	}
	return nodes[i]
}

// Fire dispatches event on n. The test fails if n has no handler for it.
func (h *Harness) Fire(n *host.Node, event string, args ...any) {
	h.t.Helper()
	if err := h.Tree.Dispatch(n.ID, event, args...); err != nil {
		h.t.Fatalf("vtest: %v", err)
	}
}

// Click dispatches a click on n.
func (h *Harness) Click(n *host.Node) {
	h.t.Helper()
	h.Fire(n, "click")
}

// ExpectContains asserts that the rendered HTML contains expected.
//
// Example:
//
//	h.ExpectContains("Welcome Admin")
func (h *Harness) ExpectContains(expected string) {
	h.t.Helper()
	if html := h.HTML(); !strings.Contains(html, expected) {
		h.t.Errorf("expected HTML to contain %q, got:\n%s", expected, html)
	}
}

// ExpectNotContains asserts that the rendered HTML does not contain
// unexpected.
//
// Example:
//
//	h.ExpectNotContains("Error")
func (h *Harness) ExpectNotContains(unexpected string) {
	h.t.Helper()
	if html := h.HTML(); strings.Contains(html, unexpected) {
		h.t.Errorf("expected HTML to not contain %q, got:\n%s", unexpected, html)
	}
}

// ExpectHTML asserts that the rendered HTML equals want.
func (h *Harness) ExpectHTML(want string) {
	h.t.Helper()
	if got := h.HTML(); got != want {
		h.t.Errorf("HTML mismatch:\ngot:  %s\nwant: %s", got, want)
	}
}
