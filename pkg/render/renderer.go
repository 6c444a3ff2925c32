package render

import (
	"log/slog"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Renderer mounts components into a host tree through HostOps.
type Renderer struct {
	ops      HostOps
	remover  Remover
	logger   *slog.Logger
	observer Observer
	compile  CompileFunc

	// current is the instance whose render is being patched.
	current *Instance
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(r *Renderer) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithCompiler sets the template compiler for this renderer, taking
// precedence over RegisterCompiler.
func WithCompiler(fn CompileFunc) Option {
	return func(r *Renderer) {
		r.compile = fn
	}
}

// New creates a Renderer for ops.
func New(ops HostOps, opts ...Option) *Renderer {
	r := &Renderer{
		ops:      ops,
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	r.remover, _ = ops.(Remover)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render mounts root into container and returns the root instance.
//
// Descriptor errors (no render function, template without compiler,
// compile failure) are returned. Panics raised by component code propagate.
func (r *Renderer) Render(root *vdom.Component, container any) (inst *Instance, err error) {
	defer recoverError(&err)

	node := vdom.C(root, nil)
	r.patch(nil, node, container, nil)
	inst, _ = node.Instance.(*Instance)
	return inst, nil
}

// recoverError turns a *errors.ReactorError panic into a returned error.
// Any other panic is re-raised.
func recoverError(err *error) {
	rec := recover()
	if rec == nil {
		return
	}
	if re, ok := rec.(*errors.ReactorError); ok {
		*err = re
		return
	}
	panic(rec)
}

func (r *Renderer) compiler() CompileFunc {
	if r.compile != nil {
		return r.compile
	}
	return registeredCompiler()
}

// patchTask is one unit of work on the patch stack. Tasks with done set
// run after the tasks pushed above them.
type patchTask struct {
	prev, next *vdom.VNode
	container  any
	anchor     any
	done       func()
}

// patch makes the host tree under container reflect next, given that it
// currently reflects prev (nil for a fresh mount). New host nodes are
// inserted before anchor.
func (r *Renderer) patch(prev, next *vdom.VNode, container, anchor any) {
	stack := []patchTask{{prev: prev, next: next, container: container, anchor: anchor}}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.done != nil {
			t.done()
			continue
		}
		stack = r.process(t, stack)
	}
}

func (r *Renderer) process(t patchTask, stack []patchTask) []patchTask {
	prev, next := t.prev, t.next

	if prev != nil && !vdom.SameType(prev, next) {
		old := hostNode(prev)
		container := t.container
		if parent := r.ops.ParentNode(old); parent != nil {
			container = parent
		}
		stack = append(stack, patchTask{done: func() { r.unmount(prev, true) }})
		return append(stack, patchTask{next: next, container: container, anchor: old})
	}

	switch next.Kind {
	case vdom.KindText:
		if prev == nil {
			next.El = r.ops.CreateText(next.Text)
			r.ops.Insert(next.El, t.container, t.anchor)
		} else {
			next.El = prev.El
			if next.Text != prev.Text {
				r.ops.SetElementText(next.El, next.Text)
			}
		}

	case vdom.KindElement:
		if prev == nil {
			return r.mountElement(next, t.container, t.anchor, stack)
		}
		return r.patchElement(prev, next, stack)

	case vdom.KindComponent:
		if prev == nil {
			r.mountComponent(next, t.container, t.anchor)
		} else {
			r.updateComponent(prev, next)
		}
	}
	return stack
}

// mountElement creates the host element, mounts its children into it,
// applies its props and only then inserts it into container.
func (r *Renderer) mountElement(n *vdom.VNode, container, anchor any, stack []patchTask) []patchTask {
	el := r.ops.CreateElement(n.Tag)
	n.El = el

	stack = append(stack, patchTask{done: func() {
		for _, k := range vdom.SortedKeys(n.Props) {
			r.ops.PatchProp(el, k, n.Props[k])
		}
		r.ops.Insert(el, container, anchor)
	}})
	for i := len(n.Children) - 1; i >= 0; i-- {
		n.Children[i] = vdom.Normalize(n.Children[i])
		stack = append(stack, patchTask{next: n.Children[i], container: el})
	}
	return stack
}

// patchElement reuses the host element of prev. Children are patched
// pairwise by index, then changed props are applied and stale props
// cleared, then old children past the new length are unmounted.
func (r *Renderer) patchElement(prev, next *vdom.VNode, stack []patchTask) []patchTask {
	el := prev.El
	next.El = el

	stack = append(stack, patchTask{done: func() {
		r.patchProps(el, prev.Props, next.Props)
		for _, old := range prev.Children[min(len(next.Children), len(prev.Children)):] {
			r.unmount(old, true)
		}
	}})
	for i := len(next.Children) - 1; i >= 0; i-- {
		next.Children[i] = vdom.Normalize(next.Children[i])
		var old *vdom.VNode
		if i < len(prev.Children) {
			old = prev.Children[i]
		}
		stack = append(stack, patchTask{prev: old, next: next.Children[i], container: el})
	}
	return stack
}

// patchProps applies props whose value changed and clears props that are
// gone. Function values never compare equal, so handlers are always
// re-applied.
func (r *Renderer) patchProps(el any, prev, next vdom.Props) {
	for _, k := range vdom.SortedKeys(next) {
		v := next[k]
		if old, ok := prev[k]; ok && reactive.SameValue(v, old) {
			continue
		}
		r.ops.PatchProp(el, k, v)
	}
	for _, k := range vdom.SortedKeys(prev) {
		if _, ok := next[k]; !ok {
			r.ops.PatchProp(el, k, nil)
		}
	}
}

// unmount tears down n: component effects are stopped and, when remove is
// set, the host node of n is detached. Descendant host nodes go with their
// ancestor, so they are not removed one by one.
func (r *Renderer) unmount(n *vdom.VNode, remove bool) {
	type item struct {
		n      *vdom.VNode
		remove bool
	}
	stack := []item{{n, remove}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.n == nil {
			continue
		}

		switch it.n.Kind {
		case vdom.KindComponent:
			inst, _ := it.n.Instance.(*Instance)
			if inst == nil || inst.unmounted {
				continue
			}
			inst.teardown()
			if inst.subTree != nil {
				stack = append(stack, item{inst.subTree, it.remove})
			}

		case vdom.KindElement:
			if it.remove {
				r.removeHost(it.n.El)
			}
			for _, c := range it.n.Children {
				stack = append(stack, item{c, false})
			}

		case vdom.KindText:
			if it.remove {
				r.removeHost(it.n.El)
			}
		}
	}
}

func (r *Renderer) removeHost(el any) {
	if el == nil {
		return
	}
	if r.remover == nil {
		r.logger.Debug("host cannot remove nodes, leaving node in place")
		return
	}
	r.remover.Remove(el)
}

// hostNode returns the host node n is mounted to. For a component this is
// the host node of its current subtree root, which may have been replaced
// since n was last patched.
func hostNode(n *vdom.VNode) any {
	for n != nil && n.Kind == vdom.KindComponent {
		inst, ok := n.Instance.(*Instance)
		if !ok || inst.subTree == nil {
			break
		}
		n = inst.subTree
	}
	if n == nil {
		return nil
	}
	return n.El
}
