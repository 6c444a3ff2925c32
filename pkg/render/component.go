package render

import (
	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Instance is a mounted component.
//
// It owns the effect that renders the component. The effect re-runs when
// state read by the render changes; a parent re-render with new props queues
// the new descriptor in next and updates the instance directly.
type Instance struct {
	r    *Renderer
	comp *vdom.Component

	vnode *vdom.VNode // component node currently bound to this instance
	next  *vdom.VNode // pending descriptor from a parent re-render

	props *reactive.Record
	attrs vdom.Props
	state any

	render  vdom.RenderFunc
	subTree *vdom.VNode
	effect  *reactive.Effect

	// owner collects the effects created by setup.
	owner *reactive.Owner

	// container and anchor locate the first mount.
	container any
	anchor    any

	mounted   bool
	unmounted bool
	renders   int

	// rendering is set from the start of a pass until the render function
	// returns; dirty records a notification that arrived later in the pass.
	rendering bool
	dirty     bool
}

var _ vdom.Scope = (*Instance)(nil)

// mountComponent creates the instance for n, runs setup and performs the
// first render into container.
func (r *Renderer) mountComponent(n *vdom.VNode, container, anchor any) {
	inst := &Instance{
		r:         r,
		comp:      n.Comp,
		vnode:     n,
		container: container,
		anchor:    anchor,
	}
	n.Instance = inst

	var parentOwner *reactive.Owner
	if r.current != nil {
		parentOwner = r.current.owner
	}
	inst.owner = reactive.NewOwner(parentOwner)
	defer func() {
		if rec := recover(); rec != nil {
			inst.owner.Dispose()
			panic(rec)
		}
	}()

	declared, attrs := splitProps(n.Comp, n.Props)
	inst.props = reactive.NewRecord(declared)
	inst.attrs = attrs
	inst.render = r.resolveRender(inst)

	inst.effect = reactive.NewEffect(inst.run, reactive.WithScheduler(inst.schedule))
	inst.update()
}

// updateComponent hands next to the instance bound to prev and updates it.
func (r *Renderer) updateComponent(prev, next *vdom.VNode) {
	inst := prev.Instance.(*Instance)
	next.Instance = inst
	next.El = prev.El
	inst.next = next
	inst.update()
}

// resolveRender picks the render function: a function returned by Setup,
// then Render, then Template compiled by the compiler.
func (r *Renderer) resolveRender(inst *Instance) vdom.RenderFunc {
	comp := inst.comp
	if comp == nil {
		panic(errors.New(errors.CodeNoRender).WithDetail("component descriptor is nil"))
	}

	if comp.Setup != nil {
		ctx := &vdom.SetupContext{Attrs: inst.attrs, Emit: inst.Emit}
		var result any
		inst.owner.Run(func() {
			result = reactive.UntrackedValue(func() any {
				return comp.Setup(inst.props, ctx)
			})
		})
		if fn := asRenderFunc(result); fn != nil {
			return fn
		}
		inst.state = result
	}

	if comp.Render != nil {
		return comp.Render
	}

	if comp.Template != "" {
		compile := r.compiler()
		if compile == nil {
			panic(errors.New(errors.CodeNoCompiler).
				WithDetailf("component %s has only a template", comp.DisplayName()))
		}
		fn, err := compile(comp.Template)
		if err != nil {
			panic(errors.New(errors.CodeCompileFailed).
				WithDetailf("component %s", comp.DisplayName()).
				Wrap(err))
		}
		if fn == nil {
			panic(errors.New(errors.CodeCompileFailed).
				WithDetailf("compiler returned no render function for %s", comp.DisplayName()))
		}
		return fn
	}

	panic(errors.New(errors.CodeNoRender).
		WithDetailf("component %s has no setup render function, render or template", comp.DisplayName()))
}

func asRenderFunc(v any) vdom.RenderFunc {
	switch fn := v.(type) {
	case vdom.RenderFunc:
		return fn
	case func(vdom.Scope) any:
		return fn
	case func() any:
		return func(vdom.Scope) any { return fn() }
	case func() *vdom.VNode:
		return func(vdom.Scope) any { return fn() }
	}
	return nil
}

// splitProps copies declared keys out of raw; the remainder are attrs.
func splitProps(comp *vdom.Component, raw vdom.Props) (map[string]any, vdom.Props) {
	declared := make(map[string]any)
	attrs := make(vdom.Props)
	for k, v := range raw {
		if comp.Declares(k) {
			declared[k] = v
		} else {
			attrs[k] = v
		}
	}
	return declared, attrs
}

// run is the body of the instance effect.
func (i *Instance) run() any {
	name := i.comp.DisplayName()
	r := i.r

	parent := r.current
	r.current = i
	i.rendering = true
	defer func() {
		r.current = parent
		i.rendering = false
	}()

	if !i.mounted {
		end := r.observer.BeginRender(name, PhaseMount)
		defer end()

		tree := i.renderTree()
		i.subTree = tree
		r.patch(nil, tree, i.container, i.anchor)
		i.vnode.El = tree.El
		i.container, i.anchor = nil, nil
		i.mounted = true
		r.logger.Debug("component mounted", "component", name)
		return nil
	}

	end := r.observer.BeginRender(name, PhaseUpdate)
	defer end()

	next := i.next
	if next != nil {
		next.El = hostNode(i.vnode)
		next.Instance = i
		i.vnode = next
		i.next = nil
		i.updateProps(next.Props)
	} else {
		next = i.vnode
	}

	prevTree := i.subTree
	tree := i.renderTree()
	i.subTree = tree
	r.patch(prevTree, tree, r.ops.ParentNode(hostNode(prevTree)), nil)
	next.El = tree.El
	r.logger.Debug("component updated", "component", name, "renders", i.renders)
	return nil
}

func (i *Instance) renderTree() *vdom.VNode {
	tree := vdom.Normalize(i.render(i))
	i.rendering = false
	i.renders++
	return tree
}

// maxPasses bounds the renders one update may take when patching keeps
// invalidating state the component has already read.
const maxPasses = 100

// schedule is the effect scheduler. A notification raised before the render
// function returns is dropped, since the render reads the current state. One
// raised later in the pass, while the new tree is being patched, marks the
// instance dirty and update renders again.
func (i *Instance) schedule() {
	if i.unmounted || i.rendering {
		return
	}
	i.update()
}

func (i *Instance) update() {
	if i.unmounted {
		return
	}
	if i.effect.Running() {
		i.dirty = true
		return
	}
	for pass := 0; !i.unmounted; pass++ {
		if pass == maxPasses {
			i.r.logger.Warn("component kept invalidating itself while patching",
				"component", i.comp.DisplayName(), "passes", pass)
			return
		}
		i.dirty = false
		i.effect.Run()
		if !i.dirty {
			return
		}
	}
}

// updateProps copies declared keys from raw into the props record and
// replaces the attrs. Declared keys missing from raw are deleted.
func (i *Instance) updateProps(raw vdom.Props) {
	declared, attrs := splitProps(i.comp, raw)
	for _, k := range i.comp.Props {
		if v, ok := declared[k]; ok {
			i.props.Set(k, v)
		} else {
			i.props.Delete(k)
		}
	}
	i.attrs = attrs
}

func (i *Instance) teardown() {
	i.effect.Stop()
	i.owner.Dispose()
	i.unmounted = true
	i.r.observer.Unmounted(i.comp.DisplayName())
	i.r.logger.Debug("component unmounted", "component", i.comp.DisplayName())
}

// Props implements vdom.Scope.
func (i *Instance) Props() *reactive.Record {
	return i.props
}

// Attrs implements vdom.Scope.
func (i *Instance) Attrs() vdom.Props {
	return i.attrs
}

// State implements vdom.Scope.
func (i *Instance) State() any {
	return i.state
}

// Emit calls the handler the parent passed for event, if any.
func (i *Instance) Emit(event string, args ...any) {
	key := vdom.EventKey(event)
	if !vdom.Call(i.vnode.Props[key], args...) {
		i.r.logger.Debug("emit without handler", "component", i.comp.DisplayName(), "event", event)
	}
}

// Component returns the descriptor the instance was mounted from.
func (i *Instance) Component() *vdom.Component {
	return i.comp
}

// Tree returns the node tree produced by the latest render.
func (i *Instance) Tree() *vdom.VNode {
	return i.subTree
}

// Host returns the host node of the component's root.
func (i *Instance) Host() any {
	return hostNode(i.vnode)
}

// Owner returns the scope holding the effects created by setup.
func (i *Instance) Owner() *reactive.Owner {
	return i.owner
}

// Renders returns how many times the component has rendered.
func (i *Instance) Renders() int {
	return i.renders
}

// Mounted reports whether the instance is mounted and not yet unmounted.
func (i *Instance) Mounted() bool {
	return i.mounted && !i.unmounted
}

// Update re-renders the component now.
func (i *Instance) Update() {
	i.update()
}

// Unmount stops the component and its descendants and removes its host
// nodes. It is a no-op after the first call.
func (i *Instance) Unmount() {
	i.r.unmount(i.vnode, true)
}
