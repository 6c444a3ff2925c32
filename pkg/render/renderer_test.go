package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/reactor/pkg/host"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func mount(t *testing.T, comp *vdom.Component, opts ...Option) (*host.Tree, *Instance) {
	t.Helper()
	tree := host.NewTree()
	inst, err := New(tree, opts...).Render(comp, tree.Root())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return tree, inst
}

func diffOps(t *testing.T, tree *host.Tree, want []host.Op) {
	t.Helper()
	if diff := cmp.Diff(want, tree.Ops()); diff != "" {
		t.Errorf("host ops mismatch (-want +got):\n%s", diff)
	}
}

func TestPatchText(t *testing.T) {
	text := reactive.NewRef("A")
	tree, _ := mount(t, &vdom.Component{
		Name:   "Text",
		Render: func(vdom.Scope) any { return text.Get() },
	})
	diffOps(t, tree, []host.Op{
		{Kind: host.OpCreateText, Node: 2, Text: "A"},
		{Kind: host.OpInsert, Node: 2, Parent: 1},
	})

	tree.ResetOps()
	text.Set("B")
	diffOps(t, tree, []host.Op{
		{Kind: host.OpSetText, Node: 2, Text: "B"},
	})
	if got := tree.HTML(); got != "B" {
		t.Errorf("HTML() = %q, want B", got)
	}
}

func TestPatchAttributes(t *testing.T) {
	t.Run("direct patch", func(t *testing.T) {
		tree := host.NewTree()
		r := New(tree)

		first := vdom.Div(vdom.ID("a"))
		r.patch(nil, first, tree.Root(), nil)
		tree.ResetOps()

		second := vdom.Div(vdom.ID("b"))
		r.patch(first, second, tree.Root(), nil)
		diffOps(t, tree, []host.Op{
			{Kind: host.OpPatchProp, Node: 2, Key: "id", Value: "b"},
		})

		tree.ResetOps()
		r.patch(second, vdom.Div(vdom.ID("b")), tree.Root(), nil)
		diffOps(t, tree, nil)
	})

	t.Run("through a component", func(t *testing.T) {
		id := reactive.NewRef("a")
		tree, inst := mount(t, &vdom.Component{
			Render: func(vdom.Scope) any { return vdom.Div(vdom.ID(id.Get())) },
		})
		diffOps(t, tree, []host.Op{
			{Kind: host.OpCreateElement, Node: 2, Tag: "div"},
			{Kind: host.OpPatchProp, Node: 2, Key: "id", Value: "a"},
			{Kind: host.OpInsert, Node: 2, Parent: 1},
		})

		tree.ResetOps()
		id.Set("b")
		diffOps(t, tree, []host.Op{
			{Kind: host.OpPatchProp, Node: 2, Key: "id", Value: "b"},
		})

		tree.ResetOps()
		inst.Update()
		diffOps(t, tree, nil)
		if inst.Renders() != 3 {
			t.Errorf("Renders() = %d, want 3", inst.Renders())
		}
	})

	t.Run("stale props are cleared", func(t *testing.T) {
		withClass := reactive.NewRef(true)
		tree, _ := mount(t, &vdom.Component{
			Render: func(vdom.Scope) any {
				if withClass.Get() {
					return vdom.Div(vdom.ID("a"), vdom.Class("x"))
				}
				return vdom.Div(vdom.ID("a"))
			},
		})

		tree.ResetOps()
		withClass.Set(false)
		diffOps(t, tree, []host.Op{
			{Kind: host.OpPatchProp, Node: 2, Key: "class"},
		})
		if got := tree.HTML(); got != `<div id="a"></div>` {
			t.Errorf("HTML() = %s", got)
		}
	})
}

func TestCounter(t *testing.T) {
	counter := &vdom.Component{
		Name: "Counter",
		Setup: func(*reactive.Record, *vdom.SetupContext) any {
			count := reactive.NewRef(0)
			inc := func() { count.Update(func(n int) int { return n + 1 }) }
			return func() *vdom.VNode {
				return vdom.Div(vdom.Button(vdom.OnClick(inc), vdom.Textf("%d", count.Get())))
			}
		},
	}
	tree, inst := mount(t, counter)
	diffOps(t, tree, []host.Op{
		{Kind: host.OpCreateElement, Node: 2, Tag: "div"},
		{Kind: host.OpCreateElement, Node: 3, Tag: "button"},
		{Kind: host.OpCreateText, Node: 4, Text: "0"},
		{Kind: host.OpInsert, Node: 4, Parent: 3},
		{Kind: host.OpPatchProp, Node: 3, Key: "onClick", Handler: true},
		{Kind: host.OpInsert, Node: 3, Parent: 2},
		{Kind: host.OpInsert, Node: 2, Parent: 1},
	})

	button := tree.ByTag("button")[0]
	tree.ResetOps()
	if err := tree.Dispatch(button.ID, "click"); err != nil {
		t.Fatal(err)
	}
	diffOps(t, tree, []host.Op{
		{Kind: host.OpSetText, Node: 4, Text: "1"},
		{Kind: host.OpPatchProp, Node: 3, Key: "onClick", Handler: true},
	})
	if err := tree.Dispatch(button.ID, "click"); err != nil {
		t.Fatal(err)
	}

	if got := inst.Renders(); got != 3 {
		t.Errorf("Renders() = %d, want 3 (mount + 2 clicks)", got)
	}
	if got := tree.Root().TextContent(); got != "2" {
		t.Errorf("text = %q, want 2", got)
	}
	want := `<div><button data-rid="3">2</button></div>`
	if got := tree.HTML(); got != want {
		t.Errorf("HTML() = %s, want %s", got, want)
	}
	if tree.Count(host.OpCreateElement) != 0 {
		t.Error("re-renders must not recreate host nodes")
	}
}

func TestChildren(t *testing.T) {
	t.Run("trailing children are removed", func(t *testing.T) {
		items := reactive.NewRef([]string{"a", "b", "c"})
		tree, _ := mount(t, &vdom.Component{
			Render: func(vdom.Scope) any {
				return vdom.Ul(vdom.Range(items.Get(), func(s string, _ int) *vdom.VNode {
					return vdom.Li(s)
				}))
			},
		})
		if got := tree.HTML(); got != "<ul><li>a</li><li>b</li><li>c</li></ul>" {
			t.Fatalf("HTML() = %s", got)
		}

		tree.ResetOps()
		items.Set([]string{"x"})
		if got := tree.HTML(); got != "<ul><li>x</li></ul>" {
			t.Errorf("HTML() = %s", got)
		}
		if got := tree.Count(host.OpRemove); got != 2 {
			t.Errorf("removes = %d, want 2", got)
		}

		tree.ResetOps()
		items.Set([]string{"x", "y"})
		if got := tree.HTML(); got != "<ul><li>x</li><li>y</li></ul>" {
			t.Errorf("HTML() = %s", got)
		}
	})

	t.Run("different tag is replaced in place", func(t *testing.T) {
		asSpan := reactive.NewRef(true)
		tree, _ := mount(t, &vdom.Component{
			Render: func(vdom.Scope) any {
				if asSpan.Get() {
					return vdom.Div(vdom.Span("x"), vdom.Hr())
				}
				return vdom.Div(vdom.P("y"), vdom.Hr())
			},
		})

		tree.ResetOps()
		asSpan.Set(false)
		diffOps(t, tree, []host.Op{
			{Kind: host.OpCreateElement, Node: 6, Tag: "p"},
			{Kind: host.OpCreateText, Node: 7, Text: "y"},
			{Kind: host.OpInsert, Node: 7, Parent: 6},
			{Kind: host.OpInsert, Node: 6, Parent: 2, Anchor: 3},
			{Kind: host.OpRemove, Node: 3},
		})
		if got := tree.HTML(); got != "<div><p>y</p><hr /></div>" {
			t.Errorf("HTML() = %s", got)
		}
	})

	t.Run("text and element swap", func(t *testing.T) {
		asText := reactive.NewRef(true)
		tree, _ := mount(t, &vdom.Component{
			Render: func(vdom.Scope) any {
				if asText.Get() {
					return "plain"
				}
				return vdom.Strong("bold")
			},
		})
		asText.Set(false)
		if got := tree.HTML(); got != "<strong>bold</strong>" {
			t.Errorf("HTML() = %s", got)
		}
		asText.Set(true)
		if got := tree.HTML(); got != "plain" {
			t.Errorf("HTML() = %s", got)
		}
	})

	t.Run("host without remover keeps nodes", func(t *testing.T) {
		type opsOnly struct{ HostOps }
		tree := host.NewTree()
		items := reactive.NewRef(2)
		_, err := New(opsOnly{tree}).Render(&vdom.Component{
			Render: func(vdom.Scope) any {
				return vdom.Ul(vdom.Repeat(items.Get(), func(i int) *vdom.VNode { return vdom.Li(i) }))
			},
		}, tree.Root())
		if err != nil {
			t.Fatal(err)
		}
		items.Set(1)
		if got := tree.Count(host.OpRemove); got != 0 {
			t.Errorf("removes = %d, want 0", got)
		}
		if got := tree.HTML(); got != "<ul><li>0</li><li>1</li></ul>" {
			t.Errorf("HTML() = %s", got)
		}
	})

	t.Run("deep trees", func(t *testing.T) {
		const depth = 5000
		tree := host.NewTree()
		r := New(tree)
		node := vdom.Span("leaf")
		for range depth {
			node = vdom.Div(node)
		}
		r.patch(nil, node, tree.Root(), nil)
		if got := tree.Count(host.OpCreateElement); got != depth+1 {
			t.Errorf("createElement = %d, want %d", got, depth+1)
		}
		if got := tree.Root().Children()[0].Children()[0].Tag; got != "div" {
			t.Errorf("second level tag = %q, want div", got)
		}
	})
}

func TestRenderDoesNotMutateRenderOutput(t *testing.T) {
	static := vdom.Div(vdom.Span("x"))
	tick := reactive.NewRef(0)
	tree, _ := mount(t, &vdom.Component{
		Render: func(vdom.Scope) any {
			tick.Get()
			return static
		},
	})
	tick.Set(1)
	if static.El != nil || static.Children[0].El != nil {
		t.Error("renderer wrote host handles into the returned tree")
	}
	if got := tree.HTML(); got != "<div><span>x</span></div>" {
		t.Errorf("HTML() = %s", got)
	}
}
