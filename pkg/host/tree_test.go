package host

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/reactor/internal/errors"
)

// build creates <ul><li>a</li><li>b</li></ul> under the root.
func build(t *testing.T) (*Tree, *Node, *Node, *Node) {
	t.Helper()
	tree := NewTree()
	ul := tree.CreateElement("ul").(*Node)
	a := tree.CreateElement("li").(*Node)
	b := tree.CreateElement("li").(*Node)
	tree.Insert(tree.CreateText("a"), a, nil)
	tree.Insert(tree.CreateText("b"), b, nil)
	tree.Insert(a, ul, nil)
	tree.Insert(b, ul, nil)
	tree.Insert(ul, tree.Root(), nil)
	return tree, ul, a, b
}

func TestTreeOps(t *testing.T) {
	tree, ul, a, b := build(t)
	if got := tree.HTML(); got != "<ul><li>a</li><li>b</li></ul>" {
		t.Fatalf("HTML() = %s", got)
	}
	if tree.Count(OpCreateElement) != 3 || tree.Count(OpInsert) != 5 {
		t.Errorf("unexpected op counts: %v", tree.Ops())
	}

	t.Run("insert before anchor", func(t *testing.T) {
		tree.ResetOps()
		c := tree.CreateElement("li")
		tree.Insert(c, ul, b)
		want := []Op{
			{Kind: OpCreateElement, Node: c.(*Node).ID, Tag: "li"},
			{Kind: OpInsert, Node: c.(*Node).ID, Parent: ul.ID, Anchor: b.ID},
		}
		if diff := cmp.Diff(want, tree.Ops()); diff != "" {
			t.Errorf("ops mismatch (-want +got):\n%s", diff)
		}
		if got := ul.String(); got != "<ul><li>a</li><li></li><li>b</li></ul>" {
			t.Errorf("String() = %s", got)
		}
		tree.Remove(c)
	})

	t.Run("anchor outside parent appends", func(t *testing.T) {
		tree.ResetOps()
		tree.Insert(a, ul, tree.Root())
		if got := tree.Ops()[0].Anchor; got != 0 {
			t.Errorf("Anchor = %d, want 0", got)
		}
		if got := ul.TextContent(); got != "ba" {
			t.Errorf("TextContent() = %q, want ba", got)
		}
		tree.Insert(a, ul, b)
	})

	t.Run("props", func(t *testing.T) {
		tree.PatchProp(ul, "class", "list")
		tree.PatchProp(ul, "hidden", true)
		tree.PatchProp(ul, "title", `a "b"`)
		if got := tree.HTML(); got != `<ul class="list" hidden title="a &quot;b&quot;"><li>a</li><li>b</li></ul>` {
			t.Errorf("HTML() = %s", got)
		}
		tree.PatchProp(ul, "hidden", nil)
		tree.PatchProp(ul, "title", nil)
		if _, ok := ul.Props["hidden"]; ok {
			t.Error("nil value did not clear the prop")
		}
	})

	t.Run("set element text replaces children", func(t *testing.T) {
		tree.SetElementText(b, "B")
		if got := b.String(); got != "<li>B</li>" {
			t.Errorf("String() = %s", got)
		}
		if len(b.Children()) != 1 {
			t.Errorf("children = %d, want 1", len(b.Children()))
		}
	})

	t.Run("remove forgets descendants", func(t *testing.T) {
		textID := a.Children()[0].ID
		tree.Remove(a)
		if tree.Node(a.ID) != nil || tree.Node(textID) != nil {
			t.Error("removed nodes still resolvable")
		}
		if a.Parent() != nil {
			t.Error("removed node still has a parent")
		}
		if tree.ParentNode(a) != nil {
			t.Error("ParentNode of detached node should be nil")
		}
		if tree.ParentNode(ul) != tree.Root() {
			t.Error("ParentNode(ul) should be the root")
		}
	})
}

func TestDispatch(t *testing.T) {
	tree := NewTree()
	btn := tree.CreateElement("button").(*Node)
	tree.Insert(btn, tree.Root(), nil)

	var got []any
	tree.PatchProp(btn, "onClick", func(args ...any) { got = append(got, args...) })
	if err := tree.Dispatch(btn.ID, "click", "x", 1); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{"x", 1}, got); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}

	want := `<button data-rid="2"></button>`
	if html := tree.HTML(); html != want {
		t.Errorf("HTML() = %s, want %s", html, want)
	}
	if op := tree.Ops()[len(tree.Ops())-1]; !op.Handler || op.Value != nil {
		t.Errorf("handler op = %+v", op)
	}

	if err := tree.Dispatch(btn.ID, "input"); !errors.HasCode(err, errors.CodeUnknownTarget) {
		t.Errorf("missing handler error = %v", err)
	}
	if err := tree.Dispatch(99, "click"); !errors.HasCode(err, errors.CodeUnknownTarget) {
		t.Errorf("missing node error = %v", err)
	}
}

func TestFind(t *testing.T) {
	tree, _, _, _ := build(t)
	var texts []string
	for _, n := range tree.Find(func(n *Node) bool { return n.Kind == TextNode }) {
		texts = append(texts, n.Text)
	}
	if diff := cmp.Diff([]string{"a", "b"}, texts); diff != "" {
		t.Errorf("document order mismatch (-want +got):\n%s", diff)
	}
	if got := len(tree.ByTag("li")); got != 2 {
		t.Errorf("ByTag(li) = %d nodes, want 2", got)
	}
}

func TestSubscribe(t *testing.T) {
	tree := NewTree()
	var first, second []OpKind
	cancel := tree.Subscribe(func(op Op) { first = append(first, op.Kind) })
	tree.Subscribe(func(op Op) { second = append(second, op.Kind) })

	el := tree.CreateElement("p")
	cancel()
	tree.Insert(el, tree.Root(), nil)

	if diff := cmp.Diff([]OpKind{OpCreateElement}, first); diff != "" {
		t.Errorf("cancelled subscriber mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]OpKind{OpCreateElement, OpInsert}, second); diff != "" {
		t.Errorf("subscriber mismatch (-want +got):\n%s", diff)
	}
}

func TestOpJSON(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{Op{Kind: OpCreateElement, Node: 2, Tag: "div"}, `{"op":"createElement","node":2,"tag":"div"}`},
		{Op{Kind: OpInsert, Node: 3, Parent: 2, Anchor: 4}, `{"op":"insert","node":3,"parent":2,"anchor":4}`},
		{Op{Kind: OpPatchProp, Node: 3, Key: "onClick", Handler: true}, `{"op":"patchProp","node":3,"key":"onClick","handler":true}`},
		{Op{Kind: OpPatchProp, Node: 3, Key: "class"}, `{"op":"patchProp","node":3,"key":"class"}`},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			b, err := json.Marshal(tt.op)
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != tt.want {
				t.Errorf("json = %s, want %s", b, tt.want)
			}
		})
	}
}

func TestMustNodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for foreign node type")
		}
	}()
	NewTree().Insert("not a node", NewTree().Root(), nil)
}

func TestSnapshot(t *testing.T) {
	tree, ul, a, _ := build(t)
	tree.PatchProp(ul, "class", "list")
	tree.PatchProp(a, "onClick", func() {})
	tree.ResetOps()

	replay := NewTree()
	ids := map[int]*Node{1: replay.Root()}
	for _, op := range tree.Snapshot() {
		switch op.Kind {
		case OpCreateElement:
			ids[op.Node] = replay.CreateElement(op.Tag).(*Node)
		case OpCreateText:
			ids[op.Node] = replay.CreateText(op.Text).(*Node)
		case OpPatchProp:
			var v any = op.Value
			if op.Handler {
				v = func() {}
			}
			replay.PatchProp(ids[op.Node], op.Key, v)
		case OpInsert:
			replay.Insert(ids[op.Node], ids[op.Parent], nil)
		default:
			t.Fatalf("unexpected op in snapshot: %v", op)
		}
	}

	// Ids differ between the trees, so compare without data-rid.
	strip := func(s string) string {
		return strings.NewReplacer(` data-rid="4"`, "", ` data-rid="3"`, "").Replace(s)
	}
	if got, want := strip(replay.HTML()), strip(tree.HTML()); got != want {
		t.Errorf("replayed HTML = %s, want %s", got, want)
	}
	if len(tree.Ops()) != 0 {
		t.Error("Snapshot wrote to the op log")
	}
}
