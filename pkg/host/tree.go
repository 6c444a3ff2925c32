package host

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// NodeKind distinguishes host nodes.
type NodeKind uint8

const (
	RootNode NodeKind = iota
	ElementNode
	TextNode
)

// Node is a host node in a Tree.
type Node struct {
	ID    int
	Kind  NodeKind
	Tag   string
	Text  string
	Props map[string]any

	parent   *Node
	children []*Node
}

// Parent returns the parent node, or nil when detached.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child nodes in order.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	if n.Kind == TextNode {
		return n.Text
	}
	var sb strings.Builder
	for _, c := range n.children {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// HasHandlers reports whether any prop of n is an event handler.
func (n *Node) HasHandlers() bool {
	for k, v := range n.Props {
		if vdom.IsEventKey(k) && vdom.IsFunc(v) {
			return true
		}
	}
	return false
}

func (n *Node) indexOf(child *Node) int {
	return slices.Index(n.children, child)
}

func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	p := n.parent
	if i := p.indexOf(n); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	n.parent = nil
}

// Tree is an in-memory host tree. It implements render.HostOps and
// render.Remover, records every operation in an op log and forwards each
// operation to subscribers as it happens.
type Tree struct {
	mu     sync.Mutex
	nextID int
	root   *Node
	nodes  map[int]*Node
	ops    []Op

	subs    map[int]func(Op)
	nextSub int
}

// NewTree creates a tree holding only its root node.
func NewTree() *Tree {
	t := &Tree{
		nodes: make(map[int]*Node),
		subs:  make(map[int]func(Op)),
	}
	t.root = t.newNode(RootNode)
	t.root.Tag = "#root"
	return t
}

func (t *Tree) newNode(kind NodeKind) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	n := &Node{ID: t.nextID, Kind: kind}
	t.nodes[n.ID] = n
	return n
}

// Root returns the root node, the container to render into.
func (t *Tree) Root() *Node {
	return t.root
}

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id int) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nodes[id]
}

// Find returns the attached nodes matching pred, in document order.
func (t *Tree) Find(pred func(*Node) bool) []*Node {
	var out []*Node
	stack := []*Node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if pred(n) {
			out = append(out, n)
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return out
}

// ByTag returns the attached elements with the given tag, in document order.
func (t *Tree) ByTag(tag string) []*Node {
	return t.Find(func(n *Node) bool {
		return n.Kind == ElementNode && n.Tag == tag
	})
}

// CreateElement implements render.HostOps.
func (t *Tree) CreateElement(tag string) any {
	n := t.newNode(ElementNode)
	n.Tag = tag
	n.Props = make(map[string]any)
	t.record(Op{Kind: OpCreateElement, Node: n.ID, Tag: tag})
	return n
}

// CreateText implements render.HostOps.
func (t *Tree) CreateText(text string) any {
	n := t.newNode(TextNode)
	n.Text = text
	t.record(Op{Kind: OpCreateText, Node: n.ID, Text: text})
	return n
}

// SetElementText implements render.HostOps.
func (t *Tree) SetElementText(node any, text string) {
	n := mustNode(node)
	if n.Kind == TextNode {
		n.Text = text
	} else {
		for _, c := range n.children {
			c.parent = nil
		}
		n.children = nil
		txt := t.newNode(TextNode)
		txt.Text = text
		txt.parent = n
		n.children = []*Node{txt}
	}
	t.record(Op{Kind: OpSetText, Node: n.ID, Text: text})
}

// Insert implements render.HostOps. An anchor that is not a child of
// parent is ignored and child is appended.
func (t *Tree) Insert(child, parent, anchor any) {
	c, p := mustNode(child), mustNode(parent)
	c.detach()

	op := Op{Kind: OpInsert, Node: c.ID, Parent: p.ID}
	i := len(p.children)
	if a, ok := anchor.(*Node); ok && a != nil {
		if j := p.indexOf(a); j >= 0 {
			i = j
			op.Anchor = a.ID
		}
	}
	p.children = slices.Insert(p.children, i, c)
	c.parent = p
	t.record(op)
}

// PatchProp implements render.HostOps. A nil value removes the prop.
func (t *Tree) PatchProp(el any, key string, value any) {
	n := mustNode(el)
	op := Op{Kind: OpPatchProp, Node: n.ID, Key: key}
	switch {
	case value == nil:
		delete(n.Props, key)
	case vdom.IsFunc(value):
		n.Props[key] = value
		op.Handler = true
	default:
		n.Props[key] = value
		op.Value = value
	}
	t.record(op)
}

// ParentNode implements render.HostOps.
func (t *Tree) ParentNode(node any) any {
	n, ok := node.(*Node)
	if !ok || n == nil || n.parent == nil {
		return nil
	}
	return n.parent
}

// Remove implements render.Remover. The node and its descendants are
// forgotten by the tree.
func (t *Tree) Remove(child any) {
	c := mustNode(child)
	c.detach()

	t.mu.Lock()
	stack := []*Node{c}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		delete(t.nodes, n.ID)
		stack = append(stack, n.children...)
	}
	t.mu.Unlock()

	t.record(Op{Kind: OpRemove, Node: c.ID})
}

// Dispatch calls the handler for event on the node with the given id.
// The handler is found under the prop vdom.EventKey(event). Dispatch fails
// with E005 when the node or the handler does not exist.
func (t *Tree) Dispatch(id int, event string, args ...any) error {
	n := t.Node(id)
	if n == nil {
		return errors.New(errors.CodeUnknownTarget).WithDetailf("no node %d", id)
	}
	handler := n.Props[vdom.EventKey(event)]
	if !vdom.Call(handler, args...) {
		return errors.New(errors.CodeUnknownTarget).
			WithDetailf("node %d <%s> has no %s handler", id, n.Tag, event)
	}
	return nil
}

// Snapshot returns ops that rebuild the attached tree from an empty root:
// each node is created, given its props and appended to its parent, in
// document order. The op log is not touched.
func (t *Tree) Snapshot() []Op {
	var ops []Op
	stack := slices.Clone(t.root.children)
	slices.Reverse(stack)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Kind == TextNode {
			ops = append(ops, Op{Kind: OpCreateText, Node: n.ID, Text: n.Text})
		} else {
			ops = append(ops, Op{Kind: OpCreateElement, Node: n.ID, Tag: n.Tag})
			for _, k := range vdom.SortedKeys(n.Props) {
				op := Op{Kind: OpPatchProp, Node: n.ID, Key: k}
				if v := n.Props[k]; vdom.IsFunc(v) {
					op.Handler = true
				} else {
					op.Value = v
				}
				ops = append(ops, op)
			}
		}
		ops = append(ops, Op{Kind: OpInsert, Node: n.ID, Parent: n.parent.ID})

		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return ops
}

// HTML serializes the children of the root.
func (t *Tree) HTML() string {
	var sb strings.Builder
	for _, c := range t.root.children {
		writeHTML(&sb, c)
	}
	return sb.String()
}

// String returns the HTML of n and its descendants.
func (n *Node) String() string {
	var sb strings.Builder
	writeHTML(&sb, n)
	return sb.String()
}

func writeHTML(sb *strings.Builder, n *Node) {
	switch n.Kind {
	case TextNode:
		sb.WriteString(escapeHTML(n.Text))
		return
	case RootNode:
		for _, c := range n.children {
			writeHTML(sb, c)
		}
		return
	}

	sb.WriteString("<" + n.Tag)
	for _, k := range vdom.SortedKeys(n.Props) {
		v := n.Props[k]
		if vdom.IsEventKey(k) || vdom.IsFunc(v) {
			continue
		}
		switch val := v.(type) {
		case bool:
			if val {
				sb.WriteString(" " + k)
			}
		default:
			fmt.Fprintf(sb, ` %s="%s"`, k, escapeAttr(fmt.Sprint(val)))
		}
	}
	if n.HasHandlers() {
		fmt.Fprintf(sb, ` data-rid="%d"`, n.ID)
	}

	if vdom.IsVoidElement(n.Tag) && len(n.children) == 0 {
		sb.WriteString(" />")
		return
	}
	sb.WriteString(">")
	for _, c := range n.children {
		writeHTML(sb, c)
	}
	sb.WriteString("</" + n.Tag + ">")
}

func mustNode(v any) *Node {
	n, ok := v.(*Node)
	if !ok || n == nil {
		panic(fmt.Sprintf("host: %T is not a *host.Node", v))
	}
	return n
}
