package vdom

import (
	"fmt"
	"strings"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindComponent              // Nested component
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// VNode is the virtual node.
type VNode struct {
	Kind        VKind      // Node type
	Tag         string     // Element tag name (e.g., "div")
	Props       Props      // Attributes and event handlers; raw props for components
	Children    []*VNode   // Child nodes
	SelfClosing bool       // Element written as <tag />
	Text        string     // For KindText
	Comp        *Component // For KindComponent

	// El is the host node this VNode is mounted to. It is set by the
	// renderer on first mount and carried over on every patch.
	El any

	// Instance is the component instance bound to a KindComponent node.
	Instance any
}

// Props holds attributes and event handlers.
type Props map[string]any

// IsInteractive returns true if this node has event handlers.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if IsEventKey(key) {
			return true
		}
	}
	return false
}

// SameType reports whether a and b can be patched in place: same kind, and
// the same tag or the same component descriptor.
func SameType(a, b *VNode) bool {
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindElement:
		return a.Tag == b.Tag
	case KindComponent:
		return a.Comp == b.Comp
	}
	return true
}

// Name returns a short label for logs: the tag, the component name or "#text".
func (v *VNode) Name() string {
	switch {
	case v == nil:
		return "<nil>"
	case v.Kind == KindText:
		return "#text"
	case v.Kind == KindComponent:
		return v.Comp.DisplayName()
	}
	return v.Tag
}

// String renders the node as markup, for debugging.
func (v *VNode) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v *VNode) write(sb *strings.Builder) {
	switch {
	case v == nil:
		return
	case v.Kind == KindText:
		sb.WriteString(v.Text)
		return
	case v.Kind == KindComponent:
		fmt.Fprintf(sb, "<%s />", v.Comp.DisplayName())
		return
	}
	sb.WriteString("<" + v.Tag)
	for _, k := range SortedKeys(v.Props) {
		if IsEventKey(k) || IsFunc(v.Props[k]) {
			continue
		}
		fmt.Fprintf(sb, " %s=%q", k, fmt.Sprint(v.Props[k]))
	}
	if v.SelfClosing || (IsVoidElement(v.Tag) && len(v.Children) == 0) {
		sb.WriteString(" />")
		return
	}
	sb.WriteString(">")
	for _, c := range v.Children {
		c.write(sb)
	}
	sb.WriteString("</" + v.Tag + ">")
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onClick", "onInput", etc.
	Handler any    // Function to call
}

// Normalize turns a render result into a VNode.
//
// A *VNode is shallow-copied along with its children slice, so the renderer
// can record host handles and normalized children without touching the tree
// the render function returned. A *Component becomes a component node with
// no props. nil becomes an empty text node and any other value becomes a
// text node holding its formatted value.
func Normalize(v any) *VNode {
	switch t := v.(type) {
	case *VNode:
		if t == nil {
			return Text("")
		}
		n := *t
		if t.Children != nil {
			n.Children = append([]*VNode(nil), t.Children...)
		}
		return &n
	case *Component:
		return C(t, nil)
	case nil:
		return Text("")
	case string:
		return Text(t)
	case fmt.Stringer:
		return Text(t.String())
	}
	return Text(fmt.Sprint(v))
}
