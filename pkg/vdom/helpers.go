package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// C places a component in a tree with the given raw props. Event handlers
// for the component's emitted events go in props under their EventKey.
func C(comp *Component, props Props, args ...any) *VNode {
	node := &VNode{
		Kind:  KindComponent,
		Comp:  comp,
		Props: make(Props, len(props)),
	}
	for k, v := range props {
		node.Props[k] = v
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case Attr:
			if v.Key != "" {
				node.Props[v.Key] = v.Value
			}
		case EventHandler:
			node.Props[v.Event] = v.Handler
		}
	}
	return node
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// IfElse returns the first node if condition is true, the second otherwise.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to VNodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	result := make([]*VNode, 0, len(items))
	for i, item := range items {
		node := fn(item, i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Repeat creates n nodes using the given function.
func Repeat(n int, fn func(i int) *VNode) []*VNode {
	if n <= 0 {
		return nil
	}
	result := make([]*VNode, 0, n)
	for i := range n {
		node := fn(i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}
