package vdom

import (
	"testing"

	"github.com/vango-dev/reactor/pkg/reactive"
)

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindComponent, "Component"},
		{VKind(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("VKind.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVNodeIsInteractive(t *testing.T) {
	tests := []struct {
		name string
		node *VNode
		want bool
	}{
		{"nil node", nil, false},
		{"text node", Text("hello"), false},
		{"element without handlers", Div(Class("test")), false},
		{"element with onClick", Button(OnClick(func() {})), true},
		{"lower-case on prefix is an attribute", Div(Prop("one", 1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.IsInteractive(); got != tt.want {
				t.Errorf("IsInteractive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSameType(t *testing.T) {
	a := &Component{Name: "A"}
	b := &Component{Name: "B"}

	tests := []struct {
		name string
		x, y *VNode
		want bool
	}{
		{"same tag", Div(), Div(ID("x")), true},
		{"different tag", Div(), Span(), false},
		{"text", Text("a"), Text("b"), true},
		{"element and text", Div(), Text("div"), false},
		{"same component", C(a, nil), C(a, Props{"x": 1}), true},
		{"different component", C(a, nil), C(b, nil), false},
		{"nil", nil, Div(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameType(tt.x, tt.y); got != tt.want {
				t.Errorf("SameType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("node is copied", func(t *testing.T) {
		child := Span("x")
		orig := Div(child)
		n := Normalize(orig)
		if n == orig {
			t.Fatal("Normalize returned the original node")
		}
		n.Children[0] = Text("replaced")
		n.El = "host"
		if orig.Children[0] != child || orig.El != nil {
			t.Error("Normalize copy shares state with the original")
		}
	})

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"nil node", (*VNode)(nil), ""},
		{"string", "hi", "hi"},
		{"int", 42, "42"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"stringer", reactive.NewRecord(map[string]any{"a": 1}), "map[a:1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Normalize(tt.in)
			if n.Kind != KindText {
				t.Fatalf("Kind = %v, want Text", n.Kind)
			}
			if n.Text != tt.want {
				t.Errorf("Text = %q, want %q", n.Text, tt.want)
			}
		})
	}

	t.Run("component", func(t *testing.T) {
		comp := &Component{Name: "X"}
		n := Normalize(comp)
		if n.Kind != KindComponent || n.Comp != comp {
			t.Errorf("Normalize(*Component) = %+v", n)
		}
	})
}

func TestVNodeString(t *testing.T) {
	node := Div(ID("main"), OnClick(func() {}),
		Input(Type("text")),
		Span("a", 1),
		C(&Component{Name: "Child"}, nil),
	)
	want := `<div id="main"><input type="text" /><span>a1</span><Child /></div>`
	if got := node.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}

func TestComponent(t *testing.T) {
	var nilComp *Component
	if got := nilComp.DisplayName(); got != "Anonymous" {
		t.Errorf("DisplayName() = %q", got)
	}
	c := &Component{Name: "Label", Props: []string{"text", "count"}}
	if !c.Declares("count") || c.Declares("class") {
		t.Error("Declares() mismatch")
	}
	if got := C(c, nil).Name(); got != "Label" {
		t.Errorf("Name() = %q", got)
	}
}
