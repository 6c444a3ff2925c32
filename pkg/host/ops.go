package host

import (
	"fmt"
	"slices"
)

// OpKind names a host operation.
type OpKind string

const (
	OpCreateElement OpKind = "createElement"
	OpCreateText    OpKind = "createText"
	OpSetText       OpKind = "setText"
	OpInsert        OpKind = "insert"
	OpPatchProp     OpKind = "patchProp"
	OpRemove        OpKind = "remove"
)

// Op is one recorded host operation. It is the wire format of the live
// preview stream, so node references are ids.
type Op struct {
	Kind   OpKind `json:"op"`
	Node   int    `json:"node"`
	Tag    string `json:"tag,omitempty"`
	Text   string `json:"text,omitempty"`
	Parent int    `json:"parent,omitempty"`
	Anchor int    `json:"anchor,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  any    `json:"value,omitempty"`

	// Handler marks a prop set to an event handler. The function itself
	// is not recorded.
	Handler bool `json:"handler,omitempty"`
}

// String formats the op for logs and test failures.
func (o Op) String() string {
	switch o.Kind {
	case OpCreateElement:
		return fmt.Sprintf("createElement #%d <%s>", o.Node, o.Tag)
	case OpCreateText, OpSetText:
		return fmt.Sprintf("%s #%d %q", o.Kind, o.Node, o.Text)
	case OpInsert:
		return fmt.Sprintf("insert #%d into #%d before #%d", o.Node, o.Parent, o.Anchor)
	case OpPatchProp:
		switch {
		case o.Handler:
			return fmt.Sprintf("patchProp #%d %s=<handler>", o.Node, o.Key)
		case o.Value == nil:
			return fmt.Sprintf("patchProp #%d %s cleared", o.Node, o.Key)
		}
		return fmt.Sprintf("patchProp #%d %s=%v", o.Node, o.Key, o.Value)
	}
	return fmt.Sprintf("%s #%d", o.Kind, o.Node)
}

func (t *Tree) record(op Op) {
	t.mu.Lock()
	t.ops = append(t.ops, op)
	subs := make([]func(Op), 0, len(t.subs))
	for _, id := range sortedIDs(t.subs) {
		subs = append(subs, t.subs[id])
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(op)
	}
}

// Ops returns a copy of the op log.
func (t *Tree) Ops() []Op {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.ops)
}

// ResetOps clears the op log.
func (t *Tree) ResetOps() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ops = nil
}

// Count returns how many logged ops are of kind k.
func (t *Tree) Count(k OpKind) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, op := range t.ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}

// Subscribe registers fn to receive every subsequent op, in order, on the
// goroutine performing it. The returned function unsubscribes.
func (t *Tree) Subscribe(fn func(Op)) (cancel func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextSub++
	id := t.nextSub
	t.subs[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, id)
	}
}

func sortedIDs(m map[int]func(Op)) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
