package render

import (
	"sync"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// HostOps is the host tree contract. Host nodes are opaque to the renderer.
type HostOps interface {
	CreateElement(tag string) any
	CreateText(text string) any
	SetElementText(node any, text string)

	// Insert places child in parent before anchor, or at the end when
	// anchor is nil.
	Insert(child, parent, anchor any)

	// PatchProp sets a prop on a host element. A nil value clears it.
	PatchProp(el any, key string, value any)

	// ParentNode returns the parent of node, or nil.
	ParentNode(node any) any
}

// Remover is implemented by hosts that can detach nodes. Without it,
// unmounted nodes stay in the host tree.
type Remover interface {
	Remove(child any)
}

// CompileFunc turns template source into a render function.
type CompileFunc func(template string) (vdom.RenderFunc, error)

var (
	compilerMu sync.RWMutex
	compiler   CompileFunc
)

// RegisterCompiler sets the compiler used for template-only components.
// There is a single slot: a later call replaces the previous compiler, and
// nil clears it.
func RegisterCompiler(fn CompileFunc) {
	compilerMu.Lock()
	defer compilerMu.Unlock()
	compiler = fn
}

func registeredCompiler() CompileFunc {
	compilerMu.RLock()
	defer compilerMu.RUnlock()
	return compiler
}
