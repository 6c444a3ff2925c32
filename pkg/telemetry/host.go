package telemetry

import "github.com/vango-dev/reactor/pkg/render"

// InstrumentHost wraps ops so every host operation is counted in m. The
// result implements render.Remover exactly when ops does.
func InstrumentHost(ops render.HostOps, m *Metrics) render.HostOps {
	h := &instrumentedHost{ops: ops, metrics: m}
	if rm, ok := ops.(render.Remover); ok {
		return &instrumentedRemover{instrumentedHost: h, remover: rm}
	}
	return h
}

type instrumentedHost struct {
	ops     render.HostOps
	metrics *Metrics
}

func (h *instrumentedHost) CreateElement(tag string) any {
	h.metrics.hostOp("createElement")
	return h.ops.CreateElement(tag)
}

func (h *instrumentedHost) CreateText(text string) any {
	h.metrics.hostOp("createText")
	return h.ops.CreateText(text)
}

func (h *instrumentedHost) SetElementText(node any, text string) {
	h.metrics.hostOp("setText")
	h.ops.SetElementText(node, text)
}

func (h *instrumentedHost) Insert(child, parent, anchor any) {
	h.metrics.hostOp("insert")
	h.ops.Insert(child, parent, anchor)
}

func (h *instrumentedHost) PatchProp(el any, key string, value any) {
	h.metrics.hostOp("patchProp")
	h.ops.PatchProp(el, key, value)
}

// ParentNode is a read and is not counted.
func (h *instrumentedHost) ParentNode(node any) any {
	return h.ops.ParentNode(node)
}

type instrumentedRemover struct {
	*instrumentedHost
	remover render.Remover
}

func (h *instrumentedRemover) Remove(child any) {
	h.metrics.hostOp("remove")
	h.remover.Remove(child)
}
