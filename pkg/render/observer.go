package render

// Phase names a render pass.
type Phase string

const (
	PhaseMount  Phase = "mount"
	PhaseUpdate Phase = "update"
)

// Observer receives component lifecycle notifications, for metrics and
// tracing.
type Observer interface {
	// BeginRender is called before a component renders and patches. The
	// returned function is called when the pass ends, also on panic.
	BeginRender(component string, phase Phase) (end func())

	// Unmounted is called once per unmounted component instance.
	Unmounted(component string)
}

type nopObserver struct{}

func (nopObserver) BeginRender(string, Phase) func() { return func() {} }
func (nopObserver) Unmounted(string)                 {}

// MultiObserver fans notifications out to several observers.
func MultiObserver(observers ...Observer) Observer {
	return multiObserver(observers)
}

type multiObserver []Observer

func (m multiObserver) BeginRender(component string, phase Phase) func() {
	ends := make([]func(), len(m))
	for i, o := range m {
		ends[i] = o.BeginRender(component, phase)
	}
	return func() {
		for i := len(ends) - 1; i >= 0; i-- {
			ends[i]()
		}
	}
}

func (m multiObserver) Unmounted(component string) {
	for _, o := range m {
		o.Unmounted(component)
	}
}
