package reactive

import "sync"

// Owner is a disposal scope for effects.
//
// Every Effect created while an Owner is current (see Owner.Run) is owned by
// it, and so are the Watch, WatchEffect and Computed values built on those
// effects. Disposing the owner stops them all, runs the registered cleanups
// and disposes its child owners.
type Owner struct {
	mu       sync.Mutex
	parent   *Owner
	children []*Owner
	effects  []*Effect
	cleanups []func()
	disposed bool
}

// NewOwner creates an owner. A non-nil parent disposes the new owner when
// it is disposed itself.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{parent: parent}
	if parent != nil {
		parent.mu.Lock()
		if parent.disposed {
			o.disposed = true
		} else {
			parent.children = append(parent.children, o)
		}
		parent.mu.Unlock()
	}
	return o
}

// Parent returns the parent owner, or nil.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// Run calls fn with o as the current owner of the calling goroutine.
// The previous owner is restored when fn returns or panics.
func (o *Owner) Run(fn func()) {
	restore := enterOwner(o)
	defer restore()
	fn()
}

// OnCleanup registers fn to run when o is disposed. Cleanups run in reverse
// registration order. On a disposed owner fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
	o.mu.Unlock()
}

// Effects returns how many live effects o owns.
func (o *Owner) Effects() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.effects)
}

// Disposed reports whether Dispose has been called.
func (o *Owner) Disposed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disposed
}

// Dispose stops the owned effects, runs the cleanups and disposes the child
// owners, children first. It is a no-op after the first call.
func (o *Owner) Dispose() {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.disposed = true
	children, effects, cleanups := o.children, o.effects, o.cleanups
	o.children, o.effects, o.cleanups = nil, nil, nil
	o.mu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}
	for _, e := range effects {
		e.Stop()
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	if o.parent != nil {
		o.parent.removeChild(o)
	}
}

func (o *Owner) own(e *Effect) {
	o.mu.Lock()
	disposed := o.disposed
	if !disposed {
		o.effects = append(o.effects, e)
	}
	o.mu.Unlock()
	if disposed {
		e.Stop()
	}
}

func (o *Owner) removeChild(child *Owner) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// CurrentOwner returns the owner installed on the calling goroutine, or nil.
func CurrentOwner() *Owner {
	if ctx := currentContext(); ctx != nil {
		return ctx.owner
	}
	return nil
}

// OnCleanup registers fn with the current owner. Without an owner it
// reports false and fn is not registered.
func OnCleanup(fn func()) bool {
	o := CurrentOwner()
	if o == nil {
		return false
	}
	o.OnCleanup(fn)
	return true
}
