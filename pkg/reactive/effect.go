package reactive

import "sync/atomic"

var effectIDs atomic.Uint64

// Effect is a re-executable unit of work.
//
// Running an effect records every observed value it reads; writing any of
// those values later notifies the effect. A notified effect either runs again
// or, if it was created with a scheduler, hands the decision to the scheduler.
type Effect struct {
	id uint64

	// fn is the effect body.
	fn func() any

	// scheduler, when set, is called on notification instead of Run.
	scheduler func()

	// allowRecurse lets a running effect be re-run by its own writes.
	allowRecurse bool

	// deps are the dependency sets this effect joined during its last run.
	deps []*dep

	// running counts in-progress Run calls (more than one when recursing).
	running int

	stopped bool
}

// EffectOption configures an Effect.
type EffectOption func(*Effect)

// WithScheduler makes notifications call fn instead of re-running the effect.
// fn decides whether and when to call Run.
func WithScheduler(fn func()) EffectOption {
	return func(e *Effect) {
		e.scheduler = fn
	}
}

// AllowRecurse lets an effect without a scheduler be re-run by a write it
// performs itself. Without it such writes are ignored for the running effect.
func AllowRecurse() EffectOption {
	return func(e *Effect) {
		e.allowRecurse = true
	}
}

// NewEffect creates an effect for fn. The effect does not run until Run is
// called. The current Owner, if any, stops the effect when it is disposed.
func NewEffect(fn func() any, opts ...EffectOption) *Effect {
	e := &Effect{
		id: effectIDs.Add(1),
		fn: fn,
	}
	for _, opt := range opts {
		opt(e)
	}
	if o := CurrentOwner(); o != nil {
		o.own(e)
	}
	return e
}

// ID returns the unique identifier for this effect.
func (e *Effect) ID() uint64 {
	return e.id
}

// Run executes the body as the active effect and returns its result.
//
// Dependencies from the previous run are dropped first, so after Run the
// effect is subscribed to exactly what this run read. The previously active
// effect is restored on every exit path, including panics.
func (e *Effect) Run() any {
	if e.stopped {
		restore := enter(nil)
		defer restore()
		return e.fn()
	}

	e.clearDeps()

	restore := enter(e)
	e.running++
	defer func() {
		e.running--
		restore()
	}()

	return e.fn()
}

// Running reports whether the effect body is currently executing.
func (e *Effect) Running() bool {
	return e.running > 0
}

// Stop unsubscribes the effect from everything it depends on. A stopped
// effect is never notified again; calling Run still executes the body, untracked.
func (e *Effect) Stop() {
	if e.stopped {
		return
	}
	e.stopped = true
	e.clearDeps()
}

// Stopped reports whether Stop has been called.
func (e *Effect) Stopped() bool {
	return e.stopped
}

// DepCount returns the number of dependency sets the effect belongs to.
func (e *Effect) DepCount() int {
	return len(e.deps)
}

// notify is called by Store.Trigger.
func (e *Effect) notify() {
	if e.stopped {
		return
	}
	if e.scheduler != nil {
		e.scheduler()
		return
	}
	if e.running > 0 && !e.allowRecurse {
		return
	}
	e.Run()
}

func (e *Effect) clearDeps() {
	deps := e.deps
	e.deps = nil
	for _, d := range deps {
		d.store.untrack(d, e)
	}
}
