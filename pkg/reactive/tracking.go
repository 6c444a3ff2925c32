package reactive

import (
	"sync"

	"github.com/petermattis/goid"
)

// trackingContext holds the reactive state for a goroutine.
type trackingContext struct {
	// active is the effect currently collecting dependencies.
	// nil means reads are not tracked.
	active *Effect

	// owner receives the effects created on this goroutine.
	owner *Owner

	// depth counts the nested enter calls on this goroutine. The context is
	// dropped when it returns to zero.
	depth int
}

// trackingContexts stores per-goroutine tracking contexts, keyed by goroutine id.
var trackingContexts sync.Map

// getTrackingContext returns the tracking context for the current goroutine,
// creating it if needed.
func getTrackingContext(gid int64) *trackingContext {
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}
	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// currentContext returns the tracking context of this goroutine, or nil.
func currentContext() *trackingContext {
	if ctx, ok := trackingContexts.Load(goid.Get()); ok {
		return ctx.(*trackingContext)
	}
	return nil
}

// activeEffect returns the effect collecting dependencies on this goroutine.
func activeEffect() *Effect {
	if ctx := currentContext(); ctx != nil {
		return ctx.active
	}
	return nil
}

// enter makes e the active effect for the current goroutine and returns the
// function that restores the previous one. Callers must defer the restore so
// it runs on panics too.
func enter(e *Effect) (restore func()) {
	gid := goid.Get()
	ctx := getTrackingContext(gid)
	prev := ctx.active
	ctx.active = e
	ctx.depth++
	return func() {
		ctx.active = prev
		leave(gid, ctx)
	}
}

// enterOwner makes o the current owner, like enter does for effects.
func enterOwner(o *Owner) (restore func()) {
	gid := goid.Get()
	ctx := getTrackingContext(gid)
	prev := ctx.owner
	ctx.owner = o
	ctx.depth++
	return func() {
		ctx.owner = prev
		leave(gid, ctx)
	}
}

func leave(gid int64, ctx *trackingContext) {
	ctx.depth--
	if ctx.depth == 0 {
		trackingContexts.Delete(gid)
	}
}

// CurrentEffect returns the effect that is tracking reads on the calling
// goroutine, or nil.
func CurrentEffect() *Effect {
	return activeEffect()
}

// Untracked runs fn without tracking reads as dependencies of the current effect.
func Untracked(fn func()) {
	restore := enter(nil)
	defer restore()
	fn()
}

// UntrackedValue is Untracked for functions that produce a value.
func UntrackedValue[T any](fn func() T) T {
	restore := enter(nil)
	defer restore()
	return fn()
}
