// Package reactive implements fine-grained dependency tracking.
//
// Observed values (Map, Record, List, Ref, Computed) record which Effect is
// reading them and notify exactly those effects when they are written. There
// is no explicit subscription API: an Effect discovers its dependencies by
// running.
//
// # Core Types
//
// Effect is the re-executable unit of work. Its Run method installs it as the
// active effect for the calling goroutine, runs its body, and restores the
// previously active effect, so effects nest.
//
// Store is the dependency table: Handle -> key -> ordered set of effects.
// Every observed value receives a Handle when it is created; the store never
// references the observed value itself.
//
// # Example
//
//	count := reactive.NewRef(0)
//	stop := reactive.WatchEffect(func() {
//	    fmt.Println("count is", count.Get())
//	})
//	count.Set(1) // prints "count is 1"
//	stop()
//
// # Watching
//
// Watch builds an effect from one or more sources and calls back only when
// the derived value changes:
//
//	stop, err := reactive.Watch(count, func(newValue, oldValue any) {
//	    fmt.Println(oldValue, "->", newValue)
//	}, reactive.Immediate())
//
// Execution is synchronous: a write returns only after every dependent effect
// (and everything those effects trigger) has run.
package reactive
