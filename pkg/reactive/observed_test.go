package reactive

import (
	"math"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		raw := map[string]any{"a": 1}
		first := Observe(raw)
		assert.Same(t, first, Observe(first))
		assert.Same(t, first, Observe(raw), "same raw map keeps its wrapper")
		runtime.KeepAlive(first)
	})

	t.Run("non-structured values pass through", func(t *testing.T) {
		assert.Equal(t, 3, Observe(3))
		assert.Equal(t, "x", Observe("x"))
		assert.Nil(t, Observe(nil))
	})

	t.Run("slices become lists", func(t *testing.T) {
		l, ok := Observe([]any{1, 2}).(*List)
		require.True(t, ok)
		assert.Equal(t, 2, l.Len())
	})

	t.Run("nested values are wrapped lazily", func(t *testing.T) {
		inner := map[string]any{"n": 1}
		raw := map[string]any{"inner": inner}
		rec := NewRecord(raw)

		_, isRaw := raw["inner"].(map[string]any)
		assert.True(t, isRaw, "wrapping must not rewrite the raw map")

		a := rec.Get("inner").(*Record)
		b := rec.Get("inner").(*Record)
		assert.Equal(t, a.Handle(), b.Handle(), "repeated reads observe the same target")

		runs := 0
		NewEffect(func() any {
			runs++
			return rec.Get("inner").(*Record).Get("n")
		}).Run()
		b.Set("n", 2)
		assert.Equal(t, 2, runs)
		assert.Equal(t, 2, inner["n"])
	})

	t.Run("nested wrappers live as long as their parent", func(t *testing.T) {
		rec := NewRecord(map[string]any{
			"inner": map[string]any{"n": 1},
			"rows":  []any{map[string]any{"n": 1}},
		})

		runs := 0
		NewEffect(func() any {
			runs++
			rec.Get("inner").(*Record).Get("n")
			return rec.Get("rows").(*List).Get(0).(*Record).Get("n")
		}).Run()

		for range 5 {
			runtime.GC()
		}
		rec.Get("inner").(*Record).Set("n", 2)
		assert.Equal(t, 2, runs, "write through a fresh read of the nested map")

		for range 5 {
			runtime.GC()
		}
		rec.Get("rows").(*List).Get(0).(*Record).Set("n", 2)
		assert.Equal(t, 3, runs, "write through a map nested in a list")
	})

	t.Run("replacing a nested map drops its cached wrapper", func(t *testing.T) {
		rec := NewRecord(map[string]any{"inner": map[string]any{"n": 1}})
		before := rec.Get("inner").(*Record)

		rec.Set("inner", map[string]any{"n": 5})
		after := rec.Get("inner").(*Record)
		assert.NotEqual(t, before.Handle(), after.Handle())
		assert.Equal(t, 5, after.Get("n"))

		rec.Raw()["inner"] = map[string]any{"n": 9}
		assert.Equal(t, 9, rec.Get("inner").(*Record).Get("n"), "raw rewrites are picked up")
	})

	t.Run("reads without an effect record nothing", func(t *testing.T) {
		s := NewStore()
		rec := NewRecordIn(s, map[string]any{"a": map[string]any{}})
		_, ok := rec.Get("a").(*Record)
		assert.True(t, ok)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("unreachable wrappers release their entries", func(t *testing.T) {
		s := NewStore()
		func() {
			rec := NewRecordIn(s, map[string]any{"a": 1})
			e := NewEffect(func() any { return rec.Get("a") })
			e.Run()
			e.Stop()
			rec.Get("a")
		}()
		assert.Eventually(t, func() bool {
			runtime.GC()
			s.mu.Lock()
			defer s.mu.Unlock()
			return len(s.wrappers) == 0
		}, time.Second, 10*time.Millisecond)
	})
}

func TestRecord(t *testing.T) {
	t.Run("adding a key notifies iteration", func(t *testing.T) {
		rec := NewRecord(nil)
		var sizes []int
		NewEffect(func() any {
			sizes = append(sizes, rec.Len())
			return nil
		}).Run()

		rec.Set("a", 1)
		rec.Set("a", 2) // existing key: no change in size
		rec.Delete("a")
		assert.Equal(t, []int{0, 1, 0}, sizes)
	})

	t.Run("keys are sorted", func(t *testing.T) {
		rec := NewRecord(map[string]any{"b": 1, "a": 2, "c": 3})
		assert.Equal(t, []any{"a", "b", "c"}, rec.Keys())

		var visited []string
		rec.Range(func(k string, v any) bool {
			visited = append(visited, k)
			return k != "b"
		})
		assert.Equal(t, []string{"a", "b"}, visited)
	})

	t.Run("capability interface", func(t *testing.T) {
		var o Observed = NewRecord(map[string]any{"x": 1})
		assert.Equal(t, 1, o.Read("x"))
		assert.Nil(t, o.Read(42), "wrong key type reads nil")
		assert.True(t, o.Write("x", 2))
		assert.False(t, o.Write("x", 2))
		assert.False(t, o.Write(42, 1))
	})

	t.Run("any-keyed maps", func(t *testing.T) {
		m := NewMap(map[any]any{1: "one"})
		runs := 0
		NewEffect(func() any {
			runs++
			return m.Get(1)
		}).Run()
		m.Set(1, "uno")
		m.Set(2, "dos")
		assert.Equal(t, 2, runs)
		v, ok := m.Lookup(2)
		assert.True(t, ok)
		assert.Equal(t, "dos", v)
		assert.True(t, m.Has(1))
	})
}

func TestList(t *testing.T) {
	t.Run("index and length tracked separately", func(t *testing.T) {
		l := NewList([]any{"a", "b"})
		var lenRuns, firstRuns int
		NewEffect(func() any {
			lenRuns++
			return l.Len()
		}).Run()
		NewEffect(func() any {
			firstRuns++
			return l.Get(0)
		}).Run()

		l.Set(1, "B")
		assert.Equal(t, 1, lenRuns)
		assert.Equal(t, 1, firstRuns)

		l.Set(0, "A")
		assert.Equal(t, 2, firstRuns)

		l.Append("c")
		assert.Equal(t, 2, lenRuns)
		assert.Equal(t, []any{"A", "B", "c"}, l.Values())

		l.Truncate(1)
		assert.Equal(t, 3, lenRuns)
		assert.Equal(t, 1, l.Len())
	})

	t.Run("set at length appends", func(t *testing.T) {
		l := NewList(nil)
		assert.True(t, l.Set(0, "x"))
		assert.Equal(t, 1, l.Len())
		assert.Panics(t, func() { l.Set(5, "y") })
		assert.False(t, l.Write(5, "y"))
	})

	t.Run("nested lists are bound to their slot", func(t *testing.T) {
		raw := map[string]any{"items": []any{1}}
		rec := NewRecord(raw)
		items := rec.Get("items").(*List)
		assert.Same(t, items, rec.Get("items"))

		var seen []int
		NewEffect(func() any {
			seen = append(seen, rec.Get("items").(*List).Len())
			return nil
		}).Run()

		items.Append(2, 3)
		assert.Equal(t, []int{1, 3}, seen)
		assert.Len(t, raw["items"], 3, "append is visible in the raw map")

		grid := NewList([]any{[]any{0}})
		row := grid.Get(0).(*List)
		row.Set(0, 9)
		assert.Equal(t, 9, grid.Get(0).(*List).Get(0))
	})
}

func TestRef(t *testing.T) {
	t.Run("get set update", func(t *testing.T) {
		r := NewRef(1)
		var seen []int
		NewEffect(func() any {
			seen = append(seen, r.Get())
			return nil
		}).Run()
		r.Set(1)
		r.Update(func(v int) int { return v + 1 })
		assert.Equal(t, []int{1, 2}, seen)
		assert.Equal(t, 2, r.Peek())
	})

	t.Run("custom equality", func(t *testing.T) {
		r := NewRef([]int{1}).WithEquals(func(a, b []int) bool { return len(a) == len(b) })
		runs := 0
		NewEffect(func() any {
			runs++
			return r.Get()
		}).Run()
		r.Set([]int{2})
		assert.Equal(t, 1, runs)
		r.Set([]int{1, 2})
		assert.Equal(t, 2, runs)
	})
}

func TestComputed(t *testing.T) {
	count := NewRef(2)
	evals := 0
	double := NewComputed(func() int {
		evals++
		return count.Get() * 2
	})
	assert.Equal(t, 0, evals, "lazy until read")

	var seen []int
	NewEffect(func() any {
		seen = append(seen, double.Get())
		return nil
	}).Run()
	assert.Equal(t, 1, evals)
	_ = double.Get()
	assert.Equal(t, 1, evals, "cached")

	count.Set(3)
	assert.Equal(t, []int{4, 6}, seen)
	assert.Equal(t, 2, evals)

	double.Stop()
	count.Set(10)
	assert.Equal(t, 6, double.Get())
}

func TestSameValue(t *testing.T) {
	fn := func() {}
	m := map[string]any{}
	s := []int{1}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"different types", 1, int64(1), false},
		{"NaN", math.NaN(), math.NaN(), true},
		{"signed zeros", 0.0, math.Copysign(0, -1), false},
		{"positive zeros", 0.0, 0.0, true},
		{"nil", nil, nil, true},
		{"nil and value", nil, 0, false},
		{"same map", m, m, true},
		{"equal but distinct maps", map[string]any{}, map[string]any{}, false},
		{"same slice", s, s, true},
		{"resliced", s, s[:0], false},
		{"funcs", fn, fn, false},
		{"strings", "a", "a", true},
		{"structs", struct{ A int }{1}, struct{ A int }{1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameValue(tt.a, tt.b))
		})
	}
}
