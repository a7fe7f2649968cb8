package valord_test

import (
	"testing"

	"github.com/amp-labs/valord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_Entry(t *testing.T) {
	t.Parallel()

	t.Run("or insert installs on a vacant key", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()

		entry := m.Entry("a")
		assert.False(t, entry.IsOccupied())

		entry.OrInsert(1)
		assert.True(t, entry.IsOccupied())
		entry.Release()

		assert.Equal(t, 1, m.Len())

		v, ok := m.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 1, v)
	})

	t.Run("or insert keeps an existing value", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()
		m.Insert("a", 1)

		entry := m.Entry("a")
		entry.OrInsert(99)
		assert.Equal(t, 1, entry.Value())
		entry.Release()

		assert.Equal(t, 1, m.Len())

		v, _ := m.Get("a")
		assert.Equal(t, 1, v)
	})

	t.Run("or insert with calls the producer only when vacant", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()
		m.Insert("a", 1)

		called := false

		entry := m.Entry("a")
		entry.OrInsertWith(func() int {
			called = true

			return 99
		})
		entry.Release()

		assert.False(t, called)

		entry = m.Entry("b")
		entry.OrInsertWith(func() int { return 7 })
		entry.Release()

		v, _ := m.Get("b")
		assert.Equal(t, 7, v)
	})

	t.Run("or insert with key sees the entry's key", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, string]()

		entry := m.Entry("job")
		entry.OrInsertWithKey(func(key string) string { return "value for " + key })
		entry.Release()

		v, _ := m.Get("job")
		assert.Equal(t, "value for job", v)
	})

	t.Run("or default installs the zero value", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()

		entry := m.Entry("a")
		entry.OrDefault()
		entry.Release()

		v, ok := m.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 0, v)
	})

	t.Run("and modify chains into or insert", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()

		// Vacant: the modify closure must not run.
		entry := m.Entry("a")
		entry.AndModify(func(v *int) { *v += 10 }).OrInsert(1)
		entry.Release()

		v, _ := m.Get("a")
		assert.Equal(t, 1, v)

		// Occupied: it must.
		entry = m.Entry("a")
		entry.AndModify(func(v *int) { *v += 10 }).OrInsert(1)
		entry.Release()

		v, _ = m.Get("a")
		assert.Equal(t, 11, v)
	})

	t.Run("released vacant entry consumes nothing", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()

		for range 5 {
			entry := m.Entry("never-written")
			entry.Release()
		}

		assert.Equal(t, 0, m.Len())

		// The reserved slot is still usable by the eventual write.
		entry := m.Entry("never-written")
		entry.OrInsert(4)
		entry.Release()

		assert.Equal(t, 1, m.Len())
	})
}

func TestMap_GetMut(t *testing.T) {
	t.Parallel()

	t.Run("commit on release re-sorts the value", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()
		m.Insert("a", 1)
		m.Insert("b", 2)

		entry, ok := m.GetMut("a")
		require.True(t, ok)
		entry.Update(func(v *int) { *v = 9 })
		entry.Release()

		assert.Equal(t, []valord.Pair[string, int]{
			{Key: "b", Value: 2},
			{Key: "a", Value: 9},
		}, collect(m))
	})

	t.Run("untouched handle leaves the map as it was", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()
		m.Insert("a", 1)
		m.Insert("b", 2)

		before := collect(m)

		entry, ok := m.GetMut("a")
		require.True(t, ok)
		entry.Release()

		assert.Equal(t, before, collect(m))
	})

	t.Run("reports absence", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()

		_, ok := m.GetMut("missing")
		assert.False(t, ok)
	})

	t.Run("set overwrites through the handle", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()
		m.Insert("a", 1)

		entry, _ := m.GetMut("a")
		entry.Set(5)
		assert.Equal(t, 5, entry.Value())
		entry.Release()

		last := m.Last()
		require.Len(t, last, 1)
		assert.Equal(t, valord.Pair[string, int]{Key: "a", Value: 5}, last[0])
	})
}

func TestMap_Modify(t *testing.T) {
	t.Parallel()

	t.Run("modifies and re-sorts in one call", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()
		m.Insert("a", 1)
		m.Insert("b", 2)

		ok := m.Modify("a", func(v *int) { *v = 3 })
		assert.True(t, ok)

		assert.Equal(t, []valord.Pair[string, int]{
			{Key: "b", Value: 2},
			{Key: "a", Value: 3},
		}, collect(m))
	})

	t.Run("reports absence without calling fn", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()

		called := false
		ok := m.Modify("missing", func(v *int) { called = true })

		assert.False(t, ok)
		assert.False(t, called)
	})
}

func TestEntry_UsageViolations(t *testing.T) {
	t.Parallel()

	t.Run("second open handle panics", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()
		m.Insert("a", 1)

		entry, _ := m.GetMut("a")
		defer entry.Release()

		assert.Panics(t, func() {
			m.Entry("b")
		})
	})

	t.Run("mutating while a handle is open panics", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()
		m.Insert("a", 1)

		entry, _ := m.GetMut("a")
		defer entry.Release()

		assert.Panics(t, func() {
			m.Insert("b", 2)
		})
		assert.Panics(t, func() {
			m.Remove("a")
		})
	})

	t.Run("ordered reads while a handle is open panic", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()
		m.Insert("a", 1)

		entry, _ := m.GetMut("a")
		defer entry.Release()

		assert.Panics(t, func() {
			m.First()
		})
	})

	t.Run("use after release panics", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()
		m.Insert("a", 1)

		entry, _ := m.GetMut("a")
		entry.Release()

		assert.Panics(t, func() {
			entry.Value()
		})
	})

	t.Run("value on a vacant entry panics", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()

		entry := m.Entry("a")
		defer entry.Release()

		assert.Panics(t, func() {
			entry.Value()
		})
	})

	t.Run("release is idempotent", func(t *testing.T) {
		t.Parallel()

		m := valord.NewOrdered[string, int]()
		m.Insert("a", 1)

		entry, _ := m.GetMut("a")
		entry.Release()
		entry.Release()

		// The map is fully usable again.
		m.Insert("b", 2)
		assert.Equal(t, 2, m.Len())
	})
}
