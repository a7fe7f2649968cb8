package valord

import (
	"cmp"

	"github.com/amp-labs/valord/optional"
	"github.com/amp-labs/valord/zero"
)

// Entry is a scoped, exclusive accessor to one slot. An occupied entry's
// slot is detached from the order index for the handle's whole scope, so
// the value can be mutated freely without the index watching; Release
// recomputes the order key and reattaches. A vacant entry holds an
// idempotent reservation of the slot the key would occupy, consumed only
// when one of the OrInsert variants writes through it.
//
// At most one Entry may be open per map. Release must be called on every
// path, typically with defer:
//
//	entry := m.Entry("job")
//	defer entry.Release()
//	entry.AndModify(func(j *Job) { j.Attempts++ }).OrInsert(newJob())
//
// Entries yielded by IterMut and friends are released by the iterator
// between elements; releasing them in the loop body as well is harmless.
type Entry[T cmp.Ordered, K comparable, V any] struct {
	m        *Map[T, K, V]
	index    int
	key      K
	occupied bool
	released bool

	// prevMax is the maximum order key snapshotted before this slot was
	// detached; Release publishes only a strictly greater reattachment.
	prevMax optional.Value[T]
}

// Entry returns a handle for key: occupied and detached from the order
// index if key is present, vacant with a reserved slot otherwise.
// Repeatedly requesting and releasing a vacant entry without writing
// consumes no slots.
func (m *Map[T, K, V]) Entry(key K) *Entry[T, K, V] {
	m.ensureClosed("Entry")

	if index, ok := m.store.IndexOf(key); ok {
		return m.openAt(index)
	}

	entry := &Entry[T, K, V]{
		m:       m,
		index:   m.store.Reserve(),
		key:     key,
		prevMax: m.currentMax(),
	}
	m.open = entry

	return entry
}

// GetMut returns an occupied handle for key, or reports absence.
// Unlike Entry it never reserves a slot.
func (m *Map[T, K, V]) GetMut(key K) (*Entry[T, K, V], bool) {
	m.ensureClosed("GetMut")

	index, ok := m.store.IndexOf(key)
	if !ok {
		return nil, false
	}

	return m.openAt(index), true
}

// openAt detaches the occupied slot at index and returns its open handle.
// Callers have already checked that no other handle is open.
func (m *Map[T, K, V]) openAt(index int) *Entry[T, K, V] {
	prevMax := m.currentMax()
	m.index.Remove(m.proj(*m.store.ValueAt(index)), index)

	entry := &Entry[T, K, V]{
		m:        m,
		index:    index,
		key:      m.store.KeyAt(index),
		occupied: true,
		prevMax:  prevMax,
	}
	m.open = entry

	return entry
}

// Key returns the key this entry is bound to.
func (e *Entry[T, K, V]) Key() K {
	return e.key
}

// IsOccupied reports whether the entry holds a value. A vacant entry
// becomes occupied once an OrInsert variant or Set writes through it.
func (e *Entry[T, K, V]) IsOccupied() bool {
	e.ensureLive()

	return e.occupied
}

// Value returns the current value. Panics on a vacant entry.
func (e *Entry[T, K, V]) Value() V {
	e.ensureLive()

	if !e.occupied {
		panic("valord: Value on vacant entry")
	}

	return *e.m.store.ValueAt(e.index)
}

// Set writes value into the slot, installing it if the entry is vacant.
func (e *Entry[T, K, V]) Set(value V) *Entry[T, K, V] {
	e.ensureLive()

	if e.occupied {
		*e.m.store.ValueAt(e.index) = value
	} else {
		e.install(value)
	}

	return e
}

// Update applies fn to the value in place. Panics on a vacant entry.
func (e *Entry[T, K, V]) Update(fn func(value *V)) *Entry[T, K, V] {
	e.ensureLive()

	if !e.occupied {
		panic("valord: Update on vacant entry")
	}

	fn(e.m.store.ValueAt(e.index))

	return e
}

// AndModify applies fn to the value only if the entry is occupied, and
// returns the entry for chaining into an OrInsert variant.
func (e *Entry[T, K, V]) AndModify(fn func(value *V)) *Entry[T, K, V] {
	e.ensureLive()

	if e.occupied {
		fn(e.m.store.ValueAt(e.index))
	}

	return e
}

// OrInsert installs value if the entry is vacant. An occupied entry keeps
// its existing value.
func (e *Entry[T, K, V]) OrInsert(value V) *Entry[T, K, V] {
	e.ensureLive()

	if !e.occupied {
		e.install(value)
	}

	return e
}

// OrInsertWith installs the value produced by fn if the entry is vacant.
// fn is not called for an occupied entry.
func (e *Entry[T, K, V]) OrInsertWith(fn func() V) *Entry[T, K, V] {
	e.ensureLive()

	if !e.occupied {
		e.install(fn())
	}

	return e
}

// OrInsertWithKey installs the value produced by fn from the entry's key
// if the entry is vacant.
func (e *Entry[T, K, V]) OrInsertWithKey(fn func(key K) V) *Entry[T, K, V] {
	e.ensureLive()

	if !e.occupied {
		e.install(fn(e.key))
	}

	return e
}

// OrDefault installs the zero value of V if the entry is vacant.
func (e *Entry[T, K, V]) OrDefault() *Entry[T, K, V] {
	e.ensureLive()

	if !e.occupied {
		e.install(zero.Value[V]())
	}

	return e
}

// Release ends the entry's scope. An occupied entry recomputes its order
// key and reattaches to the order index, publishing the value if it rose
// above the maximum seen when the entry was opened. A vacant entry keeps
// its reservation unconsumed. Release is idempotent.
func (e *Entry[T, K, V]) Release() {
	if e.released {
		return
	}

	e.released = true
	e.m.open = nil

	if !e.occupied {
		return
	}

	value := *e.m.store.ValueAt(e.index)
	ord := e.m.proj(value)
	e.m.index.Insert(ord, e.index)

	entryCommitsTotal.WithLabelValues(e.m.name).Inc()

	e.m.publishIfRisen(e.prevMax, ord, value)
}

// install consumes the vacant entry's reservation.
func (e *Entry[T, K, V]) install(value V) {
	e.m.store.CommitReserved(e.index, e.key, value)
	e.occupied = true

	insertsTotal.WithLabelValues(e.m.name).Inc()
	sizeGauge.WithLabelValues(e.m.name).Set(float64(e.m.store.Len()))
}

func (e *Entry[T, K, V]) ensureLive() {
	if e.released {
		panic("valord: use of released entry")
	}
}
