// Package slots implements stable-index storage of key-value pairs with
// tombstone-and-recycle semantics. Each pair lives in a slot identified by a
// non-negative integer index that never changes while the pair is present.
// Removing a pair tombstones its slot and queues the index on a FIFO free
// list; the oldest freed slot is reused first. Storage grows but never
// shrinks, so indices handed out to callers stay valid as positions.
//
// The package has no ordering knowledge of its own. Callers that keep a
// secondary index keyed by slot index (see the valord root package) rely on
// the stability contract here.
package slots

import "github.com/amp-labs/valord/zero"

// slot holds either an occupied key-value pair or a tombstone.
type slot[K comparable, V any] struct {
	key      K
	value    V
	occupied bool
}

// Store is a slot arena with a primary key index and a FIFO free list.
//
// Invariants maintained here:
//   - every index on the free list refers to a tombstoned slot;
//   - the primary index covers exactly the occupied slots;
//   - Len() == Cap() - FreeLen().
//
// The zero Store is not usable; construct with New.
type Store[K comparable, V any] struct {
	slots []slot[K, V]
	free  []int // FIFO: reuse pops from the front, removal pushes to the back
	byKey map[K]int
}

// New creates an empty Store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		byKey: make(map[K]int),
	}
}

// Len returns the number of occupied slots.
func (s *Store[K, V]) Len() int {
	return len(s.byKey)
}

// Cap returns the total number of slots ever allocated, occupied or not.
func (s *Store[K, V]) Cap() int {
	return len(s.slots)
}

// FreeLen returns the length of the free list.
func (s *Store[K, V]) FreeLen() int {
	return len(s.free)
}

// IndexOf returns the slot index currently holding key.
func (s *Store[K, V]) IndexOf(key K) (int, bool) {
	index, ok := s.byKey[key]

	return index, ok
}

// Get returns the value stored under key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	index, ok := s.byKey[key]
	if !ok {
		return zero.Value[V](), false
	}

	return s.slots[index].value, true
}

// GetByIndex returns the pair held by the slot at index.
// Reports false for tombstoned or out-of-range indices.
func (s *Store[K, V]) GetByIndex(index int) (K, V, bool) {
	if index < 0 || index >= len(s.slots) || !s.slots[index].occupied {
		return zero.Value[K](), zero.Value[V](), false
	}

	return s.slots[index].key, s.slots[index].value, true
}

// ValueAt returns a pointer to the value in the occupied slot at index.
// The pointer stays valid only until the next call that can grow the arena.
// Panics if the slot is not occupied; callers check occupancy first.
func (s *Store[K, V]) ValueAt(index int) *V {
	if index < 0 || index >= len(s.slots) || !s.slots[index].occupied {
		panic("slots: ValueAt on vacant slot")
	}

	return &s.slots[index].value
}

// KeyAt returns the key in the occupied slot at index.
// Panics if the slot is not occupied.
func (s *Store[K, V]) KeyAt(index int) K {
	if index < 0 || index >= len(s.slots) || !s.slots[index].occupied {
		panic("slots: KeyAt on vacant slot")
	}

	return s.slots[index].key
}

// Upsert writes the pair into a slot and returns its index.
// An existing key is overwritten in place, keeping its index. Otherwise the
// oldest free slot is recycled, or a fresh slot is appended when none are
// free. Reports whether an existing value was replaced.
func (s *Store[K, V]) Upsert(key K, value V) (index int, replaced bool) {
	if index, ok := s.byKey[key]; ok {
		s.slots[index].value = value

		return index, true
	}

	index = s.takeFreeSlot()
	s.slots[index] = slot[K, V]{key: key, value: value, occupied: true}
	s.byKey[key] = index

	return index, false
}

// Take removes the pair stored under key, tombstones its slot, and queues
// the index at the back of the free list.
func (s *Store[K, V]) Take(key K) (K, V, bool) {
	index, ok := s.byKey[key]
	if !ok {
		return zero.Value[K](), zero.Value[V](), false
	}

	removed := s.slots[index]
	s.slots[index] = zero.Value[slot[K, V]]() // tombstone; drop references for GC
	s.free = append(s.free, index)
	delete(s.byKey, key)

	return removed.key, removed.value, true
}

// Reserve returns the index of the slot the next vacant insertion will use,
// without consuming it. If the free list is empty a fresh tombstoned slot is
// appended and its index pushed onto the free-list front, so repeated calls
// without an intervening CommitReserved return the same index.
func (s *Store[K, V]) Reserve() int {
	if len(s.free) > 0 {
		return s.free[0]
	}

	index := len(s.slots)
	s.slots = append(s.slots, zero.Value[slot[K, V]]())
	s.free = append([]int{index}, s.free...)

	return index
}

// CommitReserved consumes the reservation returned by Reserve, writing the
// pair into the slot. Panics if index is not the current reservation; the
// reservation protocol admits exactly one outstanding reserved slot.
func (s *Store[K, V]) CommitReserved(index int, key K, value V) {
	if len(s.free) == 0 || s.free[0] != index {
		panic("slots: CommitReserved index is not the reserved slot")
	}

	s.free = s.free[1:]
	s.slots[index] = slot[K, V]{key: key, value: value, occupied: true}
	s.byKey[key] = index
}

// Each calls fn for every occupied slot in ascending index order,
// stopping early if fn returns false.
func (s *Store[K, V]) Each(fn func(index int, key K, value V) bool) {
	for i := range s.slots {
		if !s.slots[i].occupied {
			continue
		}

		if !fn(i, s.slots[i].key, s.slots[i].value) {
			return
		}
	}
}

// Clear removes every pair and forgets all slots, including free ones.
func (s *Store[K, V]) Clear() {
	s.slots = nil
	s.free = nil
	s.byKey = make(map[K]int)
}

// takeFreeSlot pops the front of the free list, growing the arena when the
// list is empty.
func (s *Store[K, V]) takeFreeSlot() int {
	if len(s.free) > 0 {
		index := s.free[0]
		s.free = s.free[1:]

		return index
	}

	s.slots = append(s.slots, zero.Value[slot[K, V]]())

	return len(s.slots) - 1
}
