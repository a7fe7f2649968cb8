package valord

import "iter"

// Iter iterates every pair in ascending order-key order. Pairs sharing an
// order key come out together, in no promised relative order. The sequence
// is lazy and restartable; mutating the map while ranging over it is a
// usage error, as it is for any Go map.
func (m *Map[T, K, V]) Iter() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.ensureClosed("Iter")

		m.index.Ascend(func(_ T, slotIndices []int) bool {
			return m.yieldPairs(slotIndices, yield)
		})
	}
}

// RevIter iterates every pair in descending order-key order; it is the
// exact reverse of Iter up to ordering within one bucket.
func (m *Map[T, K, V]) RevIter() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.ensureClosed("RevIter")

		m.index.Descend(func(_ T, slotIndices []int) bool {
			return m.yieldPairs(slotIndices, yield)
		})
	}
}

// Range iterates, in ascending order-key order, the pairs whose order key
// satisfies both bounds. It yields exactly what a linear scan filtered by
// the bounds would, just via the sorted index.
func (m *Map[T, K, V]) Range(lower, upper Bound[T]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.ensureClosed("Range")

		m.index.AscendRange(lower, upper, func(_ T, slotIndices []int) bool {
			return m.yieldPairs(slotIndices, yield)
		})
	}
}

// First returns every pair holding the minimum order key; ties all come
// back. Empty map, empty result.
func (m *Map[T, K, V]) First() []Pair[K, V] {
	m.ensureClosed("First")

	_, slotIndices, ok := m.index.Min()
	if !ok {
		return nil
	}

	return m.pairsAt(slotIndices)
}

// Last returns every pair holding the maximum order key.
func (m *Map[T, K, V]) Last() []Pair[K, V] {
	m.ensureClosed("Last")

	_, slotIndices, ok := m.index.Max()
	if !ok {
		return nil
	}

	return m.pairsAt(slotIndices)
}

// IterMut yields an open Entry for each pair in ascending order-key order.
// The set of slots to visit is snapshotted before the first yield, so
// mutating a value's order key mid-iteration never changes which entries
// are visited, only where they sort afterwards. Each entry is released
// when the loop body finishes with it; only one is open at a time.
func (m *Map[T, K, V]) IterMut() iter.Seq[*Entry[T, K, V]] {
	return func(yield func(*Entry[T, K, V]) bool) {
		m.ensureClosed("IterMut")

		m.yieldEntries(m.snapshotAscending(), yield)
	}
}

// RevIterMut is IterMut in descending order-key order.
func (m *Map[T, K, V]) RevIterMut() iter.Seq[*Entry[T, K, V]] {
	return func(yield func(*Entry[T, K, V]) bool) {
		m.ensureClosed("RevIterMut")

		m.yieldEntries(m.snapshotDescending(), yield)
	}
}

// RangeMut is IterMut restricted to pairs whose order key satisfies both
// bounds at snapshot time.
func (m *Map[T, K, V]) RangeMut(lower, upper Bound[T]) iter.Seq[*Entry[T, K, V]] {
	return func(yield func(*Entry[T, K, V]) bool) {
		m.ensureClosed("RangeMut")

		var snapshot []int

		m.index.AscendRange(lower, upper, func(_ T, slotIndices []int) bool {
			snapshot = append(snapshot, slotIndices...)

			return true
		})

		m.yieldEntries(snapshot, yield)
	}
}

// FirstMut yields an open Entry for each pair holding the minimum order
// key, one at a time.
func (m *Map[T, K, V]) FirstMut() iter.Seq[*Entry[T, K, V]] {
	return func(yield func(*Entry[T, K, V]) bool) {
		m.ensureClosed("FirstMut")

		_, slotIndices, ok := m.index.Min()
		if !ok {
			return
		}

		m.yieldEntries(append([]int(nil), slotIndices...), yield)
	}
}

// LastMut yields an open Entry for each pair holding the maximum order key.
func (m *Map[T, K, V]) LastMut() iter.Seq[*Entry[T, K, V]] {
	return func(yield func(*Entry[T, K, V]) bool) {
		m.ensureClosed("LastMut")

		_, slotIndices, ok := m.index.Max()
		if !ok {
			return
		}

		m.yieldEntries(append([]int(nil), slotIndices...), yield)
	}
}

// ReOrder rebuilds the order index from scratch by rescanning every
// occupied slot. It is the escape hatch for values whose order key can
// change through shared state the entry protocol never sees (a pointer
// field feeding OrdBy, say): such a change silently desynchronizes the
// index until ReOrder reconciles it.
func (m *Map[T, K, V]) ReOrder() {
	m.ensureClosed("ReOrder")

	m.index.Clear()

	m.store.Each(func(index int, _ K, value V) bool {
		m.index.Insert(m.proj(value), index)

		return true
	})

	reordersTotal.WithLabelValues(m.name).Inc()
	m.log.Debug("valord: order index rebuilt", "map", m.name, "size", m.store.Len())
}

// yieldPairs dereferences a bucket's slot indices through the slot store.
func (m *Map[T, K, V]) yieldPairs(slotIndices []int, yield func(K, V) bool) bool {
	for _, index := range slotIndices {
		key, value, ok := m.store.GetByIndex(index)
		if !ok {
			continue
		}

		if !yield(key, value) {
			return false
		}
	}

	return true
}

// yieldEntries opens handles one at a time over a pre-collected snapshot
// of slot indices, releasing each before the next is opened. Slots freed
// since the snapshot are skipped.
func (m *Map[T, K, V]) yieldEntries(snapshot []int, yield func(*Entry[T, K, V]) bool) {
	for _, index := range snapshot {
		if _, _, ok := m.store.GetByIndex(index); !ok {
			continue
		}

		entry := m.openAt(index)
		cont := yield(entry)
		entry.Release()

		if !cont {
			return
		}
	}
}

func (m *Map[T, K, V]) snapshotAscending() []int {
	var snapshot []int

	m.index.Ascend(func(_ T, slotIndices []int) bool {
		snapshot = append(snapshot, slotIndices...)

		return true
	})

	return snapshot
}

func (m *Map[T, K, V]) snapshotDescending() []int {
	var snapshot []int

	m.index.Descend(func(_ T, slotIndices []int) bool {
		snapshot = append(snapshot, slotIndices...)

		return true
	})

	return snapshot
}

func (m *Map[T, K, V]) pairsAt(slotIndices []int) []Pair[K, V] {
	pairs := make([]Pair[K, V], 0, len(slotIndices))

	for _, index := range slotIndices {
		if key, value, ok := m.store.GetByIndex(index); ok {
			pairs = append(pairs, Pair[K, V]{Key: key, Value: value})
		}
	}

	return pairs
}
