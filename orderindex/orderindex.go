// Package orderindex maintains a sorted mapping from order key to the set of
// slot indices currently holding a value with that key. It is the secondary
// index of the valord container: the slot store owns the data, this index
// owns the ordering. Buckets are created on first insert and pruned as soon
// as their last slot index is removed, so an empty bucket never persists.
//
// The index is backed by a github.com/google/btree B-tree of bucket nodes.
// Within a bucket, slot indices are kept in ascending order, which makes
// iteration over ties deterministic without promising any particular
// relative order to callers.
package orderindex

import (
	"cmp"
	"slices"

	"github.com/google/btree"
)

// btreeDegree is the branching factor of the backing B-tree.
const btreeDegree = 16

// bucket is one order-key node: the set of slot indices whose value
// currently projects to key. Indices are unique and sorted ascending.
type bucket[T cmp.Ordered] struct {
	key   T
	slots []int
}

// Index is a sorted order-key to slot-index-set mapping.
// The zero Index is not usable; construct with New.
type Index[T cmp.Ordered] struct {
	tree *btree.BTreeG[*bucket[T]]
}

// New creates an empty Index.
func New[T cmp.Ordered]() *Index[T] {
	return &Index[T]{
		tree: btree.NewG(btreeDegree, func(a, b *bucket[T]) bool {
			return a.key < b.key
		}),
	}
}

// Len returns the number of non-empty buckets (distinct order keys).
func (ix *Index[T]) Len() int {
	return ix.tree.Len()
}

// Insert adds a slot index to the bucket for orderKey, creating the bucket
// if absent. Inserting an index already present in the bucket is a no-op.
func (ix *Index[T]) Insert(orderKey T, slot int) {
	node, ok := ix.tree.Get(&bucket[T]{key: orderKey})
	if !ok {
		ix.tree.ReplaceOrInsert(&bucket[T]{key: orderKey, slots: []int{slot}})

		return
	}

	at, present := slices.BinarySearch(node.slots, slot)
	if present {
		return
	}

	node.slots = slices.Insert(node.slots, at, slot)
}

// Remove removes a slot index from the bucket for orderKey, deleting the
// bucket once its slot set is empty. Removing a pairing that is not present
// is a no-op; re-synchronization paths rely on that tolerance.
func (ix *Index[T]) Remove(orderKey T, slot int) {
	node, ok := ix.tree.Get(&bucket[T]{key: orderKey})
	if !ok {
		return
	}

	at, present := slices.BinarySearch(node.slots, slot)
	if !present {
		return
	}

	node.slots = slices.Delete(node.slots, at, at+1)
	if len(node.slots) == 0 {
		ix.tree.Delete(node)
	}
}

// Min returns the minimum order key and its slot indices.
func (ix *Index[T]) Min() (T, []int, bool) {
	node, ok := ix.tree.Min()
	if !ok {
		var zeroKey T

		return zeroKey, nil, false
	}

	return node.key, node.slots, true
}

// Max returns the maximum order key and its slot indices.
func (ix *Index[T]) Max() (T, []int, bool) {
	node, ok := ix.tree.Max()
	if !ok {
		var zeroKey T

		return zeroKey, nil, false
	}

	return node.key, node.slots, true
}

// MaxKey returns just the maximum order key, if any.
func (ix *Index[T]) MaxKey() (T, bool) {
	key, _, ok := ix.Max()

	return key, ok
}

// Ascend walks the buckets in ascending order-key order,
// stopping early if fn returns false.
func (ix *Index[T]) Ascend(fn func(orderKey T, slots []int) bool) {
	ix.tree.Ascend(func(node *bucket[T]) bool {
		return fn(node.key, node.slots)
	})
}

// Descend walks the buckets in descending order-key order,
// stopping early if fn returns false.
func (ix *Index[T]) Descend(fn func(orderKey T, slots []int) bool) {
	ix.tree.Descend(func(node *bucket[T]) bool {
		return fn(node.key, node.slots)
	})
}

// AscendRange walks, in ascending order, the buckets whose order key
// satisfies both bounds, stopping early if fn returns false.
func (ix *Index[T]) AscendRange(lower, upper Bound[T], fn func(orderKey T, slots []int) bool) {
	visit := func(node *bucket[T]) bool {
		if !lower.admitsLower(node.key) {
			// Only the excluded lower endpoint itself lands here; keep going.
			return true
		}

		if !upper.admitsUpper(node.key) {
			return false
		}

		return fn(node.key, node.slots)
	}

	if lower.kind == unbounded {
		ix.tree.Ascend(visit)

		return
	}

	ix.tree.AscendGreaterOrEqual(&bucket[T]{key: lower.value}, visit)
}

// Clear removes every bucket.
func (ix *Index[T]) Clear() {
	ix.tree.Clear(false)
}
