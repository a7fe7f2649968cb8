package orderindex

import "cmp"

// boundKind distinguishes the three range endpoint variants.
type boundKind uint8

const (
	unbounded boundKind = iota
	included
	excluded
)

// Bound describes one endpoint of an order-key range.
// Construct with Included, Excluded, or Unbounded.
type Bound[T cmp.Ordered] struct {
	value T
	kind  boundKind
}

// Included returns a bound that admits keys equal to value.
func Included[T cmp.Ordered](value T) Bound[T] {
	return Bound[T]{value: value, kind: included}
}

// Excluded returns a bound that rejects keys equal to value.
func Excluded[T cmp.Ordered](value T) Bound[T] {
	return Bound[T]{value: value, kind: excluded}
}

// Unbounded returns a bound that admits every key.
func Unbounded[T cmp.Ordered]() Bound[T] {
	return Bound[T]{}
}

// admitsLower reports whether key satisfies the bound as a lower endpoint.
func (b Bound[T]) admitsLower(key T) bool {
	switch b.kind {
	case included:
		return key >= b.value
	case excluded:
		return key > b.value
	default:
		return true
	}
}

// admitsUpper reports whether key satisfies the bound as an upper endpoint.
func (b Bound[T]) admitsUpper(key T) bool {
	switch b.kind {
	case included:
		return key <= b.value
	case excluded:
		return key < b.value
	default:
		return true
	}
}
