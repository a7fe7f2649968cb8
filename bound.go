package valord

import (
	"cmp"

	"github.com/amp-labs/valord/orderindex"
)

// Bound describes one endpoint of a Range or RangeMut query.
type Bound[T cmp.Ordered] = orderindex.Bound[T]

// Included returns a bound that admits order keys equal to value.
func Included[T cmp.Ordered](value T) Bound[T] {
	return orderindex.Included(value)
}

// Excluded returns a bound that rejects order keys equal to value.
func Excluded[T cmp.Ordered](value T) Bound[T] {
	return orderindex.Excluded(value)
}

// Unbounded returns a bound that admits every order key.
func Unbounded[T cmp.Ordered]() Bound[T] {
	return orderindex.Unbounded[T]()
}
