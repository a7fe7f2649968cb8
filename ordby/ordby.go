// Package ordby defines the ordering projection used by value-ordered
// containers. A value type opts in by implementing [OrdBy], exposing a
// comparable "order key" derived from the value. The order key determines
// where the value sorts; it never owns or copies the value itself.
//
// Example:
//
//	type Person struct {
//	    Name string
//	    Age  int
//	}
//
//	// People sort by age.
//	func (p Person) OrdBy() int {
//	    return p.Age
//	}
//
// Naturally ordered types (ints, strings, ...) don't need a wrapper:
// use [github.com/amp-labs/valord.NewOrdered], which projects each value
// onto itself.
package ordby

import "cmp"

// OrdBy is implemented by value types that expose an order key of type T.
// The projection must be pure: calling OrdBy twice on the same value without
// mutating it in between must return equal keys. Containers recompute the
// projection after every mutation, so a cheap accessor is expected here,
// not a computation.
type OrdBy[T cmp.Ordered] interface {
	OrdBy() T
}
