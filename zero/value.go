// Package zero provides the zero value of a generic type parameter.
package zero

// Value returns the zero value for type T.
// Useful where a generic function must produce "nothing", e.g. the
// not-found half of a (value, ok) return or a default entry value.
func Value[T any]() T {
	var zeroVal T

	return zeroVal
}
