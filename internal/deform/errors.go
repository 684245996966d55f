package deform

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is returned when two stacks to be decomposed together
	// differ in (layers, rows, cols).
	ErrShapeMismatch = errors.New("deform: stack shapes differ")

	// ErrSingularGeometry is returned when the ascending and descending
	// geometries are too close to parallel to separate east from vertical.
	ErrSingularGeometry = errors.New("deform: singular viewing geometry")

	// ErrDateNotFound is returned when a source date cannot be located in a
	// merged axis.
	ErrDateNotFound = errors.New("deform: date not found in merged axis")

	// ErrUnsortedAxis is returned when a date axis is not strictly increasing.
	ErrUnsortedAxis = errors.New("deform: date axis not strictly increasing")

	// ErrStackShape is returned when stack data does not match its dimensions.
	ErrStackShape = errors.New("deform: stack data does not match its shape")
)

// SingularGeometryError reports the conditioning of a rejected geometry
// matrix. It unwraps to ErrSingularGeometry.
type SingularGeometryError struct {
	Cond float64
	Det  float64
}

func (e *SingularGeometryError) Error() string {
	return fmt.Sprintf("%s: condition number %g, determinant %g", ErrSingularGeometry, e.Cond, e.Det)
}

func (e *SingularGeometryError) Unwrap() error {
	return ErrSingularGeometry
}
