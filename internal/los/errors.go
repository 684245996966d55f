package los

import "errors"

var (
	// ErrInvalidAxis is returned when a rotation is requested about an axis
	// outside {1, 2, 3}.
	ErrInvalidAxis = errors.New("los: axis must be 1, 2 or 3")

	// ErrLengthMismatch is returned when parallel point and vector inputs
	// differ in length.
	ErrLengthMismatch = errors.New("los: points and vectors differ in length")

	// ErrZeroVector is returned when a LOS vector is too short to normalise.
	ErrZeroVector = errors.New("los: zero-length LOS vector")

	// ErrBadShape is returned when a batch is not a 3 x k matrix.
	ErrBadShape = errors.New("los: batch must have 3 rows")

	// ErrNoSource is returned when a coefficient source is nil or incomplete.
	ErrNoSource = errors.New("los: no coefficient source")
)
