package los

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const degToRad = math.Pi / 180.0

// Axis selects the coordinate axis of a single-axis rotation. Values are
// 1-indexed to match the usual Euler notation.
type Axis int

const (
	AxisX Axis = 1
	AxisY Axis = 2
	AxisZ Axis = 3
)

func (a Axis) valid() bool {
	return a >= AxisX && a <= AxisZ
}

// Rot returns the 3x3 passive rotation matrix about axis by angle. When
// inDegrees is false the angle is taken in radians.
//
// The sign pattern follows the right-handed frame-rotation convention:
//
//	R1 = [[1, 0, 0], [0, c, s], [0, -s, c]]
//	R2 = [[c, 0, -s], [0, 1, 0], [s, 0, c]]
//	R3 = [[c, s, 0], [-s, c, 0], [0, 0, 1]]
func Rot(angle float64, axis Axis, inDegrees bool) (*mat.Dense, error) {
	if !axis.valid() {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAxis, axis)
	}
	if inDegrees {
		angle *= degToRad
	}
	return rot(angle, axis), nil
}

// rot builds the matrix for an already validated axis, angle in radians.
func rot(angle float64, axis Axis) *mat.Dense {
	s, c := math.Sincos(angle)
	switch axis {
	case AxisX:
		return mat.NewDense(3, 3, []float64{
			1, 0, 0,
			0, c, s,
			0, -s, c,
		})
	case AxisY:
		return mat.NewDense(3, 3, []float64{
			c, 0, -s,
			0, 1, 0,
			s, 0, c,
		})
	default:
		return mat.NewDense(3, 3, []float64{
			c, s, 0,
			-s, c, 0,
			0, 0, 1,
		})
	}
}
