package los

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// GeodeticPoint is a surface location in degrees.
type GeodeticPoint struct {
	LatDeg float64
	LonDeg float64
}

// ENU is a vector in the local East-North-Up frame.
type ENU struct {
	East  float64
	North float64
	Up    float64
}

// Vec returns the components as a column vector ordered East, North, Up.
func (e ENU) Vec() *mat.VecDense {
	return mat.NewVecDense(3, []float64{e.East, e.North, e.Up})
}

// XYZToENUMatrix returns R1(90-lat) * R3(90+lon), the ECEF to local ENU
// rotation at p.
func XYZToENUMatrix(p GeodeticPoint) *mat.Dense {
	r3m := rot((90+p.LonDeg)*degToRad, AxisZ)
	r1m := rot((90-p.LatDeg)*degToRad, AxisX)
	var m mat.Dense
	m.Mul(r1m, r3m)
	return &m
}

// RotateXYZToENU rotates a 3 x k batch of XYZ vectors into the ENU frame at
// p. The result has the same shape with rows ordered East, North, Up.
func RotateXYZToENU(xyz mat.Matrix, p GeodeticPoint) (*mat.Dense, error) {
	if r, _ := xyz.Dims(); r != 3 {
		return nil, fmt.Errorf("%w: got %d rows", ErrBadShape, r)
	}
	var out mat.Dense
	out.Mul(XYZToENUMatrix(p), xyz)
	return &out, nil
}

// RotateENUToXYZ applies the inverse rotation, taking a 3 x k ENU batch at p
// back to XYZ.
func RotateENUToXYZ(enu mat.Matrix, p GeodeticPoint) (*mat.Dense, error) {
	if r, _ := enu.Dims(); r != 3 {
		return nil, fmt.Errorf("%w: got %d rows", ErrBadShape, r)
	}
	var out mat.Dense
	out.Mul(XYZToENUMatrix(p).T(), enu)
	return &out, nil
}

// RotateVec rotates a single XYZ vector into the ENU frame at p.
func RotateVec(v r3.Vec, p GeodeticPoint) ENU {
	var out mat.VecDense
	out.MulVec(XYZToENUMatrix(p), mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return ENU{East: out.AtVec(0), North: out.AtVec(1), Up: out.AtVec(2)}
}

// ConvertBatch rotates each vector into the ENU frame of its own point and
// stacks the results as a k x 3 matrix, one row per input.
func ConvertBatch(points []GeodeticPoint, vecs []r3.Vec) (*mat.Dense, error) {
	if len(points) != len(vecs) {
		return nil, fmt.Errorf("%w: %d points, %d vectors", ErrLengthMismatch, len(points), len(vecs))
	}
	if len(points) == 0 {
		return &mat.Dense{}, nil
	}
	out := mat.NewDense(len(points), 3, nil)
	for i, p := range points {
		e := RotateVec(vecs[i], p)
		out.SetRow(i, []float64{e.East, e.North, e.Up})
	}
	return out, nil
}
