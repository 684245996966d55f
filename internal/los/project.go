package los

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ProjectENU returns the scalar projection of v onto the LOS direction c.
// No normalisation is applied to c.
func ProjectENU(v ENU, c Coefficients) float64 {
	return c.East*v.East + c.North*v.North + c.Up*v.Up
}

// Project returns the LOS magnitude of each column of a 3 x k ENU batch,
// using the coefficients resolved from src.
func Project(enu mat.Matrix, src CoefficientSource) ([]float64, error) {
	r, k := enu.Dims()
	if r != 3 {
		return nil, fmt.Errorf("%w: got %d rows", ErrBadShape, r)
	}
	c, err := Resolve(src)
	if err != nil {
		return nil, err
	}
	var out mat.VecDense
	out.MulVec(enu.T(), c.ENU().Vec())
	res := make([]float64, k)
	for i := range res {
		res[i] = out.AtVec(i)
	}
	return res, nil
}
