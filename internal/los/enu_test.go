package los

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-6

func TestRotateVecKnownPoints(t *testing.T) {
	tests := []struct {
		name  string
		xyz   r3.Vec
		point GeodeticPoint
		want  ENU
	}{
		{"x axis at origin is up", r3.Vec{X: 1}, GeodeticPoint{0, 0}, ENU{0, 0, 1}},
		{"y axis at origin is east", r3.Vec{Y: 1}, GeodeticPoint{0, 0}, ENU{1, 0, 0}},
		{"z axis at origin is north", r3.Vec{Z: 1}, GeodeticPoint{0, 0}, ENU{0, 1, 0}},
		{"z axis at north pole is up", r3.Vec{Z: 1}, GeodeticPoint{90, 0}, ENU{0, 0, 1}},
		{"x axis at 45N 90E is west", r3.Vec{X: 1}, GeodeticPoint{45, 90}, ENU{-1, 0, 0}},
		{"mixed vector", r3.Vec{X: 1, Y: 2, Z: 3}, GeodeticPoint{30, -60}, ENU{1.866025, 3.214102, 0.433013}},
		{"southern california", r3.Vec{X: 0.3, Y: -0.5, Z: 0.8}, GeodeticPoint{34.2, -118.1}, ENU{0.500144, 0.493174, 0.697592}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RotateVec(tt.xyz, tt.point)
			assert.InDelta(t, tt.want.East, got.East, tol)
			assert.InDelta(t, tt.want.North, got.North, tol)
			assert.InDelta(t, tt.want.Up, got.Up, tol)
		})
	}
}

func TestRotateXYZToENUBatchMatchesSingle(t *testing.T) {
	p := GeodeticPoint{LatDeg: -12.5, LonDeg: 140}
	vecs := []r3.Vec{{X: 1, Y: 0, Z: 0}, {X: 0.2, Y: -3, Z: 1.5}, {X: -4, Y: 4, Z: 0.1}}
	batch := mat.NewDense(3, len(vecs), nil)
	for j, v := range vecs {
		batch.SetCol(j, []float64{v.X, v.Y, v.Z})
	}

	out, err := RotateXYZToENU(batch, p)
	require.NoError(t, err)
	r, c := out.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, len(vecs), c)
	for j, v := range vecs {
		single := RotateVec(v, p)
		assert.InDelta(t, single.East, out.At(0, j), 1e-12)
		assert.InDelta(t, single.North, out.At(1, j), 1e-12)
		assert.InDelta(t, single.Up, out.At(2, j), 1e-12)
	}
}

func TestRotateRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		p := GeodeticPoint{LatDeg: rng.Float64()*180 - 90, LonDeg: rng.Float64()*360 - 180}
		v := mat.NewDense(3, 1, []float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()})

		enu, err := RotateXYZToENU(v, p)
		require.NoError(t, err)
		back, err := RotateENUToXYZ(enu, p)
		require.NoError(t, err)
		if !mat.EqualApprox(back, v, 1e-12) {
			t.Fatalf("round trip at %+v:\n%v\nvs\n%v", p, mat.Formatted(back), mat.Formatted(v))
		}
	}
}

func TestRotateXYZToENURejectsBadShape(t *testing.T) {
	_, err := RotateXYZToENU(mat.NewDense(2, 4, nil), GeodeticPoint{})
	assert.True(t, errors.Is(err, ErrBadShape))
	_, err = RotateENUToXYZ(mat.NewDense(4, 1, nil), GeodeticPoint{})
	assert.True(t, errors.Is(err, ErrBadShape))
}

func TestConvertBatchUsesPerPointRotation(t *testing.T) {
	points := []GeodeticPoint{{0, 0}, {45, 90}, {30, -60}}
	vecs := []r3.Vec{{X: 1}, {X: 1}, {X: 1, Y: 2, Z: 3}}

	out, err := ConvertBatch(points, vecs)
	require.NoError(t, err)
	r, c := out.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 3, c)

	assert.InDeltaSlice(t, []float64{0, 0, 1}, out.RawRowView(0), tol)
	assert.InDeltaSlice(t, []float64{-1, 0, 0}, out.RawRowView(1), tol)
	assert.InDeltaSlice(t, []float64{1.866025, 3.214102, 0.433013}, out.RawRowView(2), tol)
}

func TestConvertBatchLengthMismatch(t *testing.T) {
	_, err := ConvertBatch([]GeodeticPoint{{0, 0}}, []r3.Vec{{X: 1}, {Y: 1}})
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestConvertBatchEmpty(t *testing.T) {
	out, err := ConvertBatch(nil, nil)
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
}

func TestXYZToENUMatrixPreservesLength(t *testing.T) {
	m := XYZToENUMatrix(GeodeticPoint{LatDeg: 61.3, LonDeg: -149.9})
	v := RotateVec(r3.Vec{X: 3, Y: 4, Z: 12}, GeodeticPoint{LatDeg: 61.3, LonDeg: -149.9})
	if n := math.Sqrt(v.East*v.East + v.North*v.North + v.Up*v.Up); math.Abs(n-13) > 1e-12 {
		t.Fatalf("rotation changed vector length to %.15f", n)
	}
	if d := mat.Det(m); math.Abs(d-1) > 1e-12 {
		t.Fatalf("composed rotation det = %.15f", d)
	}
}
