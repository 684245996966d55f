package losmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/kanglcn/apertools/internal/los"
)

func testGrid(t *testing.T) *Grid {
	t.Helper()
	lats := []float64{31, 32, 33}
	lons := []float64{-104, -103.5}
	east := mat.NewDense(3, 2, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})
	north := mat.NewDense(3, 2, []float64{-0.1, -0.2, -0.3, -0.4, -0.5, -0.6})
	up := mat.NewDense(3, 2, []float64{0.9, 0.8, 0.7, 0.6, 0.5, 0.4})
	g, err := NewGrid(lats, lons, east, north, up)
	require.NoError(t, err)
	return g
}

func TestNearestPicksClosestNode(t *testing.T) {
	g := testGrid(t)
	tests := []struct {
		name  string
		point los.GeodeticPoint
		want  los.Coefficients
	}{
		{"exact node", los.GeodeticPoint{LatDeg: 32, LonDeg: -103.5}, los.Coefficients{East: 0.4, North: -0.4, Up: 0.6}},
		{"between nodes", los.GeodeticPoint{LatDeg: 32.6, LonDeg: -103.9}, los.Coefficients{East: 0.5, North: -0.5, Up: 0.5}},
		{"outside grid clamps", los.GeodeticPoint{LatDeg: 10, LonDeg: 0}, los.Coefficients{East: 0.2, North: -0.2, Up: 0.8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Nearest(tt.point)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGridServesAsLookupTable(t *testing.T) {
	g := testGrid(t)
	c, err := los.Resolve(los.TableLookup{Table: g, Point: los.GeodeticPoint{LatDeg: 31.1, LonDeg: -104.2}})
	require.NoError(t, err)
	assert.Equal(t, los.Coefficients{East: 0.1, North: -0.1, Up: 0.9}, c)
}

func TestNewGridValidates(t *testing.T) {
	band := mat.NewDense(2, 2, nil)
	_, err := NewGrid(nil, []float64{1}, band, band, band)
	assert.ErrorIs(t, err, ErrEmptyAxis)

	_, err = NewGrid([]float64{1, 2, 3}, []float64{1, 2}, band, band, band)
	assert.ErrorIs(t, err, ErrGridShape)

	_, err = NewGrid([]float64{1, 2}, []float64{1, 2}, band, nil, band)
	assert.ErrorIs(t, err, ErrGridShape)
}

func TestFromXYZDerivesUnitCoefficients(t *testing.T) {
	lats := []float64{0, 45}
	lons := []float64{0, 90}
	g, err := FromXYZ(lats, lons, func(row, col int) r3.Vec {
		return r3.Vec{X: 5}
	})
	require.NoError(t, err)

	// X axis at (0, 0) is up; at (45, 90) it points west.
	c := g.At(0, 0)
	assert.InDelta(t, 1, c.Up, 1e-12)
	c = g.At(1, 1)
	assert.InDelta(t, -1, c.East, 1e-12)
	for i := range lats {
		for j := range lons {
			assert.InDelta(t, 1, g.At(i, j).Norm(), 1e-12)
		}
	}
}

func TestFromXYZPropagatesZeroVector(t *testing.T) {
	_, err := FromXYZ([]float64{0}, []float64{0, 1}, func(row, col int) r3.Vec {
		if col == 1 {
			return r3.Vec{}
		}
		return r3.Vec{Z: 1}
	})
	require.ErrorIs(t, err, los.ErrZeroVector)
	assert.Contains(t, err.Error(), "node (0, 1)")
}
