// Package losmap holds gridded LOS coefficient tables keyed by latitude and
// longitude, with nearest-node lookup and SQLite persistence.
package losmap

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/kanglcn/apertools/internal/los"
)

var (
	// ErrGridShape is returned when coefficient bands do not match the axes.
	ErrGridShape = errors.New("losmap: band shape does not match lat/lon axes")
	// ErrEmptyAxis is returned when a grid has no latitude or longitude samples.
	ErrEmptyAxis = errors.New("losmap: empty lat/lon axis")
)

// Grid stores ENU coefficients sampled on a lat/lon grid. Row i of each band
// corresponds to Lats[i] and column j to Lons[j].
type Grid struct {
	Lats  []float64
	Lons  []float64
	East  *mat.Dense
	North *mat.Dense
	Up    *mat.Dense
}

// NewGrid validates the axes and bands and returns the grid.
func NewGrid(lats, lons []float64, east, north, up *mat.Dense) (*Grid, error) {
	if len(lats) == 0 || len(lons) == 0 {
		return nil, ErrEmptyAxis
	}
	for name, band := range map[string]*mat.Dense{"east": east, "north": north, "up": up} {
		if band == nil {
			return nil, fmt.Errorf("%w: %s band missing", ErrGridShape, name)
		}
		if r, c := band.Dims(); r != len(lats) || c != len(lons) {
			return nil, fmt.Errorf("%w: %s band is %dx%d, axes are %dx%d", ErrGridShape, name, r, c, len(lats), len(lons))
		}
	}
	return &Grid{Lats: lats, Lons: lons, East: east, North: north, Up: up}, nil
}

// FromXYZ builds a grid by deriving ENU coefficients from the raw XYZ LOS
// vector at every node. vecAt is called with row and column indices.
func FromXYZ(lats, lons []float64, vecAt func(row, col int) r3.Vec) (*Grid, error) {
	if len(lats) == 0 || len(lons) == 0 {
		return nil, ErrEmptyAxis
	}
	east := mat.NewDense(len(lats), len(lons), nil)
	north := mat.NewDense(len(lats), len(lons), nil)
	up := mat.NewDense(len(lats), len(lons), nil)
	for i, lat := range lats {
		for j, lon := range lons {
			c, err := los.DeriveENUCoefficients(vecAt(i, j), los.GeodeticPoint{LatDeg: lat, LonDeg: lon})
			if err != nil {
				return nil, fmt.Errorf("node (%d, %d): %w", i, j, err)
			}
			east.Set(i, j, c.East)
			north.Set(i, j, c.North)
			up.Set(i, j, c.Up)
		}
	}
	return &Grid{Lats: lats, Lons: lons, East: east, North: north, Up: up}, nil
}

// Dims returns the number of latitude and longitude samples.
func (g *Grid) Dims() (rows, cols int) {
	return len(g.Lats), len(g.Lons)
}

// At returns the coefficients stored at a grid node.
func (g *Grid) At(row, col int) los.Coefficients {
	return los.Coefficients{
		East:  g.East.At(row, col),
		North: g.North.At(row, col),
		Up:    g.Up.At(row, col),
	}
}

// Nearest returns the coefficients at the node closest to p, choosing the
// nearest latitude and longitude independently.
func (g *Grid) Nearest(p los.GeodeticPoint) (los.Coefficients, error) {
	if len(g.Lats) == 0 || len(g.Lons) == 0 {
		return los.Coefficients{}, ErrEmptyAxis
	}
	return g.At(nearestIndex(g.Lats, p.LatDeg), nearestIndex(g.Lons, p.LonDeg)), nil
}

// nearestIndex returns the index of the sample closest to v. Ties resolve to
// the lower index. The axis need not be sorted.
func nearestIndex(axis []float64, v float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, a := range axis {
		if d := math.Abs(a - v); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
