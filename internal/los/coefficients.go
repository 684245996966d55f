package los

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// zeroNorm is the length below which a LOS vector has no usable direction.
const zeroNorm = 1e-12

// Coefficients is the unit LOS direction expressed in ENU at one point,
// [alpha_E, alpha_N, alpha_U]. The direction points from the satellite to
// the ground, so a positive projection is motion away from the sensor.
type Coefficients struct {
	East  float64
	North float64
	Up    float64
}

// ENU returns the coefficients as an ENU vector.
func (c Coefficients) ENU() ENU {
	return ENU{East: c.East, North: c.North, Up: c.Up}
}

// EastUp returns [alpha_E, alpha_U], dropping the north component.
func (c Coefficients) EastUp() [2]float64 {
	return [2]float64{c.East, c.Up}
}

// Norm returns the Euclidean length of the coefficient vector.
func (c Coefficients) Norm() float64 {
	return r3.Norm(r3.Vec{X: c.East, Y: c.North, Z: c.Up})
}

// A CoefficientSource yields ENU coefficients. It is a closed set:
// Coefficients (given directly), RawVector (derived from an XYZ LOS vector
// at a point) and TableLookup (nearest node of a precomputed table).
type CoefficientSource interface {
	resolve() (Coefficients, error)
}

func (c Coefficients) resolve() (Coefficients, error) { return c, nil }

// RawVector derives coefficients from a raw XYZ LOS vector observed at Point.
type RawVector struct {
	LOS   r3.Vec
	Point GeodeticPoint
}

func (r RawVector) resolve() (Coefficients, error) {
	return DeriveENUCoefficients(r.LOS, r.Point)
}

// LookupTable returns the coefficients stored nearest to a point.
type LookupTable interface {
	Nearest(p GeodeticPoint) (Coefficients, error)
}

// TableLookup reads coefficients for Point from Table.
type TableLookup struct {
	Table LookupTable
	Point GeodeticPoint
}

func (t TableLookup) resolve() (Coefficients, error) {
	if t.Table == nil {
		return Coefficients{}, fmt.Errorf("%w: lookup table is nil", ErrNoSource)
	}
	return t.Table.Nearest(t.Point)
}

// Resolve returns the coefficients described by src.
func Resolve(src CoefficientSource) (Coefficients, error) {
	if src == nil {
		return Coefficients{}, ErrNoSource
	}
	return src.resolve()
}

// DeriveENUCoefficients normalises los and rotates it into the ENU frame at p.
func DeriveENUCoefficients(los r3.Vec, p GeodeticPoint) (Coefficients, error) {
	n := r3.Norm(los)
	if n <= zeroNorm || math.IsNaN(n) {
		return Coefficients{}, fmt.Errorf("%w: norm %g", ErrZeroVector, n)
	}
	e := RotateVec(r3.Scale(1/n, los), p)
	return Coefficients{East: e.East, North: e.North, Up: e.Up}, nil
}

// FromAzimuthIncidence builds coefficients from per-pixel look angles in
// degrees. azDeg is the azimuth of the ground-to-satellite vector measured
// counter-clockwise from north and incDeg the incidence angle from vertical.
// The result is flipped to the satellite-to-ground convention.
func FromAzimuthIncidence(azDeg, incDeg float64) Coefficients {
	sinAz, cosAz := math.Sincos(azDeg * degToRad)
	sinInc, cosInc := math.Sincos(incDeg * degToRad)
	return Coefficients{
		East:  sinInc * sinAz,
		North: -sinInc * cosAz,
		Up:    -cosInc,
	}
}
