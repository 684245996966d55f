// Package units holds radar sensor constants and the phase-to-length scale
// factors used to express deformation stacks in physical units.
package units

import (
	"fmt"
	"math"
	"strings"
)

// Wavelengths in centimetres.
const (
	SentinelWavelengthCM = 5.5465763
	UAVSARWavelengthCM   = 23.8403545
)

// Sensor names a radar instrument with a known carrier wavelength.
type Sensor string

const (
	Sentinel Sensor = "sentinel"
	UAVSAR   Sensor = "uavsar"
)

// ValidSensors lists every accepted sensor value.
var ValidSensors = []Sensor{Sentinel, UAVSAR}

// ParseSensor converts a string to a Sensor.
func ParseSensor(s string) (Sensor, error) {
	switch Sensor(strings.ToLower(strings.TrimSpace(s))) {
	case Sentinel, "":
		return Sentinel, nil
	case UAVSAR:
		return UAVSAR, nil
	default:
		return "", fmt.Errorf("unsupported sensor %q", s)
	}
}

// Wavelength returns the carrier wavelength of the sensor in centimetres.
func (s Sensor) Wavelength() float64 {
	switch s {
	case UAVSAR:
		return UAVSARWavelengthCM
	default:
		return SentinelWavelengthCM
	}
}

// PhaseToCM returns the centimetres of LOS motion per radian of
// interferometric phase for the given wavelength.
func PhaseToCM(wavelengthCM float64) float64 {
	return wavelengthCM / (4 * math.Pi)
}

// PhaseRateToMMPerYear converts a phase rate in radians/day to mm/year.
func PhaseRateToMMPerYear(wavelengthCM float64) float64 {
	return PhaseToCM(wavelengthCM) * 10 * 365
}

// Scale multiplies values by factor in place.
func Scale(values []float64, factor float64) {
	for i := range values {
		values[i] *= factor
	}
}
