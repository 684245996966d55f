package los

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestRotIsProperOrthogonal(t *testing.T) {
	angles := []float64{-270, -90, -33.3, 0, 12.5, 45, 90, 179.9, 360, 725}
	for _, axis := range []Axis{AxisX, AxisY, AxisZ} {
		for _, a := range angles {
			r, err := Rot(a, axis, true)
			if err != nil {
				t.Fatalf("Rot(%v, %d): %v", a, axis, err)
			}
			var rtr mat.Dense
			rtr.Mul(r.T(), r)
			if !mat.EqualApprox(&rtr, eye3(), 1e-12) {
				t.Fatalf("R^T R != I for axis %d angle %v:\n%v", axis, a, mat.Formatted(&rtr))
			}
			if d := mat.Det(r); math.Abs(d-1) > 1e-12 {
				t.Fatalf("det = %.15f for axis %d angle %v", d, axis, a)
			}
		}
	}
}

func TestRotSignConvention(t *testing.T) {
	tests := []struct {
		axis Axis
		want []float64
	}{
		{axis: AxisX, want: []float64{1, 0, 0, 0, 0, 1, 0, -1, 0}},
		{axis: AxisY, want: []float64{0, 0, -1, 0, 1, 0, 1, 0, 0}},
		{axis: AxisZ, want: []float64{0, 1, 0, -1, 0, 0, 0, 0, 1}},
	}
	for _, tt := range tests {
		r, err := Rot(90, tt.axis, true)
		if err != nil {
			t.Fatalf("Rot axis %d: %v", tt.axis, err)
		}
		if !mat.EqualApprox(r, mat.NewDense(3, 3, tt.want), 1e-12) {
			t.Fatalf("axis %d:\n%v", tt.axis, mat.Formatted(r))
		}
	}
}

func TestRotRadians(t *testing.T) {
	deg, _ := Rot(30, AxisZ, true)
	rad, _ := Rot(math.Pi/6, AxisZ, false)
	if !mat.EqualApprox(deg, rad, 1e-15) {
		t.Fatalf("degree and radian inputs disagree")
	}
}

func TestRotInvalidAxis(t *testing.T) {
	for _, axis := range []Axis{0, 4, -1} {
		if _, err := Rot(10, axis, true); !errors.Is(err, ErrInvalidAxis) {
			t.Fatalf("axis %d: expected ErrInvalidAxis, got %v", axis, err)
		}
	}
}

func eye3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}
