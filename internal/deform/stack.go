// Package deform holds LOS deformation stacks and the routines that combine
// ascending and descending stacks into east and vertical motion.
package deform

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Stack is a (layer, row, col) raster of LOS deformation. Data is row-major
// with the layer index varying slowest. Dates has one entry per layer.
type Stack struct {
	Dates  DateAxis
	Layers int
	Rows   int
	Cols   int
	Data   []float64
}

// Shape is the (layers, rows, cols) extent of a stack.
type Shape struct {
	Layers, Rows, Cols int
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d, %d)", s.Layers, s.Rows, s.Cols)
}

// Size returns the number of samples in the shape.
func (s Shape) Size() int {
	return s.Layers * s.Rows * s.Cols
}

// NewStack checks that the dates and data agree with the given extent. When
// data is nil a zeroed buffer is allocated.
func NewStack(dates DateAxis, rows, cols int, data []float64) (*Stack, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d grid", ErrStackShape, rows, cols)
	}
	shape := Shape{Layers: len(dates), Rows: rows, Cols: cols}
	if data == nil {
		data = make([]float64, shape.Size())
	}
	if len(data) != shape.Size() {
		return nil, fmt.Errorf("%w: %d values for shape %s", ErrStackShape, len(data), shape)
	}
	if err := dates.Validate(); err != nil {
		return nil, err
	}
	return &Stack{Dates: dates, Layers: shape.Layers, Rows: rows, Cols: cols, Data: data}, nil
}

// Shape returns the stack extent.
func (s *Stack) Shape() Shape {
	return Shape{Layers: s.Layers, Rows: s.Rows, Cols: s.Cols}
}

// Validate reports whether the dates and data agree with the stack extent.
// Stacks assembled by hand rather than through NewStack should pass it
// before indexing.
func (s *Stack) Validate() error {
	shape := s.Shape()
	if shape.Layers < 0 || shape.Rows <= 0 || shape.Cols <= 0 {
		return fmt.Errorf("%w: shape %s", ErrStackShape, shape)
	}
	if len(s.Dates) != shape.Layers {
		return fmt.Errorf("%w: %d dates for %d layers", ErrStackShape, len(s.Dates), shape.Layers)
	}
	if len(s.Data) != shape.Size() {
		return fmt.Errorf("%w: %d values for shape %s", ErrStackShape, len(s.Data), shape)
	}
	return nil
}

func (s *Stack) offset(layer, row, col int) int {
	return (layer*s.Rows+row)*s.Cols + col
}

// At returns the value at (layer, row, col).
func (s *Stack) At(layer, row, col int) float64 {
	return s.Data[s.offset(layer, row, col)]
}

// Set stores v at (layer, row, col).
func (s *Stack) Set(layer, row, col int, v float64) {
	s.Data[s.offset(layer, row, col)] = v
}

// Layer returns a rows x cols view of one layer that shares storage with
// the stack.
func (s *Stack) Layer(layer int) *mat.Dense {
	start := s.offset(layer, 0, 0)
	return mat.NewDense(s.Rows, s.Cols, s.Data[start:start+s.Rows*s.Cols])
}

// Subset copies the listed layers, in order, into a new stack.
func (s *Stack) Subset(layers []int) (*Stack, error) {
	dates := make(DateAxis, len(layers))
	n := s.Rows * s.Cols
	data := make([]float64, len(layers)*n)
	for i, l := range layers {
		if l < 0 || l >= s.Layers {
			return nil, fmt.Errorf("%w: layer %d outside [0, %d)", ErrStackShape, l, s.Layers)
		}
		dates[i] = s.Dates[l]
		copy(data[i*n:(i+1)*n], s.Data[l*n:(l+1)*n])
	}
	return NewStack(dates, s.Rows, s.Cols, data)
}

// AlignStacks reduces both stacks to the dates they share so they can be
// decomposed layer by layer.
func AlignStacks(asc, desc *Stack) (*Stack, *Stack, error) {
	_, idxAsc, idxDesc, err := IntersectDates(asc.Dates, desc.Dates)
	if err != nil {
		return nil, nil, err
	}
	a, err := asc.Subset(idxAsc)
	if err != nil {
		return nil, nil, fmt.Errorf("subset ascending: %w", err)
	}
	d, err := desc.Subset(idxDesc)
	if err != nil {
		return nil, nil, fmt.Errorf("subset descending: %w", err)
	}
	return a, d, nil
}
