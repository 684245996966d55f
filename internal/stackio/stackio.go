package stackio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/kanglcn/apertools/internal/deform"
)

// Load reads the stack at path and its sidecar header.
func Load(path string) (*deform.Stack, Header, error) {
	format, err := ResolveFormat(path)
	if err != nil {
		return nil, Header{}, err
	}
	h, err := ReadHeader(path)
	if err != nil {
		return nil, Header{}, err
	}
	dates, err := h.DateAxis()
	if err != nil {
		return nil, Header{}, fmt.Errorf("%w: %v", ErrHeader, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer f.Close()

	var data []float64
	switch format {
	case FormatRaw:
		data, err = readRaw(f, len(dates)*h.Rows*h.Cols)
	case FormatNPY:
		data, err = readNPYStack(f, len(dates), h)
	}
	if err != nil {
		return nil, Header{}, fmt.Errorf("load %s: %w", path, err)
	}
	s, err := deform.NewStack(dates, h.Rows, h.Cols, data)
	if err != nil {
		return nil, Header{}, err
	}
	return s, h, nil
}

// Save writes s to path in the format implied by its extension, together
// with the sidecar header.
func Save(path string, s *deform.Stack, units string) error {
	format, err := ResolveFormat(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatRaw:
		err = writeRaw(f, s.Data)
	case FormatNPY:
		err = writeNPY(f, []int{s.Layers, s.Rows, s.Cols}, s.Data)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return WriteHeader(path, Header{Rows: s.Rows, Cols: s.Cols, Units: units, Dates: s.Dates.Strings()})
}

func readRaw(r io.Reader, n int) ([]float64, error) {
	buf := make([]float32, n)
	if err := binary.Read(bufio.NewReader(r), binary.LittleEndian, buf); err != nil {
		return nil, fmt.Errorf("%w: expected %d float32 values: %v", ErrHeader, n, err)
	}
	out := make([]float64, n)
	for i, v := range buf {
		out[i] = float64(v)
	}
	return out, nil
}

func writeRaw(w io.Writer, values []float64) error {
	buf := make([]float32, len(values))
	for i, v := range values {
		buf[i] = float32(v)
	}
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, buf); err != nil {
		return err
	}
	return bw.Flush()
}

func readNPYStack(r io.Reader, layers int, h Header) ([]float64, error) {
	want := []int{layers, h.Rows, h.Cols}
	_, data, err := readNPY(r, func(shape []int) error {
		if len(shape) == 2 {
			shape = append([]int{1}, shape...)
		}
		if len(shape) != 3 || shape[0] != want[0] || shape[1] != want[1] || shape[2] != want[2] {
			return fmt.Errorf("%w: array shape %v, header implies %v", ErrHeader, shape, want)
		}
		return nil
	})
	return data, err
}
