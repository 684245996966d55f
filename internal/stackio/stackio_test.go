package stackio

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanglcn/apertools/internal/deform"
)

func sampleStack(t *testing.T) *deform.Stack {
	t.Helper()
	dates, err := deform.ParseDateAxis([]string{"2019-06-01", "2019-06-13"})
	require.NoError(t, err)
	s, err := deform.NewStack(dates, 2, 3, []float64{
		0.5, -1.25, 2, 3.5, 4, -0.125,
		1, 2, 3, 4, 5, 6,
	})
	require.NoError(t, err)
	return s
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"deformation.bin", FormatRaw},
		{"/data/asc/stack.RAW", FormatRaw},
		{"deformation.npy", FormatNPY},
	}
	for _, tt := range tests {
		got, err := ResolveFormat(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
	_, err := ResolveFormat("stack.h5")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, "npy", FormatNPY.String())
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"stack.bin", "stack.npy"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := sampleStack(t)
			require.NoError(t, Save(path, want, "cm"))

			got, h, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "cm", h.Units)
			assert.Equal(t, want.Shape(), got.Shape())
			assert.True(t, want.Dates.Equal(got.Dates))
			// Values are exact in float32, so both encodings reproduce them.
			assert.Equal(t, want.Data, got.Data)
		})
	}
}

func TestLoadMissingHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stack.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 16), 0o644))
	_, _, err := Load(path)
	assert.ErrorIs(t, err, ErrHeader)
}

func TestLoadShortRawFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stack.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 8), 0o644))
	require.NoError(t, WriteHeader(path, Header{Rows: 2, Cols: 2, Dates: []string{"2020-01-01"}}))
	_, _, err := Load(path)
	assert.ErrorIs(t, err, ErrHeader)
}

func TestLoadNPYShapeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stack.npy")
	require.NoError(t, Save(path, sampleStack(t), ""))
	require.NoError(t, WriteHeader(path, Header{Rows: 3, Cols: 2, Dates: []string{"2019-06-01", "2019-06-13"}}))
	_, _, err := Load(path)
	assert.ErrorIs(t, err, ErrHeader)
}

func TestReadNPYFloat32TwoDimensional(t *testing.T) {
	dict := "{'descr': '<f4', 'fortran_order': False, 'shape': (2, 2), }"
	for (10+len(dict)+1)%64 != 0 {
		dict += " "
	}
	dict += "\n"
	var buf bytes.Buffer
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(len(dict)))
	buf.WriteString(dict)
	binary.Write(&buf, binary.LittleEndian, []float32{1.5, -2, float32(math.Inf(1)), 0})

	shape, values, err := readNPY(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, shape)
	assert.Equal(t, 1.5, values[0])
	assert.True(t, math.IsInf(values[2], 1))
}

func TestReadNPYRejectsFortranOrder(t *testing.T) {
	dict := "{'descr': '<f8', 'fortran_order': True, 'shape': (1,), }\n"
	var buf bytes.Buffer
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(len(dict)))
	buf.WriteString(dict)
	_, _, err := readNPY(&buf, nil)
	assert.ErrorIs(t, err, ErrHeader)
}

func TestWriteNPYAlignsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeNPY(&buf, []int{1, 2, 3}, make([]float64, 6)))
	hlen := int(binary.LittleEndian.Uint16(buf.Bytes()[8:10]))
	assert.Zero(t, (10+hlen)%64)
	assert.Equal(t, 10+hlen+6*8, buf.Len())
	assert.Equal(t, byte('\n'), buf.Bytes()[10+hlen-1])
}

func npyWithHeader(dict string) *bytes.Buffer {
	var buf bytes.Buffer
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(len(dict)))
	buf.WriteString(dict)
	return &buf
}

func TestReadNPYRejectsMalformedShape(t *testing.T) {
	for _, shape := range []string{"(-4,)", "(2, -1)", "(4611686018427387904, 4)", "(x,)"} {
		t.Run(shape, func(t *testing.T) {
			buf := npyWithHeader("{'descr': '<f8', 'fortran_order': False, 'shape': " + shape + ", }\n")
			_, _, err := readNPY(buf, nil)
			assert.ErrorIs(t, err, ErrHeader)
		})
	}
}

func TestReadNPYChecksShapeBeforeReadingData(t *testing.T) {
	// The data section is absent: a huge shape must be rejected by the
	// sidecar comparison, not by a failed read after allocation.
	buf := npyWithHeader("{'descr': '<f8', 'fortran_order': False, 'shape': (1000000, 100000, 100), }\n")
	_, err := readNPYStack(buf, 1, Header{Rows: 2, Cols: 3})
	require.ErrorIs(t, err, ErrHeader)
	assert.Contains(t, err.Error(), "header implies [1 2 3]")
}
