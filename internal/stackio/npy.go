package stackio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var npyMagic = []byte("\x93NUMPY")

var (
	npyDescr   = regexp.MustCompile(`'descr'\s*:\s*'([^']+)'`)
	npyFortran = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	npyShape   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// maxNPYValues bounds the element count of an array before allocation.
const maxNPYValues = math.MaxInt / 8

// readNPY decodes a little-endian float array and returns its shape and
// values in C order. When check is non-nil it sees the header shape before
// any data buffer is allocated.
func readNPY(r io.Reader, check func(shape []int) error) ([]int, []float64, error) {
	br := bufio.NewReader(r)
	pre := make([]byte, 8)
	if _, err := io.ReadFull(br, pre); err != nil {
		return nil, nil, fmt.Errorf("npy preamble: %w", err)
	}
	if !bytes.Equal(pre[:6], npyMagic) {
		return nil, nil, fmt.Errorf("%w: not an npy file", ErrHeader)
	}

	var hlen int
	switch pre[6] {
	case 1:
		var n uint16
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, nil, err
		}
		hlen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, nil, err
		}
		hlen = int(n)
	default:
		return nil, nil, fmt.Errorf("%w: npy version %d", ErrHeader, pre[6])
	}
	raw := make([]byte, hlen)
	if _, err := io.ReadFull(br, raw); err != nil {
		return nil, nil, fmt.Errorf("npy header: %w", err)
	}
	dict := string(raw)

	descr := npyDescr.FindStringSubmatch(dict)
	if descr == nil {
		return nil, nil, fmt.Errorf("%w: npy descr missing", ErrHeader)
	}
	if m := npyFortran.FindStringSubmatch(dict); m != nil && m[1] == "True" {
		return nil, nil, fmt.Errorf("%w: fortran-ordered arrays are not supported", ErrHeader)
	}
	sm := npyShape.FindStringSubmatch(dict)
	if sm == nil {
		return nil, nil, fmt.Errorf("%w: npy shape missing", ErrHeader)
	}
	var shape []int
	size := 1
	for _, part := range strings.Split(sm[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, nil, fmt.Errorf("%w: npy shape %q", ErrHeader, sm[1])
		}
		if n > 0 && size > maxNPYValues/n {
			return nil, nil, fmt.Errorf("%w: npy shape %q too large", ErrHeader, sm[1])
		}
		shape = append(shape, n)
		size *= n
	}
	if check != nil {
		if err := check(shape); err != nil {
			return nil, nil, err
		}
	}

	values := make([]float64, size)
	switch descr[1] {
	case "<f4":
		buf := make([]float32, size)
		if err := binary.Read(br, binary.LittleEndian, buf); err != nil {
			return nil, nil, fmt.Errorf("npy data: %w", err)
		}
		for i, v := range buf {
			values[i] = float64(v)
		}
	case "<f8":
		if err := binary.Read(br, binary.LittleEndian, values); err != nil {
			return nil, nil, fmt.Errorf("npy data: %w", err)
		}
	default:
		return nil, nil, fmt.Errorf("%w: npy dtype %s", ErrHeader, descr[1])
	}
	return shape, values, nil
}

// writeNPY encodes values as a version 1.0 <f8 array.
func writeNPY(w io.Writer, shape []int, values []float64) error {
	dims := make([]string, len(shape))
	for i, n := range shape {
		dims[i] = strconv.Itoa(n)
	}
	shapeText := strings.Join(dims, ", ")
	if len(shape) == 1 {
		shapeText += ","
	}
	dict := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%s), }", shapeText)
	// Magic, version and length take 10 bytes; pad so data starts on a
	// 64-byte boundary, ending the header with a newline.
	total := 10 + len(dict) + 1
	if rem := total % 64; rem != 0 {
		dict += strings.Repeat(" ", 64-rem)
	}
	dict += "\n"

	bw := bufio.NewWriter(w)
	bw.Write(npyMagic)
	bw.Write([]byte{1, 0})
	if err := binary.Write(bw, binary.LittleEndian, uint16(len(dict))); err != nil {
		return err
	}
	bw.WriteString(dict)
	buf := make([]byte, 8)
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
