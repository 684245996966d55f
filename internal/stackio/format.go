// Package stackio reads and writes deformation stacks. The on-disk encoding
// is chosen once from the file extension; dates and grid size live in a YAML
// sidecar next to the data file.
package stackio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnknownFormat is returned for file extensions with no known encoding.
	ErrUnknownFormat = errors.New("stackio: unknown stack format")
	// ErrHeader is returned when a sidecar header is missing fields or
	// disagrees with the data file.
	ErrHeader = errors.New("stackio: invalid stack header")
)

// Format is the encoding of a stack data file.
type Format int

const (
	// FormatRaw is headerless little-endian float32 in (layer, row, col) order.
	FormatRaw Format = iota + 1
	// FormatNPY is a NumPy .npy array of <f4 or <f8 in C order.
	FormatNPY
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatNPY:
		return "npy"
	default:
		return "unknown"
	}
}

// ResolveFormat picks the encoding from the extension of path.
func ResolveFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin", ".raw":
		return FormatRaw, nil
	case ".npy":
		return FormatNPY, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Base(path))
	}
}
