package stackio

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kanglcn/apertools/internal/deform"
)

// Header is the YAML sidecar describing a stack data file.
type Header struct {
	Rows  int      `yaml:"rows"`
	Cols  int      `yaml:"cols"`
	Units string   `yaml:"units,omitempty"`
	Dates []string `yaml:"dates"`
}

// HeaderPath returns the sidecar path for a data file.
func HeaderPath(dataPath string) string {
	return dataPath + ".yaml"
}

// ReadHeader loads and checks the sidecar of dataPath.
func ReadHeader(dataPath string) (Header, error) {
	payload, err := os.ReadFile(HeaderPath(dataPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Header{}, fmt.Errorf("%w: %s missing", ErrHeader, HeaderPath(dataPath))
		}
		return Header{}, fmt.Errorf("read header: %w", err)
	}
	var h Header
	if err := yaml.Unmarshal(payload, &h); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrHeader, err)
	}
	if h.Rows <= 0 || h.Cols <= 0 {
		return Header{}, fmt.Errorf("%w: rows and cols must be positive", ErrHeader)
	}
	return h, nil
}

// WriteHeader stores h as the sidecar of dataPath.
func WriteHeader(dataPath string, h Header) error {
	payload, err := yaml.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}
	return os.WriteFile(HeaderPath(dataPath), payload, 0o644)
}

// DateAxis parses the header dates.
func (h Header) DateAxis() (deform.DateAxis, error) {
	return deform.ParseDateAxis(h.Dates)
}
