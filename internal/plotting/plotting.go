// Package plotting renders LOS coefficient grids and deformation layers as
// PNG heat maps.
package plotting

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/kanglcn/apertools/internal/deform"
	"github.com/kanglcn/apertools/internal/losmap"
)

// ErrNoData is returned when a layer holds no finite sample to scale against.
var ErrNoData = errors.New("plotting: no finite samples")

const (
	paletteSize = 64
	plotWidth   = 8 * vg.Inch
	plotHeight  = 6 * vg.Inch
)

var nanColor = color.Gray{Y: 200}

// bandGrid adapts one coefficient band to plotter.GridXYZ. Z is the absolute
// value of the coefficient.
type bandGrid struct {
	lats, lons []float64
	band       *mat.Dense
}

func (g bandGrid) Dims() (c, r int)   { return len(g.lons), len(g.lats) }
func (g bandGrid) Z(c, r int) float64 { return math.Abs(g.band.At(r, c)) }
func (g bandGrid) X(c int) float64    { return g.lons[c] }
func (g bandGrid) Y(r int) float64    { return g.lats[r] }

// SaveENUMaps writes <prefix>_east.png, <prefix>_north.png and
// <prefix>_up.png with the magnitude of each coefficient on a fixed 0..1
// scale. It returns the written paths.
func SaveENUMaps(g *losmap.Grid, prefix, title string) ([]string, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrNoData)
	}
	bands := []struct {
		name string
		band *mat.Dense
	}{
		{"east", g.East},
		{"north", g.North},
		{"up", g.Up},
	}
	paths := make([]string, 0, len(bands))
	for _, b := range bands {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("%s |%s|", title, b.name)
		p.X.Label.Text = "Longitude (deg)"
		p.Y.Label.Text = "Latitude (deg)"

		hm := plotter.NewHeatMap(bandGrid{lats: g.Lats, lons: g.Lons, band: b.band}, palette.Heat(paletteSize, 1))
		hm.Min, hm.Max = 0, 1
		hm.NaN = nanColor
		p.Add(hm)

		path := fmt.Sprintf("%s_%s.png", prefix, b.name)
		if err := p.Save(plotWidth, plotHeight, path); err != nil {
			return paths, fmt.Errorf("save %s: %w", filepath.Base(path), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// layerGrid adapts one stack layer to plotter.GridXYZ with row 0 drawn at
// the top.
type layerGrid struct {
	layer *mat.Dense
}

func (g layerGrid) Dims() (c, r int) {
	rows, cols := g.layer.Dims()
	return cols, rows
}

func (g layerGrid) Z(c, r int) float64 { return g.layer.At(r, c) }
func (g layerGrid) X(c int) float64    { return float64(c) }

func (g layerGrid) Y(r int) float64 {
	rows, _ := g.layer.Dims()
	return float64(rows - 1 - r)
}

// SaveLayer renders layer t of s to path, scaled to the layer's finite
// range. NaN samples are drawn grey.
func SaveLayer(s *deform.Stack, t int, path, title string) error {
	if s == nil {
		return fmt.Errorf("%w: nil stack", ErrNoData)
	}
	if t < 0 || t >= s.Layers {
		return fmt.Errorf("plotting: layer %d out of range [0, %d)", t, s.Layers)
	}
	if s.Rows == 0 || s.Cols == 0 {
		return fmt.Errorf("%w: empty layer", ErrNoData)
	}
	layer := s.Layer(t)
	lo, hi, ok := finiteRange(layer.RawMatrix().Data)
	if !ok {
		return ErrNoData
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %s", title, s.Dates[t].Format(deform.DateLayout))
	p.X.Label.Text = "Column"
	p.Y.Label.Text = "Row"

	hm := plotter.NewHeatMap(layerGrid{layer: layer}, palette.Heat(paletteSize, 1))
	hm.Min, hm.Max = lo, hi
	hm.NaN = nanColor
	p.Add(hm)

	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return nil
}

func finiteRange(v []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
		ok = true
	}
	return lo, hi, ok
}
