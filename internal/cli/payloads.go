package cli

import (
	"strconv"

	"github.com/kanglcn/apertools/internal/deform"
	"github.com/kanglcn/apertools/internal/los"
	"github.com/kanglcn/apertools/internal/losmap"
	"github.com/kanglcn/apertools/internal/output"
)

type matrixPayload struct {
	Matrix [][]float64 `json:"matrix" yaml:"matrix"`
}

func (p matrixPayload) Headers() []string { return []string{"row", "col 1", "col 2", "col 3"} }

func (p matrixPayload) Rows() [][]string {
	rows := make([][]string, len(p.Matrix))
	for i, r := range p.Matrix {
		row := []string{strconv.Itoa(i + 1)}
		for _, v := range r {
			row = append(row, output.Float(v))
		}
		rows[i] = row
	}
	return rows
}

type enuPayload struct {
	East  float64 `json:"east" yaml:"east"`
	North float64 `json:"north" yaml:"north"`
	Up    float64 `json:"up" yaml:"up"`
}

func (p enuPayload) Headers() []string { return []string{"east", "north", "up"} }

func (p enuPayload) Rows() [][]string {
	return [][]string{{output.Float(p.East), output.Float(p.North), output.Float(p.Up)}}
}

type xyzPayload struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func (p xyzPayload) Headers() []string { return []string{"x", "y", "z"} }

func (p xyzPayload) Rows() [][]string {
	return [][]string{{output.Float(p.X), output.Float(p.Y), output.Float(p.Z)}}
}

type coeffPayload struct {
	Source string  `json:"source" yaml:"source"`
	East   float64 `json:"east" yaml:"east"`
	North  float64 `json:"north" yaml:"north"`
	Up     float64 `json:"up" yaml:"up"`
	Norm   float64 `json:"norm" yaml:"norm"`
}

func newCoeffPayload(source string, c los.Coefficients) coeffPayload {
	return coeffPayload{Source: source, East: c.East, North: c.North, Up: c.Up, Norm: c.Norm()}
}

func (p coeffPayload) Headers() []string { return []string{"source", "east", "north", "up", "norm"} }

func (p coeffPayload) Rows() [][]string {
	return [][]string{{p.Source, output.Float(p.East), output.Float(p.North), output.Float(p.Up), output.Float(p.Norm)}}
}

type projectPayload struct {
	LOS          float64      `json:"los" yaml:"los"`
	Coefficients coeffPayload `json:"coefficients" yaml:"coefficients"`
}

func (p projectPayload) Headers() []string { return []string{"los", "source", "east", "north", "up"} }

func (p projectPayload) Rows() [][]string {
	c := p.Coefficients
	return [][]string{{output.Float(p.LOS), c.Source, output.Float(c.East), output.Float(c.North), output.Float(c.Up)}}
}

type mergePayload struct {
	Dates  []string `json:"dates" yaml:"dates"`
	Index1 []int    `json:"index1" yaml:"index1"`
	Index2 []int    `json:"index2" yaml:"index2"`
}

func newMergePayload(m deform.Merged) mergePayload {
	return mergePayload{Dates: m.Axis.Strings(), Index1: m.Index1, Index2: m.Index2}
}

func (p mergePayload) Headers() []string { return []string{"index", "date", "from"} }

func (p mergePayload) Rows() [][]string {
	from := make([]string, len(p.Dates))
	for _, i := range p.Index1 {
		from[i] = "1"
	}
	for _, i := range p.Index2 {
		from[i] = "2"
	}
	rows := make([][]string, len(p.Dates))
	for i, d := range p.Dates {
		rows[i] = []string{strconv.Itoa(i), d, from[i]}
	}
	return rows
}

type decomposePayload struct {
	Shape        string       `json:"shape" yaml:"shape"`
	Dates        []string     `json:"dates" yaml:"dates"`
	Ascending    coeffPayload `json:"ascending" yaml:"ascending"`
	Descending   coeffPayload `json:"descending" yaml:"descending"`
	EastPath     string       `json:"east_path" yaml:"east_path"`
	VerticalPath string       `json:"vertical_path" yaml:"vertical_path"`
	Units        string       `json:"units,omitempty" yaml:"units,omitempty"`
	Plots        []string     `json:"plots,omitempty" yaml:"plots,omitempty"`
}

func (p decomposePayload) Headers() []string { return []string{"field", "value"} }

func (p decomposePayload) Rows() [][]string {
	rows := [][]string{
		{"shape", p.Shape},
		{"layers", strconv.Itoa(len(p.Dates))},
		{"ascending east/up", output.Float(p.Ascending.East) + " / " + output.Float(p.Ascending.Up)},
		{"descending east/up", output.Float(p.Descending.East) + " / " + output.Float(p.Descending.Up)},
		{"east", p.EastPath},
		{"vertical", p.VerticalPath},
	}
	if p.Units != "" {
		rows = append(rows, []string{"units", p.Units})
	}
	for _, plot := range p.Plots {
		rows = append(rows, []string{"plot", plot})
	}
	return rows
}

type gridPayload struct {
	Name    string        `json:"name" yaml:"name"`
	NumRows int           `json:"rows" yaml:"rows"`
	NumCols int           `json:"cols" yaml:"cols"`
	LatMin  float64       `json:"lat_min" yaml:"lat_min"`
	LatMax  float64       `json:"lat_max" yaml:"lat_max"`
	LonMin  float64       `json:"lon_min" yaml:"lon_min"`
	LonMax  float64       `json:"lon_max" yaml:"lon_max"`
	Nearest *coeffPayload `json:"nearest,omitempty" yaml:"nearest,omitempty"`
}

func newGridPayload(name string, g *losmap.Grid) gridPayload {
	rows, cols := g.Dims()
	p := gridPayload{Name: name, NumRows: rows, NumCols: cols}
	p.LatMin, p.LatMax = span(g.Lats)
	p.LonMin, p.LonMax = span(g.Lons)
	return p
}

func span(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}

func (p gridPayload) Headers() []string { return []string{"field", "value"} }

func (p gridPayload) Rows() [][]string {
	rows := [][]string{
		{"name", p.Name},
		{"size", strconv.Itoa(p.NumRows) + " x " + strconv.Itoa(p.NumCols)},
		{"lat", output.Float(p.LatMin) + " .. " + output.Float(p.LatMax)},
		{"lon", output.Float(p.LonMin) + " .. " + output.Float(p.LonMax)},
	}
	if c := p.Nearest; c != nil {
		rows = append(rows, []string{"nearest e/n/u", output.Float(c.East) + " / " + output.Float(c.North) + " / " + output.Float(c.Up)})
	}
	return rows
}

type gridListPayload struct {
	Grids []string `json:"grids" yaml:"grids"`
}

func (p gridListPayload) Headers() []string { return []string{"name"} }

func (p gridListPayload) Rows() [][]string {
	rows := make([][]string, len(p.Grids))
	for i, g := range p.Grids {
		rows[i] = []string{g}
	}
	return rows
}
