package deform

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/kanglcn/apertools/internal/logging"
	"github.com/kanglcn/apertools/internal/los"
	"github.com/kanglcn/apertools/internal/telemetry"
)

const (
	// DefaultMaxCondition is the largest geometry-matrix condition number
	// accepted before the geometry is reported as singular.
	DefaultMaxCondition = 1e10

	defaultChunkColumns = 1 << 16
)

// EastUp is the [alpha_E, alpha_U] pair of one viewing geometry. The north
// component is neglected in the two-unknown decomposition.
type EastUp struct {
	East float64
	Up   float64
}

// EastUpOf drops the north component of c.
func EastUpOf(c los.Coefficients) EastUp {
	eu := c.EastUp()
	return EastUp{East: eu[0], Up: eu[1]}
}

// Decomposer splits ascending and descending LOS stacks into east and
// vertical motion by solving a 2x2 system for every sample.
type Decomposer struct {
	logger   logging.Logger
	reporter telemetry.Reporter
	workers  int
	maxCond  float64
	chunk    int
}

// Option configures a Decomposer.
type Option func(*Decomposer)

// WithLogger injects the logger used for diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(d *Decomposer) { d.logger = logging.OrNop(l) }
}

// WithReporter receives progress as column chunks complete.
func WithReporter(r telemetry.Reporter) Option {
	return func(d *Decomposer) {
		if r != nil {
			d.reporter = r
		}
	}
}

// WithWorkers sets the number of goroutines solving column chunks.
// Values below 1 select runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(d *Decomposer) { d.workers = n }
}

// WithMaxCondition overrides DefaultMaxCondition.
func WithMaxCondition(c float64) Option {
	return func(d *Decomposer) {
		if c > 0 {
			d.maxCond = c
		}
	}
}

// WithChunkColumns sets how many samples each worker solves per job.
func WithChunkColumns(n int) Option {
	return func(d *Decomposer) {
		if n > 0 {
			d.chunk = n
		}
	}
}

// NewDecomposer returns a Decomposer with the given options applied.
func NewDecomposer(opts ...Option) *Decomposer {
	d := &Decomposer{
		logger:   logging.Nop(),
		reporter: telemetry.Nop{},
		maxCond:  DefaultMaxCondition,
		chunk:    defaultChunkColumns,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers < 1 {
		d.workers = runtime.NumCPU()
	}
	if d.workers < 1 {
		d.workers = 1
	}
	return d
}

// GeometryMatrix builds M = [[aE_asc, aU_asc], [aE_desc, aU_desc]] and
// rejects it when it is too ill-conditioned to invert.
func (d *Decomposer) GeometryMatrix(asc, desc EastUp) (*mat.Dense, error) {
	m := mat.NewDense(2, 2, []float64{
		asc.East, asc.Up,
		desc.East, desc.Up,
	})
	var lu mat.LU
	lu.Factorize(m)
	cond := lu.Cond()
	det := lu.Det()
	if det == 0 || math.IsNaN(det) || math.IsNaN(cond) {
		cond = math.Inf(1)
	}
	if math.IsInf(cond, 0) || cond > d.maxCond {
		return nil, &SingularGeometryError{Cond: cond, Det: det}
	}
	if d.logger.Enabled(logging.Debug) {
		d.logger.Debug("geometry matrix",
			logging.F("asc", []float64{asc.East, asc.Up}),
			logging.F("desc", []float64{desc.East, desc.Up}),
			logging.F("cond", cond),
			logging.F("det", det),
		)
	}
	return m, nil
}

type span struct {
	lo, hi int
}

// Decompose solves M * [east, vertical]^T = [los_asc, los_desc]^T for every
// (layer, row, col) sample. The outputs carry the ascending date axis.
func (d *Decomposer) Decompose(asc, desc EastUp, stackAsc, stackDesc *Stack) (east, vertical *Stack, err error) {
	if stackAsc == nil || stackDesc == nil {
		return nil, nil, fmt.Errorf("%w: nil stack", ErrShapeMismatch)
	}
	if err := stackAsc.Validate(); err != nil {
		return nil, nil, fmt.Errorf("ascending stack: %w", err)
	}
	if err := stackDesc.Validate(); err != nil {
		return nil, nil, fmt.Errorf("descending stack: %w", err)
	}
	shape := stackAsc.Shape()
	if other := stackDesc.Shape(); other != shape {
		return nil, nil, fmt.Errorf("%w: ascending %s, descending %s", ErrShapeMismatch, shape, other)
	}
	m, err := d.GeometryMatrix(asc, desc)
	if err != nil {
		return nil, nil, err
	}
	if !stackAsc.Dates.Equal(stackDesc.Dates) {
		d.logger.Warn("ascending and descending date axes differ; using ascending dates",
			logging.F("asc_first", firstDate(stackAsc.Dates)),
			logging.F("desc_first", firstDate(stackDesc.Dates)),
		)
	}

	east, err = NewStack(append(DateAxis(nil), stackAsc.Dates...), shape.Rows, shape.Cols, nil)
	if err != nil {
		return nil, nil, err
	}
	vertical, err = NewStack(append(DateAxis(nil), stackAsc.Dates...), shape.Rows, shape.Cols, nil)
	if err != nil {
		return nil, nil, err
	}
	n := shape.Size()
	if n == 0 {
		return east, vertical, nil
	}

	if err := d.solve(m, stackAsc.Data, stackDesc.Data, east.Data, vertical.Data); err != nil {
		return nil, nil, err
	}
	d.logger.Info("decomposed stacks",
		logging.F("shape", shape.String()),
		logging.F("workers", d.workers),
	)
	return east, vertical, nil
}

// solve runs the column-chunked solve. Each worker factorizes its own copy
// of M and writes to a disjoint range of the outputs.
func (d *Decomposer) solve(m *mat.Dense, losAsc, losDesc, outEast, outVert []float64) error {
	n := len(losAsc)
	jobs := make(chan span)
	total := (n + d.chunk - 1) / d.chunk
	start := time.Now()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
		done     atomic.Int64
		samples  atomic.Int64
	)
	for w := 0; w < d.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var lu mat.LU
			lu.Factorize(m)
			for sp := range jobs {
				if err := solveSpan(&lu, sp, losAsc, losDesc, outEast, outVert); err != nil {
					errOnce.Do(func() { firstErr = err })
				}
				d.reporter.Report(telemetry.Progress{
					Done:    int(done.Add(1)),
					Total:   total,
					Samples: int(samples.Add(int64(sp.hi - sp.lo))),
					Elapsed: time.Since(start),
				})
			}
		}()
	}

	for lo := 0; lo < n; lo += d.chunk {
		jobs <- span{lo: lo, hi: min(lo+d.chunk, n)}
	}
	close(jobs)
	wg.Wait()
	return firstErr
}

func solveSpan(lu *mat.LU, sp span, losAsc, losDesc, outEast, outVert []float64) error {
	width := sp.hi - sp.lo
	b := mat.NewDense(2, width, nil)
	b.SetRow(0, losAsc[sp.lo:sp.hi])
	b.SetRow(1, losDesc[sp.lo:sp.hi])

	var x mat.Dense
	if err := lu.SolveTo(&x, false, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return fmt.Errorf("solve columns [%d, %d): %w", sp.lo, sp.hi, err)
		}
	}
	copy(outEast[sp.lo:sp.hi], x.RawRowView(0))
	copy(outVert[sp.lo:sp.hi], x.RawRowView(1))
	return nil
}

func firstDate(a DateAxis) string {
	if len(a) == 0 {
		return ""
	}
	return a[0].Format(DateLayout)
}

// Geometry pairs one viewing geometry's coefficient source with its stack.
type Geometry struct {
	Source los.CoefficientSource
	Stack  *Stack
}

// FindVerticalDef resolves the coefficients of both geometries and
// decomposes their stacks into east and vertical deformation.
func (d *Decomposer) FindVerticalDef(asc, desc Geometry) (east, vertical *Stack, err error) {
	ca, err := los.Resolve(asc.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("ascending coefficients: %w", err)
	}
	cd, err := los.Resolve(desc.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("descending coefficients: %w", err)
	}
	euAsc, euDesc := EastUpOf(ca), EastUpOf(cd)
	d.logger.Info("east-up coefficients",
		logging.F("asc", []float64{euAsc.East, euAsc.Up}),
		logging.F("desc", []float64{euDesc.East, euDesc.Up}),
	)
	return d.Decompose(euAsc, euDesc, asc.Stack, desc.Stack)
}
