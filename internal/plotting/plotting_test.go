package plotting

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/kanglcn/apertools/internal/deform"
	"github.com/kanglcn/apertools/internal/losmap"
)

func requirePNG(t *testing.T, path string) {
	t.Helper()
	payload, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(payload), 8)
	assert.Equal(t, "\x89PNG", string(payload[:4]))
}

func TestSaveENUMapsWritesThreeBands(t *testing.T) {
	g, err := losmap.NewGrid(
		[]float64{31, 32},
		[]float64{-104, -103.5, -103},
		mat.NewDense(2, 3, []float64{0.1, -0.2, 0.3, 0.4, -0.5, 0.6}),
		mat.NewDense(2, 3, []float64{0, 0.1, 0.1, 0.2, 0.2, math.NaN()}),
		mat.NewDense(2, 3, []float64{-0.9, -0.8, -0.7, -0.6, -0.5, -0.4}),
	)
	require.NoError(t, err)

	prefix := filepath.Join(t.TempDir(), "los")
	paths, err := SaveENUMaps(g, prefix, "track 78")
	require.NoError(t, err)
	require.Equal(t, []string{prefix + "_east.png", prefix + "_north.png", prefix + "_up.png"}, paths)
	for _, p := range paths {
		requirePNG(t, p)
	}
}

func TestSaveENUMapsNilGrid(t *testing.T) {
	_, err := SaveENUMaps(nil, filepath.Join(t.TempDir(), "x"), "")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSaveLayer(t *testing.T) {
	dates := deform.DateAxis{
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 13, 0, 0, 0, 0, time.UTC),
	}
	s, err := deform.NewStack(dates, 3, 4, nil)
	require.NoError(t, err)
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			s.Set(1, r, c, float64(r*4+c))
		}
	}
	s.Set(1, 0, 0, math.NaN())

	path := filepath.Join(t.TempDir(), "vertical.png")
	require.NoError(t, SaveLayer(s, 1, path, "vertical"))
	requirePNG(t, path)

	// Constant layer still gets a usable colour range.
	flat := filepath.Join(t.TempDir(), "flat.png")
	require.NoError(t, SaveLayer(s, 0, flat, "east"))
	requirePNG(t, flat)
}

func TestSaveLayerErrors(t *testing.T) {
	dates := deform.DateAxis{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	s, err := deform.NewStack(dates, 1, 2, []float64{math.NaN(), math.NaN()})
	require.NoError(t, err)
	dir := t.TempDir()

	assert.ErrorIs(t, SaveLayer(s, 0, filepath.Join(dir, "a.png"), ""), ErrNoData)
	assert.Error(t, SaveLayer(s, 1, filepath.Join(dir, "b.png"), ""))
	assert.ErrorIs(t, SaveLayer(nil, 0, filepath.Join(dir, "c.png"), ""), ErrNoData)
}

func TestFiniteRange(t *testing.T) {
	lo, hi, ok := finiteRange([]float64{math.Inf(1), 2, -3, math.NaN()})
	require.True(t, ok)
	assert.Equal(t, -3.0, lo)
	assert.Equal(t, 2.0, hi)

	_, _, ok = finiteRange(nil)
	assert.False(t, ok)
}
