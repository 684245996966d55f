package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/kanglcn/apertools/internal/los"
	"github.com/kanglcn/apertools/internal/losmap"
)

// sourceFlags selects one coefficient source from command flags. With a
// prefix, the same set is registered twice on one command (asc-, desc-).
type sourceFlags struct {
	prefix  string
	coeffs  []float64
	vector  []float64
	az, inc float64
	lat     float64
	lon     float64
	mapName string
}

func (f *sourceFlags) name(flag string) string { return f.prefix + flag }

func (f *sourceFlags) register(fs *pflag.FlagSet, label string) {
	fs.Float64SliceVar(&f.coeffs, f.name("coeffs"), nil, label+"ENU coefficients e,n,u.")
	fs.Float64SliceVar(&f.vector, f.name("los"), nil, label+"XYZ LOS vector x,y,z pointing from satellite to ground.")
	fs.Float64Var(&f.az, f.name("az"), 0, label+"LOS azimuth in degrees (with --"+f.name("inc")+").")
	fs.Float64Var(&f.inc, f.name("inc"), 0, label+"LOS incidence angle in degrees (with --"+f.name("az")+").")
	fs.Float64Var(&f.lat, f.name("lat"), 0, label+"Latitude in degrees for --"+f.name("los")+" or --"+f.name("map")+".")
	fs.Float64Var(&f.lon, f.name("lon"), 0, label+"Longitude in degrees for --"+f.name("los")+" or --"+f.name("map")+".")
	fs.StringVar(&f.mapName, f.name("map"), "", label+"Name of a stored LOS map to look up.")
}

func (f *sourceFlags) point() los.GeodeticPoint {
	return los.GeodeticPoint{LatDeg: f.lat, LonDeg: f.lon}
}

// source builds the selected CoefficientSource. Exactly one of the coeffs,
// los, az/inc and map selectors must be set.
func (f *sourceFlags) source(ctx context.Context, fs *pflag.FlagSet, dbPath string) (los.CoefficientSource, string, error) {
	var chosen []string
	for _, sel := range []string{"coeffs", "los", "az", "map"} {
		if fs.Changed(f.name(sel)) {
			chosen = append(chosen, "--"+f.name(sel))
		}
	}
	if fs.Changed(f.name("inc")) && !fs.Changed(f.name("az")) {
		return nil, "", usageError("--%s requires --%s", f.name("inc"), f.name("az"))
	}
	switch len(chosen) {
	case 0:
		return nil, "", usageError("one of --%s, --%s, --%s/--%s or --%s is required",
			f.name("coeffs"), f.name("los"), f.name("az"), f.name("inc"), f.name("map"))
	case 1:
	default:
		return nil, "", usageError("flags %s are mutually exclusive", strings.Join(chosen, ", "))
	}
	needsPoint := fs.Changed(f.name("los")) || fs.Changed(f.name("map"))
	if needsPoint && (!fs.Changed(f.name("lat")) || !fs.Changed(f.name("lon"))) {
		return nil, "", usageError("%s requires --%s and --%s", chosen[0], f.name("lat"), f.name("lon"))
	}

	switch {
	case fs.Changed(f.name("coeffs")):
		v, err := triple(f.name("coeffs"), f.coeffs)
		if err != nil {
			return nil, "", err
		}
		return los.Coefficients{East: v.X, North: v.Y, Up: v.Z}, "coefficients", nil
	case fs.Changed(f.name("los")):
		v, err := triple(f.name("los"), f.vector)
		if err != nil {
			return nil, "", err
		}
		return los.RawVector{LOS: v, Point: f.point()}, "los-vector", nil
	case fs.Changed(f.name("az")):
		if !fs.Changed(f.name("inc")) {
			return nil, "", usageError("--%s requires --%s", f.name("az"), f.name("inc"))
		}
		return los.FromAzimuthIncidence(f.az, f.inc), "azimuth-incidence", nil
	default:
		grid, err := loadGrid(ctx, dbPath, f.mapName)
		if err != nil {
			return nil, "", err
		}
		return los.TableLookup{Table: grid, Point: f.point()}, "losmap:" + f.mapName, nil
	}
}

func triple(flag string, values []float64) (r3.Vec, error) {
	if len(values) != 3 {
		return r3.Vec{}, usageError("--%s needs exactly 3 comma-separated values, got %d", flag, len(values))
	}
	return r3.Vec{X: values[0], Y: values[1], Z: values[2]}, nil
}

func loadGrid(ctx context.Context, dbPath, name string) (*losmap.Grid, error) {
	store, err := losmap.OpenStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	grid, err := store.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load LOS map %q: %w", name, err)
	}
	return grid, nil
}
