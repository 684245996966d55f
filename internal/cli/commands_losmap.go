package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/kanglcn/apertools/internal/logging"
	"github.com/kanglcn/apertools/internal/los"
	"github.com/kanglcn/apertools/internal/losmap"
	"github.com/kanglcn/apertools/internal/plotting"
)

func newLOSMapCommand(sess *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "losmap",
		Short: "Build, inspect and plot stored LOS coefficient maps.",
	}
	cmd.AddCommand(newLOSMapBuildCommand(sess))
	cmd.AddCommand(newLOSMapShowCommand(sess))
	cmd.AddCommand(newLOSMapPlotCommand(sess))
	return cmd
}

// gridInput is the YAML input of "losmap build". Vectors are XYZ LOS vectors
// in row-major order (one per lat/lon node); Vector applies one vector to
// every node.
type gridInput struct {
	Lats    []float64   `yaml:"lats"`
	Lons    []float64   `yaml:"lons"`
	Vector  []float64   `yaml:"vector"`
	Vectors [][]float64 `yaml:"vectors"`
}

func readGridInput(path string) (gridInput, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return gridInput{}, err
	}
	var in gridInput
	if err := yaml.Unmarshal(payload, &in); err != nil {
		return gridInput{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return in, nil
}

func (s gridInput) vectorAt() (func(row, col int) r3.Vec, error) {
	nodes := len(s.Lats) * len(s.Lons)
	switch {
	case len(s.Vector) > 0 && len(s.Vectors) > 0:
		return nil, usageError("grid file sets both vector and vectors")
	case len(s.Vector) > 0:
		v, err := triple("vector", s.Vector)
		if err != nil {
			return nil, err
		}
		return func(int, int) r3.Vec { return v }, nil
	case len(s.Vectors) != nodes:
		return nil, usageError("grid file has %d vectors for %d nodes", len(s.Vectors), nodes)
	}
	vecs := make([]r3.Vec, nodes)
	for i, raw := range s.Vectors {
		v, err := triple(fmt.Sprintf("vectors[%d]", i), raw)
		if err != nil {
			return nil, err
		}
		vecs[i] = v
	}
	cols := len(s.Lons)
	return func(row, col int) r3.Vec { return vecs[row*cols+col] }, nil
}

func newLOSMapBuildCommand(sess *session) *cobra.Command {
	var name, input string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Derive ENU coefficients from XYZ LOS vectors on a lat/lon grid and store them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := readGridInput(input)
			if err != nil {
				return err
			}
			vecAt, err := in.vectorAt()
			if err != nil {
				return err
			}
			grid, err := losmap.FromXYZ(in.Lats, in.Lons, vecAt)
			if err != nil {
				return err
			}
			store, err := losmap.OpenStore(sess.cfg.LOSMapDB)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Save(cmd.Context(), name, grid); err != nil {
				return err
			}
			rows, cols := grid.Dims()
			sess.logger.Info("stored LOS map",
				logging.F("name", name),
				logging.F("rows", rows),
				logging.F("cols", cols),
				logging.F("db", sess.cfg.LOSMapDB),
			)
			return sess.render(cmd, newGridPayload(name, grid))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Name to store the map under.")
	cmd.Flags().StringVar(&input, "input", "", "YAML file with lats, lons and vector or vectors.")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newLOSMapShowCommand(sess *session) *cobra.Command {
	var name string
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List stored maps, or describe one and optionally look up a point.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				store, err := losmap.OpenStore(sess.cfg.LOSMapDB)
				if err != nil {
					return err
				}
				defer store.Close()
				names, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				return sess.render(cmd, gridListPayload{Grids: names})
			}

			grid, err := loadGrid(cmd.Context(), sess.cfg.LOSMapDB, name)
			if err != nil {
				return err
			}
			payload := newGridPayload(name, grid)
			hasLat, hasLon := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
			if hasLat != hasLon {
				return usageError("--lat and --lon must be given together")
			}
			if hasLat {
				c, err := grid.Nearest(los.GeodeticPoint{LatDeg: lat, LonDeg: lon})
				if err != nil {
					return err
				}
				nearest := newCoeffPayload("losmap:"+name, c)
				payload.Nearest = &nearest
			}
			return sess.render(cmd, payload)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Map to describe; lists all maps when empty.")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude to look up.")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude to look up.")
	return cmd
}

func newLOSMapPlotCommand(sess *session) *cobra.Command {
	var name, prefix, title string

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Write PNG maps of the east, north and up coefficient magnitudes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			grid, err := loadGrid(cmd.Context(), sess.cfg.LOSMapDB, name)
			if err != nil {
				return err
			}
			if prefix == "" {
				prefix = name
			}
			if title == "" {
				title = name
			}
			paths, err := plotting.SaveENUMaps(grid, prefix, title)
			if err != nil {
				return err
			}
			return sess.render(cmd, struct {
				Plots []string `json:"plots" yaml:"plots"`
			}{Plots: paths})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Map to plot.")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Output path prefix (default: the map name).")
	cmd.Flags().StringVar(&title, "title", "", "Plot title (default: the map name).")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
