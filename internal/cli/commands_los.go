package cli

import (
	"strconv"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/kanglcn/apertools/internal/logging"
	"github.com/kanglcn/apertools/internal/los"
)

func newRotCommand(sess *session) *cobra.Command {
	var angle float64
	var axis int
	var radians bool

	cmd := &cobra.Command{
		Use:   "rot",
		Short: "Print the 3x3 frame rotation matrix about one axis.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := los.Rot(angle, los.Axis(axis), !radians)
			if err != nil {
				return err
			}
			return sess.render(cmd, matrixPayload{Matrix: denseRows(r)})
		},
	}
	cmd.Flags().Float64Var(&angle, "angle", 0, "Rotation angle.")
	cmd.Flags().IntVar(&axis, "axis", 0, "Rotation axis: 1 (x), 2 (y) or 3 (z).")
	cmd.Flags().BoolVar(&radians, "radians", false, "Interpret --angle in radians instead of degrees.")
	_ = cmd.MarkFlagRequired("angle")
	_ = cmd.MarkFlagRequired("axis")
	return cmd
}

func denseRows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = make([]float64, c)
		for j := range rows[i] {
			rows[i][j] = m.At(i, j)
		}
	}
	return rows
}

func newXYZToENUCommand(sess *session) *cobra.Command {
	var lat, lon float64
	var inverse bool

	cmd := &cobra.Command{
		Use:   "xyz-to-enu <x> <y> <z>",
		Short: "Rotate an ECEF vector into the local east/north/up frame.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseVec(args)
			if err != nil {
				return err
			}
			p := los.GeodeticPoint{LatDeg: lat, LonDeg: lon}
			if inverse {
				xyz, err := los.RotateENUToXYZ(mat.NewDense(3, 1, []float64{v.X, v.Y, v.Z}), p)
				if err != nil {
					return err
				}
				return sess.render(cmd, xyzPayload{X: xyz.At(0, 0), Y: xyz.At(1, 0), Z: xyz.At(2, 0)})
			}
			enu := los.RotateVec(v, p)
			sess.logger.Debug("rotated vector",
				logging.F("lat", lat),
				logging.F("lon", lon),
				logging.F("norm", r3.Norm(v)),
			)
			return sess.render(cmd, enuPayload{East: enu.East, North: enu.North, Up: enu.Up})
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude in degrees.")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude in degrees.")
	cmd.Flags().BoolVar(&inverse, "inverse", false, "Treat the arguments as east north up and rotate back to XYZ.")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func parseVec(args []string) (r3.Vec, error) {
	var v [3]float64
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return r3.Vec{}, usageError("component %d: %v", i+1, err)
		}
		v[i] = f
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}

func newCoeffsCommand(sess *session) *cobra.Command {
	src := &sourceFlags{}

	cmd := &cobra.Command{
		Use:   "coeffs",
		Short: "Resolve the ENU coefficients of a line of sight.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, label, err := src.source(cmd.Context(), cmd.Flags(), sess.cfg.LOSMapDB)
			if err != nil {
				return err
			}
			c, err := los.Resolve(s)
			if err != nil {
				return err
			}
			return sess.render(cmd, newCoeffPayload(label, c))
		},
	}
	src.register(cmd.Flags(), "")
	return cmd
}

func newProjectCommand(sess *session) *cobra.Command {
	src := &sourceFlags{}
	var enu []float64

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project an ENU displacement onto a line of sight.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := triple("enu", enu)
			if err != nil {
				return err
			}
			s, label, err := src.source(cmd.Context(), cmd.Flags(), sess.cfg.LOSMapDB)
			if err != nil {
				return err
			}
			c, err := los.Resolve(s)
			if err != nil {
				return err
			}
			value := los.ProjectENU(los.ENU{East: v.X, North: v.Y, Up: v.Z}, c)
			return sess.render(cmd, projectPayload{LOS: value, Coefficients: newCoeffPayload(label, c)})
		},
	}
	cmd.Flags().Float64SliceVar(&enu, "enu", nil, "Displacement e,n,u to project.")
	_ = cmd.MarkFlagRequired("enu")
	src.register(cmd.Flags(), "")
	return cmd
}
