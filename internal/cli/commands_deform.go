package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kanglcn/apertools/internal/deform"
	"github.com/kanglcn/apertools/internal/logging"
	"github.com/kanglcn/apertools/internal/los"
	"github.com/kanglcn/apertools/internal/plotting"
	"github.com/kanglcn/apertools/internal/stackio"
	"github.com/kanglcn/apertools/internal/telemetry"
	"github.com/kanglcn/apertools/internal/units"
)

func newMergeDatesCommand(sess *session) *cobra.Command {
	var first, second []string

	cmd := &cobra.Command{
		Use:   "merge-dates",
		Short: "Merge two acquisition date lists and report where each date lands.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := deform.ParseDateAxis(first)
			if err != nil {
				return usageError("--dates1: %v", err)
			}
			b, err := deform.ParseDateAxis(second)
			if err != nil {
				return usageError("--dates2: %v", err)
			}
			merged, err := deform.MergeDates(a, b)
			if err != nil {
				return err
			}
			return sess.render(cmd, newMergePayload(merged))
		},
	}
	cmd.Flags().StringSliceVar(&first, "dates1", nil, "First date list (YYYY-MM-DD or YYYYMMDD, comma separated).")
	cmd.Flags().StringSliceVar(&second, "dates2", nil, "Second date list.")
	return cmd
}

type decomposeOptions struct {
	ascPath, descPath     string
	eastOut, vertOut      string
	align                 bool
	scalePhase            bool
	plotDir               string
	ascSource, descSource *sourceFlags
}

func newDecomposeCommand(sess *session) *cobra.Command {
	opts := decomposeOptions{
		ascSource:  &sourceFlags{prefix: "asc-"},
		descSource: &sourceFlags{prefix: "desc-"},
	}

	cmd := &cobra.Command{
		Use:   "decompose",
		Short: "Split ascending and descending LOS stacks into east and vertical motion.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDecompose(cmd, sess, opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.ascPath, "asc", "", "Ascending LOS stack (.bin, .raw or .npy with a .yaml header).")
	fs.StringVar(&opts.descPath, "desc", "", "Descending LOS stack.")
	fs.StringVar(&opts.eastOut, "east-out", "east.npy", "Output path for the east stack.")
	fs.StringVar(&opts.vertOut, "vertical-out", "vertical.npy", "Output path for the vertical stack.")
	fs.BoolVar(&opts.align, "align", false, "Keep only the dates present in both stacks.")
	fs.BoolVar(&opts.scalePhase, "scale-phase", false, "Inputs are phase in radians; convert to cm using --sensor.")
	fs.StringVar(&opts.plotDir, "plot-dir", "", "Write PNG maps of the last east and vertical layers to this directory.")
	opts.ascSource.register(cmd.Flags(), "Ascending ")
	opts.descSource.register(cmd.Flags(), "Descending ")
	_ = cmd.MarkFlagRequired("asc")
	_ = cmd.MarkFlagRequired("desc")
	return cmd
}

func runDecompose(cmd *cobra.Command, sess *session, opts decomposeOptions) error {
	ctx := cmd.Context()
	ascSrc, ascLabel, err := opts.ascSource.source(ctx, cmd.Flags(), sess.cfg.LOSMapDB)
	if err != nil {
		return err
	}
	descSrc, descLabel, err := opts.descSource.source(ctx, cmd.Flags(), sess.cfg.LOSMapDB)
	if err != nil {
		return err
	}
	ca, err := los.Resolve(ascSrc)
	if err != nil {
		return fmt.Errorf("ascending coefficients: %w", err)
	}
	cd, err := los.Resolve(descSrc)
	if err != nil {
		return fmt.Errorf("descending coefficients: %w", err)
	}

	asc, hdr, err := stackio.Load(opts.ascPath)
	if err != nil {
		return fmt.Errorf("ascending stack: %w", err)
	}
	desc, _, err := stackio.Load(opts.descPath)
	if err != nil {
		return fmt.Errorf("descending stack: %w", err)
	}
	if opts.align {
		if asc, desc, err = deform.AlignStacks(asc, desc); err != nil {
			return err
		}
		sess.logger.Info("aligned stacks on common dates", logging.F("layers", asc.Layers))
	}

	unitLabel := hdr.Units
	if opts.scalePhase {
		factor := units.PhaseToCM(sess.sensor.Wavelength())
		units.Scale(asc.Data, factor)
		units.Scale(desc.Data, factor)
		unitLabel = "cm"
		sess.logger.Debug("scaled phase to cm", logging.F("sensor", string(sess.sensor)), logging.F("factor", factor))
	}

	d := deform.NewDecomposer(
		deform.WithLogger(sess.logger),
		deform.WithWorkers(sess.cfg.Workers),
		deform.WithMaxCondition(sess.cfg.MaxCondition),
		deform.WithReporter(telemetry.NewLogReporter(sess.logger, 0.1)),
	)
	east, vertical, err := d.FindVerticalDef(
		deform.Geometry{Source: ca, Stack: asc},
		deform.Geometry{Source: cd, Stack: desc},
	)
	if err != nil {
		return err
	}
	if err := stackio.Save(opts.eastOut, east, unitLabel); err != nil {
		return fmt.Errorf("write east stack: %w", err)
	}
	if err := stackio.Save(opts.vertOut, vertical, unitLabel); err != nil {
		return fmt.Errorf("write vertical stack: %w", err)
	}

	payload := decomposePayload{
		Shape:        east.Shape().String(),
		Dates:        east.Dates.Strings(),
		Ascending:    newCoeffPayload(ascLabel, ca),
		Descending:   newCoeffPayload(descLabel, cd),
		EastPath:     opts.eastOut,
		VerticalPath: opts.vertOut,
		Units:        unitLabel,
	}
	if opts.plotDir != "" && east.Layers > 0 && east.Rows > 0 && east.Cols > 0 {
		last := east.Layers - 1
		for _, out := range []struct {
			name  string
			stack *deform.Stack
		}{{"east", east}, {"vertical", vertical}} {
			path := filepath.Join(opts.plotDir, out.name+".png")
			if err := plotting.SaveLayer(out.stack, last, path, out.name); err != nil {
				sess.logger.Warn("skipping plot", logging.F("path", path), logging.F("error", err.Error()))
				continue
			}
			payload.Plots = append(payload.Plots, path)
		}
	}
	return sess.render(cmd, payload)
}
