package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kanglcn/apertools/internal/config"
	"github.com/kanglcn/apertools/internal/logging"
	"github.com/kanglcn/apertools/internal/output"
	"github.com/kanglcn/apertools/internal/units"
)

// errUsage marks invalid flag combinations that cobra cannot check itself.
var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// session is the effective runtime state shared by every command once the
// global flags have been applied on top of the loaded config.
type session struct {
	deps   Dependencies
	cfg    config.Config
	logger logging.Logger
	format output.Format
	sensor units.Sensor
}

func (s *session) render(cmd *cobra.Command, payload any) error {
	return output.Render(cmd.OutOrStdout(), s.format, payload)
}

// NewRootCommand builds the complete command tree.
func NewRootCommand(deps Dependencies) *cobra.Command {
	sess := &session{deps: deps, cfg: deps.Config, logger: logging.Nop()}
	flags := deps.Config

	root := &cobra.Command{
		Use:           "apertools",
		Short:         "Convert InSAR line-of-sight vectors and decompose LOS deformation.",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if show, _ := cmd.Flags().GetBool("version"); show {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), resolvedVersion(deps.Version))
				return errVersionShown
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.Validate(); err != nil {
				return err
			}
			logger, err := flags.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			format, err := output.ParseFormat(flags.OutputFormat)
			if err != nil {
				return err
			}
			sensor, err := units.ParseSensor(flags.Sensor)
			if err != nil {
				return err
			}
			sess.cfg = flags
			sess.logger = logger.With(logging.F("cmd", cmd.Name()))
			sess.format = format
			sess.sensor = sensor
			return nil
		},
	}
	root.Flags().BoolP("version", "v", false, "Show version and exit.")

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.OutputFormat, "format", "f", flags.OutputFormat, "Output format: table, json, or yaml.")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, or error.")
	pf.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: text or json.")
	pf.IntVar(&flags.Workers, "workers", flags.Workers, "Decomposition worker goroutines (0 = one per CPU).")
	pf.Float64Var(&flags.MaxCondition, "max-condition", flags.MaxCondition, "Largest accepted geometry condition number.")
	pf.StringVar(&flags.Sensor, "sensor", flags.Sensor, "Radar sensor for phase scaling: sentinel or uavsar.")
	pf.StringVar(&flags.LOSMapDB, "db", flags.LOSMapDB, "SQLite database holding LOS coefficient maps.")

	root.AddCommand(newRotCommand(sess))
	root.AddCommand(newXYZToENUCommand(sess))
	root.AddCommand(newCoeffsCommand(sess))
	root.AddCommand(newProjectCommand(sess))
	root.AddCommand(newMergeDatesCommand(sess))
	root.AddCommand(newDecomposeCommand(sess))
	root.AddCommand(newLOSMapCommand(sess))
	root.AddCommand(newConfigCommand(sess))
	root.AddCommand(newVersionCommand(deps))

	return root
}
