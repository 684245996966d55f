package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/kanglcn/apertools/internal/config"
	"github.com/kanglcn/apertools/internal/deform"
)

var unknownCommandPattern = regexp.MustCompile(`unknown command "([^"]+)"`)

// Dependencies wires runtime settings into the command tree.
type Dependencies struct {
	// Config is the loaded file config with environment overrides applied.
	Config     config.Config
	ConfigPath string
	Version    string
}

var errVersionShown = fmt.Errorf("version shown")

// Exit codes returned by Execute.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitGeometry = 3
)

// Execute runs the CLI with injected dependencies.
func Execute(ctx context.Context, args []string, deps Dependencies, stdout io.Writer, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil || errors.Is(err, errVersionShown) {
		return ExitOK
	}

	if matches := unknownCommandPattern.FindStringSubmatch(err.Error()); len(matches) > 1 {
		_, _ = fmt.Fprintf(stderr, "No such command '%s'\n", matches[1])
		return ExitUsage
	}

	_, _ = fmt.Fprintln(stderr, err.Error())
	switch {
	case errors.Is(err, deform.ErrSingularGeometry), errors.Is(err, deform.ErrShapeMismatch):
		return ExitGeometry
	case errors.Is(err, errUsage):
		return ExitUsage
	}
	return ExitFailure
}
