package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/kanglcn/apertools/internal/cli"
	"github.com/kanglcn/apertools/internal/config"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	path, err := config.Path(os.LookupEnv)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(cli.ExitFailure)
	}
	cfg, err := config.Load(path)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(cli.ExitFailure)
	}

	deps := cli.Dependencies{
		Config:     cfg.WithEnv(os.LookupEnv),
		ConfigPath: path,
		Version:    version,
	}
	code := cli.Execute(ctx, os.Args[1:], deps, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
