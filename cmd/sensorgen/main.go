package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/zarlcorp/core/pkg/zapp"
	"github.com/zarlcorp/sensorgen/internal/cli"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	app := zapp.New(zapp.WithName("sensorgen"))

	ctx, cancel := zapp.SignalContext(context.Background())
	defer cancel()

	slog.SetDefault(cli.NewLogger(os.Stderr, slog.LevelWarn))

	cmd, args := "generate", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	if err := cli.Run(ctx, version, cmd, args, os.Stdout); err != nil {
		if !cli.IsHelp(err) {
			slog.Error(cmd, "err", err)
		}
		_ = app.Close()
		cancel()
		os.Exit(cli.ExitCode(err))
	}

	if err := app.Close(); err != nil {
		slog.Error("shutdown", "err", err)
		cancel()
		os.Exit(1)
	}
}
