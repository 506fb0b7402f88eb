// Package cli implements sensorgen's subcommands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/sensorgen/internal/config"
	"github.com/zarlcorp/sensorgen/internal/device"
	"github.com/zarlcorp/sensorgen/internal/export"
	"github.com/zarlcorp/sensorgen/internal/output"
)

var (
	// ErrUnknownCommand is returned for a subcommand sensorgen does not have.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUnexpectedArgs is returned when a command gets positional arguments.
	ErrUnexpectedArgs = errors.New("unexpected arguments")
)

// IsHelp reports whether err is a request for usage text.
func IsHelp(err error) bool {
	return errors.Is(err, pflag.ErrHelp)
}

// Run dispatches a subcommand. Command output goes to stdout.
func Run(ctx context.Context, version, cmd string, args []string, stdout io.Writer) error {
	switch cmd {
	case "version":
		if len(args) > 0 {
			return fmt.Errorf("version: %w: %v", ErrUnexpectedArgs, args)
		}
		_, err := fmt.Fprintf(stdout, "sensorgen %s\n", version)
		return err
	case "generate":
		return CmdGenerate(ctx, args)
	case "preview":
		return CmdPreview(args, stdout)
	default:
		return fmt.Errorf("%w %q (want generate, preview or version)", ErrUnknownCommand, cmd)
	}
}

// ExitCode maps a Run error to a process exit status.
func ExitCode(err error) int {
	if err == nil || IsHelp(err) {
		return 0
	}
	return 1
}

// load parses args, resolves the config and installs the logger on logw.
func load(fs *pflag.FlagSet, args []string, logw io.Writer) (*config.Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%s: %w: %v", fs.Name(), ErrUnexpectedArgs, fs.Args())
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return nil, err
	}
	if err := SetupLogging(logw, cfg); err != nil {
		return nil, err
	}

	if cfg.File != "" {
		slog.Debug("config loaded", "file", cfg.File)
	}
	return cfg, nil
}

// CmdGenerate writes the credential artifacts into the configured directory.
func CmdGenerate(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	config.RegisterFlags(fs)

	cfg, err := load(fs, args, os.Stderr)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	w := output.New(zfilesystem.NewOSFileSystem(cfg.OutputDir))
	return Generate(ctx, cfg, w)
}

// Generate builds the identities once and writes every enabled artifact in
// order: csv, json, then ledger and workbook.
func Generate(ctx context.Context, cfg *config.Config, w *output.Writer) error {
	ids := device.Generate(cfg.Device())
	slog.Debug("identities generated", "count", len(ids))

	for _, a := range artifacts(cfg, ids) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		if err := w.Write(a.name, a.render); err != nil {
			return err
		}
	}

	return nil
}

type artifact struct {
	name   string
	render output.RenderFunc
}

func artifacts(cfg *config.Config, ids []device.Identity) []artifact {
	csvRender := func(w io.Writer) error { return export.WriteCSV(w, ids) }
	if cfg.Hashed {
		csvRender = func(w io.Writer) error { return export.WriteHashedCSV(w, ids, export.RandomSalt) }
	}

	out := []artifact{
		{cfg.CSVFile, csvRender},
		{cfg.JSONFile, func(w io.Writer) error { return export.WriteSettings(w, ids, cfg.Profile()) }},
	}

	if cfg.Ledger {
		// validated by config.Load
		format, _ := export.ParseLedgerFormat(cfg.LedgerFormat)
		out = append(out, artifact{output.LedgerFile + format.Ext(), func(w io.Writer) error {
			return export.WriteLedger(w, export.BuildLedger(ids), format)
		}})
	}

	if cfg.XLSX {
		out = append(out, artifact{output.WorkbookFile, func(w io.Writer) error {
			return export.WriteWorkbook(w, ids)
		}})
	}

	return out
}

// CmdPreview prints the identities a generate run would produce.
func CmdPreview(args []string, w io.Writer) error {
	fs := pflag.NewFlagSet("preview", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	asJSON := fs.Bool("json", false, "print as json")

	cfg, err := load(fs, args, os.Stderr)
	if err != nil {
		return err
	}

	ids := device.Generate(cfg.Device())
	if *asJSON {
		return printJSON(w, ids)
	}
	return printTable(w, ids)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
