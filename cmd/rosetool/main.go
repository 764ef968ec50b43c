// rosetool is a CLI utility for inspecting ROSE Online ZMS meshes and ZON zones.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/rose-io/internal/config"
	"github.com/Faultbox/rose-io/internal/inspect"
	"github.com/Faultbox/rose-io/internal/logger"
	"github.com/Faultbox/rose-io/pkg/formats"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	config.Flags.SetOutput(stderr)
	rest, err := config.ParseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stdout)
			return 0
		}
		return 2
	}
	if len(rest) < 1 {
		printUsage(stderr)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	command, cmdArgs := rest[0], rest[1:]
	logger.Debug("rosetool starting", zap.String("command", command), zap.Strings("args", cmdArgs))

	switch command {
	case "info":
		return cmdInfo(cfg, cmdArgs, stdout, stderr)
	case "dump":
		return cmdDump(cfg, cmdArgs, stdout, stderr)
	case "verify", "check":
		return cmdVerify(cfg, cmdArgs, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `rosetool - ROSE Online mesh and zone utility

Usage:
  rosetool [global flags] <command> [options]

Commands:
  info <file>...                Show a summary of each file
  dump [-n N] <file>            Print the full decoded document
  verify [-q] <dir|file>...     Decode every .zms/.zon, exit 1 on any failure

Examples:
  rosetool info 3DDATA/AVATAR/BODY/M_BODY01.ZMS
  rosetool -format spew dump -n 4 3DDATA/MAPS/JUNON/JDT01/JDT01.ZON
  rosetool -workers 8 verify 3DDATA/

Global flags:`)
	config.PrintDefaults(w)
}

func cmdInfo(cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "Usage: rosetool info <file>...")
		return 1
	}

	reports := make([]*inspect.Report, 0, len(args))
	status := 0
	for _, path := range args {
		r := inspect.InspectFile(path)
		if !r.OK() {
			logger.Warn("inspect failed", zap.String("file", path), zap.String("error", r.Error))
			status = 1
		}
		reports = append(reports, r)
	}

	if err := writeReports(cfg.Output.Format, stdout, reports); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return status
}

func writeReports(format string, w io.Writer, reports []*inspect.Report) error {
	switch format {
	case config.FormatYAML:
		return inspect.WriteYAML(w, reports)
	case config.FormatSpew:
		return inspect.Dump(w, reports)
	default:
		return inspect.WriteText(w, reports)
	}
}

func cmdDump(cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	limit := fs.Int("n", cfg.Output.MaxVertices, "Limit vertices and triangles shown (0 = all)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: rosetool dump [-n N] <file>")
		return 1
	}

	path := fs.Arg(0)
	format, v, err := inspect.Decode(path)
	if err != nil {
		logger.Error("decode failed", zap.String("file", path), zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", errors.Wrapf(err, "decoding %s", path))
		return 1
	}
	if doc, ok := v.(*formats.MeshDocument); ok {
		v = inspect.Truncate(doc, *limit)
	}

	switch cfg.Output.Format {
	case config.FormatSpew:
		err = inspect.Dump(stdout, v)
	default:
		// Text has no full-document form; YAML is the readable one.
		err = inspect.WriteYAML(stdout, v)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger.Debug("dumped", zap.String("file", path), zap.Stringer("format", format))
	return 0
}

func cmdVerify(cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	quiet := fs.Bool("q", false, "Only print failures")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "Usage: rosetool verify [-q] <dir|file>...")
		return 1
	}

	paths, err := inspect.Collect(fs.Args(), cfg.Inspect.Extensions, cfg.Inspect.FollowSymlinks)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger.Info("verifying", zap.Int("files", len(paths)), zap.Int("workers", cfg.WorkerCount()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	in := &inspect.Inspector{Workers: cfg.WorkerCount()}
	reports, runErr := in.Run(ctx, paths)

	failed := inspect.Failed(reports)
	if cfg.Output.Format == config.FormatYAML {
		if err := inspect.WriteYAML(stdout, failed); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		for _, r := range reports {
			switch {
			case r == nil:
			case !r.OK():
				fmt.Fprintf(stdout, "FAIL %s: %s\n", r.Path, r.Error)
			case !*quiet:
				fmt.Fprintf(stdout, "ok   %s\n", r.Path)
			}
		}
	}

	fmt.Fprintf(stderr, "%d files, %d failed in %s\n", len(paths), len(failed), time.Since(start).Round(time.Millisecond))
	if runErr != nil {
		fmt.Fprintf(stderr, "Interrupted: %v\n", runErr)
		return 130
	}
	if len(failed) > 0 {
		return 1
	}
	return 0
}
