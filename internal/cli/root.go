// Package cli implements the thermals command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/luki/thermals/internal/config"
	"github.com/luki/thermals/internal/display"
	"github.com/luki/thermals/internal/monitor"
	"github.com/luki/thermals/internal/sensor"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError carries the process exit code for err.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }
func (e *ExitError) ExitCode() int { return e.Code }

func usageError(format string, args ...any) error {
	return &ExitError{Code: ExitUsage, Err: fmt.Errorf(format, args...)}
}

// openSource is replaced in tests.
var openSource = sensor.Open

func newRootCmd(version string, stdout, stderr io.Writer) *cobra.Command {
	var flags config.Flags

	cmd := &cobra.Command{
		Use:   "thermals",
		Short: "Print hardware temperatures, color-coded",
		Long: `thermals reads the machine's temperature sensors and prints one block
per chip: the chip name followed by each labelled temperature, colored
by how hot it is (>85°C red, >65 yellow, >40 green, >20 blue, >0 magenta).

With --watch SECONDS the screen is cleared and redrawn every interval
until interrupted.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError("unexpected argument: %s", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.Resolve(cmd.Flags())
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}
			return run(cmd.Context(), cfg, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Err: err}
	})
	flags.AddFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) (err error) {
	level, err := cfg.Level()
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	src, err := openSource(ctx, cfg.SensorOptions())
	if err != nil {
		return fmt.Errorf("open sensors: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			logger.Error("closing sensor source", "error", cerr)
			if err == nil {
				err = cerr
			}
		}
	}()
	logger.Debug("sensor source ready", "source", cfg.Source, "extras", cfg.Extras)

	printer := display.NewPrinter(stdout, display.PrinterOptions{
		Renderer: display.NewRenderer(stdout, display.ColorMode(cfg.Color)),
		Describe: cfg.Describe,
		Logger:   logger,
	})

	if cfg.Watch == nil {
		return printer.Pass(ctx, src)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := display.Interval(*cfg.Watch)
	if cfg.TUI {
		err = monitor.Run(ctx, monitor.New(ctx, printer, src, interval))
	} else {
		w := &display.Watcher{
			Printer:  printer,
			Source:   src,
			Interval: interval,
			Logger:   logger,
		}
		err = w.Run(ctx)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Main runs the command with args and returns the exit code.
func Main(ctx context.Context, version string, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(version, stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			return coder.ExitCode()
		}
		return ExitFailure
	}
	return ExitOK
}

// Execute runs the root command against the process arguments. Called
// from main.go.
func Execute(version string) {
	os.Exit(Main(context.Background(), version, os.Args[1:], os.Stdout, os.Stderr))
}
