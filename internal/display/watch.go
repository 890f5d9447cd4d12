package display

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/muesli/termenv"

	"github.com/luki/thermals/internal/sensor"
)

// ClearHome erases the screen and moves the cursor to the top-left corner.
var ClearHome = termenv.CSI + fmt.Sprintf(termenv.EraseDisplaySeq, 2) +
	termenv.CSI + fmt.Sprintf(termenv.CursorPositionSeq, 1, 1)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Watcher redraws the full display every Interval until its context ends.
// Each frame is prefixed with ClearHome and written in one piece. Failed
// passes are logged and retried on the next tick.
type Watcher struct {
	Printer  *Printer
	Source   sensor.Source
	Interval time.Duration
	Sleep    SleepFunc
	Logger   *slog.Logger
}

// Run loops until ctx is cancelled and then returns ctx.Err().
func (w *Watcher) Run(ctx context.Context) error {
	sleep := w.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for {
		if err := w.Printer.pass(ctx, w.Source, ClearHome); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !errors.Is(err, sensor.ErrNameUnavailable) {
				logger.Warn("refresh failed", "error", err)
			}
		}
		if err := sleep(ctx, w.Interval); err != nil {
			return err
		}
	}
}

// Interval converts a watch interval in seconds to a Duration.
func Interval(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
