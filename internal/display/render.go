package display

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/luki/thermals/internal/sensor"
)

// ColorMode controls whether temperatures are colorized.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// NewRenderer returns a lipgloss renderer for w. In auto mode colors are
// used only when w is a terminal and NO_COLOR is unset.
func NewRenderer(w io.Writer, mode ColorMode) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	default:
		f, ok := w.(*os.File)
		if !ok || !term.IsTerminal(int(f.Fd())) || os.Getenv("NO_COLOR") != "" {
			r.SetColorProfile(termenv.Ascii)
		} else {
			r.SetColorProfile(termenv.NewOutput(f).EnvColorProfile())
		}
	}
	return r
}

// PrinterOptions configures a Printer. Zero values are usable.
type PrinterOptions struct {
	Renderer *lipgloss.Renderer
	// Describe appends the component name to chip headers,
	// e.g. "coretemp-isa-0000 (CPU)".
	Describe bool
	Logger   *slog.Logger
}

// Printer renders sensor snapshots and flushes each one with a single
// write, so a refreshed screen never shows a half-drawn frame.
type Printer struct {
	out      io.Writer
	renderer *lipgloss.Renderer
	describe bool
	logger   *slog.Logger
}

func NewPrinter(out io.Writer, opts PrinterOptions) *Printer {
	p := &Printer{
		out:      out,
		renderer: opts.Renderer,
		describe: opts.Describe,
		logger:   opts.Logger,
	}
	if p.renderer == nil {
		p.renderer = NewRenderer(out, ColorAuto)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// FormatTemp renders a temperature with the shortest decimal form that
// round-trips, followed by "°C".
func FormatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "°C"
}

// RenderChip writes the chip header and one line per readable temperature
// to w. Chips without any temperature produce no output. The only error
// is a chip name that cannot be read.
func (p *Printer) RenderChip(w io.Writer, chip sensor.Chip) error {
	name, err := chip.Name()
	if err != nil {
		if errors.Is(err, sensor.ErrNameUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", sensor.ErrNameUnavailable, err)
	}

	pairs := ExtractAll(chip)
	if len(pairs) == 0 {
		return nil
	}

	header := name
	if p.describe {
		if friendly := sensor.FriendlyName(name); friendly != "" {
			header += " (" + friendly + ")"
		}
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	for _, pair := range pairs {
		value := p.renderer.NewStyle().
			Foreground(Classify(pair.Temp).ANSI()).
			Render(FormatTemp(pair.Temp))
		if _, err := fmt.Fprintf(w, " %s: %s\n", pair.Label, value); err != nil {
			return err
		}
	}
	return nil
}

// Frame renders every chip of one snapshot into memory. A chip whose name
// cannot be read is left out; its error is logged and returned, joined
// with the others, alongside the frame for the remaining chips.
func (p *Printer) Frame(ctx context.Context, src sensor.Source) ([]byte, error) {
	frame, chipErr, err := p.frame(ctx, src)
	if err != nil {
		return nil, err
	}
	return frame, chipErr
}

func (p *Printer) frame(ctx context.Context, src sensor.Source) (frame []byte, chipErr, err error) {
	chips, err := src.Chips(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("enumerate chips: %w", err)
	}

	var buf bytes.Buffer
	var errs []error
	for i, chip := range chips {
		var chipBuf bytes.Buffer
		if err := p.RenderChip(&chipBuf, chip); err != nil {
			p.logger.Warn("skipping chip", "index", i, "error", err)
			errs = append(errs, fmt.Errorf("chip %d: %w", i, err))
			continue
		}
		buf.Write(chipBuf.Bytes())
	}
	return buf.Bytes(), errors.Join(errs...), nil
}

// Pass renders one snapshot and writes it out in a single write. Chips
// that failed are missing from the output and reported in the returned
// error; an enumeration failure writes nothing.
func (p *Printer) Pass(ctx context.Context, src sensor.Source) error {
	return p.pass(ctx, src, "")
}

func (p *Printer) pass(ctx context.Context, src sensor.Source, prefix string) error {
	frame, chipErr, err := p.frame(ctx, src)
	if err != nil {
		return err
	}

	out := make([]byte, 0, len(prefix)+len(frame))
	out = append(out, prefix...)
	out = append(out, frame...)
	if _, err := p.out.Write(out); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return chipErr
}
