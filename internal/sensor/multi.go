package sensor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// Multi concatenates the chips of several sources in order.
type Multi []Source

func (m Multi) Chips(ctx context.Context) ([]Chip, error) {
	var chips []Chip
	for _, s := range m {
		c, err := s.Chips(ctx)
		if err != nil {
			return nil, err
		}
		chips = append(chips, c...)
	}
	return chips, nil
}

// Close closes every source and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Backend names accepted by Open.
const (
	BackendAuto      = "auto"
	BackendHwmon     = "hwmon"
	BackendLmSensors = "lmsensors"
	BackendGopsutil  = "gopsutil"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	HwmonRoot  string
	SensorsBin string
	Extras     bool
}

// newGopsutil is replaced in tests.
var newGopsutil = NewGopsutil

// Open initialises the requested backend. Failing to initialise it means
// this machine exposes no sensors to us, which callers treat as fatal.
func Open(ctx context.Context, opts Options) (Source, error) {
	src, err := openBackend(ctx, opts)
	if err != nil {
		return nil, err
	}
	if opts.Extras {
		return Multi{src, Extras{}}, nil
	}
	return src, nil
}

func openBackend(ctx context.Context, opts Options) (Source, error) {
	switch opts.Backend {
	case BackendHwmon:
		return NewHwmon(opts.HwmonRoot)
	case BackendLmSensors:
		return NewLmSensors(opts.SensorsBin)
	case BackendGopsutil:
		return newGopsutil(), nil
	case BackendAuto, "":
		root := opts.HwmonRoot
		if root == "" {
			root = DefaultHwmonRoot
		}
		if matches, _ := filepath.Glob(filepath.Join(root, "hwmon*")); len(matches) > 0 {
			return NewHwmon(root)
		}
		if l, err := NewLmSensors(opts.SensorsBin); err == nil {
			return l, nil
		}
		// last resort: only worth using if it sees anything at all
		g := newGopsutil()
		chips, err := g.Chips(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoSensors, err)
		}
		if len(chips) == 0 {
			return nil, fmt.Errorf("%w: no hwmon devices, no %s, no gopsutil temperatures", ErrNoSensors, sensorsBinName(opts.SensorsBin))
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown sensor backend %q", opts.Backend)
	}
}

func sensorsBinName(bin string) string {
	if bin == "" {
		return "sensors"
	}
	return bin
}
