// Package sensor exposes the machine's hardware sensors as a tree of
// chips, features and subfeatures, the shape libsensors uses. Backends
// read sysfs hwmon, lm-sensors output, gopsutil, nvidia-smi and smartctl.
package sensor

import (
	"context"
	"errors"
)

var (
	// ErrNameUnavailable is returned when a chip name cannot be rendered as text.
	ErrNameUnavailable = errors.New("chip name unavailable")
	// ErrLabelUnavailable is returned when a feature has no usable label.
	ErrLabelUnavailable = errors.New("feature label unavailable")
	// ErrRead is returned when a subfeature value cannot be read.
	ErrRead = errors.New("subfeature read failed")
	// ErrNoSensors is returned when a backend finds no sensor subsystem at all.
	ErrNoSensors = errors.New("no sensor subsystem available")
)

// Source enumerates the chips currently present. Every call returns a
// fresh snapshot.
type Source interface {
	Chips(ctx context.Context) ([]Chip, error)
	Close() error
}

// Chip is one sensor-bearing device, e.g. "coretemp-isa-0000".
type Chip interface {
	Name() (string, error)
	Features() []Feature
}

// Feature is one measurable point on a chip, e.g. "Core 0".
type Feature interface {
	Label() (string, error)
	Subfeatures() []Subfeature
}

// Subfeature is one raw measurement or threshold of a feature.
type Subfeature interface {
	Type() SubfeatureType
	Value() (float64, error)
}
