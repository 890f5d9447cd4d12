// Package config loads thermals settings from an optional TOML file and
// overlays the command-line flags the user actually set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/luki/thermals/internal/display"
	"github.com/luki/thermals/internal/sensor"
)

// Intervals at or above maxWatchSeconds overflow a time.Duration.
const maxWatchSeconds = float64(math.MaxInt64) / float64(time.Second)

// Config holds every runtime setting.
type Config struct {
	// Watch is the refresh interval in seconds; nil means a single pass.
	Watch *float64 `toml:"watch"`

	Source     string `toml:"source"`
	HwmonRoot  string `toml:"hwmon_root"`
	SensorsBin string `toml:"sensors_bin"`
	Extras     bool   `toml:"extras"`

	Color    string `toml:"color"`
	Describe bool   `toml:"describe"`
	TUI      bool   `toml:"tui"`
	LogLevel string `toml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Source:   sensor.BackendAuto,
		Color:    string(display.ColorAuto),
		LogLevel: "warn",
	}
}

// DefaultPath is $XDG_CONFIG_HOME/thermals/config.toml, or "" if the
// config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "thermals", "config.toml")
}

// LoadFile decodes path on top of cfg. A missing file is only an error
// when required is set. Unknown keys are rejected.
func LoadFile(cfg *Config, path string, required bool) error {
	if path == "" {
		return nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks option values.
func (c Config) Validate() error {
	if c.Watch != nil {
		if math.IsNaN(*c.Watch) || math.IsInf(*c.Watch, 0) {
			return fmt.Errorf("watch interval must be a finite number, got %v", *c.Watch)
		}
		if *c.Watch < 0 {
			return fmt.Errorf("watch interval must not be negative, got %v", *c.Watch)
		}
		if *c.Watch >= maxWatchSeconds {
			return fmt.Errorf("watch interval must be below %.0f seconds, got %v", maxWatchSeconds, *c.Watch)
		}
	}
	switch c.Source {
	case sensor.BackendAuto, sensor.BackendHwmon, sensor.BackendLmSensors, sensor.BackendGopsutil:
	default:
		return fmt.Errorf("unknown source %q (want auto, hwmon, lmsensors or gopsutil)", c.Source)
	}
	switch display.ColorMode(c.Color) {
	case display.ColorAuto, display.ColorAlways, display.ColorNever:
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always or never)", c.Color)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.TUI && c.Watch == nil {
		return errors.New("--tui requires --watch")
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}

// SensorOptions maps the config onto sensor.Open options.
func (c Config) SensorOptions() sensor.Options {
	return sensor.Options{
		Backend:    c.Source,
		HwmonRoot:  c.HwmonRoot,
		SensorsBin: c.SensorsBin,
		Extras:     c.Extras,
	}
}

// Flags are the command-line counterparts of Config.
type Flags struct {
	Path       string
	watch      float64
	source     string
	hwmonRoot  string
	sensorsBin string
	extras     bool
	color      string
	describe   bool
	tui        bool
	logLevel   string
}

// AddFlags registers the flags on fs.
func (f *Flags) AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.StringVar(&f.Path, "config", "", "path to a TOML config file (default "+DefaultPath()+")")
	fs.Float64VarP(&f.watch, "watch", "w", 0, "refresh every `SECONDS` instead of printing once")
	fs.StringVar(&f.source, "source", d.Source, "sensor backend: auto, hwmon, lmsensors or gopsutil")
	fs.StringVar(&f.hwmonRoot, "hwmon-root", sensor.DefaultHwmonRoot, "sysfs hwmon directory")
	fs.StringVar(&f.sensorsBin, "sensors-bin", "sensors", "lm-sensors executable")
	fs.BoolVar(&f.extras, "extras", false, "also read nvidia-smi and smartctl")
	fs.StringVar(&f.color, "color", d.Color, "colorize output: auto, always or never")
	fs.BoolVar(&f.describe, "describe", false, "append the component name to chip headers")
	fs.BoolVar(&f.tui, "tui", false, "interactive full-screen watch (requires --watch)")
	fs.StringVar(&f.logLevel, "log-level", d.LogLevel, "log level: debug, info, warn or error")
}

// Apply copies the flags the user set on fs into cfg.
func (f *Flags) Apply(fs *pflag.FlagSet, cfg *Config) {
	if fs.Changed("watch") {
		w := f.watch
		cfg.Watch = &w
	}
	if fs.Changed("source") {
		cfg.Source = f.source
	}
	if fs.Changed("hwmon-root") {
		cfg.HwmonRoot = f.hwmonRoot
	}
	if fs.Changed("sensors-bin") {
		cfg.SensorsBin = f.sensorsBin
	}
	if fs.Changed("extras") {
		cfg.Extras = f.extras
	}
	if fs.Changed("color") {
		cfg.Color = f.color
	}
	if fs.Changed("describe") {
		cfg.Describe = f.describe
	}
	if fs.Changed("tui") {
		cfg.TUI = f.tui
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
}

// Resolve builds the effective config: defaults, then the config file,
// then flags.
func (f *Flags) Resolve(fs *pflag.FlagSet) (Config, error) {
	cfg := Default()
	path, required := f.Path, true
	if path == "" {
		path, required = DefaultPath(), false
	}
	if err := LoadFile(&cfg, path, required); err != nil {
		return Config{}, err
	}
	f.Apply(fs, &cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
