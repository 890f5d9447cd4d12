package sensor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultHwmonRoot is where the kernel publishes hwmon devices.
const DefaultHwmonRoot = "/sys/class/hwmon"

// featureKinds lists hwmon attribute kinds in libsensors feature order.
var featureKinds = []string{"in", "fan", "temp", "power", "energy", "curr", "humidity"}

// valueScale converts raw sysfs integers into display units.
var valueScale = map[string]float64{
	"in":       1000,
	"fan":      1,
	"temp":     1000,
	"power":    1e6,
	"energy":   1e6,
	"curr":     1000,
	"humidity": 1000,
}

// Hwmon reads chips straight from sysfs. Values are read lazily, so a
// subfeature that fails is reported by Value rather than during listing.
type Hwmon struct {
	root string
}

// NewHwmon returns a source rooted at dir, or DefaultHwmonRoot if dir is
// empty. It fails with ErrNoSensors if the directory does not exist.
func NewHwmon(dir string) (*Hwmon, error) {
	if dir == "" {
		dir = DefaultHwmonRoot
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSensors, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoSensors, dir)
	}
	return &Hwmon{root: dir}, nil
}

func (h *Hwmon) Chips(ctx context.Context) ([]Chip, error) {
	matches, err := filepath.Glob(filepath.Join(h.root, "hwmon*"))
	if err != nil {
		return nil, err
	}
	sort.Slice(matches, func(i, j int) bool {
		return hwmonIndex(matches[i]) < hwmonIndex(matches[j])
	})

	chips := make([]Chip, 0, len(matches))
	for _, dir := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chip, err := loadHwmonChip(dir)
		if err != nil {
			continue
		}
		chips = append(chips, chip)
	}
	return chips, nil
}

func (h *Hwmon) Close() error { return nil }

func hwmonIndex(path string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), "hwmon"))
	if err != nil {
		return -1
	}
	return n
}

type hwmonChip struct {
	dir      string
	features []Feature
}

func loadHwmonChip(dir string) (*hwmonChip, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*hwmonFeature)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		kind, channel, suffix, ok := SplitAttribute(e.Name())
		if !ok {
			continue
		}
		if _, known := valueScale[kind]; !known {
			continue
		}
		key := kind + channel
		f, ok := byKey[key]
		if !ok {
			n, _ := strconv.Atoi(channel)
			f = &hwmonFeature{dir: dir, kind: kind, channel: n, name: key}
			byKey[key] = f
		}
		if suffix == "label" {
			f.hasLabel = true
			continue
		}
		f.subs = append(f.subs, hwmonSubfeature{
			path:  filepath.Join(dir, e.Name()),
			attr:  e.Name(),
			kind:  ParseSubfeatureType(e.Name()),
			scale: valueScale[kind],
		})
	}

	feats := make([]*hwmonFeature, 0, len(byKey))
	for _, f := range byKey {
		if len(f.subs) == 0 {
			continue
		}
		sort.SliceStable(f.subs, func(i, j int) bool {
			a, b := f.subs[i], f.subs[j]
			if a.kind != b.kind {
				if a.kind == Unknown || b.kind == Unknown {
					return b.kind == Unknown
				}
				return a.kind < b.kind
			}
			return a.attr < b.attr
		})
		feats = append(feats, f)
	}
	sort.Slice(feats, func(i, j int) bool {
		a, b := feats[i], feats[j]
		if a.kind != b.kind {
			return kindOrder(a.kind) < kindOrder(b.kind)
		}
		return a.channel < b.channel
	})

	chip := &hwmonChip{dir: dir, features: make([]Feature, len(feats))}
	for i, f := range feats {
		chip.features[i] = f
	}
	return chip, nil
}

func kindOrder(kind string) int {
	for i, k := range featureKinds {
		if k == kind {
			return i
		}
	}
	return len(featureKinds)
}

// Name renders the chip the way libsensors prints it, e.g.
// "coretemp-isa-0000", "nvme-pci-0300" or "iwlwifi_1-virtual-0".
func (c *hwmonChip) Name() (string, error) {
	raw, err := os.ReadFile(filepath.Join(c.dir, "name"))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNameUnavailable, c.dir, err)
	}
	prefix := strings.TrimSpace(string(raw))
	if prefix == "" {
		return "", fmt.Errorf("%w: %s: empty name", ErrNameUnavailable, c.dir)
	}
	return prefix + "-" + busSuffix(c.dir), nil
}

func (c *hwmonChip) Features() []Feature { return c.features }

// busSuffix derives the "<bus>-<address>" part of a chip name from the
// hwmon device link. Drivers such as nvme attach hwmon to a class device
// (nvme0), whose own device link leads to the bus device.
func busSuffix(dir string) string {
	device, err := filepath.EvalSymlinks(filepath.Join(dir, "device"))
	if err != nil {
		return "virtual-0"
	}
	subsystem, err := filepath.EvalSymlinks(filepath.Join(device, "subsystem"))
	if err != nil {
		return "virtual-0"
	}
	for hops := 0; hops < 4 && filepath.Base(filepath.Dir(subsystem)) == "class"; hops++ {
		parent, err := filepath.EvalSymlinks(filepath.Join(device, "device"))
		if err != nil {
			break
		}
		parentSubsystem, err := filepath.EvalSymlinks(filepath.Join(parent, "subsystem"))
		if err != nil {
			break
		}
		device, subsystem = parent, parentSubsystem
	}
	bus := filepath.Base(subsystem)
	id := filepath.Base(device)

	switch bus {
	case "pci":
		var domain, busNr, dev, fn int
		if _, err := fmt.Sscanf(id, "%x:%x:%x.%x", &domain, &busNr, &dev, &fn); err == nil {
			return fmt.Sprintf("pci-%04x", domain<<16+busNr<<8+dev<<3+fn)
		}
	case "platform", "of_platform":
		n := 0
		if i := strings.LastIndexByte(id, '.'); i >= 0 {
			n, _ = strconv.Atoi(id[i+1:])
		}
		return fmt.Sprintf("isa-%04x", n)
	case "acpi":
		n := 0
		if i := strings.LastIndexByte(id, ':'); i >= 0 {
			n, _ = strconv.Atoi(id[i+1:])
		}
		return fmt.Sprintf("acpi-%x", n)
	case "i2c":
		var busNr, addr int
		if _, err := fmt.Sscanf(id, "%d-%x", &busNr, &addr); err == nil {
			return fmt.Sprintf("i2c-%d-%02x", busNr, addr)
		}
	case "virtual":
		return "virtual-0"
	}
	return bus + "-0"
}

type hwmonFeature struct {
	dir      string
	kind     string
	channel  int
	name     string
	hasLabel bool
	subs     []hwmonSubfeature
}

// Label returns the <kind><n>_label contents, or "<kind><n>" when the
// driver publishes no label.
func (f *hwmonFeature) Label() (string, error) {
	if !f.hasLabel {
		return f.name, nil
	}
	raw, err := os.ReadFile(filepath.Join(f.dir, f.name+"_label"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return f.name, nil
		}
		return "", fmt.Errorf("%w: %s: %v", ErrLabelUnavailable, f.name, err)
	}
	label := strings.TrimSpace(string(raw))
	if label == "" {
		return "", fmt.Errorf("%w: %s: empty label", ErrLabelUnavailable, f.name)
	}
	return label, nil
}

func (f *hwmonFeature) Subfeatures() []Subfeature {
	subs := make([]Subfeature, len(f.subs))
	for i, s := range f.subs {
		subs[i] = s
	}
	return subs
}

type hwmonSubfeature struct {
	path  string
	attr  string
	kind  SubfeatureType
	scale float64
}

func (s hwmonSubfeature) Type() SubfeatureType { return s.kind }

func (s hwmonSubfeature) Value() (float64, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrRead, s.attr, err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrRead, s.attr, err)
	}
	return v / s.scale, nil
}
