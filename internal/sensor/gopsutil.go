package sensor

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/sensors"
)

// Gopsutil reads temperatures through gopsutil, which also covers
// platforms without hwmon. gopsutil reports a flat list of sensor keys;
// keys are grouped into chips by the part before the first underscore.
type Gopsutil struct {
	read func(ctx context.Context) ([]sensors.TemperatureStat, error)
}

func NewGopsutil() *Gopsutil {
	return &Gopsutil{read: sensors.TemperaturesWithContext}
}

func (g *Gopsutil) Chips(ctx context.Context) ([]Chip, error) {
	stats, err := g.read(ctx)
	if err != nil && len(stats) == 0 {
		return nil, fmt.Errorf("gopsutil temperatures: %w", err)
	}
	return groupTemperatureStats(stats), nil
}

func (g *Gopsutil) Close() error { return nil }

func groupTemperatureStats(stats []sensors.TemperatureStat) []Chip {
	var chips []Chip
	byName := make(map[string]*StaticChip)

	for _, st := range stats {
		chipName, label := st.SensorKey, st.SensorKey
		if i := strings.IndexByte(st.SensorKey, '_'); i > 0 {
			chipName, label = st.SensorKey[:i], st.SensorKey[i+1:]
		}
		label = strings.TrimSuffix(label, "_input")

		chip, ok := byName[chipName]
		if !ok {
			chip = &StaticChip{ChipName: chipName}
			byName[chipName] = chip
			chips = append(chips, chip)
		}
		chip.Feats = append(chip.Feats, TempFeature(label, st.Temperature, st.High, st.Critical))
	}
	return chips
}
