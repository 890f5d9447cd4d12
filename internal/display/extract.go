// Package display turns a sensor snapshot into the color-coded text
// summary: one header per chip followed by its temperature readings.
package display

import "github.com/luki/thermals/internal/sensor"

// Pair is a feature label with its current temperature in °C.
type Pair struct {
	Label string
	Temp  float64
}

// Extract returns the label and temperature of a feature. Features with
// no label, or with no readable temperature input, yield ok == false.
// The first readable temperature input wins.
func Extract(f sensor.Feature) (Pair, bool) {
	label, err := f.Label()
	if err != nil {
		return Pair{}, false
	}
	for _, sub := range f.Subfeatures() {
		if sub.Type() != sensor.TempInput {
			continue
		}
		v, err := sub.Value()
		if err != nil {
			continue
		}
		return Pair{Label: label, Temp: v}, true
	}
	return Pair{}, false
}

// ExtractAll applies Extract to every feature of a chip, keeping the
// chip's feature order.
func ExtractAll(chip sensor.Chip) []Pair {
	var pairs []Pair
	for _, f := range chip.Features() {
		if p, ok := Extract(f); ok {
			pairs = append(pairs, p)
		}
	}
	return pairs
}
