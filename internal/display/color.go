package display

import "github.com/charmbracelet/lipgloss"

// Color is the display color of a temperature, ordered by alert level.
type Color int

const (
	Neutral Color = iota
	BrightMagenta
	BrightBlue
	BrightGreen
	BrightYellow
	BrightRed
)

var colorNames = [...]string{
	Neutral:       "neutral",
	BrightMagenta: "bright magenta",
	BrightBlue:    "bright blue",
	BrightGreen:   "bright green",
	BrightYellow:  "bright yellow",
	BrightRed:     "bright red",
}

// palette maps each Color to its ANSI palette index.
var palette = [...]lipgloss.Color{
	Neutral:       "7",
	BrightMagenta: "13",
	BrightBlue:    "12",
	BrightGreen:   "10",
	BrightYellow:  "11",
	BrightRed:     "9",
}

func (c Color) String() string {
	if c < Neutral || c > BrightRed {
		return "unknown"
	}
	return colorNames[c]
}

// Level is the alert level of the color; higher is hotter.
func (c Color) Level() int { return int(c) }

// ANSI returns the terminal palette entry for the color.
func (c Color) ANSI() lipgloss.Color {
	if c < Neutral || c > BrightRed {
		return palette[Neutral]
	}
	return palette[c]
}

// Classify maps a temperature in °C to its display color. A value must be
// strictly above a threshold to reach that bucket; NaN is Neutral.
func Classify(v float64) Color {
	switch {
	case v > 85:
		return BrightRed
	case v > 65:
		return BrightYellow
	case v > 40:
		return BrightGreen
	case v > 20:
		return BrightBlue
	case v > 0:
		return BrightMagenta
	default:
		return Neutral
	}
}
