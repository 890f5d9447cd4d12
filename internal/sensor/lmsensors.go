package sensor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// LmSensors reads chips from the lm-sensors `sensors` command. It prefers
// `sensors -j` and falls back to the human-readable output for older
// releases without JSON support.
type LmSensors struct {
	bin string
}

// NewLmSensors locates the sensors binary (default "sensors").
func NewLmSensors(bin string) (*LmSensors, error) {
	if bin == "" {
		bin = "sensors"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSensors, err)
	}
	return &LmSensors{bin: path}, nil
}

func (l *LmSensors) Chips(ctx context.Context) ([]Chip, error) {
	out, err := exec.CommandContext(ctx, l.bin, "-j").Output()
	if err == nil {
		chips, jerr := DecodeSensorsJSON(bytes.NewReader(out))
		if jerr == nil {
			return chips, nil
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	out, err = exec.CommandContext(ctx, l.bin).Output()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", l.bin, err)
	}
	return ParseSensorsText(string(out)), nil
}

func (l *LmSensors) Close() error { return nil }

// ── JSON parser (primary) ────────────────────────────────────────────

// DecodeSensorsJSON decodes `sensors -j` output. Objects are walked token
// by token so chips, features and subfeatures keep the order lm-sensors
// printed them in.
func DecodeSensorsJSON(r io.Reader) ([]Chip, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var chips []Chip
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		chip, err := decodeChip(dec, name)
		if err != nil {
			return nil, fmt.Errorf("chip %q: %w", name, err)
		}
		chips = append(chips, chip)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return chips, nil
}

func decodeChip(dec *json.Decoder, name string) (*StaticChip, error) {
	chip := &StaticChip{ChipName: name}
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	for dec.More() {
		label, err := readKey(dec)
		if err != nil {
			return nil, err
		}

		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			// "Adapter" and any other scalar entry
			if _, ok := tok.(json.Delim); ok {
				if err := skipValue(dec); err != nil {
					return nil, err
				}
			}
			continue
		}

		feature := &StaticFeature{FeatureLabel: label}
		for dec.More() {
			attr, err := readKey(dec)
			if err != nil {
				return nil, err
			}
			var v json.RawMessage
			if err := dec.Decode(&v); err != nil {
				return nil, err
			}
			f, err := strconv.ParseFloat(string(v), 64)
			sub := StaticSubfeature{Kind: ParseSubfeatureType(attr), Val: f}
			if err != nil {
				sub.Err = fmt.Errorf("%w: %s: %s", ErrRead, attr, v)
			}
			feature.Subs = append(feature.Subs, sub)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		chip.Feats = append(chip.Feats, feature)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return chip, nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// skipValue consumes the rest of an array or object whose opening
// delimiter has already been read.
func skipValue(dec *json.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

// ── Text parser (fallback) ───────────────────────────────────────────

var (
	namedValRe = regexp.MustCompile(`(\w+)\s*=\s*([+-]?\d+\.?\d*)°C`)
	tempValRe  = regexp.MustCompile(`([+-]?\d+\.?\d*)°C`)
)

// ParseSensorsText parses the human-readable `sensors` output. Only
// temperature lines are recognised; every other line is ignored.
func ParseSensorsText(output string) []Chip {
	var chips []Chip
	var current *StaticChip

	lines := strings.Split(output, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")

		if strings.TrimSpace(line) == "" {
			current = nil
			continue
		}
		if strings.HasPrefix(line, "Adapter:") {
			continue
		}

		if strings.Contains(line, "°C") {
			if current == nil {
				continue
			}
			idx := strings.Index(line, ":")
			if idx < 0 {
				continue
			}
			label := strings.TrimSpace(line[:idx])

			m := tempValRe.FindStringSubmatch(line[idx+1:])
			if m == nil {
				continue
			}
			temp, err := strconv.ParseFloat(m[1], 64)
			if err != nil || temp < -200 {
				continue
			}

			high := extractNamedVal(line, "high")
			crit := extractNamedVal(line, "crit")
			if i+1 < len(lines) {
				next := lines[i+1]
				if strings.Contains(next, "crit") && !strings.Contains(next, ":") {
					if c := extractNamedVal(next, "crit"); c > 0 {
						crit = c
					}
				}
			}
			if high >= 1000 {
				high = 0
			}
			if crit >= 1000 {
				crit = 0
			}

			current.Feats = append(current.Feats, TempFeature(label, temp, high, crit))
			continue
		}

		// Chip header — non-indented line without °C
		if current == nil && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") && !strings.Contains(line, ":") {
			current = &StaticChip{ChipName: strings.TrimSpace(line)}
			chips = append(chips, current)
		}
	}

	return chips
}

func extractNamedVal(line, name string) float64 {
	for _, m := range namedValRe.FindAllStringSubmatch(line, -1) {
		if m[1] == name {
			v, err := strconv.ParseFloat(m[2], 64)
			if err == nil && v > -200 {
				return v
			}
		}
	}
	return 0
}
