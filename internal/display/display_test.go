package display

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luki/thermals/internal/sensor"
)

// countingWriter records how many Write calls a flush took.
type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func plainPrinter(w *countingWriter) *Printer {
	return NewPrinter(w, PrinterOptions{Renderer: NewRenderer(w, ColorNever)})
}

func snapshot() *sensor.StaticSource {
	return &sensor.StaticSource{Snapshot: []sensor.Chip{
		&sensor.StaticChip{ChipName: "coretemp-isa-0000", Feats: []sensor.Feature{
			sensor.TempFeature("Package id 0", 48, 100, 100),
			sensor.TempFeature("Core 0", 72.5, 100, 100),
		}},
		&sensor.StaticChip{ChipName: "thinkpad-isa-0000", Feats: []sensor.Feature{
			&sensor.StaticFeature{FeatureLabel: "fan1", Subs: []sensor.Subfeature{
				sensor.StaticSubfeature{Kind: sensor.FanInput, Val: 2712},
			}},
		}},
		&sensor.StaticChip{ChipName: "nvme-pci-0300", Feats: []sensor.Feature{
			sensor.TempFeature("Composite", 36.85, 81.85, 84.85),
		}},
	}}
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		v    float64
		want Color
	}{
		{85.1, BrightRed},
		{85.0, BrightYellow},
		{65.0, BrightGreen},
		{40.0, BrightBlue},
		{20.0, BrightMagenta},
		{0.0, Neutral},
		{-5.0, Neutral},
		{0.001, BrightMagenta},
		{math.Inf(1), BrightRed},
		{math.Inf(-1), Neutral},
		{math.NaN(), Neutral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.v), "Classify(%v)", tt.v)
	}
}

func TestClassifyMonotonic(t *testing.T) {
	prev := Classify(200)
	for v := 200.0; v >= -50; v -= 0.25 {
		c := Classify(v)
		require.LessOrEqual(t, c.Level(), prev.Level(), "level rose at %v", v)
		prev = c
	}
}

func TestExtract(t *testing.T) {
	readErr := sensor.StaticSubfeature{Kind: sensor.TempInput, Err: sensor.ErrRead}

	tests := []struct {
		name    string
		feature sensor.Feature
		want    Pair
		ok      bool
	}{
		{"first input wins", &sensor.StaticFeature{FeatureLabel: "Core 0", Subs: []sensor.Subfeature{
			sensor.StaticSubfeature{Kind: sensor.TempMax, Val: 100},
			sensor.StaticSubfeature{Kind: sensor.TempInput, Val: 50},
			sensor.StaticSubfeature{Kind: sensor.TempInput, Val: 60},
		}}, Pair{"Core 0", 50}, true},
		{"unreadable input skipped", &sensor.StaticFeature{FeatureLabel: "Core 1", Subs: []sensor.Subfeature{
			readErr,
			sensor.StaticSubfeature{Kind: sensor.TempInput, Val: 61},
		}}, Pair{"Core 1", 61}, true},
		{"only unreadable input", &sensor.StaticFeature{FeatureLabel: "Core 2", Subs: []sensor.Subfeature{readErr}}, Pair{}, false},
		{"no temperature input", &sensor.StaticFeature{FeatureLabel: "fan1", Subs: []sensor.Subfeature{
			sensor.StaticSubfeature{Kind: sensor.FanInput, Val: 1200},
		}}, Pair{}, false},
		{"missing label", &sensor.StaticFeature{Subs: []sensor.Subfeature{
			sensor.StaticSubfeature{Kind: sensor.TempInput, Val: 99.9},
		}}, Pair{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.feature)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderChipSingleFeature(t *testing.T) {
	chip := &sensor.StaticChip{ChipName: "coretemp-isa-0000", Feats: []sensor.Feature{
		sensor.TempFeature("Core 0", 72.5, 0, 0),
	}}

	var plain bytes.Buffer
	p := NewPrinter(&plain, PrinterOptions{Renderer: NewRenderer(&plain, ColorNever)})
	require.NoError(t, p.RenderChip(&plain, chip))
	assert.Equal(t, "coretemp-isa-0000\n Core 0: 72.5°C\n", plain.String())

	var colored bytes.Buffer
	r := NewRenderer(&colored, ColorAlways)
	assert.Equal(t, termenv.ANSI, r.ColorProfile())
	p = NewPrinter(&colored, PrinterOptions{Renderer: r})
	require.NoError(t, p.RenderChip(&colored, chip))

	lines := strings.Split(strings.TrimSuffix(colored.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "coretemp-isa-0000", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], " Core 0: "), lines[1])
	assert.Contains(t, lines[1], "\x1b[93m")
	assert.Contains(t, lines[1], "72.5°C")
}

func TestRenderChipSkipsUnlabelled(t *testing.T) {
	chip := &sensor.StaticChip{ChipName: "acpitz-acpi-0", Feats: []sensor.Feature{
		&sensor.StaticFeature{Subs: []sensor.Subfeature{
			sensor.StaticSubfeature{Kind: sensor.TempInput, Val: 99.9},
		}},
	}}
	var buf bytes.Buffer
	p := NewPrinter(&buf, PrinterOptions{Renderer: NewRenderer(&buf, ColorNever)})
	require.NoError(t, p.RenderChip(&buf, chip))
	assert.Empty(t, buf.String())
}

func TestRenderChipDescribe(t *testing.T) {
	chip := &sensor.StaticChip{ChipName: "nvme-pci-0300", Feats: []sensor.Feature{
		sensor.TempFeature("Composite", 36.85, 0, 0),
	}}
	var buf bytes.Buffer
	p := NewPrinter(&buf, PrinterOptions{Renderer: NewRenderer(&buf, ColorNever), Describe: true})
	require.NoError(t, p.RenderChip(&buf, chip))
	assert.Equal(t, "nvme-pci-0300 (NVMe SSD)\n Composite: 36.85°C\n", buf.String())
}

func TestPassSingleWrite(t *testing.T) {
	var w countingWriter
	require.NoError(t, plainPrinter(&w).Pass(context.Background(), snapshot()))

	assert.Equal(t, 1, w.writes)
	assert.Equal(t, "coretemp-isa-0000\n Package id 0: 48°C\n Core 0: 72.5°C\n"+
		"nvme-pci-0300\n Composite: 36.85°C\n", w.String())
}

func TestPassIdempotent(t *testing.T) {
	src := snapshot()
	var a, b countingWriter
	r := NewRenderer(&a, ColorAlways)
	require.NoError(t, NewPrinter(&a, PrinterOptions{Renderer: r}).Pass(context.Background(), src))
	require.NoError(t, NewPrinter(&b, PrinterOptions{Renderer: r}).Pass(context.Background(), src))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestPassSkipsChipWithoutName(t *testing.T) {
	src := snapshot()
	src.Snapshot = append([]sensor.Chip{&sensor.StaticChip{
		NameErr: sensor.ErrNameUnavailable,
		Feats:   []sensor.Feature{sensor.TempFeature("temp1", 30, 0, 0)},
	}}, src.Snapshot...)

	var w countingWriter
	err := plainPrinter(&w).Pass(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, sensor.ErrNameUnavailable)
	assert.Equal(t, 1, w.writes)
	assert.True(t, strings.HasPrefix(w.String(), "coretemp-isa-0000\n"), w.String())
	assert.NotContains(t, w.String(), "temp1")
}

func TestPassEnumerationFailure(t *testing.T) {
	src := &sensor.StaticSource{Err: sensor.ErrNoSensors}
	var w countingWriter
	err := plainPrinter(&w).Pass(context.Background(), src)
	assert.ErrorIs(t, err, sensor.ErrNoSensors)
	assert.Zero(t, w.writes)
}

func TestWatcherOnePassPerTick(t *testing.T) {
	const ticks = 5
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var w countingWriter
	var slept []time.Duration
	watcher := &Watcher{
		Printer:  plainPrinter(&w),
		Source:   snapshot(),
		Interval: Interval(0.01),
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			if len(slept) == ticks {
				cancel()
				return ctx.Err()
			}
			return nil
		},
	}

	err := watcher.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, slept, ticks)
	assert.Equal(t, 10*time.Millisecond, slept[0])
	assert.Equal(t, ticks, w.writes)

	frames := strings.Split(w.String(), ClearHome)
	require.Len(t, frames, ticks+1)
	assert.Empty(t, frames[0])
	for _, f := range frames[1:] {
		assert.Equal(t, frames[1], f)
		assert.Contains(t, f, " Core 0: 72.5°C\n")
	}
}

func TestWatcherSurvivesFailedPass(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &sensor.StaticSource{Err: errors.New("transient")}
	calls := 0
	watcher := &Watcher{
		Printer: plainPrinter(&countingWriter{}),
		Source:  src,
		Sleep: func(ctx context.Context, d time.Duration) error {
			calls++
			if calls == 3 {
				cancel()
				return ctx.Err()
			}
			return nil
		},
	}
	assert.ErrorIs(t, watcher.Run(ctx), context.Canceled)
	assert.Equal(t, 3, calls)
}

func TestSleepHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClearHome(t *testing.T) {
	assert.Equal(t, "\x1b[2J\x1b[1;1H", ClearHome)
}
