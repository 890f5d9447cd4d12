package sensor

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Extras reports sensors that hwmon and lm-sensors do not see: NVIDIA GPUs
// through nvidia-smi and SATA drives through smartctl. Missing tools are
// skipped silently.
type Extras struct{}

func (Extras) Chips(ctx context.Context) ([]Chip, error) {
	var chips []Chip
	chips = append(chips, ReadNvidiaGPU(ctx)...)
	chips = append(chips, ReadSmartDrives(ctx)...)
	return chips, nil
}

func (Extras) Close() error { return nil }

// ReadNvidiaGPU reads GPU temperatures via nvidia-smi, one chip per GPU.
// Returns nil if nvidia-smi is not available.
func ReadNvidiaGPU(ctx context.Context) []Chip {
	if _, err := exec.LookPath("nvidia-smi"); err != nil {
		return nil
	}

	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=index,name,temperature.gpu",
		"--format=csv,noheader,nounits",
	).Output()
	if err != nil {
		return nil
	}

	thresholds := parseNvidiaThresholds(ctx)
	return parseNvidiaQuery(string(out), thresholds["slowdown"], thresholds["shutdown"])
}

func parseNvidiaQuery(out string, high, crit float64) []Chip {
	var chips []Chip
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.SplitN(line, ", ", 3)
		if len(parts) < 3 {
			continue
		}

		idx := strings.TrimSpace(parts[0])
		temp, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			continue
		}

		chips = append(chips, &StaticChip{
			ChipName: fmt.Sprintf("nvidia-gpu-%s", idx),
			Feats:    []Feature{TempFeature("GPU Temp", temp, high, crit)},
		})
	}
	return chips
}

var nvidiaTempValRe = regexp.MustCompile(`:\s*(\d+)\s*C`)

func parseNvidiaThresholds(ctx context.Context) map[string]float64 {
	out, err := exec.CommandContext(ctx, "nvidia-smi", "-q", "-d", "TEMPERATURE").Output()
	if err != nil {
		return nil
	}

	result := make(map[string]float64)
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "GPU Shutdown Temp"):
			if v := extractNvidiaTemp(line); v > 0 {
				result["shutdown"] = v
			}
		case strings.HasPrefix(line, "GPU Slowdown Temp"):
			if v := extractNvidiaTemp(line); v > 0 {
				result["slowdown"] = v
			}
		}
	}
	return result
}

func extractNvidiaTemp(line string) float64 {
	m := nvidiaTempValRe.FindStringSubmatch(line)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}

// ReadSmartDrives reads SATA drive temperatures via smartctl, trying a
// non-interactive sudo first.
func ReadSmartDrives(ctx context.Context) []Chip {
	if _, err := exec.LookPath("smartctl"); err != nil {
		return nil
	}

	drives, _ := filepath.Glob("/dev/sd?")
	var chips []Chip

	for _, dev := range drives {
		out, err := smartctl(ctx, "-A", dev)
		if err != nil {
			continue
		}

		temp, ok := parseSmartTemp(out)
		if !ok {
			continue
		}

		chips = append(chips, &StaticChip{
			ChipName: "smart-" + filepath.Base(dev),
			Feats:    []Feature{TempFeature("Drive Temp", temp, 55, 60)},
		})
	}

	return chips
}

func smartctl(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "sudo", append([]string{"-n", "smartctl"}, args...)...).Output()
	if err != nil {
		out, err = exec.CommandContext(ctx, "smartctl", args...).Output()
		if err != nil {
			return "", err
		}
	}
	return string(out), nil
}

var smartTempRe = regexp.MustCompile(`(?:194\s+Temperature_Celsius|190\s+Airflow_Temperature_Cel)\s+\S+\s+(\d+)`)

// parseSmartTemp prefers attribute 194 over 190.
func parseSmartTemp(output string) (float64, bool) {
	for _, id := range []string{"194", "190"} {
		for _, line := range strings.Split(output, "\n") {
			if !strings.Contains(line, id) || !strings.Contains(line, "Temperature") {
				continue
			}
			m := smartTempRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}
