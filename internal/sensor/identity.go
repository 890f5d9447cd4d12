package sensor

import "strings"

// componentPrefixes maps chip name prefixes to the component they sit on.
// Longer prefixes must precede shorter ones that would also match.
var componentPrefixes = []struct {
	prefix    string
	component string
}{
	{"coretemp", "CPU"},
	{"k10temp", "CPU"},
	{"k8temp", "CPU"},
	{"zenpower", "CPU"},
	{"cpu_thermal", "CPU"},
	{"amdgpu", "GPU (AMD)"},
	{"radeon", "GPU (AMD)"},
	{"nouveau", "GPU (NVIDIA)"},
	{"nvidia", "GPU (NVIDIA)"},
	{"i915", "GPU (Intel)"},
	{"xe-", "GPU (Intel)"},
	{"nvme", "NVMe SSD"},
	{"drivetemp", "HDD/SSD"},
	{"smart-", "HDD/SSD"},
	{"iwlwifi", "WiFi"},
	{"ath1", "WiFi"},
	{"mt7", "WiFi"},
	{"rtw", "WiFi"},
	{"pch", "PCH (Chipset)"},
	{"acpitz", "ACPI Thermal"},
	{"it87", "Motherboard"},
	{"nct", "Motherboard"},
	{"w83", "Motherboard"},
	{"f71", "Motherboard"},
	{"asus", "Motherboard"},
	{"thinkpad", "Laptop EC"},
	{"dell_smm", "Laptop EC"},
	{"hp_wmi", "Laptop EC"},
	{"bat", "Battery"},
}

// FriendlyName returns the component a chip belongs to, or "" when the
// chip is not recognised.
func FriendlyName(chip string) string {
	lower := strings.ToLower(chip)
	for _, entry := range componentPrefixes {
		if strings.HasPrefix(lower, entry.prefix) {
			return entry.component
		}
	}
	return ""
}
