package sensor

import (
	"strings"
	"unicode"
)

// SubfeatureType tags what a subfeature measures.
type SubfeatureType int

const (
	Unknown SubfeatureType = iota
	TempInput
	TempMax
	TempMaxHyst
	TempMin
	TempCrit
	TempCritHyst
	TempEmergency
	TempLowest
	TempHighest
	TempAlarm
	TempFault
	TempOffset
	FanInput
	FanMin
	FanMax
	InInput
	InMin
	InMax
	PowerInput
	CurrInput
	EnergyInput
	HumidityInput
)

var subfeatureNames = map[SubfeatureType]string{
	Unknown:       "unknown",
	TempInput:     "temp_input",
	TempMax:       "temp_max",
	TempMaxHyst:   "temp_max_hyst",
	TempMin:       "temp_min",
	TempCrit:      "temp_crit",
	TempCritHyst:  "temp_crit_hyst",
	TempEmergency: "temp_emergency",
	TempLowest:    "temp_lowest",
	TempHighest:   "temp_highest",
	TempAlarm:     "temp_alarm",
	TempFault:     "temp_fault",
	TempOffset:    "temp_offset",
	FanInput:      "fan_input",
	FanMin:        "fan_min",
	FanMax:        "fan_max",
	InInput:       "in_input",
	InMin:         "in_min",
	InMax:         "in_max",
	PowerInput:    "power_input",
	CurrInput:     "curr_input",
	EnergyInput:   "energy_input",
	HumidityInput: "humidity_input",
}

var subfeatureByName = func() map[string]SubfeatureType {
	m := make(map[string]SubfeatureType, len(subfeatureNames))
	for t, name := range subfeatureNames {
		m[name] = t
	}
	return m
}()

func (t SubfeatureType) String() string {
	if name, ok := subfeatureNames[t]; ok {
		return name
	}
	return "unknown"
}

// SplitAttribute splits a sysfs/lm-sensors attribute name such as
// "temp2_crit_hyst" into its kind ("temp"), channel ("2") and suffix
// ("crit_hyst"). ok is false if the name does not follow that shape.
func SplitAttribute(attr string) (kind, channel, suffix string, ok bool) {
	i := strings.IndexFunc(attr, unicode.IsDigit)
	if i <= 0 {
		return "", "", "", false
	}
	j := i
	for j < len(attr) && unicode.IsDigit(rune(attr[j])) {
		j++
	}
	if j >= len(attr) || attr[j] != '_' || j+1 == len(attr) {
		return "", "", "", false
	}
	return attr[:i], attr[i:j], attr[j+1:], true
}

// ParseSubfeatureType classifies an attribute name like "temp1_input".
func ParseSubfeatureType(attr string) SubfeatureType {
	kind, _, suffix, ok := SplitAttribute(attr)
	if !ok {
		return Unknown
	}
	if t, ok := subfeatureByName[kind+"_"+suffix]; ok {
		return t
	}
	return Unknown
}
