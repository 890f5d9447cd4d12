package sensor

import (
	"errors"
	"strings"
	"testing"

	"github.com/shirou/gopsutil/v4/sensors"
)

const testSensorsJSON = `{
   "nvme-pci-0300":{
      "Adapter": "PCI adapter",
      "Composite":{
         "temp1_input": 36.850,
         "temp1_max": 81.850,
         "temp1_crit": 84.850
      }
   },
   "coretemp-isa-0000":{
      "Adapter": "ISA adapter",
      "Package id 0":{
         "temp1_input": 48.000,
         "temp1_crit_alarm": 0.000
      },
      "Core 8":{
         "temp10_input": 44.000
      },
      "Core 0":{
         "temp2_input": 46.000,
         "temp2_max": 100.000
      }
   },
   "thinkpad-isa-0000":{
      "Adapter": "ISA adapter",
      "fan1":{
         "fan1_input": 2712.000
      },
      "CPU":{
         "temp1_input": "N/A"
      }
   }
}`

func TestDecodeSensorsJSONKeepsOrder(t *testing.T) {
	chips, err := DecodeSensorsJSON(strings.NewReader(testSensorsJSON))
	if err != nil {
		t.Fatalf("DecodeSensorsJSON: %v", err)
	}
	if len(chips) != 3 {
		t.Fatalf("chips: got %d, want 3", len(chips))
	}

	if name, _ := chips[0].Name(); name != "nvme-pci-0300" {
		t.Errorf("first chip: got %q, want nvme-pci-0300", name)
	}

	var labels []string
	for _, f := range chips[1].Features() {
		l, _ := f.Label()
		labels = append(labels, l)
	}
	if got := strings.Join(labels, ","); got != "Package id 0,Core 8,Core 0" {
		t.Errorf("coretemp labels: got %s", got)
	}

	pkg := chips[1].Features()[0].Subfeatures()
	if len(pkg) != 2 || pkg[0].Type() != TempInput || pkg[1].Type() != Unknown {
		t.Errorf("Package id 0 subfeatures: got %+v", pkg)
	}

	fan := chips[2].Features()[0].Subfeatures()[0]
	if fan.Type() != FanInput {
		t.Errorf("fan1 type: got %v", fan.Type())
	}
	na := chips[2].Features()[1].Subfeatures()[0]
	if _, err := na.Value(); !errors.Is(err, ErrRead) {
		t.Errorf("N/A value: got %v, want ErrRead", err)
	}
}

func TestDecodeSensorsJSONRejectsGarbage(t *testing.T) {
	if _, err := DecodeSensorsJSON(strings.NewReader(`["not", "an", "object"]`)); err == nil {
		t.Error("expected error for non-object input")
	}
}

func TestGroupTemperatureStats(t *testing.T) {
	chips := groupTemperatureStats([]sensors.TemperatureStat{
		{SensorKey: "coretemp_package_id_0", Temperature: 51, High: 80, Critical: 100},
		{SensorKey: "nvme_composite", Temperature: 38},
		{SensorKey: "coretemp_core_0", Temperature: 49},
		{SensorKey: "acpitz", Temperature: 27.8},
	})
	if len(chips) != 3 {
		t.Fatalf("chips: got %d, want 3", len(chips))
	}
	if n := len(chips[0].Features()); n != 2 {
		t.Errorf("coretemp features: got %d, want 2", n)
	}
	label, _ := chips[0].Features()[1].Label()
	if label != "core_0" {
		t.Errorf("label: got %q, want core_0", label)
	}
	if v, _ := subValue(t, chips[0].Features()[0], TempCrit); v != 100 {
		t.Errorf("crit: got %v, want 100", v)
	}
	name, _ := chips[2].Name()
	if name != "acpitz" {
		t.Errorf("bare key chip: got %q", name)
	}
}
