package alert

import (
	"strings"
	"testing"
)

func TestFormatMessage(t *testing.T) {
	conds := []Condition{
		{TypeTemperature, SeverityWarning, "High Temperature", 35, "°C"},
		{TypeWind, SeveritySevere, "Strong Winds", 80, "km/h"},
		{TypePhenomenon, SeveritySevere, "Severe Weather: storm", 0, ""},
	}

	msg := FormatMessage(conds)

	for _, want := range []string{
		"Weather Alert:",
		"Warning High Temperature: 35°C",
		"Severe Strong Winds: 80km/h",
		"Severe Severe Weather: storm",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatMessageEmpty(t *testing.T) {
	msg := FormatMessage(nil)
	if !strings.Contains(msg, "No significant weather conditions") {
		t.Fatalf("unexpected empty message: %q", msg)
	}
}
