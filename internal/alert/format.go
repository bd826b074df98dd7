package alert

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English, cases.NoLower)

// FormatMessage renders conditions into the human-readable notification body,
// one line per condition.
func FormatMessage(conds []Condition) string {
	if len(conds) == 0 {
		return "No significant weather conditions detected."
	}

	parts := make([]string, 0, len(conds)+1)
	parts = append(parts, "⚠️ Weather Alert:\n")

	for _, c := range conds {
		sev := titleCaser.String(string(c.Severity))
		switch c.Type {
		case TypeTemperature:
			parts = append(parts, fmt.Sprintf("🌡️ %s %s: %g%s", sev, c.Description, c.Value, c.Unit))
		case TypeWind:
			parts = append(parts, fmt.Sprintf("💨 %s %s: %g%s", sev, c.Description, c.Value, c.Unit))
		case TypePrecipitation:
			parts = append(parts, fmt.Sprintf("🌧️ %s %s: %g%s", sev, c.Description, c.Value, c.Unit))
		default:
			parts = append(parts, fmt.Sprintf("⚡ %s %s", sev, c.Description))
		}
	}

	return strings.Join(parts, "\n")
}
