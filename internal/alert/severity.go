package alert

import "fmt"

// Severity grades how dangerous a detected condition is. The ladder is
// info < warning < severe < extreme; notifications are only sent for
// conditions at or above the configured threshold.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeveritySevere  Severity = "severe"
	SeverityExtreme Severity = "extreme"
)

var severityRank = map[Severity]int{
	SeverityInfo:    0,
	SeverityWarning: 1,
	SeveritySevere:  2,
	SeverityExtreme: 3,
}

// Rank returns the numeric position on the severity ladder.
// Unknown severities rank lowest.
func (s Severity) Rank() int {
	return severityRank[s]
}

// AtLeast reports whether s is at or above min on the ladder.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// ParseSeverity validates a severity string from configuration.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if _, ok := severityRank[sev]; !ok {
		return "", fmt.Errorf("unknown severity %q", s)
	}
	return sev, nil
}
