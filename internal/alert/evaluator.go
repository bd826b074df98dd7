package alert

import (
	"github.com/afinkbeiner86/weather-alert/internal/weather"
)

// Condition types emitted by the evaluator.
const (
	TypeTemperature   = "temperature"
	TypeWind          = "wind"
	TypePrecipitation = "precipitation"
	TypePhenomenon    = "weather"
)

// Condition is a single detected alert condition.
type Condition struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Value       float64  `json:"value"`
	Unit        string   `json:"unit"`
}

// Thresholds holds the tunable limits the evaluator compares against.
// Temperatures are Celsius, wind speeds km/h, precipitation mm per period.
type Thresholds struct {
	TempExtremeHigh float64 `validate:"gtfield=TempWarningHigh"`
	TempExtremeLow  float64 `validate:"ltfield=TempWarningLow"`
	TempWarningHigh float64
	TempWarningLow  float64

	WindSevereKmh  float64 `validate:"gtfield=WindWarningKmh"`
	WindWarningKmh float64 `validate:"gt=0"`

	HeavyRainMm float64 `validate:"gt=0"`
}

// DefaultThresholds returns the stock limits for dangerous weather.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TempExtremeHigh: 40,
		TempExtremeLow:  -15,
		TempWarningHigh: 35,
		TempWarningLow:  -10,
		WindSevereKmh:   75,
		WindWarningKmh:  50,
		HeavyRainMm:     50,
	}
}

// Evaluator detects alert conditions in normalized weather snapshots.
type Evaluator struct {
	thresholds Thresholds
}

func NewEvaluator(t Thresholds) *Evaluator {
	return &Evaluator{thresholds: t}
}

// EvaluateSnapshot checks a single snapshot against all thresholds.
func (e *Evaluator) EvaluateSnapshot(snap weather.WeatherSnapshot) []Condition {
	var conds []Condition

	conds = append(conds, e.temperatureConditions(snap.Temperature)...)
	conds = append(conds, e.windConditions(snap.WindSpeed*3.6)...)
	conds = append(conds, e.precipitationConditions(snap.PrecipMM)...)
	conds = append(conds, e.phenomenonConditions(snap.Condition)...)

	return conds
}

// EvaluateForecast checks every forecast period and collapses repeats of the
// same condition across periods, keeping the worst occurrence. A 5-day
// forecast with forty hot periods should yield one heat condition, not forty.
func (e *Evaluator) EvaluateForecast(fc weather.Forecast) []Condition {
	var conds []Condition
	for _, snap := range fc {
		conds = append(conds, e.EvaluateSnapshot(snap)...)
	}
	return Dedupe(conds)
}

// Dedupe collapses conditions sharing type and description, keeping the worst
// occurrence. Order of first appearance is preserved.
func Dedupe(conds []Condition) []Condition {
	type condKey struct {
		typ  string
		desc string
	}

	worst := make(map[condKey]Condition)
	var order []condKey

	for _, c := range conds {
		k := condKey{typ: c.Type, desc: c.Description}
		prev, seen := worst[k]
		if !seen {
			order = append(order, k)
			worst[k] = c
			continue
		}
		if c.Severity.Rank() > prev.Severity.Rank() ||
			(c.Severity == prev.Severity && moreExtremeValue(c, prev)) {
			worst[k] = c
		}
	}

	out := make([]Condition, 0, len(order))
	for _, k := range order {
		out = append(out, worst[k])
	}
	return out
}

func (e *Evaluator) temperatureConditions(tempC float64) []Condition {
	t := e.thresholds
	switch {
	case tempC > t.TempExtremeHigh:
		return []Condition{{TypeTemperature, SeverityExtreme, "Extreme Heat", tempC, "°C"}}
	case tempC < t.TempExtremeLow:
		return []Condition{{TypeTemperature, SeverityExtreme, "Extreme Cold", tempC, "°C"}}
	case tempC > t.TempWarningHigh:
		return []Condition{{TypeTemperature, SeverityWarning, "High Temperature", tempC, "°C"}}
	case tempC < t.TempWarningLow:
		return []Condition{{TypeTemperature, SeverityWarning, "Low Temperature", tempC, "°C"}}
	}
	return nil
}

func (e *Evaluator) windConditions(windKmh float64) []Condition {
	t := e.thresholds
	switch {
	case windKmh > t.WindSevereKmh:
		return []Condition{{TypeWind, SeveritySevere, "High Winds", windKmh, "km/h"}}
	case windKmh > t.WindWarningKmh:
		return []Condition{{TypeWind, SeverityWarning, "Strong Winds", windKmh, "km/h"}}
	}
	return nil
}

func (e *Evaluator) precipitationConditions(precipMm float64) []Condition {
	if precipMm > e.thresholds.HeavyRainMm {
		return []Condition{{TypePrecipitation, SeveritySevere, "Heavy Rain", precipMm, "mm"}}
	}
	return nil
}

func (e *Evaluator) phenomenonConditions(cond weather.Condition) []Condition {
	if cond == weather.ConditionStorm {
		return []Condition{{TypePhenomenon, SeveritySevere, "Severe Weather: storm", 0, ""}}
	}
	return nil
}

// moreExtremeValue reports whether a's value is further out than b's.
// Low-temperature conditions get worse as the value drops; everything
// else gets worse as it rises.
func moreExtremeValue(a, b Condition) bool {
	if a.Type == TypeTemperature && (a.Description == "Extreme Cold" || a.Description == "Low Temperature") {
		return a.Value < b.Value
	}
	return a.Value > b.Value
}

// FilterBySeverity drops conditions below the notification threshold.
func FilterBySeverity(conds []Condition, min Severity) []Condition {
	var out []Condition
	for _, c := range conds {
		if c.Severity.AtLeast(min) {
			out = append(out, c)
		}
	}
	return out
}
