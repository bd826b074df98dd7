package weather

import "time"

// AggregateReadings combines multiple provider readings into a single WeatherSnapshot.
// Numeric fields are averaged; the condition is selected by majority (or first if tied).
func AggregateReadings(loc Location, readings []ProviderReading) WeatherSnapshot {
	if len(readings) == 0 {
		return WeatherSnapshot{
			Location:  loc,
			Timestamp: time.Now().UTC(),
			Condition: ConditionUnknown,
		}
	}

	snap := WeatherSnapshot{
		Location:  loc,
		Providers: make([]ProviderContribution, 0, len(readings)),
	}

	conditionCounts := make(map[Condition]int)

	for _, r := range readings {
		snap.Temperature += r.TemperatureC
		snap.Humidity += r.HumidityPct
		snap.WindSpeed += r.WindSpeedMS
		snap.Pressure += r.PressureHpa
		snap.PrecipMM += r.PrecipMm

		conditionCounts[r.Condition]++

		if r.Timestamp.After(snap.Timestamp) {
			snap.Timestamp = r.Timestamp
		}

		snap.Providers = append(snap.Providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
		})
	}

	n := float64(len(readings))
	snap.Temperature /= n
	snap.Humidity /= n
	snap.WindSpeed /= n
	snap.Pressure /= n
	snap.PrecipMM /= n
	snap.Condition = majorityCondition(conditionCounts)

	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}

	return snap
}

func majorityCondition(counts map[Condition]int) Condition {
	best := ConditionUnknown
	bestCount := 0
	for cond, count := range counts {
		if count > bestCount {
			bestCount = count
			best = cond
		}
	}
	return best
}
