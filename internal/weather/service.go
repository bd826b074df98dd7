package weather

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/afinkbeiner86/weather-alert/internal/logger"
	"github.com/afinkbeiner86/weather-alert/internal/metrics"
)

// Service orchestrates fetching from multiple providers and persisting snapshots.
type Service struct {
	store     Store
	providers []Provider
}

// NewService creates a new Service.
func NewService(store Store, providers []Provider) *Service {
	return &Service{
		store:     store,
		providers: providers,
	}
}

// FetchAndStore fetches data from all providers concurrently for the given location,
// aggregates successful readings, stores the snapshot and returns it.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) (WeatherSnapshot, error) {
	log := logger.WithComponent("weather")

	if len(s.providers) == 0 {
		return WeatherSnapshot{}, fmt.Errorf("no weather providers configured")
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []ProviderReading
	)

	for _, p := range s.providers {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := p.Fetch(ctx, loc)
			if err != nil {
				// Log and continue; we want partial success when possible.
				metrics.ProviderFetchesTotal.WithLabelValues(p.Name(), "error").Inc()
				log.Warn().Err(err).
					Str("provider", p.Name()).
					Str("location", loc.Key()).
					Msg("provider fetch failed")
				return
			}
			metrics.ProviderFetchesTotal.WithLabelValues(p.Name(), "ok").Inc()

			mu.Lock()
			readings = append(readings, r)
			mu.Unlock()
		}()
	}

	wg.Wait()

	if len(readings) == 0 {
		// No providers succeeded; do not overwrite last good snapshot.
		return WeatherSnapshot{}, fmt.Errorf("no successful provider readings for %s", loc.Key())
	}

	snapshot := AggregateReadings(loc, readings)
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	s.store.SaveSnapshot(loc, snapshot)
	return snapshot, nil
}

// GetForecast fetches forward-looking readings from providers that support it
// and aggregates them into one snapshot per 3-hour period, ordered by time.
// The period granularity follows OpenWeatherMap's forecast resolution; daily
// providers simply contribute one reading per day.
func (s *Service) GetForecast(ctx context.Context, loc Location, days int) (Forecast, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be greater than zero")
	}

	log := logger.WithComponent("weather")

	type periodKey string

	var (
		wg             sync.WaitGroup
		mu             sync.Mutex
		periodReadings = make(map[periodKey][]ProviderReading)
	)

	for _, p := range s.providers {
		fp, ok := p.(ForecastProvider)
		if !ok {
			continue
		}

		wg.Add(1)
		go func(fp ForecastProvider) {
			defer wg.Done()

			readings, err := fp.FetchForecast(ctx, loc, days)
			if err != nil {
				metrics.ProviderFetchesTotal.WithLabelValues(fp.Name(), "error").Inc()
				log.Warn().Err(err).
					Str("provider", fp.Name()).
					Str("location", loc.Key()).
					Msg("provider forecast failed")
				return
			}
			metrics.ProviderFetchesTotal.WithLabelValues(fp.Name(), "ok").Inc()

			mu.Lock()
			defer mu.Unlock()

			for _, r := range readings {
				ts := r.Timestamp.UTC().Truncate(3 * time.Hour)
				periodReadings[periodKey(ts.Format(time.RFC3339))] = append(
					periodReadings[periodKey(ts.Format(time.RFC3339))], r)
			}
		}(fp)
	}

	wg.Wait()

	if len(periodReadings) == 0 {
		return nil, fmt.Errorf("no forecast data available for %s", loc.Key())
	}

	// RFC3339 keys sort chronologically.
	keys := make([]string, 0, len(periodReadings))
	for k := range periodReadings {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	horizon := time.Now().UTC().AddDate(0, 0, days)
	forecast := make(Forecast, 0, len(keys))

	for _, k := range keys {
		readings := periodReadings[periodKey(k)]
		snapshot := AggregateReadings(loc, readings)
		if ts, err := time.Parse(time.RFC3339, k); err == nil {
			snapshot.Timestamp = ts
		}
		if snapshot.Timestamp.After(horizon) {
			break
		}
		forecast = append(forecast, snapshot)
	}

	if len(forecast) == 0 {
		return nil, fmt.Errorf("no forecast data available for %s", loc.Key())
	}

	return forecast, nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (WeatherSnapshot, error) {
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error) {
	return s.store.GetRange(loc, from, to)
}
