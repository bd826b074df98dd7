package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/afinkbeiner86/weather-alert/internal/alert"
	"github.com/afinkbeiner86/weather-alert/internal/logger"
	"github.com/afinkbeiner86/weather-alert/internal/metrics"
	"github.com/afinkbeiner86/weather-alert/internal/weather"
)

// Scheduler periodically runs the weather check cycle for configured locations.
type Scheduler struct {
	scheduler    *gocron.Scheduler
	service      *weather.Service
	evaluator    *alert.Evaluator
	dispatcher   *alert.Dispatcher
	locations    []weather.Location
	interval     time.Duration
	forecastDays int
}

// New creates a new Scheduler.
func New(
	locations []weather.Location,
	interval time.Duration,
	forecastDays int,
	service *weather.Service,
	evaluator *alert.Evaluator,
	dispatcher *alert.Dispatcher,
) *Scheduler {
	return &Scheduler{
		scheduler:    gocron.NewScheduler(time.UTC),
		service:      service,
		evaluator:    evaluator,
		dispatcher:   dispatcher,
		locations:    locations,
		interval:     interval,
		forecastDays: forecastDays,
	}
}

// Start schedules the periodic check cycle and starts the underlying
// scheduler. The first cycle runs immediately rather than waiting a full
// interval.
func (s *Scheduler) Start() error {
	log := logger.WithComponent("scheduler")

	if len(s.locations) == 0 {
		log.Warn().Msg("no locations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = time.Hour
	}

	_, err := s.scheduler.Every(interval).StartImmediately().Do(s.RunCycle)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunCycle fetches, evaluates and dispatches for every configured location.
// Locations are processed concurrently with a bounded context each.
func (s *Scheduler) RunCycle() {
	log := logger.WithComponent("scheduler")
	log.Info().Msg("running weather check cycle")

	start := time.Now()
	metrics.CheckCyclesTotal.Inc()

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			s.checkLocation(ctx, loc)
		}()
	}
	wg.Wait()

	metrics.CheckCycleDuration.Observe(time.Since(start).Seconds())
	log.Info().Dur("duration", time.Since(start)).Msg("weather check cycle completed")
}

func (s *Scheduler) checkLocation(ctx context.Context, loc weather.Location) {
	log := logger.WithComponent("scheduler")

	var conds []alert.Condition

	snapshot, err := s.service.FetchAndStore(ctx, loc)
	if err != nil {
		log.Error().Err(err).Str("location", loc.Key()).Msg("current weather fetch failed")
	} else {
		conds = append(conds, s.evaluator.EvaluateSnapshot(snapshot)...)
	}

	forecast, err := s.service.GetForecast(ctx, loc, s.forecastDays)
	if err != nil {
		log.Warn().Err(err).Str("location", loc.Key()).Msg("forecast fetch failed")
	} else {
		conds = append(conds, s.evaluator.EvaluateForecast(forecast)...)
	}

	if len(conds) == 0 {
		return
	}

	if err := s.dispatcher.Process(ctx, loc, conds); err != nil {
		log.Error().Err(err).Str("location", loc.Key()).Msg("alert dispatch failed")
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
