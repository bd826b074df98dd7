package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/afinkbeiner86/weather-alert/internal/alert"
	httpapi "github.com/afinkbeiner86/weather-alert/internal/api/http"
	"github.com/afinkbeiner86/weather-alert/internal/config"
	"github.com/afinkbeiner86/weather-alert/internal/logger"
	"github.com/afinkbeiner86/weather-alert/internal/notify"
	"github.com/afinkbeiner86/weather-alert/internal/scheduler"
	"github.com/afinkbeiner86/weather-alert/internal/store"
	"github.com/afinkbeiner86/weather-alert/internal/weather"
	"github.com/afinkbeiner86/weather-alert/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		logger.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.LogLevel)
	log := logger.WithComponent("main")

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory snapshot store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// SQLite store for dispatched alerts and cooldown state.
	alertStore, err := store.NewAlertStore(cfg.AlertDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open alert store")
	}
	defer alertStore.Close()

	// Providers with resilience (backoff + circuit breaker).
	var provs []weather.Provider
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}
	if cfg.GeocoderAPIKey != "" {
		// Open-Meteo needs no API key, but geocoding city names does.
		provs = append(provs, providers.NewOpenMeteoProvider(httpClient, cfg.GeocoderAPIKey))
	}
	if len(provs) == 0 {
		// Fatal skips deferred calls, so release the store explicitly.
		alertStore.Close()
		log.Fatal().Msg("no weather providers configured; set at least one API key")
	}

	service := weather.NewService(memStore, provs)

	// Notification channels: Pushover when credentials exist, log otherwise.
	var notifiers []notify.Notifier
	if cfg.PushoverUserKey != "" && cfg.PushoverAppToken != "" {
		notifiers = append(notifiers, notify.NewPushoverNotifier(httpClient, cfg.PushoverUserKey, cfg.PushoverAppToken))
	} else {
		log.Warn().Msg("pushover credentials missing; alerts go to the log only")
		notifiers = append(notifiers, notify.NewLogNotifier())
	}

	evaluator := alert.NewEvaluator(cfg.Thresholds)
	dispatcher := alert.NewDispatcher(cfg.NotificationThreshold, cfg.AlertCooldown, alertStore, notifiers)

	sched := scheduler.New(cfg.Locations, cfg.CheckInterval, cfg.ForecastDays, service, evaluator, dispatcher)
	if err := sched.Start(); err != nil {
		alertStore.Close()
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-alert",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-alert",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service, alertStore, sched.RunCycle)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	log.Info().
		Int("locations", len(cfg.Locations)).
		Dur("interval", cfg.CheckInterval).
		Str("threshold", string(cfg.NotificationThreshold)).
		Msg("weather alert system started")

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
