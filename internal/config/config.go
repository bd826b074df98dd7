package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/afinkbeiner86/weather-alert/internal/alert"
	"github.com/afinkbeiner86/weather-alert/internal/weather"
)

var validate = validator.New()

type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string

	PushoverUserKey  string
	PushoverAppToken string

	// NotificationThreshold is the minimum severity that triggers a push.
	NotificationThreshold alert.Severity

	// CheckInterval controls how often the check cycle runs.
	CheckInterval time.Duration `validate:"gt=0"`

	// AlertCooldown suppresses repeat notifications for the same condition.
	AlertCooldown time.Duration

	// ForecastDays is how far ahead the evaluator looks.
	ForecastDays int `validate:"gte=1,lte=7"`

	// Thresholds for the condition evaluator.
	Thresholds alert.Thresholds

	// Locations to monitor.
	Locations []weather.Location `validate:"min=1"`

	// In-memory snapshot store retention.
	StoreMaxHistory int           // max number of snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	// AlertDBPath is the SQLite file holding dispatched alerts.
	AlertDBPath string `validate:"required"`

	HTTPTimeout time.Duration `validate:"gt=0"`
	LogLevel    string
	Port        string
}

// Load reads configuration from environment with sensible defaults.
// A .env file in the working directory is honored when present.
func Load() (*AppConfig, error) {
	// Best effort; environment variables win over the file.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	cfg.PushoverUserKey = os.Getenv("PUSHOVER_USER_KEY")
	cfg.PushoverAppToken = os.Getenv("PUSHOVER_APP_TOKEN")

	threshold, err := alert.ParseSeverity(getenvDefault("NOTIFICATION_THRESHOLD", "warning"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_THRESHOLD: %w", err)
	}
	cfg.NotificationThreshold = threshold

	cfg.CheckInterval, err = getenvDuration("CHECK_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	cfg.AlertCooldown, err = getenvDuration("ALERT_COOLDOWN", "6h")
	if err != nil {
		return nil, err
	}
	cfg.ForecastDays = getenvInt("FORECAST_DAYS", 5)

	cfg.Thresholds = loadThresholds()

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 48) // roughly 2 days at hourly checks
	cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "48h")
	if err != nil {
		return nil, err
	}

	cfg.AlertDBPath = getenvDefault("ALERT_DB_PATH", "alerts.db")

	cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.Port = getenvDefault("PORT", "8080")

	locs, err := loadLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	// Nested Thresholds are validated along with the rest of the struct.
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadThresholds starts from the stock limits and applies any env overrides.
func loadThresholds() alert.Thresholds {
	t := alert.DefaultThresholds()

	t.TempExtremeHigh = getenvFloat("THRESHOLD_TEMP_EXTREME_HIGH", t.TempExtremeHigh)
	t.TempExtremeLow = getenvFloat("THRESHOLD_TEMP_EXTREME_LOW", t.TempExtremeLow)
	t.TempWarningHigh = getenvFloat("THRESHOLD_TEMP_WARNING_HIGH", t.TempWarningHigh)
	t.TempWarningLow = getenvFloat("THRESHOLD_TEMP_WARNING_LOW", t.TempWarningLow)
	t.WindSevereKmh = getenvFloat("THRESHOLD_WIND_SEVERE_KMH", t.WindSevereKmh)
	t.WindWarningKmh = getenvFloat("THRESHOLD_WIND_WARNING_KMH", t.WindWarningKmh)
	t.HeavyRainMm = getenvFloat("THRESHOLD_HEAVY_RAIN_MM", t.HeavyRainMm)

	return t
}

// loadLocations parses comma-separated parallel city/country lists, e.g.
// WEATHER_LOCATION_CITY="London,Paris" WEATHER_LOCATION_COUNTRY="UK,FR".
func loadLocations() ([]weather.Location, error) {
	city := getenvDefault("WEATHER_LOCATION_CITY", "London")
	country := getenvDefault("WEATHER_LOCATION_COUNTRY", "UK")

	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}

	var locs []weather.Location
	for i := range cities {
		locs = append(locs, weather.Location{
			City:    strings.TrimSpace(cities[i]),
			Country: strings.TrimSpace(countries[i]),
		})
	}

	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
