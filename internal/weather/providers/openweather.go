package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/afinkbeiner86/weather-alert/internal/httpx"
	"github.com/afinkbeiner86/weather-alert/internal/weather"
)

// OpenWeatherProvider implements the weather.Provider and weather.ForecastProvider
// interfaces for OpenWeatherMap.
type OpenWeatherProvider struct {
	name        string
	apiKey      string
	baseURL     string
	forecastURL string
	httpCfg     httpx.ClientConfig
	circuit     *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:        "openweathermap",
		apiKey:      apiKey,
		baseURL:     "https://api.openweathermap.org/data/2.5/weather",
		forecastURL: "https://api.openweathermap.org/data/2.5/forecast",
		httpCfg: httpx.ClientConfig{
			Client: client,
			Backoff: httpx.BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: httpx.NewBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// owmEntry is the shape shared by the current-weather response and each
// element of the forecast list.
type owmEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneH   float64 `json:"1h"`
		ThreeH float64 `json:"3h"`
	} `json:"rain"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("openweather api key is not configured")
	}

	resp, err := httpx.DoWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		return p.buildRequest(p.baseURL, loc, nil)
	})
	if err != nil {
		return weather.ProviderReading{}, err
	}
	defer resp.Body.Close()

	var payload owmEntry
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.ProviderReading{}, err
	}

	return p.toReading(payload), nil
}

// FetchForecast retrieves the 5-day/3-hour forecast and returns one reading
// per 3-hour period, capped at the requested number of days.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) ([]weather.ProviderReading, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	// 8 periods of 3 hours per day; the API caps cnt at 40.
	cnt := days * 8
	if cnt > 40 {
		cnt = 40
	}

	resp, err := httpx.DoWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		extra := url.Values{}
		extra.Set("cnt", fmt.Sprintf("%d", cnt))
		return p.buildRequest(p.forecastURL, loc, extra)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []owmEntry `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	readings := make([]weather.ProviderReading, 0, len(payload.List))
	for _, entry := range payload.List {
		readings = append(readings, p.toReading(entry))
	}
	return readings, nil
}

func (p *OpenWeatherProvider) buildRequest(base string, loc weather.Location, extra url.Values) (*http.Request, error) {
	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	q := loc.City
	if loc.Country != "" {
		q = fmt.Sprintf("%s,%s", loc.City, loc.Country)
	}
	values.Set("q", q)

	for k, vs := range extra {
		for _, v := range vs {
			values.Add(k, v)
		}
	}

	u := fmt.Sprintf("%s?%s", base, values.Encode())
	return http.NewRequest(http.MethodGet, u, nil)
}

func (p *OpenWeatherProvider) toReading(entry owmEntry) weather.ProviderReading {
	ts := time.Unix(entry.Dt, 0).UTC()
	if entry.Dt == 0 {
		ts = time.Now().UTC()
	}

	precip := entry.Rain.OneH
	if precip == 0 {
		precip = entry.Rain.ThreeH
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: entry.Main.Temp,
		HumidityPct:  entry.Main.Humidity,
		WindSpeedMS:  entry.Wind.Speed,
		PressureHpa:  entry.Main.Pressure,
		PrecipMm:     precip,
		Condition:    mapOpenWeatherCondition(entry.Weather),
	}
}

func mapOpenWeatherCondition(items []struct {
	Main string `json:"main"`
}) weather.Condition {
	if len(items) == 0 {
		return weather.ConditionUnknown
	}
	switch items[0].Main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm", "Tornado", "Squall":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}
