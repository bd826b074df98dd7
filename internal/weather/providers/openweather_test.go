package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/afinkbeiner86/weather-alert/internal/weather"
)

const owmForecastPayload = `{
	"list": [
		{
			"dt": 1767268800,
			"main": {"temp": 41.2, "humidity": 30, "pressure": 1008},
			"wind": {"speed": 5.5},
			"weather": [{"main": "Clear"}]
		},
		{
			"dt": 1767279600,
			"main": {"temp": 25.0, "humidity": 60, "pressure": 1010},
			"wind": {"speed": 3.0},
			"rain": {"3h": 55.0},
			"weather": [{"main": "Thunderstorm"}]
		}
	]
}`

func TestOpenWeatherFetchForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "TestCity,TC" {
			t.Errorf("unexpected location query %q", got)
		}
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("expected metric units, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(owmForecastPayload))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "test-key")
	p.forecastURL = srv.URL

	loc := weather.Location{City: "TestCity", Country: "TC"}
	readings, err := p.FetchForecast(context.Background(), loc, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(readings) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(readings))
	}

	if readings[0].TemperatureC != 41.2 {
		t.Fatalf("expected temperature 41.2, got %g", readings[0].TemperatureC)
	}
	if readings[0].Condition != weather.ConditionClear {
		t.Fatalf("expected clear, got %s", readings[0].Condition)
	}

	if readings[1].PrecipMm != 55.0 {
		t.Fatalf("expected 3h rain volume 55, got %g", readings[1].PrecipMm)
	}
	if readings[1].Condition != weather.ConditionStorm {
		t.Fatalf("expected storm, got %s", readings[1].Condition)
	}
}

func TestOpenWeatherFetchCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"dt": 1767268800,
			"main": {"temp": -18.5, "humidity": 80, "pressure": 1020},
			"wind": {"speed": 2.0},
			"weather": [{"main": "Snow"}]
		}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "test-key")
	p.baseURL = srv.URL

	reading, err := p.Fetch(context.Background(), weather.Location{City: "TestCity", Country: "TC"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading.TemperatureC != -18.5 {
		t.Fatalf("expected temperature -18.5, got %g", reading.TemperatureC)
	}
	if reading.Condition != weather.ConditionSnow {
		t.Fatalf("expected snow, got %s", reading.Condition)
	}
}

func TestOpenWeatherRequiresAPIKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "")

	if _, err := p.Fetch(context.Background(), weather.Location{City: "X"}); err == nil {
		t.Fatal("expected error without api key")
	}
	if _, err := p.FetchForecast(context.Background(), weather.Location{City: "X"}, 1); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestMapWeatherAPICondition(t *testing.T) {
	tests := []struct {
		text string
		want weather.Condition
	}{
		{"Patchy light rain", weather.ConditionRain},
		{"Blowing snow", weather.ConditionSnow},
		{"Thundery outbreaks possible", weather.ConditionStorm},
		// Severe phenomena must not be downgraded by rain/snow wording.
		{"Blizzard", weather.ConditionStorm},
		{"Moderate or heavy snow in area with blizzard", weather.ConditionStorm},
		{"Tornado", weather.ConditionStorm},
		{"Hurricane conditions", weather.ConditionStorm},
		{"Partly cloudy", weather.ConditionCloudy},
		{"Sunny", weather.ConditionClear},
		{"Freezing fog", weather.ConditionMist},
		{"", weather.ConditionUnknown},
	}

	for _, tt := range tests {
		if got := mapWeatherAPICondition(tt.text); got != tt.want {
			t.Errorf("mapWeatherAPICondition(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestMapOpenWeatherCondition(t *testing.T) {
	mk := func(main string) []struct {
		Main string `json:"main"`
	} {
		return []struct {
			Main string `json:"main"`
		}{{Main: main}}
	}

	tests := []struct {
		main string
		want weather.Condition
	}{
		{"Clear", weather.ConditionClear},
		{"Rain", weather.ConditionRain},
		{"Snow", weather.ConditionSnow},
		{"Thunderstorm", weather.ConditionStorm},
		{"Tornado", weather.ConditionStorm},
		{"Squall", weather.ConditionStorm},
		{"Haze", weather.ConditionMist},
	}

	for _, tt := range tests {
		if got := mapOpenWeatherCondition(mk(tt.main)); got != tt.want {
			t.Errorf("mapOpenWeatherCondition(%q) = %s, want %s", tt.main, got, tt.want)
		}
	}
}
