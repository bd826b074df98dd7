package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Check cycle metrics
	CheckCyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_alert_check_cycles_total",
			Help: "Total number of weather check cycles run",
		},
	)

	CheckCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weather_alert_check_cycle_duration_seconds",
			Help:    "Duration of a full weather check cycle in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Provider metrics
	ProviderFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_alert_provider_fetches_total",
			Help: "Total number of upstream provider fetches",
		},
		[]string{"provider", "result"},
	)

	// Alert metrics
	ConditionsDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_alert_conditions_detected_total",
			Help: "Total number of alert conditions detected, by type and severity",
		},
		[]string{"type", "severity"},
	)

	AlertsSuppressedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_alert_alerts_suppressed_total",
			Help: "Total number of alerts suppressed by the cooldown window",
		},
	)

	// Notification metrics
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_alert_notifications_total",
			Help: "Total number of notification deliveries, by notifier and result",
		},
		[]string{"notifier", "result"},
	)
)
