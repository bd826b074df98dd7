package alert

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/afinkbeiner86/weather-alert/internal/logger"
	"github.com/afinkbeiner86/weather-alert/internal/metrics"
	"github.com/afinkbeiner86/weather-alert/internal/notify"
	"github.com/afinkbeiner86/weather-alert/internal/weather"
)

// Alert is one dispatched notification record.
type Alert struct {
	ID          string    `json:"id"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	Value       float64   `json:"value"`
	Unit        string    `json:"unit"`
	Message     string    `json:"message"`
	SentAt      time.Time `json:"sentAt"`
}

// Recorder persists dispatched alerts and answers cooldown queries.
type Recorder interface {
	SaveAlert(a Alert) error
	LastNotified(location, condType, severity string) (time.Time, bool, error)
}

// Dispatcher turns detected conditions into delivered notifications:
// it filters by severity threshold, suppresses conditions still inside
// the cooldown window, formats the message, fans it out to all notifiers
// and records what was sent.
type Dispatcher struct {
	threshold Severity
	cooldown  time.Duration
	recorder  Recorder
	notifiers []notify.Notifier
}

func NewDispatcher(threshold Severity, cooldown time.Duration, recorder Recorder, notifiers []notify.Notifier) *Dispatcher {
	return &Dispatcher{
		threshold: threshold,
		cooldown:  cooldown,
		recorder:  recorder,
		notifiers: notifiers,
	}
}

// Process dispatches the given conditions for a location. A notifier failure
// is logged and counted but does not fail the cycle; the error return is
// reserved for recorder failures.
func (d *Dispatcher) Process(ctx context.Context, loc weather.Location, conds []Condition) error {
	log := logger.WithComponent("dispatcher")

	filtered := FilterBySeverity(Dedupe(conds), d.threshold)
	if len(filtered) == 0 {
		log.Debug().Str("location", loc.Key()).Msg("no conditions meet notification threshold")
		return nil
	}

	active := d.suppress(loc, filtered)
	if len(active) == 0 {
		log.Info().Str("location", loc.Key()).Msg("all conditions inside cooldown window")
		return nil
	}

	for _, c := range active {
		metrics.ConditionsDetectedTotal.WithLabelValues(c.Type, string(c.Severity)).Inc()
	}

	message := FormatMessage(active)
	notification := notify.Notification{
		Title:   "Weather Alert: " + loc.String(),
		Message: message,
	}

	delivered := false
	for _, n := range d.notifiers {
		if err := n.Send(ctx, notification); err != nil {
			metrics.NotificationsTotal.WithLabelValues(n.Name(), "error").Inc()
			log.Error().Err(err).Str("notifier", n.Name()).Msg("notification delivery failed")
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(n.Name(), "ok").Inc()
		delivered = true
	}

	if !delivered {
		log.Error().Str("location", loc.Key()).Msg("no notifier delivered the alert; not recording")
		return nil
	}

	now := time.Now().UTC()
	for _, c := range active {
		rec := Alert{
			ID:          uuid.NewString(),
			Location:    loc.Key(),
			Type:        c.Type,
			Severity:    string(c.Severity),
			Description: c.Description,
			Value:       c.Value,
			Unit:        c.Unit,
			Message:     message,
			SentAt:      now,
		}
		if err := d.recorder.SaveAlert(rec); err != nil {
			return err
		}
	}

	log.Info().
		Str("location", loc.Key()).
		Int("conditions", len(active)).
		Msg("alert notification sent")
	return nil
}

// suppress drops conditions whose (location, type, severity) key was already
// notified within the cooldown window.
func (d *Dispatcher) suppress(loc weather.Location, conds []Condition) []Condition {
	if d.cooldown <= 0 {
		return conds
	}

	log := logger.WithComponent("dispatcher")
	cutoff := time.Now().UTC().Add(-d.cooldown)

	var active []Condition
	for _, c := range conds {
		last, found, err := d.recorder.LastNotified(loc.Key(), c.Type, string(c.Severity))
		if err != nil {
			log.Warn().Err(err).Msg("cooldown lookup failed; dispatching anyway")
			active = append(active, c)
			continue
		}
		if found && last.After(cutoff) {
			metrics.AlertsSuppressedTotal.Inc()
			log.Debug().
				Str("location", loc.Key()).
				Str("type", c.Type).
				Str("severity", string(c.Severity)).
				Time("last_notified", last).
				Msg("condition suppressed by cooldown")
			continue
		}
		active = append(active, c)
	}
	return active
}
