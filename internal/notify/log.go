package notify

import (
	"context"

	"github.com/afinkbeiner86/weather-alert/internal/logger"
)

// LogNotifier writes notifications to the structured log. It is used as the
// delivery channel when no push credentials are configured, so the pipeline
// stays observable in development.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (l *LogNotifier) Name() string {
	return "log"
}

func (l *LogNotifier) Send(_ context.Context, n Notification) error {
	log := logger.WithComponent("notify")
	log.Info().
		Str("title", n.Title).
		Str("message", n.Message).
		Msg("notification")
	return nil
}
