package notify

import "context"

// Notification is one outbound message to an end user.
type Notification struct {
	Title   string
	Message string
}

// Notifier defines the interface for delivering notifications.
type Notifier interface {
	// Name returns the name of the notifier (e.g. "pushover", "log").
	Name() string

	// Send delivers a notification.
	Send(ctx context.Context, n Notification) error
}
