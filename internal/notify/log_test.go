package notify

import (
	"context"
	"testing"
)

func TestLogNotifierSend(t *testing.T) {
	n := NewLogNotifier()

	if n.Name() != "log" {
		t.Fatalf("unexpected name %q", n.Name())
	}
	err := n.Send(context.Background(), Notification{
		Title:   "Weather Alert: TestCity,TC",
		Message: "High winds expected",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
