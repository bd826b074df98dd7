package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/afinkbeiner86/weather-alert/internal/alert"
)

func newTestAlertStore(t *testing.T) *AlertStore {
	t.Helper()

	s, err := NewAlertStore(filepath.Join(t.TempDir(), "alerts.db"))
	if err != nil {
		t.Fatalf("failed to open alert store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testAlert(sentAt time.Time) alert.Alert {
	return alert.Alert{
		ID:          uuid.NewString(),
		Location:    "TestCity:TC",
		Type:        "wind",
		Severity:    "severe",
		Description: "High Winds",
		Value:       82.5,
		Unit:        "km/h",
		Message:     "⚠️ Weather Alert:\n\n💨 Severe High Winds: 82.5km/h",
		SentAt:      sentAt,
	}
}

func TestAlertStoreRoundtrip(t *testing.T) {
	s := newTestAlertStore(t)

	want := testAlert(time.Now().UTC())
	if err := s.SaveAlert(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	alerts, err := s.RecentAlerts(10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}

	got := alerts[0]
	if got.ID != want.ID || got.Location != want.Location || got.Severity != want.Severity {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", got, want)
	}
	if got.Value != want.Value {
		t.Fatalf("value mismatch: got %g, want %g", got.Value, want.Value)
	}
}

func TestAlertStoreLastNotified(t *testing.T) {
	s := newTestAlertStore(t)

	if _, found, err := s.LastNotified("TestCity:TC", "wind", "severe"); err != nil || found {
		t.Fatalf("expected no prior notification, found=%v err=%v", found, err)
	}

	older := time.Now().UTC().Add(-2 * time.Hour)
	newer := time.Now().UTC()

	if err := s.SaveAlert(testAlert(older)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SaveAlert(testAlert(newer)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	ts, found, err := s.LastNotified("TestCity:TC", "wind", "severe")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !found {
		t.Fatal("expected a prior notification")
	}
	if ts.Sub(newer).Abs() > time.Second {
		t.Fatalf("expected newest timestamp %v, got %v", newer, ts)
	}

	// Different key is unaffected.
	if _, found, _ := s.LastNotified("TestCity:TC", "temperature", "extreme"); found {
		t.Fatal("unexpected notification for different key")
	}
}

func TestAlertStoreRecentOrderAndLimit(t *testing.T) {
	s := newTestAlertStore(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		a := testAlert(base.Add(time.Duration(i) * time.Minute))
		if err := s.SaveAlert(a); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	alerts, err := s.RecentAlerts(3)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	for i := 1; i < len(alerts); i++ {
		if alerts[i].SentAt.After(alerts[i-1].SentAt) {
			t.Fatal("alerts not ordered newest first")
		}
	}
}
