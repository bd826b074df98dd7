package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/afinkbeiner86/weather-alert/internal/alert"
	"github.com/afinkbeiner86/weather-alert/internal/notify"
	"github.com/afinkbeiner86/weather-alert/internal/store"
	"github.com/afinkbeiner86/weather-alert/internal/weather"
)

type hotProvider struct{}

func (hotProvider) Name() string { return "hot" }

func (hotProvider) Fetch(_ context.Context, _ weather.Location) (weather.ProviderReading, error) {
	return weather.ProviderReading{
		ProviderName: "hot",
		Timestamp:    time.Now().UTC(),
		TemperatureC: 45,
		Condition:    weather.ConditionClear,
	}, nil
}

type captureRecorder struct {
	mu    sync.Mutex
	saved []alert.Alert
}

func (c *captureRecorder) SaveAlert(a alert.Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = append(c.saved, a)
	return nil
}

func (c *captureRecorder) LastNotified(_, _, _ string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

func (c *captureRecorder) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.saved)
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (c *captureNotifier) Name() string { return "capture" }

func (c *captureNotifier) Send(_ context.Context, n notify.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, n)
	return nil
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func newTestScheduler(interval time.Duration) (*Scheduler, *captureRecorder, *captureNotifier) {
	st := store.NewMemoryStore(10, time.Hour)
	svc := weather.NewService(st, []weather.Provider{hotProvider{}})
	ev := alert.NewEvaluator(alert.DefaultThresholds())

	rec := &captureRecorder{}
	not := &captureNotifier{}
	disp := alert.NewDispatcher(alert.SeverityWarning, time.Hour, rec, []notify.Notifier{not})

	locs := []weather.Location{{City: "Hotville", Country: "HV"}}
	return New(locs, interval, 1, svc, ev, disp), rec, not
}

func TestRunCycleDispatchesDetectedConditions(t *testing.T) {
	sched, rec, not := newTestScheduler(time.Hour)

	sched.RunCycle()

	if not.count() != 1 {
		t.Fatalf("expected 1 notification, got %d", not.count())
	}
	if rec.count() != 1 {
		t.Fatalf("expected 1 recorded alert, got %d", rec.count())
	}

	rec.mu.Lock()
	got := rec.saved[0]
	rec.mu.Unlock()
	if got.Location != "Hotville:HV" {
		t.Fatalf("unexpected location %q", got.Location)
	}
	if got.Severity != string(alert.SeverityExtreme) {
		t.Fatalf("expected extreme severity for 45°C, got %q", got.Severity)
	}
}

func TestStartRunsFirstCycleImmediately(t *testing.T) {
	// A long interval ensures any observed cycle is the immediate first run.
	sched, _, not := newTestScheduler(time.Hour)

	if err := sched.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer sched.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for not.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first check cycle did not run immediately after start")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStartWithoutLocationsIsNoop(t *testing.T) {
	sched, _, not := newTestScheduler(time.Hour)
	sched.locations = nil

	if err := sched.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sched.Stop()

	time.Sleep(50 * time.Millisecond)
	if not.count() != 0 {
		t.Fatalf("expected no cycles without locations, got %d notifications", not.count())
	}
}
