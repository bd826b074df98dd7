package store

import (
	"testing"
	"time"

	"github.com/afinkbeiner86/weather-alert/internal/weather"
)

var loc = weather.Location{City: "TestCity", Country: "TC"}

func snapAt(ts time.Time, temp float64) weather.WeatherSnapshot {
	return weather.WeatherSnapshot{
		Location:    loc,
		Timestamp:   ts,
		Temperature: temp,
	}
}

func TestMemoryStoreLatest(t *testing.T) {
	s := NewMemoryStore(10, 0)

	if _, err := s.GetLatest(loc); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	now := time.Now().UTC()
	s.SaveSnapshot(loc, snapAt(now.Add(-time.Hour), 10))
	s.SaveSnapshot(loc, snapAt(now, 20))

	latest, err := s.GetLatest(loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.Temperature != 20 {
		t.Fatalf("expected latest temperature 20, got %g", latest.Temperature)
	}
}

func TestMemoryStoreCountRetention(t *testing.T) {
	s := NewMemoryStore(3, 0)
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		s.SaveSnapshot(loc, snapAt(now.Add(time.Duration(i)*time.Minute), float64(i)))
	}

	snaps, err := s.GetRange(loc, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("expected 3 retained snapshots, got %d", len(snaps))
	}
	if snaps[0].Temperature != 2 {
		t.Fatalf("expected oldest retained snapshot to be 2, got %g", snaps[0].Temperature)
	}
}

func TestMemoryStoreAgeRetention(t *testing.T) {
	s := NewMemoryStore(0, time.Hour)
	now := time.Now().UTC()

	s.SaveSnapshot(loc, snapAt(now.Add(-2*time.Hour), 1))
	s.SaveSnapshot(loc, snapAt(now, 2))

	snaps, err := s.GetRange(loc, now.Add(-3*time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected stale snapshot pruned, got %d snapshots", len(snaps))
	}
}

func TestMemoryStoreRange(t *testing.T) {
	s := NewMemoryStore(10, 0)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		s.SaveSnapshot(loc, snapAt(base.Add(time.Duration(i)*time.Hour), float64(i)))
	}

	snaps, err := s.GetRange(loc, base.Add(time.Hour), base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots in range, got %d", len(snaps))
	}

	if _, err := s.GetRange(loc, base.Add(10*time.Hour), base.Add(11*time.Hour)); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for empty range, got %v", err)
	}
}
