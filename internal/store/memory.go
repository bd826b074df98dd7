package store

import (
	"errors"
	"sync"
	"time"

	"github.com/afinkbeiner86/weather-alert/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no weather data for location")
)

// MemoryStore is a concurrency-safe in-memory store of per-location
// snapshot histories. It backs the HTTP API's current/history endpoints
// and gives the evaluator a last-good snapshot when providers flap.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: snapshots ordered oldest first
	data map[string][]weather.WeatherSnapshot

	// retention configuration
	maxHistory int           // max number of snapshots per location (0 = unlimited)
	maxAge     time.Duration // max age of snapshots (0 = unlimited)
}

// NewMemoryStore creates a new MemoryStore with optional limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][]weather.WeatherSnapshot),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveSnapshot appends a new snapshot for a location and enforces retention.
func (s *MemoryStore) SaveSnapshot(loc weather.Location, snapshot weather.WeatherSnapshot) {
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = s.prune(append(s.data[key], snapshot))
}

// prune enforces count and age retention on an ordered snapshot slice.
func (s *MemoryStore) prune(snaps []weather.WeatherSnapshot) []weather.WeatherSnapshot {
	if s.maxHistory > 0 && len(snaps) > s.maxHistory {
		snaps = snaps[len(snaps)-s.maxHistory:]
	}

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(snaps); i++ {
			if !snaps[i].Timestamp.Before(cutoff) {
				break
			}
		}
		if i > 0 && i < len(snaps) {
			snaps = snaps[i:]
		}
	}

	return snaps
}

// GetLatest returns the most recent snapshot for a location.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := s.data[loc.Key()]
	if len(snaps) == 0 {
		return weather.WeatherSnapshot{}, ErrNotFound
	}
	return snaps[len(snaps)-1], nil
}

// GetRange returns all snapshots for a location between from and to (inclusive).
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := s.data[loc.Key()]
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.WeatherSnapshot
	for _, snap := range snaps {
		if !snap.Timestamp.Before(from) && !snap.Timestamp.After(to) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
