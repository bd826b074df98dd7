package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/afinkbeiner86/weather-alert/internal/alert"
)

// AlertStore persists dispatched alerts in SQLite. It survives restarts so
// cooldown suppression keeps working across process lifetimes.
type AlertStore struct {
	db *sql.DB
}

// NewAlertStore opens (or creates) the database at path and ensures the schema.
func NewAlertStore(path string) (*AlertStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Single writer; the modernc driver serializes badly under concurrency.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		location TEXT NOT NULL,
		type TEXT NOT NULL,
		severity TEXT NOT NULL,
		description TEXT NOT NULL,
		value REAL NOT NULL,
		unit TEXT NOT NULL,
		message TEXT NOT NULL,
		sent_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_key ON alerts(location, type, severity, sent_at);
	CREATE INDEX IF NOT EXISTS idx_alerts_sent_at ON alerts(sent_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &AlertStore{db: db}, nil
}

// SaveAlert inserts a dispatched alert record.
func (s *AlertStore) SaveAlert(a alert.Alert) error {
	_, err := s.db.Exec(
		`INSERT INTO alerts (id, location, type, severity, description, value, unit, message, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Location, a.Type, a.Severity, a.Description, a.Value, a.Unit, a.Message,
		a.SentAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// LastNotified returns when an alert with the given key was last dispatched.
// The second return value is false when no such alert exists.
func (s *AlertStore) LastNotified(location, condType, severity string) (time.Time, bool, error) {
	var raw sql.NullString
	err := s.db.QueryRow(
		`SELECT MAX(sent_at) FROM alerts WHERE location = ? AND type = ? AND severity = ?`,
		location, condType, severity,
	).Scan(&raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query last notified: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return time.Time{}, false, nil
	}

	ts, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse sent_at: %w", err)
	}
	return ts, true, nil
}

// RecentAlerts returns the most recently dispatched alerts, newest first.
func (s *AlertStore) RecentAlerts(limit int) ([]alert.Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, location, type, severity, description, value, unit, message, sent_at
		 FROM alerts ORDER BY sent_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []alert.Alert
	for rows.Next() {
		var a alert.Alert
		var raw string
		if err := rows.Scan(&a.ID, &a.Location, &a.Type, &a.Severity, &a.Description,
			&a.Value, &a.Unit, &a.Message, &raw); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			a.SentAt = ts
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// Close closes the underlying database.
func (s *AlertStore) Close() error {
	return s.db.Close()
}
