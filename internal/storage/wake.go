package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/user/wolbook/internal/model"
)

// WakeStorage handles wake history persistence.
type WakeStorage struct {
	db *DB
}

// NewWakeStorage creates a new wake storage handler.
func NewWakeStorage(db *DB) *WakeStorage {
	return &WakeStorage{db: db}
}

// Save stores a wake event.
func (s *WakeStorage) Save(ev *model.WakeEvent) error {
	query := `INSERT INTO wake_history (name, address, mac, port, success, error, timestamp)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.Exec(query,
		ev.Name, ev.Address, ev.HardwareAddress, ev.Port,
		boolToInt(ev.Success), ev.Error, ev.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert wake event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	ev.ID = id

	return nil
}

// GetHistory returns wake events since a given time, newest first. An empty
// name matches every host.
func (s *WakeStorage) GetHistory(since time.Time, name string) ([]model.WakeEvent, error) {
	query := `SELECT id, name, address, mac, port, success, error, timestamp
			  FROM wake_history WHERE timestamp >= ? AND (? = '' OR name = ?)
			  ORDER BY timestamp DESC, id DESC`

	rows, err := s.db.Query(query, since.UTC(), name, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query wake history: %w", err)
	}
	defer rows.Close()

	var events []model.WakeEvent
	for rows.Next() {
		ev, err := scanWake(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

// GetLatest returns the most recent wake event for a host, or nil.
func (s *WakeStorage) GetLatest(name string) (*model.WakeEvent, error) {
	query := `SELECT id, name, address, mac, port, success, error, timestamp
			  FROM wake_history WHERE name = ? ORDER BY timestamp DESC, id DESC LIMIT 1`

	ev, err := scanWake(s.db.QueryRow(query, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// Count returns the total number of wake events.
func (s *WakeStorage) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM wake_history").Scan(&count)
	return count, err
}

// CountFailedSince returns the number of failed wakes since a given time.
func (s *WakeStorage) CountFailedSince(since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM wake_history WHERE success = 0 AND timestamp >= ?", since.UTC()).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWake(row rowScanner) (model.WakeEvent, error) {
	var (
		ev      model.WakeEvent
		success int
		errText sql.NullString
	)
	err := row.Scan(&ev.ID, &ev.Name, &ev.Address, &ev.HardwareAddress,
		&ev.Port, &success, &errText, &ev.Timestamp)
	if err == sql.ErrNoRows {
		return ev, err
	}
	if err != nil {
		return ev, fmt.Errorf("failed to scan wake event: %w", err)
	}
	ev.Success = success == 1
	ev.Error = errText.String
	return ev, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
