package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/user/wolbook/internal/model"
)

// ResolveStorage handles dynamic-name resolution history.
type ResolveStorage struct {
	db *DB
}

// NewResolveStorage creates a new resolution storage handler.
func NewResolveStorage(db *DB) *ResolveStorage {
	return &ResolveStorage{db: db}
}

// Save stores a resolution result.
func (s *ResolveStorage) Save(ev *model.ResolveEvent) error {
	query := `INSERT INTO resolve_history (ddns, address, success, timestamp)
			  VALUES (?, ?, ?, ?)`

	result, err := s.db.Exec(query, ev.DynamicName, ev.Address, boolToInt(ev.Success), ev.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert resolve event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	ev.ID = id

	return nil
}

// GetLatest returns the most recent resolution of a dynamic name, or nil.
func (s *ResolveStorage) GetLatest(ddns string) (*model.ResolveEvent, error) {
	query := `SELECT id, ddns, address, success, timestamp
			  FROM resolve_history WHERE ddns = ? ORDER BY timestamp DESC, id DESC LIMIT 1`

	var (
		ev      model.ResolveEvent
		success int
	)
	err := s.db.QueryRow(query, ddns).Scan(&ev.ID, &ev.DynamicName, &ev.Address, &success, &ev.Timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest resolution: %w", err)
	}
	ev.Success = success == 1

	return &ev, nil
}

// GetHistory returns resolutions since a given time, newest first.
func (s *ResolveStorage) GetHistory(since time.Time) ([]model.ResolveEvent, error) {
	query := `SELECT id, ddns, address, success, timestamp
			  FROM resolve_history WHERE timestamp >= ? ORDER BY timestamp DESC, id DESC`

	rows, err := s.db.Query(query, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query resolve history: %w", err)
	}
	defer rows.Close()

	var events []model.ResolveEvent
	for rows.Next() {
		var (
			ev      model.ResolveEvent
			success int
		)
		if err := rows.Scan(&ev.ID, &ev.DynamicName, &ev.Address, &success, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan resolve event: %w", err)
		}
		ev.Success = success == 1
		events = append(events, ev)
	}

	return events, rows.Err()
}

// HasChanged reports whether ev differs from the last stored outcome for
// the same name.
func (s *ResolveStorage) HasChanged(ev *model.ResolveEvent) (bool, error) {
	latest, err := s.GetLatest(ev.DynamicName)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return true, nil
	}
	return latest.Success != ev.Success || latest.Address != ev.Address, nil
}
