package storage

import "github.com/user/wolbook/internal/model"

// History records registry events into the database.
type History struct {
	Wakes    *WakeStorage
	Resolves *ResolveStorage
}

// NewHistory creates a history recorder over db.
func NewHistory(db *DB) *History {
	return &History{
		Wakes:    NewWakeStorage(db),
		Resolves: NewResolveStorage(db),
	}
}

// RecordWake stores every wake attempt.
func (h *History) RecordWake(ev *model.WakeEvent) error {
	return h.Wakes.Save(ev)
}

// RecordResolve stores a resolution only when its outcome changed, so
// periodic re-syncs do not grow the table.
func (h *History) RecordResolve(ev *model.ResolveEvent) error {
	changed, err := h.Resolves.HasChanged(ev)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return h.Resolves.Save(ev)
}
