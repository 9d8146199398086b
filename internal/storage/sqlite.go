// Package storage provides SQLite persistence for wake and resolution history.
package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/user/wolbook/internal/util"
)

// DB wraps the SQLite database connection.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*DB, error) {
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("failed to create database dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)

	d := &DB{DB: db}
	if err := d.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return d, nil
}

func (db *DB) createTables() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS wake_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			address TEXT,
			mac TEXT,
			port INTEGER,
			success INTEGER DEFAULT 0,
			error TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_wake_history_timestamp ON wake_history(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_wake_history_name ON wake_history(name)`,

		`CREATE TABLE IF NOT EXISTS resolve_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ddns TEXT NOT NULL,
			address TEXT,
			success INTEGER DEFAULT 0,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_resolve_history_timestamp ON resolve_history(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_resolve_history_ddns ON resolve_history(ddns)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to execute: %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
