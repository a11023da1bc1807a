package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"
)

// DSN turns a file path (or ":memory:") into a modernc DSN with foreign keys
// enabled. Instants are written as "2006-01-02 15:04:05-07:00" so that UTC
// values compare correctly as text.
func DSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// NewSQLiteDB opens path with a single connection. All statements, including
// the ones of a transaction, share it, so writes are serialized and an
// in-memory database survives for the lifetime of db.
func NewSQLiteDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithField("path", path).Info("Successfully opened SQLite database")
	return db, nil
}

// Migrations creates the scheduler schema. Times of day are stored as
// HH:MM:SS text and instants as TIMESTAMP so the driver parses them back.
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS venues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		capacity INTEGER NOT NULL CHECK (capacity >= 0),
		personnel_required INTEGER NOT NULL CHECK (personnel_required >= 0),
		location_id INTEGER NOT NULL REFERENCES locations(id),
		open_time TEXT NOT NULL DEFAULT '09:00:00',
		close_time TEXT NOT NULL DEFAULT '23:00:00'
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		duration_hours INTEGER NOT NULL CHECK (duration_hours BETWEEN 1 AND 24),
		participants INTEGER NOT NULL CHECK (participants >= 1),
		venue_id INTEGER NOT NULL REFERENCES venues(id),
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS personnel_availability (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		month TEXT NOT NULL,
		available_personnel INTEGER NOT NULL CHECK (available_personnel >= 0)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_locations_name ON locations(name)`,
	`CREATE INDEX IF NOT EXISTS idx_venues_location_id ON venues(location_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_start_time ON events(start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_events_venue_start ON events(venue_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_personnel_month ON personnel_availability(month)`,
}

var dropStatements = []string{
	`DROP TABLE IF EXISTS events`,
	`DROP TABLE IF EXISTS venues`,
	`DROP TABLE IF EXISTS locations`,
	`DROP TABLE IF EXISTS personnel_availability`,
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	for _, migration := range Migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	logrus.Info("Database migrations completed successfully")
	return nil
}

func DropAll(ctx context.Context, db *sql.DB) error {
	for _, stmt := range dropStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}
	return nil
}
