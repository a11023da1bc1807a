package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mathmusci/optivenue/config"
	"github.com/sirupsen/logrus"
)

func DSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
}

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	return Open(DSN(cfg), cfg)
}

// IsAuthError reports whether the server refused the credentials or the
// database name. Reconnecting will not change the answer.
func IsAuthError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "28000", "28P01", "3D000":
		return true
	}
	return false
}

// Open connects to dsn and applies the pool settings of cfg.
func Open(dsn string, cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg != nil {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Successfully connected to PostgreSQL")
	return db, nil
}

// Migrations creates the scheduler schema. Statements are idempotent.
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS venues (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		capacity INTEGER NOT NULL CHECK (capacity >= 0),
		personnel_required INTEGER NOT NULL CHECK (personnel_required >= 0),
		location_id BIGINT NOT NULL REFERENCES locations(id),
		open_time TIME NOT NULL DEFAULT '09:00',
		close_time TIME NOT NULL DEFAULT '23:00'
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		event_type VARCHAR(32) NOT NULL,
		start_time TIMESTAMP NOT NULL,
		duration_hours INTEGER NOT NULL CHECK (duration_hours BETWEEN 1 AND 24),
		participants INTEGER NOT NULL CHECK (participants >= 1),
		venue_id BIGINT NOT NULL REFERENCES venues(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS personnel_availability (
		id BIGSERIAL PRIMARY KEY,
		month CHAR(7) NOT NULL,
		available_personnel INTEGER NOT NULL CHECK (available_personnel >= 0)
	)`,

	// Indexes
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

// DropAll removes every scheduler table.
func DropAll(ctx context.Context, db *sql.DB) error {
	for _, stmt := range dropStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}
	return nil
}
