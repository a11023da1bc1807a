// Package sqldb implements database.Store on database/sql for PostgreSQL
// (lib/pq) and SQLite (modernc.org/sqlite).
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mathmusci/optivenue/internal/database"
)

var errNoTx = errors.New("booking lock requires a transaction")

type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ database.Store = (*Store)(nil)

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// q returns the transaction carried by ctx, or the pool.
func (s *Store) q(ctx context.Context) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, s.db, fn)
}

func (s *Store) LockBookings(ctx context.Context) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return errNoTx
	}
	if s.dialect.LockStatement == "" {
		return nil
	}
	if _, err := tx.ExecContext(ctx, s.dialect.LockStatement); err != nil {
		return fmt.Errorf("acquire booking lock: %w", err)
	}
	return nil
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.dialect.Migrate(ctx, s.db)
}

func (s *Store) Reset(ctx context.Context) error {
	if err := s.dialect.Drop(ctx, s.db); err != nil {
		return err
	}
	return s.dialect.Migrate(ctx, s.db)
}

func (s *Store) Close() error {
	return s.db.Close()
}
