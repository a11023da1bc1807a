package sqldb

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/mathmusci/optivenue/internal/database"
	"github.com/mathmusci/optivenue/pkg/postgres"
	"github.com/mathmusci/optivenue/pkg/sqlite"
)

// Dialect carries what differs between the SQL engines behind Store.
type Dialect struct {
	Name string
	// Numbered turns ? placeholders into $1, $2, ...
	Numbered bool
	// LockStatement serializes booking decisions inside a transaction. Empty
	// when the engine already serializes transactions.
	LockStatement string
	Migrate       func(ctx context.Context, db *sql.DB) error
	Drop          func(ctx context.Context, db *sql.DB) error
}

func Postgres() Dialect {
	return Dialect{
		Name:          "postgres",
		Numbered:      true,
		LockStatement: "SELECT pg_advisory_xact_lock(" + strconv.FormatInt(database.BookingsLockID, 10) + ")",
		Migrate:       postgres.RunMigrations,
		Drop:          postgres.DropAll,
	}
}

// SQLite expects a *sql.DB limited to one open connection, as returned by
// sqlite.NewSQLiteDB.
func SQLite() Dialect {
	return Dialect{
		Name:    "sqlite",
		Migrate: sqlite.RunMigrations,
		Drop:    sqlite.DropAll,
	}
}

func (d Dialect) rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
