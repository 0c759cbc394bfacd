package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

func BringUpToDate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, Migrations)
	err := migrator.Init(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return group, nil
}

// BookCopiesDDL and ReservationsDDL are shared with the importer, which
// drops and recreates both tables on every run.
const BookCopiesDDL = `
	CREATE TABLE book_copies (
		copy_id INTEGER PRIMARY KEY,
		book_id INTEGER NOT NULL REFERENCES books (book_id) ON DELETE CASCADE,
		inventory_number VARCHAR(50) UNIQUE NOT NULL,
		condition VARCHAR(20) CHECK (condition IN ('new', 'good', 'fair', 'poor')),
		status VARCHAR(20) DEFAULT 'available' CHECK (status IN ('available', 'reserved', 'issued', 'lost')),
		location VARCHAR(100)
	)
`

const ReservationsDDL = `
	CREATE TABLE reservations (
		reservation_id INTEGER PRIMARY KEY AUTOINCREMENT,
		copy_id INTEGER NOT NULL REFERENCES book_copies (copy_id) ON DELETE CASCADE,
		username VARCHAR(50) NOT NULL REFERENCES users (username) ON DELETE CASCADE,
		reservation_date TIMESTAMP NOT NULL,
		pickup_deadline TIMESTAMP,
		due_date DATE NOT NULL,
		status VARCHAR(20) DEFAULT 'reserved' CHECK (status IN ('reserved', 'issued', 'returned', 'cancelled'))
	)
`
