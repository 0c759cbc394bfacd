package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE users (
				username VARCHAR(50) PRIMARY KEY,
				email VARCHAR(100),
				full_name VARCHAR(150),
				phone VARCHAR(20),
				card_number VARCHAR(20),
				role VARCHAR(20) NOT NULL CHECK (role IN ('reader', 'librarian', 'admin')),
				max_books INTEGER NOT NULL DEFAULT 5,
				password_hash TEXT NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE authors (
				author_id INTEGER PRIMARY KEY,
				first_name VARCHAR(100),
				last_name VARCHAR(100),
				birth_year INTEGER,
				death_year INTEGER,
				bio TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE genres (
				genre_id INTEGER PRIMARY KEY,
				name VARCHAR(50) NOT NULL,
				description TEXT,
				parent_id INTEGER REFERENCES genres (genre_id)
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE books (
				book_id INTEGER PRIMARY KEY,
				title VARCHAR(300) NOT NULL,
				isbn VARCHAR(20) UNIQUE,
				publication_year INTEGER,
				publisher VARCHAR(200),
				pages INTEGER,
				language VARCHAR(50),
				description TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE book_authors (
				book_id INTEGER NOT NULL REFERENCES books (book_id) ON DELETE CASCADE,
				author_id INTEGER NOT NULL REFERENCES authors (author_id) ON DELETE CASCADE,
				PRIMARY KEY (book_id, author_id)
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE book_genres (
				book_id INTEGER NOT NULL REFERENCES books (book_id) ON DELETE CASCADE,
				genre_id INTEGER NOT NULL REFERENCES genres (genre_id) ON DELETE CASCADE,
				PRIMARY KEY (book_id, genre_id)
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		// No indexes on these two: the importer drops and recreates them
		// from the same DDL, and indexes would not survive that.
		_, err = db.Exec(BookCopiesDDL)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(ReservationsDDL)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		for _, table := range []string{"reservations", "book_copies", "book_genres", "book_authors", "books", "genres", "authors", "users"} {
			_, err := db.Exec("DROP TABLE IF EXISTS " + table)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
