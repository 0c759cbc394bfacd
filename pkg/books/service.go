package books

import (
	"context"
	"database/sql"
	"strings"

	"github.com/booknest/booknest/pkg/errcodes"
	"github.com/booknest/booknest/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type ListBooksOptions struct {
	Search   *string
	GenreID  *int
	AuthorID *int
}

type CreateBookOptions struct {
	Title           string
	ISBN            *string
	PublicationYear *int
	Publisher       *string
	Pages           *int
	Language        string
	Description     *string
	AuthorsText     string
	GenresText      string
}

type UpdateBookOptions CreateBookOptions

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// ListBooks returns the catalog listing: substring search on title/ISBN,
// optional exact genre/author filters, and a per-book count of currently
// available copies, ordered by title.
func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books := []*models.Book{}

	q := svc.db.
		NewSelect().
		Model(&books).
		ColumnExpr("b.*").
		ColumnExpr("COUNT(DISTINCT CASE WHEN bc.status = ? THEN bc.copy_id END) AS available_copies", models.CopyAvailable).
		Join("LEFT JOIN book_copies AS bc ON bc.book_id = b.book_id").
		Relation("Authors").
		Relation("Genres").
		GroupExpr("b.book_id").
		Order("b.title ASC")

	if opts.Search != nil && *opts.Search != "" {
		pattern := "%" + strings.ToLower(*opts.Search) + "%"
		q = q.Where("(LOWER(b.title) LIKE ? OR LOWER(b.isbn) LIKE ?)", pattern, pattern)
	}
	if opts.GenreID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM book_genres bg WHERE bg.book_id = b.book_id AND bg.genre_id = ?)", *opts.GenreID)
	}
	if opts.AuthorID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM book_authors ba WHERE ba.book_id = b.book_id AND ba.author_id = ?)", *opts.AuthorID)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

// RetrieveBook loads one book with its authors, genres, and only the
// copies still available for reservation.
func (svc *Service) RetrieveBook(ctx context.Context, id int) (*models.Book, error) {
	book := &models.Book{}

	err := svc.db.
		NewSelect().
		Model(book).
		Relation("Authors").
		Relation("Genres").
		Relation("Copies", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				Where("bc.status = ?", models.CopyAvailable).
				Order("bc.inventory_number ASC")
		}).
		Where("b.book_id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// RetrieveBookBare loads one book row without relations.
func (svc *Service) RetrieveBookBare(ctx context.Context, id int) (*models.Book, error) {
	book := &models.Book{}

	err := svc.db.
		NewSelect().
		Model(book).
		Where("b.book_id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// ListAuthors returns every author, for the catalog filter dropdown.
func (svc *Service) ListAuthors(ctx context.Context) ([]*models.Author, error) {
	authors := []*models.Author{}

	err := svc.db.
		NewSelect().
		Model(&authors).
		Order("a.last_name ASC", "a.first_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return authors, nil
}

// ListGenres returns every genre, for the catalog filter dropdown.
func (svc *Service) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	genres := []*models.Genre{}

	err := svc.db.
		NewSelect().
		Model(&genres).
		Order("g.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return genres, nil
}

// CreateBook inserts a book plus its author/genre links resolved from the
// free-text form input. The id comes from a MAX+1 read, the same scheme
// the historical data uses; it is racy under concurrent admin writes, and
// accepted as such for the intended single-admin usage.
func (svc *Service) CreateBook(ctx context.Context, opts CreateBookOptions) (*models.Book, error) {
	book := &models.Book{
		Title:           opts.Title,
		ISBN:            opts.ISBN,
		PublicationYear: opts.PublicationYear,
		Publisher:       opts.Publisher,
		Pages:           opts.Pages,
		Language:        opts.Language,
		Description:     opts.Description,
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		id, err := nextID(ctx, tx, "books", "book_id")
		if err != nil {
			return err
		}
		book.ID = id

		_, err = tx.NewInsert().Model(book).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if err := svc.linkAuthors(ctx, tx, book.ID, opts.AuthorsText); err != nil {
			return err
		}
		return svc.linkGenres(ctx, tx, book.ID, opts.GenresText)
	})
	if err != nil {
		return nil, err
	}

	return svc.RetrieveBook(ctx, book.ID)
}

// UpdateBook rewrites the book row and replaces its author/genre links
// wholesale: existing links are deleted first and the free-text input is
// resolved from scratch.
func (svc *Service) UpdateBook(ctx context.Context, id int, opts UpdateBookOptions) (*models.Book, error) {
	book := &models.Book{
		ID:              id,
		Title:           opts.Title,
		ISBN:            opts.ISBN,
		PublicationYear: opts.PublicationYear,
		Publisher:       opts.Publisher,
		Pages:           opts.Pages,
		Language:        opts.Language,
		Description:     opts.Description,
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(book).
			Column("title", "isbn", "publication_year", "publisher", "pages", "language", "description").
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Book")
		}

		_, err = tx.NewDelete().Model((*models.BookAuthor)(nil)).Where("book_id = ?", id).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.NewDelete().Model((*models.BookGenre)(nil)).Where("book_id = ?", id).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if err := svc.linkAuthors(ctx, tx, id, opts.AuthorsText); err != nil {
			return err
		}
		return svc.linkGenres(ctx, tx, id, opts.GenresText)
	})
	if err != nil {
		return nil, err
	}

	return svc.RetrieveBook(ctx, id)
}

// linkAuthors resolves newline-separated author names, creating authors
// that don't exist yet, and links each to the book.
func (svc *Service) linkAuthors(ctx context.Context, tx bun.Tx, bookID int, authorsText string) error {
	for _, line := range splitLines(authorsText) {
		firstName, lastName, ok := ParseAuthorName(line)
		if !ok {
			continue
		}

		author := &models.Author{}
		err := tx.NewSelect().
			Model(author).
			Where("a.first_name = ? AND a.last_name = ?", firstName, lastName).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			id, idErr := nextID(ctx, tx, "authors", "author_id")
			if idErr != nil {
				return idErr
			}
			author = &models.Author{ID: id, FirstName: firstName, LastName: lastName}
			_, err = tx.NewInsert().Model(author).Exec(ctx)
		}
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewInsert().
			Model(&models.BookAuthor{BookID: bookID, AuthorID: author.ID}).
			On("CONFLICT DO NOTHING").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// linkGenres resolves newline-separated genre names the same way.
func (svc *Service) linkGenres(ctx context.Context, tx bun.Tx, bookID int, genresText string) error {
	for _, line := range splitLines(genresText) {
		name := truncate(line, 50)

		genre := &models.Genre{}
		err := tx.NewSelect().
			Model(genre).
			Where("g.name = ?", name).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			id, idErr := nextID(ctx, tx, "genres", "genre_id")
			if idErr != nil {
				return idErr
			}
			genre = &models.Genre{ID: id, Name: name}
			_, err = tx.NewInsert().Model(genre).Exec(ctx)
		}
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewInsert().
			Model(&models.BookGenre{BookID: bookID, GenreID: genre.ID}).
			On("CONFLICT DO NOTHING").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// ParseAuthorName accepts "First Last" or "Last, First". Single-word
// lines are skipped, matching the form's historical behavior.
func ParseAuthorName(line string) (firstName, lastName string, ok bool) {
	line = strings.TrimSpace(line)

	if comma := strings.Index(line, ","); comma >= 0 {
		lastName = strings.TrimSpace(line[:comma])
		firstName = strings.TrimSpace(line[comma+1:])
		if firstName == "" || lastName == "" {
			return "", "", false
		}
	} else {
		parts := strings.Fields(line)
		if len(parts) < 2 {
			return "", "", false
		}
		firstName = parts[0]
		lastName = strings.Join(parts[1:], " ")
	}

	return truncate(firstName, 100), truncate(lastName, 100), true
}

// nextID computes MAX(column)+1. Kept from the original system so that
// imported rows and form-created rows share one id space.
func nextID(ctx context.Context, tx bun.Tx, table, column string) (int, error) {
	var id int
	err := tx.NewSelect().
		ColumnExpr("COALESCE(MAX(?), 0) + 1", bun.Ident(column)).
		Table(table).
		Scan(ctx, &id)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return id, nil
}

func splitLines(text string) []string {
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// truncate caps a string at max characters, not bytes, so Cyrillic
// input truncates cleanly.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}
