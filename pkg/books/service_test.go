package books

import (
	"context"
	"database/sql"
	"testing"

	"github.com/booknest/booknest/pkg/errcodes"
	"github.com/booknest/booknest/pkg/migrations"
	"github.com/booknest/booknest/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.RegisterModel((*models.BookAuthor)(nil), (*models.BookGenre)(nil))

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestParseAuthorName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in        string
		firstName string
		lastName  string
		ok        bool
	}{
		{"Михаил Булгаков", "Михаил", "Булгаков", true},
		{"Булгаков, Михаил", "Михаил", "Булгаков", true},
		{"  Лев   Толстой  ", "Лев", "Толстой", true},
		{"Antoine de Saint-Exupery", "Antoine", "de Saint-Exupery", true},
		{"Гомер", "", "", false},
		{",", "", "", false},
		{"", "", "", false},
	}

	for _, tc := range cases {
		firstName, lastName, ok := ParseAuthorName(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.firstName, firstName, tc.in)
		assert.Equal(t, tc.lastName, lastName, tc.in)
	}
}

func TestServiceCreateBook_ResolvesAuthorsAndGenres(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book, err := svc.CreateBook(ctx, CreateBookOptions{
		Title:       "Мастер и Маргарита",
		Language:    models.DefaultLanguage,
		AuthorsText: "Михаил Булгаков",
		GenresText:  "Роман\nФантастика",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, book.ID)
	require.Len(t, book.Authors, 1)
	assert.Equal(t, "Булгаков", book.Authors[0].LastName)
	assert.Len(t, book.Genres, 2)
}

func TestServiceCreateBook_ReusesExistingAuthor(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	first, err := svc.CreateBook(ctx, CreateBookOptions{
		Title:       "Собачье сердце",
		Language:    models.DefaultLanguage,
		AuthorsText: "Михаил Булгаков",
	})
	require.NoError(t, err)

	second, err := svc.CreateBook(ctx, CreateBookOptions{
		Title:       "Белая гвардия",
		Language:    models.DefaultLanguage,
		AuthorsText: "Булгаков, Михаил",
	})
	require.NoError(t, err)

	require.Len(t, first.Authors, 1)
	require.Len(t, second.Authors, 1)
	assert.Equal(t, first.Authors[0].ID, second.Authors[0].ID)

	count, err := db.NewSelect().Model((*models.Author)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestServiceCreateBook_IDsContinueFromMax(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	imported := &models.Book{ID: 40, Title: "Имя розы", Language: models.DefaultLanguage}
	_, err := db.NewInsert().Model(imported).Exec(ctx)
	require.NoError(t, err)

	book, err := svc.CreateBook(ctx, CreateBookOptions{
		Title:    "Маятник Фуко",
		Language: models.DefaultLanguage,
	})
	require.NoError(t, err)
	assert.Equal(t, 41, book.ID)
}

func TestServiceUpdateBook_ReplacesLinks(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book, err := svc.CreateBook(ctx, CreateBookOptions{
		Title:       "Война и мир",
		Language:    models.DefaultLanguage,
		AuthorsText: "Лев Толстой",
		GenresText:  "Роман",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateBook(ctx, book.ID, UpdateBookOptions{
		Title:       "Война и мир",
		Language:    models.DefaultLanguage,
		AuthorsText: "Лев Толстой\nСофья Толстая",
		GenresText:  "Эпопея",
	})
	require.NoError(t, err)

	assert.Len(t, updated.Authors, 2)
	require.Len(t, updated.Genres, 1)
	assert.Equal(t, "Эпопея", updated.Genres[0].Name)
}

func TestServiceUpdateBook_NotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.UpdateBook(ctx, 99, UpdateBookOptions{Title: "x", Language: models.DefaultLanguage})
	require.Error(t, err)
	assert.ErrorIs(t, err, errcodes.NotFound("Book"))
}

func TestServiceListBooks_SearchAndAvailability(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	isbn := "978-5-17-087885-6"
	master, err := svc.CreateBook(ctx, CreateBookOptions{
		Title:       "Мастер и Маргарита",
		ISBN:        &isbn,
		Language:    models.DefaultLanguage,
		AuthorsText: "Михаил Булгаков",
		GenresText:  "Роман",
	})
	require.NoError(t, err)

	_, err = svc.CreateBook(ctx, CreateBookOptions{
		Title:    "Анна Каренина",
		Language: models.DefaultLanguage,
	})
	require.NoError(t, err)

	for i, status := range []string{models.CopyAvailable, models.CopyAvailable, models.CopyIssued} {
		copy := &models.BookCopy{
			ID:              i + 1,
			BookID:          master.ID,
			InventoryNumber: "INV-00" + string(rune('1'+i)),
			Condition:       models.ConditionGood,
			Status:          status,
		}
		_, err = db.NewInsert().Model(copy).Exec(ctx)
		require.NoError(t, err)
	}

	books, err := svc.ListBooks(ctx, ListBooksOptions{})
	require.NoError(t, err)
	require.Len(t, books, 2)
	// Ordered by title; Cyrillic "А" sorts before "М".
	assert.Equal(t, "Анна Каренина", books[0].Title)
	assert.Equal(t, 0, books[0].AvailableCopies)
	assert.Equal(t, 2, books[1].AvailableCopies)

	search := "978-5"
	books, err = svc.ListBooks(ctx, ListBooksOptions{Search: &search})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, master.ID, books[0].ID)

	genreID := master.Genres[0].ID
	books, err = svc.ListBooks(ctx, ListBooksOptions{GenreID: &genreID})
	require.NoError(t, err)
	require.Len(t, books, 1)

	authorID := master.Authors[0].ID
	books, err = svc.ListBooks(ctx, ListBooksOptions{AuthorID: &authorID})
	require.NoError(t, err)
	require.Len(t, books, 1)

	missing := 999
	books, err = svc.ListBooks(ctx, ListBooksOptions{GenreID: &missing})
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestServiceRetrieveBook_OnlyAvailableCopies(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.CreateBook(ctx, CreateBookOptions{
		Title:    "Преступление и наказание",
		Language: models.DefaultLanguage,
	})
	require.NoError(t, err)

	for i, status := range []string{models.CopyIssued, models.CopyAvailable} {
		copy := &models.BookCopy{
			ID:              i + 1,
			BookID:          created.ID,
			InventoryNumber: "INV-10" + string(rune('1'+i)),
			Condition:       models.ConditionGood,
			Status:          status,
		}
		_, err = db.NewInsert().Model(copy).Exec(ctx)
		require.NoError(t, err)
	}

	book, err := svc.RetrieveBook(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, book.Copies, 1)
	assert.Equal(t, models.CopyAvailable, book.Copies[0].Status)
}

func TestServiceRetrieveBook_NotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.RetrieveBook(ctx, 12345)
	require.Error(t, err)
	assert.ErrorIs(t, err, errcodes.NotFound("Book"))
}
