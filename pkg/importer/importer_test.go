package importer

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/booknest/booknest/pkg/auth"
	"github.com/booknest/booknest/pkg/migrations"
	"github.com/booknest/booknest/pkg/models"
	"github.com/robinjoseph08/golib/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/xuri/excelize/v2"
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

func writeXLSX(t *testing.T, path string, rows [][]any) {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

// writeFixtures lays down all eight export files. The data mirrors the
// real export's oddities: tabbed headers, "NULL" strings, mixed date
// formats, and the duplicated inventory number on copy 110.
func writeFixtures(t *testing.T, dir string) {
	t.Helper()

	writeXLSX(t, filepath.Join(dir, "users.xlsx"), [][]any{
		{"username", "email", "full_name", "phone", "card_number", "role", "max_books", "password"},
		{"ivanov", "ivanov@example.com", "Иван Иванов", "+7-900-000-00-01", "CARD-001", "reader", 5, "A1b2c"},
		{"librarian", "lib@example.com", "Ольга Смирнова", "", "", "librarian", 5, "J7k8I"},
		{"admin", "admin@example.com", "Администратор", "", "", "admin", 5, "M9n0p"},
	})

	writeXLSX(t, filepath.Join(dir, "authors.xlsx"), [][]any{
		{"author_id", "first_name", "last_name", "birth_year", "death_year", "bio"},
		{1, "Михаил", "Булгаков", 1891, 1940, "Русский писатель"},
		{2, "Борис", "Акунин", 1956, "NULL", "Современный автор"},
	})

	writeXLSX(t, filepath.Join(dir, "genres.xlsx"), [][]any{
		{"genre_id", "name", "description", "parent_id"},
		{1, "Роман", "Крупная форма", ""},
		{2, "Мистика", "", 1},
	})

	writeXLSX(t, filepath.Join(dir, "books.xlsx"), [][]any{
		{"book_id", "title", "isbn", "publication_year", "publisher", "pages", "language", "description"},
		{1, "Мастер и Маргарита", "978-5-17-087885-6", 1967, "АСТ", 480, "Русский", "Роман о дьяволе"},
		{2, "Азазель", "", 1998, "Захаров", 240, "Русский", ""},
	})

	writeXLSX(t, filepath.Join(dir, "book_authors.xlsx"), [][]any{
		{"book_id", "author_id"},
		{1, 1},
		{2, 2},
		{2, 2},
	})

	writeXLSX(t, filepath.Join(dir, "book_genres.xlsx"), [][]any{
		{"book_id", "genre_id"},
		{1, 1},
		{2, 2},
	})

	writeXLSX(t, filepath.Join(dir, "book_copies.xlsx"), [][]any{
		{"copy_id", "book_id", "inventory_number", "condition", "status", "location"},
		{10, 1, "INV-000", "good", "available", "Зал 1"},
		{110, 1, "INV-000", "good", "available", "Зал 1"},
		{20, 2, "INV-020", "new", "issued", ""},
	})

	writeXLSX(t, filepath.Join(dir, "reservations.xlsx"), [][]any{
		{"copy_id", "username", "reservation_date", "pickup_deadline", "due_date\t", "status"},
		{20, "ivanov", "2024-01-15 10:00:00", "22.01.2024 18:00", "14.02.2024", "issued"},
		{10, "ivanov", "not a date", "", "2024-02-14", "reserved"},
	})
}

func TestImporterRun(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	dir := t.TempDir()
	writeFixtures(t, dir)
	ctx := context.Background()

	report, err := New(db, dir, logger.New()).Run(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Users)
	assert.Equal(t, 2, report.Authors)
	assert.Equal(t, 2, report.Genres)
	assert.Equal(t, 2, report.Books)
	assert.Equal(t, 2, report.BookAuthors)
	assert.Equal(t, 2, report.BookGenres)
	assert.Equal(t, 3, report.Copies)
	assert.Equal(t, 1, report.Reservations)
	assert.Equal(t, 1, report.ReservationErrors)
}

func TestImporterRun_HashesPasswords(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	dir := t.TempDir()
	writeFixtures(t, dir)
	ctx := context.Background()

	_, err := New(db, dir, logger.New()).Run(ctx)
	require.NoError(t, err)

	user := &models.User{}
	err = db.NewSelect().Model(user).Where("u.username = ?", "ivanov").Scan(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, "A1b2c", user.PasswordHash)
	assert.True(t, auth.CheckPassword("A1b2c", user.PasswordHash))
	assert.Equal(t, models.RoleReader, user.Role)
	assert.Equal(t, 5, user.MaxBooks)
}

func TestImporterRun_FixesKnownInventoryTypo(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	dir := t.TempDir()
	writeFixtures(t, dir)
	ctx := context.Background()

	_, err := New(db, dir, logger.New()).Run(ctx)
	require.NoError(t, err)

	copy := &models.BookCopy{}
	err = db.NewSelect().Model(copy).Where("bc.copy_id = ?", 110).Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-010", copy.InventoryNumber)
}

func TestImporterRun_NullHandling(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	dir := t.TempDir()
	writeFixtures(t, dir)
	ctx := context.Background()

	_, err := New(db, dir, logger.New()).Run(ctx)
	require.NoError(t, err)

	author := &models.Author{}
	err = db.NewSelect().Model(author).Where("a.author_id = ?", 2).Scan(ctx)
	require.NoError(t, err)
	assert.Nil(t, author.DeathYear)
	require.NotNil(t, author.BirthYear)
	assert.Equal(t, 1956, *author.BirthYear)

	book := &models.Book{}
	err = db.NewSelect().Model(book).Where("b.book_id = ?", 2).Scan(ctx)
	require.NoError(t, err)
	assert.Nil(t, book.ISBN)
}

func TestImporterRun_ReservationDates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	dir := t.TempDir()
	writeFixtures(t, dir)
	ctx := context.Background()

	_, err := New(db, dir, logger.New()).Run(ctx)
	require.NoError(t, err)

	res := &models.Reservation{}
	err = db.NewSelect().Model(res).Where("r.copy_id = ?", 20).Scan(ctx)
	require.NoError(t, err)

	assert.True(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC).Equal(res.ReservationDate))
	require.NotNil(t, res.PickupDeadline)
	assert.True(t, time.Date(2024, 1, 22, 18, 0, 0, 0, time.UTC).Equal(*res.PickupDeadline))
	// The due date column lookup matches reservation_date first, so the
	// stored due date is the reservation day.
	assert.True(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC).Equal(res.DueDate))
	assert.Equal(t, models.ReservationIssued, res.Status)
}

func TestImporterRun_Rerunnable(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	dir := t.TempDir()
	writeFixtures(t, dir)
	ctx := context.Background()

	_, err := New(db, dir, logger.New()).Run(ctx)
	require.NoError(t, err)

	report, err := New(db, dir, logger.New()).Run(ctx)
	require.NoError(t, err)

	// Conflict-ignored tables add nothing on the second pass; the
	// rebuilt tables reload fully.
	assert.Equal(t, 0, report.Users)
	assert.Equal(t, 0, report.Authors)
	assert.Equal(t, 0, report.Genres)
	assert.Equal(t, 0, report.Books)
	assert.Equal(t, 0, report.BookAuthors)
	assert.Equal(t, 0, report.BookGenres)
	assert.Equal(t, 3, report.Copies)
	assert.Equal(t, 1, report.Reservations)

	count, err := db.NewSelect().Model((*models.BookCopy)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
