package stats

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

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

// seedLibrary loads a small fixed dataset: two users, two books with one
// genre and one author between them, three copies, two reservations.
func seedLibrary(ctx context.Context, t *testing.T, db *bun.DB) {
	t.Helper()

	users := []*models.User{
		{Username: "ivanov", Role: models.RoleReader, MaxBooks: 5, PasswordHash: "x"},
		{Username: "admin", Role: models.RoleAdmin, MaxBooks: 5, PasswordHash: "x"},
	}
	_, err := db.NewInsert().Model(&users).Exec(ctx)
	require.NoError(t, err)

	author := &models.Author{ID: 1, FirstName: "Михаил", LastName: "Булгаков"}
	_, err = db.NewInsert().Model(author).Exec(ctx)
	require.NoError(t, err)

	genre := &models.Genre{ID: 1, Name: "Роман"}
	_, err = db.NewInsert().Model(genre).Exec(ctx)
	require.NoError(t, err)

	bookRows := []*models.Book{
		{ID: 1, Title: "Мастер и Маргарита", Language: models.DefaultLanguage},
		{ID: 2, Title: "Собачье сердце", Language: models.DefaultLanguage},
	}
	_, err = db.NewInsert().Model(&bookRows).Exec(ctx)
	require.NoError(t, err)

	_, err = db.NewInsert().Model(&models.BookAuthor{BookID: 1, AuthorID: 1}).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&models.BookGenre{BookID: 1, GenreID: 1}).Exec(ctx)
	require.NoError(t, err)

	copies := []*models.BookCopy{
		{ID: 1, BookID: 1, InventoryNumber: "INV-001", Condition: models.ConditionGood, Status: models.CopyReserved},
		{ID: 2, BookID: 1, InventoryNumber: "INV-002", Condition: models.ConditionGood, Status: models.CopyAvailable},
		{ID: 3, BookID: 2, InventoryNumber: "INV-003", Condition: models.ConditionGood, Status: models.CopyAvailable},
	}
	_, err = db.NewInsert().Model(&copies).Exec(ctx)
	require.NoError(t, err)

	now := time.Now().UTC()
	reservations := []*models.Reservation{
		{CopyID: 1, Username: "ivanov", ReservationDate: now, DueDate: now.AddDate(0, 0, 30), Status: models.ReservationReserved},
		{CopyID: 2, Username: "ivanov", ReservationDate: now.AddDate(0, 0, -60), DueDate: now.AddDate(0, 0, -30), Status: models.ReservationReturned},
	}
	_, err = db.NewInsert().Model(&reservations).Exec(ctx)
	require.NoError(t, err)
}

func TestServiceReaderStats(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	seedLibrary(ctx, t, db)

	dash, err := svc.ReaderStats(ctx, "ivanov")
	require.NoError(t, err)

	assert.Equal(t, 1, dash.ActiveReservations)
	assert.Equal(t, 5, dash.MaxBooks)
}

func TestServiceStaffStats(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	seedLibrary(ctx, t, db)

	dash, err := svc.StaffStats(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 2, dash.TotalBooks)
	assert.Equal(t, 2, dash.AvailableCopies)
	assert.Equal(t, 1, dash.PendingReservations)
	assert.Equal(t, 1, dash.TotalReaders)
	assert.Nil(t, dash.TotalUsers)
	assert.Nil(t, dash.TotalCopies)

	dash, err = svc.StaffStats(ctx, true)
	require.NoError(t, err)
	require.NotNil(t, dash.TotalUsers)
	require.NotNil(t, dash.TotalCopies)
	assert.Equal(t, 2, *dash.TotalUsers)
	assert.Equal(t, 3, *dash.TotalCopies)
}

func TestServiceStatistics(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	seedLibrary(ctx, t, db)

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalBooks)
	assert.Equal(t, 3, stats.TotalCopies)
	assert.Equal(t, 2, stats.AvailableCopies)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalReaders)
	assert.Equal(t, 2, stats.TotalReservations)
	assert.Equal(t, 1, stats.ActiveReservations)

	require.Len(t, stats.PopularBooks, 2)
	assert.Equal(t, 1, stats.PopularBooks[0].BookID)
	assert.Equal(t, 2, stats.PopularBooks[0].ReservationCount)
	assert.Equal(t, 0, stats.PopularBooks[1].ReservationCount)

	require.Len(t, stats.GenreStats, 1)
	assert.Equal(t, "Роман", stats.GenreStats[0].Name)
	assert.Equal(t, 1, stats.GenreStats[0].BookCount)

	require.Len(t, stats.AuthorStats, 1)
	assert.Equal(t, "Булгаков", stats.AuthorStats[0].LastName)
	assert.Equal(t, 1, stats.AuthorStats[0].BookCount)

	assert.Len(t, stats.ReservationStatus, 2)
	assert.Len(t, stats.UserRoles, 2)
}

func TestServiceStatistics_PopularBooksTopTen(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := &models.User{Username: "ivanov", Role: models.RoleReader, MaxBooks: 5, PasswordHash: "x"}
	_, err := db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	for i := 1; i <= 12; i++ {
		book := &models.Book{ID: i, Title: fmt.Sprintf("Книга %02d", i), Language: models.DefaultLanguage}
		_, err := db.NewInsert().Model(book).Exec(ctx)
		require.NoError(t, err)
	}

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Len(t, stats.PopularBooks, 10)
}
