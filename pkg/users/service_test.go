package users

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/booknest/booknest/pkg/auth"
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

func TestServiceCreate_HashesPassword(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserOptions{
		Username: "ivanov",
		Password: "A1b2c",
		Email:    "ivanov@example.com",
		FullName: "Иван Иванов",
		Role:     models.RoleReader,
	})
	require.NoError(t, err)

	assert.NotEqual(t, "A1b2c", user.PasswordHash)
	assert.True(t, auth.CheckPassword("A1b2c", user.PasswordHash))
	assert.Equal(t, models.DefaultMaxBooks, user.MaxBooks)
}

func TestServiceCreate_DuplicateUsername(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserOptions{
		Username: "ivanov",
		Password: "secret",
		Role:     models.RoleReader,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserOptions{
		Username: "ivanov",
		Password: "other",
		Role:     models.RoleReader,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errcodes.Conflict("A user with this username already exists"))
}

func TestServiceCreate_TruncatesLongFields(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserOptions{
		Username: strings.Repeat("x", 80),
		Password: "secret",
		FullName: strings.Repeat("n", 200),
		Role:     models.RoleReader,
	})
	require.NoError(t, err)

	assert.Len(t, user.Username, 50)
	assert.Len(t, user.FullName, 150)
}

func TestServiceCreate_InvalidRole(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserOptions{
		Username: "ivanov",
		Password: "secret",
		Role:     "superadmin",
	})
	require.Error(t, err)
}

func TestServiceUpdate_BlankPasswordKeepsHash(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserOptions{
		Username: "ivanov",
		Password: "A1b2c",
		Role:     models.RoleReader,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "ivanov", UpdateUserOptions{
		Email:    "new@example.com",
		Role:     models.RoleLibrarian,
		MaxBooks: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, created.PasswordHash, updated.PasswordHash)
	assert.Equal(t, models.RoleLibrarian, updated.Role)
	assert.Equal(t, 10, updated.MaxBooks)
	assert.True(t, auth.CheckPassword("A1b2c", updated.PasswordHash))
}

func TestServiceUpdate_NewPasswordRehashes(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserOptions{
		Username: "ivanov",
		Password: "A1b2c",
		Role:     models.RoleReader,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "ivanov", UpdateUserOptions{
		Password: "newpass",
		Role:     models.RoleReader,
	})
	require.NoError(t, err)

	assert.False(t, auth.CheckPassword("A1b2c", updated.PasswordHash))
	assert.True(t, auth.CheckPassword("newpass", updated.PasswordHash))
}

func TestServiceList_SearchAndRoleFilter(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	for _, u := range []CreateUserOptions{
		{Username: "admin", Password: "p", FullName: "Site Admin", Role: models.RoleAdmin},
		{Username: "ivanov", Password: "p", FullName: "Иван Иванов", Role: models.RoleReader},
		{Username: "petrova", Password: "p", FullName: "Мария Петрова", Role: models.RoleReader},
	} {
		_, err := svc.Create(ctx, u)
		require.NoError(t, err)
	}

	search := "ivan"
	users, err := svc.List(ctx, ListUsersOptions{Search: &search})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ivanov", users[0].Username)

	role := models.RoleReader
	users, err = svc.List(ctx, ListUsersOptions{Role: &role})
	require.NoError(t, err)
	require.Len(t, users, 2)
	// Ordered by username.
	assert.Equal(t, "ivanov", users[0].Username)
	assert.Equal(t, "petrova", users[1].Username)
}

func TestServiceRetrieve_NotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Retrieve(ctx, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, errcodes.NotFound("User"))
}
