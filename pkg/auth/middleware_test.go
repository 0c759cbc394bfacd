package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/booknest/booknest/pkg/errcodes"
	"github.com/booknest/booknest/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareAuthenticate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	mw := NewMiddleware(svc)
	ctx := context.Background()

	seedUser(ctx, t, db, "ivanov", "A1b2c", models.RoleReader)

	user, err := svc.RetrieveUser(ctx, "ivanov")
	require.NoError(t, err)
	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	e := echo.New()
	next := func(c echo.Context) error {
		username, ok := UsernameFromContext(c)
		require.True(t, ok)
		return c.String(http.StatusOK, username)
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err = mw.Authenticate(next)(c)
	require.NoError(t, err)
	assert.Equal(t, "ivanov", rec.Body.String())
}

func TestMiddlewareAuthenticate_NoCookie(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	mw := NewMiddleware(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw.Authenticate(func(c echo.Context) error { return nil })(c)
	require.Error(t, err)
	assert.ErrorIs(t, err, errcodes.Unauthorized("Please log in"))
}

func TestMiddlewareAuthenticate_DeletedUser(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	mw := NewMiddleware(svc)

	// A token for a user that no longer exists in the database.
	token, err := svc.GenerateToken(&models.User{Username: "ghost", Role: models.RoleReader})
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err = mw.Authenticate(func(c echo.Context) error { return nil })(c)
	require.Error(t, err)
}

func TestMiddlewareRequireRole(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	mw := NewMiddleware(svc)

	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	newCtx := func(role string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyRole, role)
		return c
	}

	err := mw.RequireRole(models.RoleAdmin)(next)(newCtx(models.RoleAdmin))
	assert.NoError(t, err)

	err = mw.RequireRole(models.RoleAdmin)(next)(newCtx(models.RoleReader))
	require.Error(t, err)
	assert.ErrorIs(t, err, errcodes.Forbidden("Accessing this page"))

	err = mw.RequireRole(models.RoleLibrarian, models.RoleAdmin)(next)(newCtx(models.RoleLibrarian))
	assert.NoError(t, err)
}

func TestMiddlewareAuthenticate_RowRoleWins(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	mw := NewMiddleware(svc)
	ctx := context.Background()

	seedUser(ctx, t, db, "ivanov", "A1b2c", models.RoleReader)

	// Token minted while the user was still an admin.
	token, err := svc.GenerateToken(&models.User{Username: "ivanov", Role: models.RoleAdmin})
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err = mw.Authenticate(func(c echo.Context) error { return nil })(c)
	require.NoError(t, err)
	assert.Equal(t, models.RoleReader, c.Get(ContextKeyRole))
}
