package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/booknest/booknest/pkg/assets"
	"github.com/booknest/booknest/pkg/auth"
	"github.com/booknest/booknest/pkg/binder"
	"github.com/booknest/booknest/pkg/books"
	"github.com/booknest/booknest/pkg/config"
	"github.com/booknest/booknest/pkg/copies"
	"github.com/booknest/booknest/pkg/errcodes"
	"github.com/booknest/booknest/pkg/reservations"
	"github.com/booknest/booknest/pkg/stats"
	"github.com/booknest/booknest/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	authService := auth.RegisterRoutes(e, db, cfg.JWTSecret)
	authMiddleware := auth.NewMiddleware(authService)

	bookService := books.RegisterRoutes(e, db, cfg, authMiddleware)
	copies.RegisterRoutes(e, db, bookService, authMiddleware)
	reservations.RegisterRoutes(e, db, authMiddleware)
	users.RegisterRoutes(e, db, authMiddleware)
	stats.RegisterRoutes(e, db, authMiddleware)
	assets.RegisterRoutes(e, cfg)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
