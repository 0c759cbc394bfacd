package books

import (
	"github.com/booknest/booknest/pkg/auth"
	"github.com/booknest/booknest/pkg/config"
	"github.com/booknest/booknest/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the catalog routes and the admin book forms.
func RegisterRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config, authMiddleware *auth.Middleware) *Service {
	bookService := NewService(db)

	h := &handler{
		bookService: bookService,
		imagesDir:   cfg.ImagesDir,
	}

	catalog := e.Group("")
	catalog.Use(authMiddleware.Authenticate)
	catalog.GET("/books", h.list)
	catalog.GET("/book/:id", h.retrieve)

	admin := e.Group("/admin/books")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(authMiddleware.RequireRole(models.RoleAdmin))
	admin.GET("/add", h.addForm)
	admin.POST("/add", h.create)
	admin.GET("/edit/:bookId", h.editForm)
	admin.POST("/edit/:bookId", h.update)

	return bookService
}
