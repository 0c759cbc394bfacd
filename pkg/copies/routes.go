package copies

import (
	"github.com/booknest/booknest/pkg/auth"
	"github.com/booknest/booknest/pkg/books"
	"github.com/booknest/booknest/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the admin copy form routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, bookService *books.Service, authMiddleware *auth.Middleware) *Service {
	copyService := NewService(db)

	h := &handler{
		copyService: copyService,
		bookService: bookService,
	}

	admin := e.Group("/admin/copies")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(authMiddleware.RequireRole(models.RoleAdmin))
	admin.GET("/add", h.addForm)
	admin.POST("/add", h.create)

	return copyService
}
