package users

import (
	"github.com/booknest/booknest/pkg/auth"
	"github.com/booknest/booknest/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the admin user management routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	userService := NewService(db)

	h := &handler{
		userService: userService,
	}

	admin := e.Group("/admin/users")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(authMiddleware.RequireRole(models.RoleAdmin))
	admin.GET("", h.list)
	admin.GET("/add", h.addForm)
	admin.POST("/add", h.create)
	admin.GET("/edit/:username", h.editForm)
	admin.POST("/edit/:username", h.update)

	return userService
}
