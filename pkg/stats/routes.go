package stats

import (
	"github.com/booknest/booknest/pkg/auth"
	"github.com/booknest/booknest/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the dashboard and the admin statistics page.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	statsService := NewService(db)

	h := &handler{
		statsService: statsService,
	}

	authed := e.Group("")
	authed.Use(authMiddleware.Authenticate)
	authed.GET("/dashboard", h.dashboard)

	admin := e.Group("/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(authMiddleware.RequireRole(models.RoleAdmin))
	admin.GET("/statistics", h.statistics)

	return statsService
}
