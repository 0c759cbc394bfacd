package reservations

import (
	"github.com/booknest/booknest/pkg/auth"
	"github.com/booknest/booknest/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the reader reservation routes and the
// librarian management routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	reservationService := NewService(db)

	h := &handler{
		reservationService: reservationService,
	}

	readers := e.Group("")
	readers.Use(authMiddleware.Authenticate)
	readers.Use(authMiddleware.RequireRole(models.RoleReader))
	readers.POST("/reserve/:copyId", h.reserve)
	readers.GET("/my_reservations", h.listMine)
	readers.POST("/cancel_reservation/:copyId", h.cancel)

	staff := e.Group("")
	staff.Use(authMiddleware.Authenticate)
	staff.Use(authMiddleware.RequireRole(models.RoleLibrarian, models.RoleAdmin))
	staff.GET("/all_reservations", h.listAll)
	staff.POST("/update_reservation_status/:copyId/:username", h.updateStatus)

	return reservationService
}
