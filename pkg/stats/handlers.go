package stats

import (
	"net/http"

	"github.com/booknest/booknest/pkg/auth"
	"github.com/booknest/booknest/pkg/errcodes"
	"github.com/booknest/booknest/pkg/models"
	"github.com/labstack/echo/v4"
)

type handler struct {
	statsService *Service
}

// dashboard serves role-specific numbers: readers see their own hold
// usage, staff see collection totals.
func (h *handler) dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := auth.UserFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Please log in")
	}

	switch user.Role {
	case models.RoleReader:
		dash, err := h.statsService.ReaderStats(ctx, user.Username)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{"role": user.Role, "stats": dash})
	case models.RoleLibrarian, models.RoleAdmin:
		dash, err := h.statsService.StaffStats(ctx, user.Role == models.RoleAdmin)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{"role": user.Role, "stats": dash})
	}

	return c.JSON(http.StatusOK, map[string]any{"role": user.Role})
}

func (h *handler) statistics(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.statsService.Statistics(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stats)
}
