package assets

import (
	"github.com/booknest/booknest/pkg/config"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes serves book cover images and static assets straight from
// the configured directories. These routes are unauthenticated, same as
// any static file server.
func RegisterRoutes(e *echo.Echo, cfg *config.Config) {
	e.Static("/images", cfg.ImagesDir)
	e.Static("/assets", cfg.AssetsDir)
}
