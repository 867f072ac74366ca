package server

import (
	"github.com/labstack/echo/v4"

	"github.com/jurisgraph/jurisgraph/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	e.POST("/retrieve", routes.RetrieveHandler)
	e.POST("/ingest", routes.IngestHandler)
}
