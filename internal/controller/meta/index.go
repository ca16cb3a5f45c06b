package meta

import (
	"github.com/gofiber/fiber/v2"

	"runclub.dev/backend/internal/pkg/bininfo"
)

func RegisterIndex(app *fiber.App) {
	app.Get("/api", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to the Runclub API",
			"version": bininfo.Version,
			"@links": fiber.Map{
				"v1":     "/api/v1",
				"health": "/api/_/health",
			},
		})
	})
}
