package middlewares

import (
	"github.com/gofiber/fiber/v2"
)

// Chained mounts the handlers on app in order.
func Chained(app *fiber.App, handlers ...fiber.Handler) {
	for _, h := range handlers {
		app.Use(h)
	}
}
