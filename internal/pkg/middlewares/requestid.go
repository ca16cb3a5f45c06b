package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"runclub.dev/backend/internal/constant"
	"runclub.dev/backend/internal/pkg/flog"
)

// RequestID exposes the request id assigned by the logger chain as a fiber local.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := flog.IDFromFiberCtx(c); ok {
			c.Locals(constant.ContextKeyRequestID, id.String())
		}
		return c.Next()
	}
}
