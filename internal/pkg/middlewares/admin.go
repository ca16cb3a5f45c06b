package middlewares

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"runclub.dev/backend/internal/constant"
	"runclub.dev/backend/internal/pkg/rcerr"
)

// AdminKey admits requests whose admin key header equals key. An empty key
// closes every admin route.
func AdminKey(key string) fiber.Handler {
	expected := []byte(key)
	return func(c *fiber.Ctx) error {
		if len(expected) == 0 {
			return rcerr.ErrForbidden.Msg("admin access is disabled")
		}
		given := []byte(c.Get(constant.AdminKeyHeader))
		if subtle.ConstantTimeCompare(given, expected) != 1 {
			return rcerr.ErrForbidden.Msg("invalid admin key")
		}
		return c.Next()
	}
}
