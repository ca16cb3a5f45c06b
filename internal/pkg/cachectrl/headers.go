// Package cachectrl sets HTTP caching headers on fiber responses.
package cachectrl

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Public lets shared caches keep the response for maxAge.
func Public(c *fiber.Ctx, maxAge time.Duration) {
	c.Set(fiber.HeaderCacheControl, "public, max-age="+strconv.Itoa(int(maxAge.Seconds())))
	c.Set(fiber.HeaderExpires, time.Now().Add(maxAge).UTC().Format(time.RFC1123))
}

// NoStore forbids caching of the response anywhere.
func NoStore(c *fiber.Ctx) {
	c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	c.Set(fiber.HeaderPragma, "no-cache")
	c.Set(fiber.HeaderExpires, "0")
}
