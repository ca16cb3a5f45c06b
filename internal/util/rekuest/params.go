package rekuest

import (
	"github.com/gofiber/fiber/v2"

	"runclub.dev/backend/internal/pkg/rcerr"
)

// ParamsID reads a positive integer route parameter.
func ParamsID(ctx *fiber.Ctx, key string) (int, error) {
	id, err := ctx.ParamsInt(key)
	if err != nil || id <= 0 {
		return 0, rcerr.ErrInvalidReq.Msg("invalid request: %s must be a positive integer", key)
	}
	return id, nil
}
