package v1

import (
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"runclub.dev/backend/internal/constant"
	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/pkg/cachectrl"
	"runclub.dev/backend/internal/pkg/fiberstore"
	"runclub.dev/backend/internal/pkg/middlewares"
	"runclub.dev/backend/internal/server/svr"
	"runclub.dev/backend/internal/service"
	"runclub.dev/backend/internal/util/rekuest"
)

type Gift struct {
	fx.In

	GiftService *service.Gift
	Redis       *redis.Client
	RedSync     *redsync.Redsync
}

func RegisterGift(v1 *svr.V1, c Gift) {
	v1.Get("/gifts/availability/:userId", c.CheckGiftAvailability)
	v1.Post("/challenges/:id/gifts", c.idempotency(), c.GiveGift)
}

// idempotency replays the response of a gift already given under the same
// Idempotency-Key.
func (c *Gift) idempotency() fiber.Handler {
	return middlewares.Idempotency(&middlewares.IdempotencyConfig{
		Lifetime:            time.Hour * 24,
		KeyHeader:           constant.IdempotencyKeyHeader,
		KeepResponseHeaders: []string{fiber.HeaderContentType},
		Storage:             fiberstore.NewRedis(c.Redis, "idempotency:gifts:"),
		RedSync:             c.RedSync,
	})
}

func (c *Gift) CheckGiftAvailability(ctx *fiber.Ctx) error {
	userID, err := rekuest.ParamsID(ctx, "userId")
	if err != nil {
		return err
	}

	availability, err := c.GiftService.CheckGiftAvailability(ctx.UserContext(), userID)
	if err != nil {
		return err
	}
	cachectrl.NoStore(ctx)
	return ctx.JSON(availability)
}

func (c *Gift) GiveGift(ctx *fiber.Ctx) error {
	challengeID, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}
	var request types.GiveGiftRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	log, err := c.GiftService.GiveGift(ctx.UserContext(), challengeID, &request)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(log)
}
