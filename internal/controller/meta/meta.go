package meta

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"go.uber.org/fx"

	"runclub.dev/backend/internal/pkg/bininfo"
	"runclub.dev/backend/internal/pkg/cachectrl"
	"runclub.dev/backend/internal/server/svr"
	"runclub.dev/backend/internal/service"
)

type Meta struct {
	fx.In

	HealthService *service.Health
}

func RegisterMeta(meta *svr.Meta, c Meta) {
	meta.Get("/bininfo", c.BinInfo)

	meta.Get("/health", cache.New(cache.Config{
		// cache it for a second to mitigate potential DDoS
		Expiration: time.Second,
	}), c.Health)
}

func (c *Meta) BinInfo(ctx *fiber.Ctx) error {
	cachectrl.Public(ctx, time.Hour)
	return ctx.JSON(bininfo.Current())
}

func (c *Meta) Health(ctx *fiber.Ctx) error {
	if err := c.HealthService.Ping(ctx.UserContext()); err != nil {
		return err
	}

	cachectrl.NoStore(ctx)
	return ctx.JSON(fiber.Map{
		"status": "ok",
	})
}
