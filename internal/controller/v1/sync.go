package v1

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/pkg/flog"
	"runclub.dev/backend/internal/server/svr"
	"runclub.dev/backend/internal/service"
	"runclub.dev/backend/internal/util/rekuest"
)

type Sync struct {
	fx.In

	SyncService *service.Sync
}

func RegisterSync(v1 *svr.V1, c Sync) {
	v1.Post("/sync", c.SyncUser)
	v1.Post("/sync/all", c.EnqueueAll)
}

// SyncUser pulls activities of one user from Strava and waits for the result.
func (c *Sync) SyncUser(ctx *fiber.Ctx) error {
	var request types.SyncRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	result, err := c.SyncService.SyncUser(ctx.UserContext(), request.UserID, request.Mode)
	if err != nil {
		return err
	}
	return ctx.JSON(result)
}

// EnqueueAll publishes a sync task per user; the sync worker picks them up.
func (c *Sync) EnqueueAll(ctx *fiber.Ctx) error {
	var request types.SyncAllRequest
	if len(ctx.Body()) > 0 {
		if err := rekuest.ValidBody(ctx, &request); err != nil {
			return err
		}
	}

	enqueued, err := c.SyncService.EnqueueAll(ctx.UserContext(), request.Mode)
	if err != nil {
		return err
	}
	flog.InfoFrom(ctx).
		Str("evt.name", "sync.enqueue.requested").
		Str("mode", request.Mode).
		Int("enqueued", enqueued).
		Msg("sync tasks enqueued")
	return ctx.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"enqueued": enqueued,
	})
}
