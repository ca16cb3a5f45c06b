package v1

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"runclub.dev/backend/internal/model/cache"
	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/pkg/flog"
	"runclub.dev/backend/internal/server/svr"
	"runclub.dev/backend/internal/service"
	"runclub.dev/backend/internal/util/rekuest"
)

type Admin struct {
	fx.In

	CompetitionService *service.Competition
	GiftService        *service.Gift
	ArchiveService     *service.Archive
}

func RegisterAdmin(admin *svr.Admin, c Admin) {
	admin.Post("/purge", c.PurgeCache)
	admin.Post("/competitions/:id/match", c.MatchCompetitionResults)
	admin.Post("/challenges/:id/adjustments", c.AdjustTargets)
	admin.Post("/archive/gifts/:date", c.ArchiveGiftLogs)
}

func (c *Admin) PurgeCache(ctx *fiber.Ctx) error {
	var request types.PurgeCacheRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	for _, pair := range request.Pairs {
		if err := cache.Delete(pair.Name, pair.Key); err != nil {
			return err
		}
		flog.InfoFrom(ctx).
			Str("evt.name", "admin.cache.purged").
			Str("name", pair.Name).
			Msg("cache purged")
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *Admin) MatchCompetitionResults(ctx *fiber.Ctx) error {
	id, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}

	competition, err := c.CompetitionService.MatchCompetitionResults(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(competition)
}

func (c *Admin) AdjustTargets(ctx *fiber.Ctx) error {
	id, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}
	var request types.AdjustTargetsRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	logs, err := c.GiftService.AdminAdjustTargets(ctx.UserContext(), id, &request)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(logs)
}

// ArchiveGiftLogs uploads the gift logs of one local day (YYYY-MM-DD) to S3.
func (c *Admin) ArchiveGiftLogs(ctx *fiber.Ctx) error {
	date := ctx.Params("date")
	if err := rekuest.ValidVar(ctx, date, "required,calendardate"); err != nil {
		return err
	}

	count, err := c.ArchiveService.ArchiveGiftLogs(ctx.UserContext(), date)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"date":     date,
		"archived": count,
	})
}
