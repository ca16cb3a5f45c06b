package v1

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"runclub.dev/backend/internal/app/appconfig"
	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/pkg/cachectrl"
	"runclub.dev/backend/internal/pkg/localday"
	"runclub.dev/backend/internal/pkg/rcerr"
	"runclub.dev/backend/internal/server/svr"
	"runclub.dev/backend/internal/service"
	"runclub.dev/backend/internal/util/rekuest"
)

type Activity struct {
	fx.In

	Config          *appconfig.Config
	ActivityService *service.Activity
}

func RegisterActivity(v1 *svr.V1, c Activity) {
	v1.Get("/activities/recent", c.GetRecentActivities)
	v1.Get("/activities/user/:userId", c.GetActivitiesByUserID)
	v1.Post("/activities", svr.AdminOnly(c.Config), c.CreateManualActivity)
	v1.Get("/stats", c.GetStats)
}

func (c *Activity) GetRecentActivities(ctx *fiber.Ctx) error {
	query := types.RecentActivitiesQuery{Limit: service.DefaultRecentLimit}
	if err := ctx.QueryParser(&query); err != nil {
		return rcerr.ErrInvalidReq.Msg("invalid query: %s", err)
	}
	if err := rekuest.ValidStruct(ctx, &query); err != nil {
		return err
	}

	activities, err := c.ActivityService.GetRecentActivities(ctx.UserContext(), query.Limit)
	if err != nil {
		return err
	}
	return ctx.JSON(activities)
}

func (c *Activity) GetActivitiesByUserID(ctx *fiber.Ctx) error {
	userID, err := rekuest.ParamsID(ctx, "userId")
	if err != nil {
		return err
	}

	activities, err := c.ActivityService.GetActivitiesByUserID(ctx.UserContext(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(activities)
}

func (c *Activity) CreateManualActivity(ctx *fiber.Ctx) error {
	var request types.CreateActivityRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	activity, err := c.ActivityService.CreateManualActivity(ctx.UserContext(), &request)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(activity)
}

// GetStats serves the leaderboard. start and end are optional local calendar
// days (YYYY-MM-DD); end is inclusive.
func (c *Activity) GetStats(ctx *fiber.Ctx) error {
	query, err := statsQuery(ctx.Query("start"), ctx.Query("end"))
	if err != nil {
		return err
	}

	stats, err := c.ActivityService.GetStats(ctx.UserContext(), query)
	if err != nil {
		return err
	}
	cachectrl.Public(ctx, time.Minute)
	return ctx.JSON(stats)
}

func statsQuery(start, end string) (*types.StatsQuery, error) {
	query := &types.StatsQuery{}
	switch {
	case start != "" && end != "":
		from, until, err := localday.Window(start, end)
		if err != nil {
			return nil, rcerr.ErrInvalidReq.Msg("invalid stats range: %s", err)
		}
		query.Start, query.End = from, until
	case start != "":
		from, err := localday.StartOf(start)
		if err != nil {
			return nil, rcerr.ErrInvalidReq.Msg("invalid start date: %s", err)
		}
		query.Start = from
	case end != "":
		// the day after end, so that end itself is included
		_, until, err := localday.Window(end, end)
		if err != nil {
			return nil, rcerr.ErrInvalidReq.Msg("invalid end date: %s", err)
		}
		query.End = until
	}
	return query, nil
}
