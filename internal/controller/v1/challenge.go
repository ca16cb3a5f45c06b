package v1

import (
	"github.com/ahmetb/go-linq/v3"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"runclub.dev/backend/internal/app/appconfig"
	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/server/svr"
	"runclub.dev/backend/internal/service"
	"runclub.dev/backend/internal/util/rekuest"
)

type Challenge struct {
	fx.In

	Config           *appconfig.Config
	ChallengeService *service.Challenge
}

func RegisterChallenge(v1 *svr.V1, c Challenge) {
	v1.Get("/challenges", c.GetChallenges)
	v1.Post("/challenges", svr.AdminOnly(c.Config), c.CreateChallenge)
	v1.Get("/challenges/:id/progress", c.GetChallengeProgress)
	v1.Post("/challenges/:id/join", c.JoinChallenge)
	v1.Get("/challenges/:id/users/:userId/activities", c.GetParticipantActivities)
	v1.Get("/challenges/:id/gifts", c.GetGiftLogs)
}

func (c *Challenge) GetChallenges(ctx *fiber.Ctx) error {
	challenges, err := c.ChallengeService.GetChallenges(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(challenges)
}

func (c *Challenge) CreateChallenge(ctx *fiber.Ctx) error {
	var request types.CreateChallengeRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	challenge, err := c.ChallengeService.CreateChallenge(ctx.UserContext(), &request)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(challenge)
}

// GetChallengeProgress serves the standings of a challenge, best progress first.
// Equal percentages keep a stable order by user id.
func (c *Challenge) GetChallengeProgress(ctx *fiber.Ctx) error {
	id, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}

	progress, err := c.ChallengeService.GetChallengeProgress(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	sorted := make([]*types.ChallengeProgress, 0, len(progress))
	linq.From(progress).
		OrderByDescendingT(func(p *types.ChallengeProgress) int { return p.ProgressPercent }).
		ThenByT(func(p *types.ChallengeProgress) int { return p.UserID }).
		ToSlice(&sorted)

	return ctx.JSON(sorted)
}

func (c *Challenge) JoinChallenge(ctx *fiber.Ctx) error {
	id, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}
	var request types.JoinChallengeRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	participant, err := c.ChallengeService.JoinChallenge(ctx.UserContext(), id, &request)
	if err != nil {
		return err
	}
	return ctx.JSON(participant)
}

func (c *Challenge) GetParticipantActivities(ctx *fiber.Ctx) error {
	id, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}
	userID, err := rekuest.ParamsID(ctx, "userId")
	if err != nil {
		return err
	}

	activities, err := c.ChallengeService.GetParticipantActivities(ctx.UserContext(), id, userID)
	if err != nil {
		return err
	}
	return ctx.JSON(activities)
}

func (c *Challenge) GetGiftLogs(ctx *fiber.Ctx) error {
	id, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}

	logs, err := c.ChallengeService.GetGiftLogs(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(logs)
}
