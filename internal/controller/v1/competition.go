package v1

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"runclub.dev/backend/internal/app/appconfig"
	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/server/svr"
	"runclub.dev/backend/internal/service"
	"runclub.dev/backend/internal/util/rekuest"
)

type Competition struct {
	fx.In

	Config             *appconfig.Config
	CompetitionService *service.Competition
}

func RegisterCompetition(v1 *svr.V1, c Competition) {
	adminOnly := svr.AdminOnly(c.Config)

	v1.Get("/competitions", c.GetCompetitions)
	v1.Get("/competitions/:id", c.GetCompetitionByID)
	v1.Post("/competitions", adminOnly, c.CreateCompetition)
	v1.Put("/competitions/:id", adminOnly, c.UpdateCompetition)
	v1.Delete("/competitions/:id", adminOnly, c.DeleteCompetition)

	v1.Post("/competitions/:id/participants", c.AddParticipant)
	v1.Delete("/competitions/:id/participants/:pid", c.RemoveParticipant)
}

// GetCompetitions lists competitions, newest first, matching results of past
// competitions before they are returned.
func (c *Competition) GetCompetitions(ctx *fiber.Ctx) error {
	competitions, err := c.CompetitionService.GetCompetitions(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(competitions)
}

func (c *Competition) GetCompetitionByID(ctx *fiber.Ctx) error {
	id, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}

	competition, err := c.CompetitionService.GetCompetitionByID(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(competition)
}

func (c *Competition) CreateCompetition(ctx *fiber.Ctx) error {
	var request types.CompetitionRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	competition, err := c.CompetitionService.CreateCompetition(ctx.UserContext(), &request)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(competition)
}

func (c *Competition) UpdateCompetition(ctx *fiber.Ctx) error {
	id, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}
	var request types.CompetitionRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	competition, err := c.CompetitionService.UpdateCompetition(ctx.UserContext(), id, &request)
	if err != nil {
		return err
	}
	return ctx.JSON(competition)
}

func (c *Competition) DeleteCompetition(ctx *fiber.Ctx) error {
	id, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.CompetitionService.DeleteCompetition(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *Competition) AddParticipant(ctx *fiber.Ctx) error {
	id, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}
	var request types.CompetitionParticipantRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	participant, err := c.CompetitionService.AddParticipant(ctx.UserContext(), id, &request)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(participant)
}

func (c *Competition) RemoveParticipant(ctx *fiber.Ctx) error {
	id, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}
	participantID, err := rekuest.ParamsID(ctx, "pid")
	if err != nil {
		return err
	}

	if err := c.CompetitionService.RemoveParticipant(ctx.UserContext(), id, participantID); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
