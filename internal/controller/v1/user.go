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

type User struct {
	fx.In

	Config          *appconfig.Config
	UserService     *service.User
	ActivityService *service.Activity
}

func RegisterUser(v1 *svr.V1, c User) {
	adminOnly := svr.AdminOnly(c.Config)

	v1.Get("/users", c.GetUsers)
	v1.Post("/users", adminOnly, c.CreateUser)
	v1.Patch("/users/:id/nickname", c.UpdateNickname)
	v1.Put("/users/:id/tokens", adminOnly, c.UpdateTokens)
	v1.Delete("/users/:id", adminOnly, c.DeleteUser)
	v1.Get("/users/:id/records", c.GetPersonalRecords)
}

func (c *User) GetUsers(ctx *fiber.Ctx) error {
	users, err := c.UserService.GetUsers(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(service.ToUserResponses(users))
}

func (c *User) CreateUser(ctx *fiber.Ctx) error {
	var request types.CreateUserRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	user, err := c.UserService.CreateUser(ctx.UserContext(), &request)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(service.ToUserResponse(user))
}

func (c *User) UpdateNickname(ctx *fiber.Ctx) error {
	id, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}
	var request types.UpdateNicknameRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	user, err := c.UserService.UpdateNickname(ctx.UserContext(), id, request.Nickname)
	if err != nil {
		return err
	}
	return ctx.JSON(service.ToUserResponse(user))
}

func (c *User) UpdateTokens(ctx *fiber.Ctx) error {
	id, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}
	var request types.UpdateTokensRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	user, err := c.UserService.UpdateTokens(ctx.UserContext(), id, &request)
	if err != nil {
		return err
	}
	return ctx.JSON(service.ToUserResponse(user))
}

func (c *User) DeleteUser(ctx *fiber.Ctx) error {
	id, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.UserService.DeleteUser(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *User) GetPersonalRecords(ctx *fiber.Ctx) error {
	id, err := rekuest.ParamsID(ctx, "id")
	if err != nil {
		return err
	}

	records, err := c.ActivityService.GetPersonalRecords(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(records)
}
