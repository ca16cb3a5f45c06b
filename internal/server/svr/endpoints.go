package svr

import (
	"github.com/gofiber/fiber/v2"

	"runclub.dev/backend/internal/app/appconfig"
	"runclub.dev/backend/internal/pkg/middlewares"
)

type V1 struct {
	fiber.Router
}

// Admin is mounted under V1 and guarded by the admin key.
type Admin struct {
	fiber.Router
}

type Meta struct {
	fiber.Router
}

func CreateEndpointGroups(app *fiber.App, conf *appconfig.Config) (*V1, *Admin, *Meta) {
	v1 := app.Group("/api/v1")
	admin := v1.Group("/admin", middlewares.AdminKey(conf.AdminKey))
	meta := app.Group("/api/_")

	return &V1{Router: v1}, &Admin{Router: admin}, &Meta{Router: meta}
}

// AdminOnly guards a single route that lives outside the admin group.
func AdminOnly(conf *appconfig.Config) fiber.Handler {
	return middlewares.AdminKey(conf.AdminKey)
}
