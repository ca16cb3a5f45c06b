package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"runclub.dev/backend/internal/pkg/flog"
)

func Logger(app *fiber.App) {
	Chained(
		app,
		flog.NewHandlerMiddleware(log.With().Logger()),
		flog.RequestIDHandler("request_id", flog.RequestIDHeader),
		flog.RequestFieldsHandler(),
		requestLogger(),
	)
}

func requestLogger() fiber.Handler {
	return flog.AccessHandler(func(c *fiber.Ctx, duration time.Duration, err error) {
		evt := flog.FromFiberCtx(c).Info()
		if err != nil {
			evt = flog.FromFiberCtx(c).Warn().Err(err)
		}
		evt.
			Str("evt.name", "http.request").
			Int("status", c.Response().StatusCode()).
			Int("size", len(c.Response().Body())).
			Dur("duration", duration).
			Msg("handled request")
	})
}
