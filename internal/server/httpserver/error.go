package httpserver

import (
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"runclub.dev/backend/internal/constant"
	"runclub.dev/backend/internal/pkg/flog"
	"runclub.dev/backend/internal/pkg/rcerr"
)

func handleCustomError(ctx *fiber.Ctx, e *rcerr.RunclubError) error {
	flog.WarnFrom(ctx).
		Err(e).
		Str("evt.name", "http.error.handled").
		Msg(e.Message)

	body := fiber.Map{
		"code":    e.ErrorCode,
		"message": e.Message,
	}

	if e.Extras != nil && len(*e.Extras) > 0 {
		for k, v := range *e.Extras {
			body[k] = v
		}
	}

	return ctx.Status(e.StatusCode).JSON(body)
}

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var re *rcerr.RunclubError
	if errors.As(err, &re) {
		return handleCustomError(ctx, re)
	}

	// Default 500 statuscode
	re = rcerr.ErrInternalError.Msg("%s", rcerr.ErrInternalError.Message)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		re.StatusCode = fe.Code
		re.ErrorCode = "UNKNOWN_ERROR"
		re.Message = fe.Message
	}

	flog.ErrorFrom(ctx).
		Stack().
		Err(err).
		Str("evt.name", "http.error.unhandled").
		Int("status", re.StatusCode).
		Msg("Internal Server Error")

	if re.StatusCode >= fiber.StatusInternalServerError {
		if hub := fibersentry.GetHubFromContext(ctx); hub != nil {
			hub.Scope().SetTag("status", strconv.Itoa(re.StatusCode))
			if id, ok := ctx.Locals(constant.ContextKeyRequestID).(string); ok {
				hub.Scope().SetTag("request_id", id)
			}
			hub.Scope().SetLevel(sentry.LevelError)
			hub.CaptureException(err)
		}
	}

	return handleCustomError(ctx, re)
}
