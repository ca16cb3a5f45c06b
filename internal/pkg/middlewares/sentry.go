package middlewares

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"runclub.dev/backend/internal/constant"
)

// EnrichSentry tags the request hub with the request id and starts a
// transaction continuing any incoming trace. Probe requests carrying the slim
// header are not traced.
func EnrichSentry() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hub := fibersentry.GetHubFromContext(c); hub != nil {
			if id, ok := c.Locals(constant.ContextKeyRequestID).(string); ok {
				hub.Scope().SetTag("request_id", id)
			}
		}
		if c.Get(constant.SlimHeaderKey) != "" {
			return c.Next()
		}

		var r http.Request
		if err := fasthttpadaptor.ConvertRequest(c.Context(), &r, true); err != nil {
			return err
		}
		span := sentry.StartSpan(c.UserContext(), "http.server",
			sentry.ContinueFromRequest(&r),
			sentry.WithTransactionName(c.Method()+" "+c.Path()))
		defer span.Finish()
		c.SetUserContext(span.Context())

		err := c.Next()
		span.Status = sentry.HTTPtoSpanStatus(c.Response().StatusCode())
		return err
	}
}
