// Package flog carries a per-request zerolog logger through fiber's user context.
package flog

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestIDHeader echoes the generated request id back to the client.
const RequestIDHeader = "X-Runclub-Request-ID"

type idKey struct{}

// FromFiberCtx returns the request's logger, or the disabled logger when no
// logger was injected.
func FromFiberCtx(c *fiber.Ctx) *zerolog.Logger {
	return log.Ctx(c.UserContext())
}

// NewHandlerMiddleware injects a copy of base into every request context.
// The copy keeps UpdateContext calls of one request from leaking into another.
func NewHandlerMiddleware(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := base.With().Logger()
		c.SetUserContext(l.WithContext(c.UserContext()))
		return c.Next()
	}
}

// RequestFieldsHandler adds method, path, remote address and user agent fields
// to the request's logger.
func RequestFieldsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		zerolog.Ctx(c.UserContext()).UpdateContext(func(zc zerolog.Context) zerolog.Context {
			return zc.
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Str("ua", c.Get(fiber.HeaderUserAgent))
		})
		return c.Next()
	}
}

// IDFromFiberCtx returns the request id assigned by RequestIDHandler.
func IDFromFiberCtx(c *fiber.Ctx) (id xid.ID, ok bool) {
	if c == nil {
		return
	}
	return IDFromCtx(c.UserContext())
}

func IDFromCtx(ctx context.Context) (id xid.ID, ok bool) {
	id, ok = ctx.Value(idKey{}).(xid.ID)
	return
}

func CtxWithID(ctx context.Context, id xid.ID) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// RequestIDHandler assigns an xid to the request, logs it under fieldKey and
// echoes it in headerName. Empty fieldKey or headerName skip that part.
func RequestIDHandler(fieldKey, headerName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := IDFromFiberCtx(c)
		if !ok {
			id = xid.New()
			c.SetUserContext(CtxWithID(c.UserContext(), id))
		}
		if fieldKey != "" {
			FromFiberCtx(c).UpdateContext(func(zc zerolog.Context) zerolog.Context {
				return zc.Str(fieldKey, id.String())
			})
		}
		if headerName != "" {
			c.Set(headerName, id.String())
		}
		return c.Next()
	}
}

// AccessHandler calls f with the request duration after the rest of the chain ran.
func AccessHandler(f func(c *fiber.Ctx, duration time.Duration, err error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		f(c, time.Since(start), err)
		return err
	}
}

func DebugFrom(c *fiber.Ctx) *zerolog.Event {
	return FromFiberCtx(c).Debug()
}

func InfoFrom(c *fiber.Ctx) *zerolog.Event {
	return FromFiberCtx(c).Info()
}

func WarnFrom(c *fiber.Ctx) *zerolog.Event {
	return FromFiberCtx(c).Warn()
}

func ErrorFrom(c *fiber.Ctx) *zerolog.Event {
	return FromFiberCtx(c).Error()
}
