package middlewares

import (
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/xxh3"

	"runclub.dev/backend/internal/constant"
	"runclub.dev/backend/internal/pkg/flog"
	"runclub.dev/backend/internal/pkg/rcerr"
	"runclub.dev/backend/internal/util/rekuest"
)

type IdempotencyConfig struct {
	// Lifetime is how long a stored response is replayed for.
	Lifetime time.Duration

	// KeyHeader carries the client chosen idempotency key.
	KeyHeader string

	// KeepResponseHeaders limits the replayed headers. Nil keeps all of them.
	KeepResponseHeaders []string

	keepResponseHeadersMap map[string]struct{}

	Storage fiber.Storage

	RedSync *redsync.Redsync

	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool
}

type idempotencyResponse struct {
	// BodyHash fingerprints the request that produced this response.
	BodyHash   uint64
	StatusCode int
	Headers    map[string][]string
	Body       []byte
}

// Idempotency replays the stored response of a successful request carrying the
// same key. Requests with the same key are serialized by a redsync mutex, so a
// retried gift is applied once. Failed requests are not stored and may be retried.
// Reusing a key with a different request body is rejected.
func Idempotency(config *IdempotencyConfig) fiber.Handler {
	config.keepResponseHeadersMap = make(map[string]struct{})
	for _, header := range config.KeepResponseHeaders {
		config.keepResponseHeadersMap[strings.ToLower(header)] = struct{}{}
	}
	if config.KeyHeader == "" {
		config.KeyHeader = constant.IdempotencyKeyHeader
	}

	return func(c *fiber.Ctx) error {
		if config.Next != nil && config.Next(c) {
			return c.Next()
		}

		key := c.Get(config.KeyHeader)
		if key == "" {
			return c.Next()
		}

		if err := rekuest.Validate.Var(key, "max=128,printascii"); err != nil || strings.Contains(key, " ") {
			return rcerr.ErrInvalidReq.Msg("invalid idempotency key: at most %d printable characters without spaces", constant.IdempotencyKeyLengthLimit)
		}
		// keys are scoped to the route so that one key cannot replay another endpoint
		storageKey := c.Method() + " " + c.Path() + " " + key
		c.Locals(constant.LocalsKeyIdempotencyKey, key)

		if hit, err := replayStored(c, config, storageKey); hit {
			return err
		}

		mutex := config.RedSync.NewMutex("mutex:idempotency-request:"+storageKey,
			redsync.WithExpiry(time.Minute),
			redsync.WithTries(5),
			redsync.WithRetryDelay(time.Millisecond*250))
		if err := mutex.LockContext(c.UserContext()); err != nil {
			flog.WarnFrom(c).
				Err(err).
				Str("evt.name", "http.idempotency.lock.failed").
				Str("key", key).
				Msg("failed to lock idempotency key")
			return rcerr.ErrInvalidReq.Msg("idempotency key is locked by another request in flight")
		}
		defer func() {
			if _, err := mutex.Unlock(); err != nil {
				flog.WarnFrom(c).
					Err(err).
					Str("evt.name", "http.idempotency.unlock.failed").
					Str("key", key).
					Msg("failed to unlock idempotency key")
			}
		}()

		// another request with this key may have finished while we waited
		if hit, err := replayStored(c, config, storageKey); hit {
			return err
		}

		if err := c.Next(); err != nil {
			return err
		}
		if c.Response().StatusCode() >= fiber.StatusBadRequest {
			return nil
		}

		responseBytes, err := marshalResponse(c, config)
		if err != nil {
			return err
		}
		if err := config.Storage.Set(storageKey, responseBytes, config.Lifetime); err != nil {
			flog.ErrorFrom(c).
				Err(err).
				Str("evt.name", "http.idempotency.save.failed").
				Str("key", key).
				Msg("failed to save idempotent response")
			return err
		}

		c.Set(constant.IdempotencyHeader, "saved")
		return nil
	}
}

func marshalResponse(c *fiber.Ctx, conf *IdempotencyConfig) ([]byte, error) {
	response := idempotencyResponse{
		BodyHash:   xxh3.Hash(c.Body()),
		StatusCode: c.Response().StatusCode(),
		Body:       c.Response().Body(),
	}

	headers := c.GetRespHeaders()
	if conf.KeepResponseHeaders == nil {
		response.Headers = headers
	} else {
		response.Headers = make(map[string][]string)
		for header, value := range headers {
			if _, ok := conf.keepResponseHeadersMap[strings.ToLower(header)]; ok {
				response.Headers[header] = value
			}
		}
	}

	return msgpack.Marshal(response)
}

func replayStored(c *fiber.Ctx, conf *IdempotencyConfig, storageKey string) (bool, error) {
	stored, err := conf.Storage.Get(storageKey)
	if err != nil || stored == nil {
		return false, nil
	}

	var response idempotencyResponse
	if err := msgpack.Unmarshal(stored, &response); err != nil {
		return true, err
	}
	if response.BodyHash != xxh3.Hash(c.Body()) {
		return true, rcerr.ErrInvalidReq.Msg("idempotency key was already used with a different request body")
	}

	c.Status(response.StatusCode)
	for header, values := range response.Headers {
		c.Response().Header.Del(header)
		for _, value := range values {
			c.Response().Header.Add(header, value)
		}
	}
	c.Set(constant.IdempotencyHeader, "hit")

	flog.DebugFrom(c).
		Str("evt.name", "http.idempotency.hit").
		Str("key", storageKey).
		Msg("replayed idempotent response")

	if len(response.Body) > 0 {
		return true, c.Send(response.Body)
	}
	return true, nil
}
