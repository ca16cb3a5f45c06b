package constant

const (
	ContextKeyRequestID = "requestid"

	// IdempotencyHeader reports whether a response was "saved" or replayed ("hit").
	IdempotencyHeader    = "X-Runclub-Idempotency"
	IdempotencyKeyHeader = "Idempotency-Key"

	IdempotencyKeyLengthLimit = 128

	LocalsKeyIdempotencyKey = "idempotencyKey"

	AdminKeyHeader = "X-Runclub-Admin-Key"

	// SlimHeaderKey marks probe requests that Sentry transaction tracing ignores.
	SlimHeaderKey = "X-Slim"
)
