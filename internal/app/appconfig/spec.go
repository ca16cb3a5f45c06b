package appconfig

import (
	"time"

	"runclub.dev/backend/internal/app/appcontext"
)

type ConfigSpec struct {
	// ServiceAddress is the listen address would listen on for serving normal service requests.
	ServiceAddress string `required:"true" split_words:"true" default:"localhost:9030"`

	// LogJsonStdout is whether to log JSON logs (instead of pretty-print logs) to stdout for the ease of log collection.
	LogJsonStdout bool `split_words:"true" default:"false"`

	// TrustedProxies is a list of trusted proxies that are trusted to report a real IP via the X-Forwarded-For header.
	TrustedProxies []string `required:"true" split_words:"true" default:"::1,127.0.0.1,10.0.0.0/8"`

	// DevMode to indicate development mode. When true, the program would spin up utilities for debugging and
	// provide a more contextual message when encountered a panic.
	DevMode bool `split_words:"true"`

	// TracingEnabled to indicate whether to enable OpenTelemetry tracing.
	TracingEnabled bool `split_words:"true"`

	// TracingExporters to indicate which exporters to use for tracing.
	// Valid values are: jaeger, otlp, stdout (for debug).
	TracingExporters []string `split_words:"true" default:"jaeger"`

	// TracingSampleRate to indicate the sampling rate for tracing.
	TracingSampleRate float64 `split_words:"true" default:"1.0"`

	// infrastructure components connection instructions

	// PostgresDSN is the data source name for the PostgreSQL database. See
	// https://bun.uptrace.dev/postgres/#pgdriver for more details on how to construct a PostgreSQL DSN.
	PostgresDSN string `required:"true" split_words:"true"`

	PostgresMaxOpenConns    int           `split_words:"true" default:"10"`
	PostgresMaxIdleConns    int           `split_words:"true" default:"2"`
	PostgresConnMaxLifeTime time.Duration `split_words:"true" default:"5m"`
	PostgresConnMaxIdleTime time.Duration `split_words:"true" default:"5m"`

	BunDebugVerbose bool `split_words:"true"`

	// NatsURL is the URL of the NATS server. See https://pkg.go.dev/github.com/nats-io/nats.go#Connect
	NatsURL string `required:"true" split_words:"true" default:"nats://127.0.0.1:4222"`

	// RedisURL is the URL of the Redis server. See https://pkg.go.dev/github.com/redis/go-redis/v9#ParseURL
	RedisURL string `required:"true" split_words:"true" default:"redis://127.0.0.1:6379/2"`

	// SentryDSN is the DSN of the Sentry server. See https://pkg.go.dev/github.com/getsentry/sentry-go#ClientOptions
	SentryDSN string `split_words:"true"`

	// HTTPServerShutdownTimeout is the timeout for the HTTP server to shut down gracefully.
	HTTPServerShutdownTimeout time.Duration `required:"true" split_words:"true" default:"60s"`

	// AdminKey is the key used to authenticate the admin API, sent in the X-Runclub-Admin-Key header.
	// Leaving this empty disables every admin endpoint.
	AdminKey string `split_words:"true"`

	// StravaAPIBase is the base URL of the Strava v3 API.
	StravaAPIBase string `required:"true" split_words:"true" default:"https://www.strava.com/api/v3"`

	StravaRequestTimeout time.Duration `split_words:"true" default:"15s"`

	// StravaPageSize is the per_page parameter used when listing athlete activities. Strava caps it at 200.
	StravaPageSize int `split_words:"true" default:"200"`

	// StravaPageDelay is the pause after every full page to stay under the Strava rate limit.
	StravaPageDelay time.Duration `split_words:"true" default:"1s"`

	// SyncFullWindow is how far back a full sync reaches.
	SyncFullWindow time.Duration `split_words:"true" default:"43800h"`

	// SyncIncrementalWindow is how far back an incremental sync reaches.
	SyncIncrementalWindow time.Duration `split_words:"true" default:"8760h"`

	// SyncActivityFilter is an expr program evaluated against every upstream activity.
	// Only activities for which it evaluates to true are stored.
	// See https://expr.medv.io/docs/Language-Definition
	SyncActivityFilter string `split_words:"true" default:"Type == \"Run\" && !Private"`

	// SyncWorkerEnabled enables the periodic incremental sync of every user.
	SyncWorkerEnabled bool `split_words:"true"`

	// SyncWorkerInterval describes the interval in-between different sync batches
	SyncWorkerInterval time.Duration `split_words:"true" default:"6h"`

	// SyncWorkerSeparation describes the separation time in-between the jobs of one scheduled batch
	SyncWorkerSeparation time.Duration `split_words:"true" default:"2s"`

	// GiftQuotaMax is the inclusive upper bound of the daily gift quota rolled for each user.
	GiftQuotaMax int `split_words:"true" default:"3"`

	// StatsCacheTTL is how long leaderboard stats stay cached in redis.
	StatsCacheTTL time.Duration `split_words:"true" default:"10m"`

	GiftArchiveS3Region string `split_words:"true" default:"ap-northeast-2"`
	GiftArchiveS3Bucket string `split_words:"true"`
	GiftArchiveS3Prefix string `split_words:"true" default:"v1/"`

	AWSAccessKey string `split_words:"true"`
	AWSSecretKey string `split_words:"true"`
}

type Config struct {
	// ConfigSpec is the configuration specification injected to the config.
	ConfigSpec

	// AppContext is the application context
	AppContext appcontext.Ctx
}
