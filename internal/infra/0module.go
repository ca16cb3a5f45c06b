package infra

import (
	"go.uber.org/fx"

	"runclub.dev/backend/internal/pkg/archiver"
)

func Module() fx.Option {
	return fx.Module("infra", fx.Provide(
		NATS,
		Redis,
		RedSync,
		Postgres,
		TracerProvider,
		fx.Annotate(S3, fx.As(new(archiver.ObjectStore))),
	))
}
