package app

import (
	"time"

	"go.uber.org/fx"

	"runclub.dev/backend/internal/app/appconfig"
	"runclub.dev/backend/internal/app/appcontext"
	"runclub.dev/backend/internal/controller"
	"runclub.dev/backend/internal/infra"
	"runclub.dev/backend/internal/pkg/logger"
	"runclub.dev/backend/internal/repo"
	"runclub.dev/backend/internal/server"
	"runclub.dev/backend/internal/service"
	"runclub.dev/backend/internal/workers/schedwkr"
	"runclub.dev/backend/internal/workers/syncwkr"
)

func Options(ctx appcontext.Ctx, additionalOpts ...fx.Option) []fx.Option {
	conf, err := appconfig.Parse(ctx)
	if err != nil {
		panic(err)
	}

	// logger and configuration are the only two things that are not in the fx graph
	// because some other packages need them to be initialized before fx starts
	logger.Configure(conf)

	baseOpts := []fx.Option{
		// fx meta
		fx.WithLogger(logger.Fx),

		// Misc
		fx.Supply(conf),

		// Infrastructures
		infra.Module(),

		// Repositories
		repo.Module(),

		// Services
		service.Module(),

		// Global Singleton Inits
		fx.Invoke(infra.SentryInit),
	}

	switch ctx.Env {
	case appcontext.EnvServer:
		baseOpts = append(baseOpts,
			// Servers
			server.Module(),

			// Controllers are fx#Invoke functions and register routes in the order given here
			controller.Module(),
		)
	case appcontext.EnvWorker:
		baseOpts = append(baseOpts,
			fx.Invoke(syncwkr.Start),
			fx.Invoke(schedwkr.Start),
		)
	}

	baseOpts = append(baseOpts,
		// fx Extra Options
		fx.StartTimeout(10*time.Second),
		// StopTimeout is not typically needed, since we're using fiber's Shutdown(),
		// in which fiber has its own IdleTimeout for controlling the shutdown timeout.
		// It acts as a countermeasure in case the fiber app is not properly shutting down.
		fx.StopTimeout(5*time.Minute),
	)

	return append(baseOpts, additionalOpts...)
}

func New(ctx appcontext.Ctx, additionalOpts ...fx.Option) *fx.App {
	return fx.New(Options(ctx, additionalOpts...)...)
}
