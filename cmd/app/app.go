package app

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"runclub.dev/backend/cmd/app/cli/archivegifts"
	"runclub.dev/backend/cmd/app/cli/migrate"
	"runclub.dev/backend/cmd/app/cli/syncusers"
	"runclub.dev/backend/cmd/app/server"
	"runclub.dev/backend/cmd/app/worker"
	"runclub.dev/backend/internal/pkg/bininfo"
)

func Run() {
	app := &cli.App{
		Name:        "rcbackend",
		Description: "The running club backend. Built with Go, fiber, bun and go.uber.org/fx. Syncs Strava activities through NATS JetStream and keeps locks in Redis.",
		Version:     bininfo.Version,
		Commands: []*cli.Command{
			server.Command(),
			worker.Command(),
			migrate.Command(),
			syncusers.Command(),
			archivegifts.Command(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run app")
	}
}
