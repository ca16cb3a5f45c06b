package worker

import (
	"github.com/urfave/cli/v2"

	"runclub.dev/backend/internal/app"
	"runclub.dev/backend/internal/app/appcontext"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "start the sync worker and, when enabled, the sync scheduler",
		Action: func(c *cli.Context) error {
			app.New(appcontext.Declare(appcontext.EnvWorker)).Run()
			return nil
		},
	}
}
