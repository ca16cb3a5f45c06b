package migrate

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	cliapp "runclub.dev/backend/cmd/app/cli"
	"runclub.dev/backend/internal/model"
)

type CommandDeps struct {
	fx.In

	DB *bun.DB
}

func Command() *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Usage:       "create missing tables and indexes",
		Description: "creates every table the backend uses. Existing tables are left as they are.",
		Action: func(c *cli.Context) error {
			return cliapp.Run(func(deps CommandDeps) error {
				if err := model.CreateSchema(c.Context, deps.DB); err != nil {
					return errors.Wrap(err, "failed to create schema")
				}
				log.Info().
					Str("evt.name", "cli.migrate.done").
					Int("tables", len(model.Tables())).
					Msg("schema is up to date")
				return nil
			})
		},
	}
}
