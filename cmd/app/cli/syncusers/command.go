package syncusers

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	cliapp "runclub.dev/backend/cmd/app/cli"
	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/service"
)

type CommandDeps struct {
	fx.In

	SyncService *service.Sync
}

func Command() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "sync Strava activities of one or every user",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "user",
				Usage: "user id to sync; every user when omitted",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "auto, full or incremental",
				Value: types.SyncModeAuto,
				Action: func(c *cli.Context, mode string) error {
					switch mode {
					case types.SyncModeAuto, types.SyncModeFull, types.SyncModeIncremental:
						return nil
					}
					return cli.Exit("mode must be one of auto, full, incremental", 1)
				},
			},
		},
		Action: func(c *cli.Context) error {
			mode := c.String("mode")
			return cliapp.Run(func(deps CommandDeps) error {
				var results []*types.SyncResult
				if userID := c.Int("user"); userID > 0 {
					result, err := deps.SyncService.SyncUser(c.Context, userID, mode)
					if err != nil {
						return err
					}
					results = append(results, result)
				} else {
					var err error
					if results, err = deps.SyncService.SyncAll(c.Context, mode); err != nil {
						return err
					}
				}

				for _, r := range results {
					log.Info().
						Str("evt.name", "cli.sync.result").
						Int("userId", r.UserID).
						Str("mode", r.Mode).
						Int("synced", r.SyncedCount).
						Int("total", r.TotalActivities).
						Msg("user synced")
				}
				return nil
			})
		},
	}
}
