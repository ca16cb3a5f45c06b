package archivegifts

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	cliapp "runclub.dev/backend/cmd/app/cli"
	"runclub.dev/backend/internal/service"
)

type CommandDeps struct {
	fx.In

	ArchiveService *service.Archive
}

func Command() *cli.Command {
	return &cli.Command{
		Name:        "archive-gifts",
		Usage:       "archive one local day of gift logs to S3",
		Description: "uploads the gift logs of the given day as gzip-compressed JSON lines. A day already archived is skipped.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "date",
				Usage: "local day to archive, YYYY-MM-DD; yesterday when omitted",
			},
		},
		Action: func(c *cli.Context) error {
			date := c.String("date")
			return cliapp.Run(func(deps CommandDeps) error {
				var (
					count int
					err   error
				)
				if date == "" {
					count, err = deps.ArchiveService.ArchiveYesterday(c.Context)
				} else {
					count, err = deps.ArchiveService.ArchiveGiftLogs(c.Context, date)
				}
				if err != nil {
					return errors.Wrap(err, "failed to archive gift logs")
				}

				log.Info().
					Str("evt.name", "cli.archive.done").
					Str("date", date).
					Int("records", count).
					Msg("gift logs archived")
				return nil
			})
		},
	}
}
