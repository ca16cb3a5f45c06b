package service

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"runclub.dev/backend/internal/app/appconfig"
	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/pkg/archiver"
	"runclub.dev/backend/internal/pkg/localday"
	"runclub.dev/backend/internal/pkg/rcerr"
	"runclub.dev/backend/internal/repo"
)

const RealmGiftLogs = "gift_logs"

// Archive copies a local day of gift logs to S3. Gift logs stay in the database;
// the archive is an offsite copy of the audit trail.
type Archive struct {
	GiftRepo *repo.Gift

	lock     *redsync.Mutex
	archiver *archiver.Archiver
	now      func() time.Time
}

func NewArchive(giftRepo *repo.Gift, conf *appconfig.Config, rs *redsync.Redsync, store archiver.ObjectStore) *Archive {
	return &Archive{
		GiftRepo: giftRepo,
		lock:     rs.NewMutex("mutex:archiver:gift_logs", redsync.WithExpiry(30*time.Minute), redsync.WithTries(2)),
		archiver: &archiver.Archiver{
			Store:  store,
			Bucket: conf.GiftArchiveS3Bucket,
			Prefix: conf.GiftArchiveS3Prefix,
			Realm:  RealmGiftLogs,
		},
		now: time.Now,
	}
}

// ArchiveYesterday archives the local day before today.
func (s *Archive) ArchiveYesterday(ctx context.Context) (int, error) {
	return s.ArchiveGiftLogs(ctx, localday.DateOf(s.now().In(localday.Location).AddDate(0, 0, -1)))
}

// ArchiveGiftLogs uploads the gift logs created on the given local day. A day
// that is already archived is left untouched and reports zero records.
func (s *Archive) ArchiveGiftLogs(ctx context.Context, day string) (int, error) {
	if err := s.lock.LockContext(ctx); err != nil {
		return 0, errors.Wrap(err, "failed to acquire archive lock")
	}
	defer func() {
		if _, err := s.lock.UnlockContext(context.Background()); err != nil {
			log.Warn().Err(err).Str("evt.name", "archive.unlock.failed").Msg("failed to release archive lock")
		}
	}()

	return s.archiveDay(ctx, day)
}

func (s *Archive) archiveDay(ctx context.Context, day string) (int, error) {
	from, until, err := localday.Window(day, day)
	if err != nil {
		return 0, rcerr.ErrInvalidReq.Msg("invalid archive day: %s", err)
	}

	count, err := s.archiver.Archive(ctx, day, func(emit archiver.Emit) error {
		return s.GiftRepo.GetLogsInRange(ctx, from, until, func(l *model.GiftLog) error {
			return emit(l)
		})
	})
	if errors.Is(err, archiver.ErrFileAlreadyExists) {
		log.Info().
			Str("evt.name", "archive.gift_logs").
			Str("day", day).
			Msg("already archived")
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to archive gift logs")
	}

	log.Info().
		Str("evt.name", "archive.finished").
		Str("day", day).
		Int("count", count).
		Msg("finished archiving gift logs")
	return count, nil
}
