package schedwkr

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"runclub.dev/backend/internal/app/appconfig"
	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/pkg/observability"
	"runclub.dev/backend/internal/service"
)

type WorkerDeps struct {
	fx.In

	SyncService    *service.Sync
	ArchiveService *service.Archive
}

type Worker struct {
	// count counts batches worker has completed so far
	count int

	// sep describes the separation time in-between different jobs
	sep time.Duration

	// interval describes the interval in-between different batches of job running
	interval time.Duration

	// archive is set when a gift log bucket is configured
	archive bool

	WorkerDeps
}

func Start(conf *appconfig.Config, lc fx.Lifecycle, deps WorkerDeps) {
	if !conf.SyncWorkerEnabled {
		log.Info().
			Str("evt.name", "worker.sched.disabled").
			Msg("scheduled sync worker is disabled")
		return
	}

	w := &Worker{
		sep:        conf.SyncWorkerSeparation,
		interval:   conf.SyncWorkerInterval,
		archive:    conf.GiftArchiveS3Bucket != "",
		WorkerDeps: deps,
	}

	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			cancel = w.do()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func (w *Worker) do() context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for {
			log.Info().
				Str("evt.name", "worker.sched.batch.started").
				Int("count", w.count).
				Msg("worker batch started")

			w.enqueue(ctx)
			if !sleep(ctx, w.sep) {
				return
			}
			if w.archive {
				w.archiveYesterday(ctx)
			}

			log.Info().
				Str("evt.name", "worker.sched.batch.finished").
				Int("count", w.count).
				Msg("worker batch finished")

			w.count++
			if !sleep(ctx, w.interval) {
				return
			}
		}
	}()

	return cancel
}

func (w *Worker) enqueue(ctx context.Context) {
	start := time.Now()
	defer func() {
		observability.SyncWorkerBatchDuration.
			WithLabelValues(types.SyncModeIncremental).
			Set(time.Since(start).Seconds())
	}()

	enqueued, err := w.SyncService.EnqueueAll(ctx, types.SyncModeIncremental)
	if err != nil {
		log.Error().
			Err(err).
			Str("evt.name", "worker.sched.enqueue").
			Msg("failed to enqueue scheduled syncs")
		return
	}
	log.Info().
		Str("evt.name", "worker.sched.enqueue").
		Int("enqueued", enqueued).
		Msg("scheduled syncs enqueued")
}

// archiveYesterday is safe to repeat every batch: an archived day is skipped.
func (w *Worker) archiveYesterday(ctx context.Context) {
	count, err := w.ArchiveService.ArchiveYesterday(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("evt.name", "worker.sched.archive").
			Msg("failed to archive gift logs")
		return
	}
	log.Info().
		Str("evt.name", "worker.sched.archive").
		Int("records", count).
		Msg("gift logs archived")
}

func (w *Worker) Count() int {
	return w.count
}

// sleep waits for d and reports false when ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
