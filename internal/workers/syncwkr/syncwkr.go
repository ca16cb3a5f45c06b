package syncwkr

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/pkg/jetstream"
	"runclub.dev/backend/internal/pkg/rcerr"
	"runclub.dev/backend/internal/service"
)

const (
	consumerCount = 2
	queueGroup    = jetstream.SyncStreamName

	// a sync pages through years of activities with a pause after each page
	taskTimeout = 10 * time.Minute
	retryDelay  = 30 * time.Second
)

type WorkerDeps struct {
	fx.In

	SyncService *service.Sync
	JetStream   nats.JetStreamContext
}

type Worker struct {
	WorkerDeps
}

func Start(lc fx.Lifecycle, deps WorkerDeps) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{WorkerDeps: deps}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for i := 0; i < consumerCount; i++ {
				go func(i int) {
					if err := w.Consumer(ctx); err != nil && !errors.Is(err, context.Canceled) {
						log.Error().
							Err(err).
							Str("evt.name", "worker.sync.consumer.exited").
							Int("consumer", i).
							Msg("sync consumer exited")
					}
				}(i)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func (w *Worker) Consumer(ctx context.Context) error {
	msgChan := make(chan *nats.Msg, 4)

	sub, err := w.JetStream.ChanQueueSubscribe(jetstream.SyncSubjectPrefix+"*", queueGroup, msgChan,
		nats.AckWait(taskTimeout+time.Minute),
		nats.MaxAckPending(consumerCount*4))
	if err != nil {
		log.Error().Err(err).Str("evt.name", "worker.sync.subscribe").Msg("failed to subscribe to SYNC.*")
		return err
	}
	defer func() {
		_ = sub.Unsubscribe()
	}()

	for {
		select {
		case msg := <-msgChan:
			w.handle(ctx, msg)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg *nats.Msg) {
	delivery := jetstream.DeliveryOf(msg)
	L := log.With().
		Str("subject", delivery.Subject).
		Str("messageId", delivery.MessageID).
		Uint64("delivered", delivery.NumDelivered).
		Logger()

	var task types.SyncTask
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		L.Error().Err(err).Str("evt.name", "worker.sync.decode").Msg("dropping malformed sync task")
		_ = msg.Term()
		return
	}
	L = L.With().Str("taskId", task.TaskID).Int("userId", task.UserID).Logger()

	taskCtx, cancelTask := context.WithTimeout(ctx, taskTimeout)
	defer cancelTask()

	// keep the message from being redelivered while a long sync is still paging
	progress := time.NewTicker(time.Minute)
	defer progress.Stop()
	go func() {
		for {
			select {
			case <-progress.C:
				_ = msg.InProgress()
			case <-taskCtx.Done():
				return
			}
		}
	}()

	result, err := w.SyncService.SyncUser(taskCtx, task.UserID, task.Mode)
	switch Disposition(err) {
	case Ack:
		if err := msg.Ack(); err != nil {
			L.Error().Err(err).Str("evt.name", "worker.sync.ack").Msg("failed to ack")
		}
		L.Info().
			Str("evt.name", "worker.sync.done").
			Int("synced", result.SyncedCount).
			Msg("sync task processed successfully")
	case Retry:
		L.Warn().Err(err).Str("evt.name", "worker.sync.retry").Msg("sync task will be retried")
		_ = msg.NakWithDelay(retryDelay)
	case Drop:
		L.Error().Err(err).Str("evt.name", "worker.sync.dropped").Msg("sync task failed permanently")
		_ = msg.Term()
	}
}

type Action int

const (
	Ack Action = iota
	Retry
	Drop
)

// Disposition decides what happens to a sync task message after SyncUser
// returned err. Errors that a later attempt cannot fix terminate the message.
func Disposition(err error) Action {
	switch {
	case err == nil:
		return Ack
	case errors.Is(err, rcerr.ErrNotFound), errors.Is(err, rcerr.ErrInvalidReq), errors.Is(err, rcerr.ErrForbidden):
		return Drop
	default:
		return Retry
	}
}
