package service

import (
	"context"
	"strconv"
	"time"

	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
	"github.com/go-redsync/redsync/v4"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/guregu/null.v3"

	"runclub.dev/backend/internal/app/appconfig"
	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/model/cache"
	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/pkg/jetstream"
	"runclub.dev/backend/internal/pkg/observability"
	"runclub.dev/backend/internal/pkg/rcerr"
	"runclub.dev/backend/internal/pkg/strava"
	"runclub.dev/backend/internal/repo"
)

const syncAllConcurrency = 4

type Sync struct {
	UserRepo     *repo.User
	ActivityRepo *repo.Activity
	Client       *strava.Client
	Tokens       TokenProvider
	JetStream    nats.JetStreamContext
	Redsync      *redsync.Redsync

	conf   *appconfig.Config
	filter *vm.Program
	now    func() time.Time
}

func NewSync(conf *appconfig.Config, userRepo *repo.User, activityRepo *repo.Activity, tokens TokenProvider, js nats.JetStreamContext, rs *redsync.Redsync) (*Sync, error) {
	filter, err := CompileActivityFilter(conf.SyncActivityFilter)
	if err != nil {
		return nil, err
	}

	return &Sync{
		UserRepo:     userRepo,
		ActivityRepo: activityRepo,
		Client: strava.NewClient(strava.Config{
			BaseURL:   conf.StravaAPIBase,
			Timeout:   conf.StravaRequestTimeout,
			PageSize:  conf.StravaPageSize,
			PageDelay: conf.StravaPageDelay,
		}),
		Tokens:    tokens,
		JetStream: js,
		Redsync:   rs,
		conf:      conf,
		filter:    filter,
		now:       time.Now,
	}, nil
}

// CompileActivityFilter compiles a boolean expr program evaluated against every
// fetched strava.Activity, e.g. `Type == "Run" && !Private`.
func CompileActivityFilter(source string) (*vm.Program, error) {
	program, err := expr.Compile(source, expr.Env(strava.Activity{}), expr.AsBool())
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile sync activity filter")
	}
	return program, nil
}

// ResolveSyncMode turns auto into full for users who never completed a full
// sync and into incremental otherwise.
func ResolveSyncMode(mode string, user *model.User) string {
	switch mode {
	case types.SyncModeFull, types.SyncModeIncremental:
		return mode
	default:
		if user.FullSyncDone {
			return types.SyncModeIncremental
		}
		return types.SyncModeFull
	}
}

func (s *Sync) window(mode string) time.Duration {
	if mode == types.SyncModeFull {
		return s.conf.SyncFullWindow
	}
	return s.conf.SyncIncrementalWindow
}

// SyncUser pulls the user's activities from Strava into the activity store.
// Overlapping syncs of one user are refused with ErrSyncInProgress.
func (s *Sync) SyncUser(ctx context.Context, userID int, mode string) (*types.SyncResult, error) {
	user, err := s.UserRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	mutex := s.Redsync.NewMutex("mutex:sync:user:"+strconv.Itoa(userID),
		redsync.WithExpiry(10*time.Minute),
		redsync.WithTries(1))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, rcerr.ErrSyncInProgress
	}
	defer func() {
		if _, err := mutex.UnlockContext(context.Background()); err != nil {
			log.Warn().Err(err).Str("evt.name", "sync.unlock.failed").Int("userId", userID).Msg("failed to release sync lock")
		}
	}()

	return s.syncUser(ctx, user, mode)
}

func (s *Sync) syncUser(ctx context.Context, user *model.User, mode string) (*types.SyncResult, error) {
	resolved := ResolveSyncMode(mode, user)
	L := log.With().Int("userId", user.ID).Str("mode", resolved).Logger()
	started := time.Now()

	token, err := s.Tokens.AccessToken(ctx, user)
	if err != nil {
		return nil, err
	}

	after := s.now().Add(-s.window(resolved))
	fetched, err := s.Client.ListAllActivities(ctx, token, after)
	if errors.Is(err, strava.ErrUnauthorized) {
		L.Warn().Err(err).Str("evt.name", "sync.fetch.unauthorized").Msg("strava rejected the stored access token")
		return nil, rcerr.ErrForbidden.Msg("strava rejected the access token of user %d; tokens need to be refreshed", user.ID)
	} else if err != nil {
		L.Error().Err(err).Str("evt.name", "sync.fetch.failed").Msg("failed to fetch activities from strava")
		return nil, rcerr.ErrUpstreamUnavailable.Msg("failed to fetch activities: %s", err)
	}

	activities := make([]*model.Activity, 0, len(fetched))
	for _, a := range fetched {
		keep, err := s.accepts(a)
		if err != nil {
			return nil, err
		}
		if keep {
			activities = append(activities, activityFromStrava(user.ID, a))
		}
	}

	if err := s.ActivityRepo.UpsertActivities(ctx, activities); err != nil {
		return nil, errors.Wrap(err, "failed to store activities")
	}
	if resolved == types.SyncModeFull && !user.FullSyncDone {
		if err := s.UserRepo.MarkFullSyncDone(ctx, user.ID); err != nil {
			return nil, err
		}
		user.FullSyncDone = true
	}

	total, err := s.ActivityRepo.CountByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if len(activities) > 0 {
		cache.InvalidateActivityDerived()
	}

	observability.SyncDuration.WithLabelValues(resolved).Observe(time.Since(started).Seconds())
	observability.SyncedActivities.WithLabelValues("stored").Add(float64(len(activities)))
	observability.SyncedActivities.WithLabelValues("filtered").Add(float64(len(fetched) - len(activities)))
	L.Info().
		Str("evt.name", "sync.user.completed").
		Int("fetched", len(fetched)).
		Int("stored", len(activities)).
		Int("total", total).
		Dur("took", time.Since(started)).
		Msg("user activities synced")

	return &types.SyncResult{
		UserID:          user.ID,
		Mode:            resolved,
		SyncedCount:     len(activities),
		TotalActivities: total,
	}, nil
}

func (s *Sync) accepts(a *strava.Activity) (bool, error) {
	out, err := expr.Run(s.filter, *a)
	if err != nil {
		return false, errors.Wrap(err, "failed to evaluate sync activity filter")
	}
	keep, _ := out.(bool)
	return keep, nil
}

// SyncAll syncs every user directly, a few at a time. Failures of single users
// are logged and do not stop the others.
func (s *Sync) SyncAll(ctx context.Context, mode string) ([]*types.SyncResult, error) {
	users, err := s.UserRepo.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*types.SyncResult, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(syncAllConcurrency)
	for i, user := range users {
		i, user := i, user
		g.Go(func() error {
			result, err := s.SyncUser(gctx, user.ID, mode)
			if err != nil {
				log.Warn().Err(err).Str("evt.name", "sync.user.failed").Int("userId", user.ID).Msg("user sync failed")
				return nil
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	synced := make([]*types.SyncResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			synced = append(synced, r)
		}
	}
	return synced, nil
}

// EnqueueAll publishes one sync task per user to the SYNC.* stream and returns
// the number of tasks accepted.
func (s *Sync) EnqueueAll(ctx context.Context, mode string) (int, error) {
	users, err := s.UserRepo.GetUsers(ctx)
	if err != nil {
		return 0, err
	}

	futures := make([]nats.PubAckFuture, 0, len(users))
	for _, user := range users {
		task := &types.SyncTask{
			TaskID:    ulid.Make().String(),
			UserID:    user.ID,
			Mode:      mode,
			CreatedAt: s.now().Unix(),
		}
		body, err := json.Marshal(task)
		if err != nil {
			return 0, err
		}
		future, err := s.JetStream.PublishAsync(jetstream.SyncSubjectPrefix+syncSubject(mode), body, nats.MsgId(task.TaskID))
		if err != nil {
			return 0, errors.Wrap(err, "failed to publish sync task")
		}
		futures = append(futures, future)
	}

	accepted := 0
	for _, future := range futures {
		select {
		case <-future.Ok():
			accepted++
		case err := <-future.Err():
			log.Warn().Err(err).Str("evt.name", "sync.enqueue.failed").Msg("sync task was not acknowledged")
		case <-ctx.Done():
			return accepted, ctx.Err()
		case <-time.After(5 * time.Second):
			return accepted, errors.New("timeout waiting for NATS acknowledgement")
		}
	}

	log.Info().Str("evt.name", "sync.enqueue.completed").Int("tasks", accepted).Str("mode", mode).Msg("sync tasks enqueued")
	return accepted, nil
}

func syncSubject(mode string) string {
	if mode == "" {
		return types.SyncModeAuto
	}
	return mode
}

func activityFromStrava(userID int, a *strava.Activity) *model.Activity {
	activity := &model.Activity{
		UserID:             userID,
		ActivityID:         strconv.FormatInt(a.ID, 10),
		Name:               a.Name,
		Type:               a.Type,
		Distance:           a.Distance,
		MovingTime:         a.MovingTime,
		ElapsedTime:        a.ElapsedTime,
		TotalElevationGain: a.TotalElevationGain,
		StartDate:          a.StartDate,
		AverageSpeed:       a.AverageSpeed,
		MaxSpeed:           a.MaxSpeed,
		AverageHeartrate:   null.FloatFromPtr(a.AverageHeartrate),
		AverageCadence:     null.FloatFromPtr(a.AverageCadence),
		AverageTemp:        null.FloatFromPtr(a.AverageTemp),
		Calories:           null.FloatFromPtr(a.Calories),
		MaxHeartrate:       null.FloatFromPtr(a.MaxHeartrate),
		SufferScore:        null.FloatFromPtr(a.SufferScore),
	}
	if a.WorkoutType != nil {
		activity.WorkoutType = null.IntFrom(int64(*a.WorkoutType))
	}
	return activity
}
