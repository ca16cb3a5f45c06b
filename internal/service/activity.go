package service

import (
	"context"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"

	"runclub.dev/backend/internal/app/appconfig"
	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/model/cache"
	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/repo"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100

	DefaultStatsSpan = 30 * 24 * time.Hour
)

// RecordRange is one personal record category: the fastest Run whose distance
// lies within [Min, Max] meters.
type RecordRange struct {
	Label string
	DistanceRange
}

var RecordRanges = []RecordRange{
	{"5K", DistanceRange{4500, 5500}},
	{"10K", DistanceRange{9500, 10500}},
	{"Half", DistanceRange{20500, 22000}},
	{"Full", DistanceRange{41500, 43000}},
}

type Activity struct {
	ActivityRepo *repo.Activity
	UserRepo     *repo.User

	statsTTL time.Duration
	now      func() time.Time
}

func NewActivity(activityRepo *repo.Activity, userRepo *repo.User, conf *appconfig.Config) *Activity {
	return &Activity{
		ActivityRepo: activityRepo,
		UserRepo:     userRepo,
		statsTTL:     conf.StatsCacheTTL,
		now:          time.Now,
	}
}

func (s *Activity) GetRecentActivities(ctx context.Context, limit int) ([]*types.RecentActivity, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	activities, err := s.ActivityRepo.GetRecentActivities(ctx, limit)
	if err != nil {
		return nil, err
	}
	return lo.Map(activities, func(a *model.Activity, _ int) *types.RecentActivity {
		recent := &types.RecentActivity{
			ID:          a.ID,
			ActivityID:  a.ActivityID,
			UserID:      a.UserID,
			Name:        a.Name,
			Type:        a.Type,
			Distance:    a.Distance,
			MovingTime:  a.MovingTime,
			StartDate:   a.StartDate,
			PaceSeconds: a.Pace(),
		}
		if a.User != nil {
			recent.UserName = a.User.DisplayName()
		}
		return recent
	}), nil
}

func (s *Activity) GetActivitiesByUserID(ctx context.Context, userID int) ([]*model.Activity, error) {
	if _, err := s.UserRepo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.ActivityRepo.GetActivitiesByUserID(ctx, userID)
}

// StatsRange fills in the defaults of a stats query: the last 30 days up to now.
func (s *Activity) StatsRange(query *types.StatsQuery) (start, end time.Time) {
	end = query.End
	if end.IsZero() {
		end = s.now()
	}
	start = query.Start
	if start.IsZero() {
		start = end.Add(-DefaultStatsSpan)
	}
	return start, end
}

// Cache: (set) stats#start|end, StatsCacheTTL
func (s *Activity) GetStats(ctx context.Context, query *types.StatsQuery) ([]*model.UserStats, error) {
	start, end := s.StatsRange(query)
	valueFunc := func() ([]*model.UserStats, error) {
		return s.ActivityRepo.GetStatsByRange(ctx, start, end)
	}
	if cache.StatsByRange == nil {
		return valueFunc()
	}

	var stats []*model.UserStats
	key := strconv.FormatInt(start.Unix(), 10) + "|" + strconv.FormatInt(end.Unix(), 10)
	err := cache.StatsByRange.MutexGetSet(ctx, key, &stats, valueFunc, s.statsTTL)
	return stats, err
}

// Cache: (set) records#userId, StatsCacheTTL
func (s *Activity) GetPersonalRecords(ctx context.Context, userID int) ([]*types.PersonalRecord, error) {
	if _, err := s.UserRepo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	valueFunc := func() ([]*model.Activity, error) {
		best := make([]*model.Activity, len(RecordRanges))
		for i, r := range RecordRanges {
			a, err := s.ActivityRepo.GetFastestRunInRange(ctx, userID, r.Min, r.Max)
			if err != nil {
				return nil, err
			}
			best[i] = a
		}
		return best, nil
	}

	var best []*model.Activity
	var err error
	if cache.PersonalRecords == nil {
		best, err = valueFunc()
	} else {
		err = cache.PersonalRecords.MutexGetSet(ctx, strconv.Itoa(userID), &best, valueFunc, s.statsTTL)
	}
	if err != nil {
		return nil, err
	}

	records := make([]*types.PersonalRecord, 0, len(RecordRanges))
	for i, r := range RecordRanges {
		if i >= len(best) || best[i] == nil {
			continue
		}
		a := best[i]
		records = append(records, &types.PersonalRecord{
			Label:      r.Label,
			ActivityID: a.ActivityID,
			Name:       a.Name,
			Distance:   a.Distance,
			MovingTime: a.MovingTime,
			Time:       FormatMovingTime(a.MovingTime),
			StartDate:  a.StartDate,
		})
	}
	return records, nil
}

// CreateManualActivity records a Run that did not come from Strava.
func (s *Activity) CreateManualActivity(ctx context.Context, req *types.CreateActivityRequest) (*model.Activity, error) {
	if _, err := s.UserRepo.GetUserByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	start := s.now()
	if req.StartDate != nil {
		start = *req.StartDate
	}
	name := req.Name
	if name == "" {
		name = "Manual Run"
	}
	activity := &model.Activity{
		UserID:      req.UserID,
		ActivityID:  "manual_" + ulid.Make().String(),
		Name:        name,
		Type:        model.ActivityTypeRun,
		Distance:    req.Distance,
		MovingTime:  req.MovingTime,
		ElapsedTime: req.MovingTime,
		StartDate:   start,
	}
	if activity.MovingTime > 0 {
		activity.AverageSpeed = activity.Distance / float64(activity.MovingTime)
	}
	if err := s.ActivityRepo.UpsertActivity(ctx, activity); err != nil {
		return nil, err
	}
	cache.InvalidateActivityDerived()
	return activity, nil
}
