package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/repo/selector"
)

type Activity struct {
	db  *bun.DB
	sel selector.S[model.Activity]
}

func NewActivity(db *bun.DB) *Activity {
	return &Activity{
		db:  db,
		sel: selector.New[model.Activity](db),
	}
}

var activityUpsertColumns = []string{
	"user_id",
	"name",
	"type",
	"distance",
	"moving_time",
	"elapsed_time",
	"total_elevation_gain",
	"start_date",
	"average_speed",
	"max_speed",
	"average_heartrate",
	"average_cadence",
	"average_temp",
	"calories",
	"max_heartrate",
	"suffer_score",
	"workout_type",
}

// UpsertActivity inserts the activity or overwrites the row carrying the same
// upstream activity id.
func (r *Activity) UpsertActivity(ctx context.Context, activity *model.Activity) error {
	q := r.db.NewInsert().
		Model(activity).
		On("CONFLICT (activity_id) DO UPDATE")
	for _, col := range activityUpsertColumns {
		q = q.Set(col + " = EXCLUDED." + col)
	}
	_, err := q.Exec(ctx)
	return err
}

// UpsertActivities upserts in a single transaction so a sync batch lands as a whole.
func (r *Activity) UpsertActivities(ctx context.Context, activities []*model.Activity) error {
	if len(activities) == 0 {
		return nil
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, activity := range activities {
			q := tx.NewInsert().
				Model(activity).
				On("CONFLICT (activity_id) DO UPDATE")
			for _, col := range activityUpsertColumns {
				q = q.Set(col + " = EXCLUDED." + col)
			}
			if _, err := q.Exec(ctx); err != nil {
				return errors.Wrapf(err, "upsert activity %s", activity.ActivityID)
			}
		}
		return nil
	})
}

func (r *Activity) GetActivitiesByUserID(ctx context.Context, userID int) ([]*model.Activity, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("user_id = ?", userID).
			Order("start_date DESC", "id DESC")
	})
}

func (r *Activity) CountByUserID(ctx context.Context, userID int) (int, error) {
	return r.db.NewSelect().
		Model((*model.Activity)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
}

// GetRunsByAthleteID returns the Run activities of the user linked to the given
// Strava athlete id, newest first.
func (r *Activity) GetRunsByAthleteID(ctx context.Context, athleteID string) ([]*model.Activity, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Join("JOIN users AS u ON u.id = a.user_id").
			Where("u.strava_id = ?", athleteID).
			Where("a.type = ?", model.ActivityTypeRun).
			Order("a.start_date DESC", "a.id DESC")
	})
}

// GetRunsInRange returns a user's Run activities with from <= start_date < until.
func (r *Activity) GetRunsInRange(ctx context.Context, userID int, from, until time.Time) ([]*model.Activity, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("user_id = ?", userID).
			Where("type = ?", model.ActivityTypeRun).
			Where("start_date >= ?", from.UTC()).
			Where("start_date < ?", until.UTC()).
			Order("start_date ASC", "id ASC")
	})
}

// SumRunsInRange totals a user's Run distance (meters) and count with
// from <= start_date < until.
func (r *Activity) SumRunsInRange(ctx context.Context, userID int, from, until time.Time) (*model.RunTotals, error) {
	var totals model.RunTotals
	err := r.db.NewSelect().
		Model((*model.Activity)(nil)).
		ColumnExpr("COALESCE(SUM(distance), 0.0) AS distance").
		ColumnExpr("COUNT(*) AS count").
		Where("user_id = ?", userID).
		Where("type = ?", model.ActivityTypeRun).
		Where("start_date >= ?", from.UTC()).
		Where("start_date < ?", until.UTC()).
		Scan(ctx, &totals)
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *Activity) GetRecentActivities(ctx context.Context, limit int) ([]*model.Activity, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("User").
			Order("a.start_date DESC", "a.id DESC").
			Limit(limit)
	})
}

// GetStatsByRange aggregates activities with start <= start_date < end per user,
// ordered by total distance descending.
func (r *Activity) GetStatsByRange(ctx context.Context, start, end time.Time) ([]*model.UserStats, error) {
	stats := make([]*model.UserStats, 0)
	err := r.db.NewSelect().
		Model((*model.Activity)(nil)).
		Join("JOIN users AS u ON u.id = a.user_id").
		ColumnExpr("u.id AS user_id").
		ColumnExpr("COALESCE(u.nickname, u.name) AS name").
		ColumnExpr("COUNT(a.id) AS activity_count").
		ColumnExpr("COALESCE(SUM(a.distance), 0.0) AS total_distance").
		ColumnExpr("COALESCE(SUM(a.moving_time), 0) AS total_moving_time").
		ColumnExpr("COALESCE(SUM(a.total_elevation_gain), 0.0) AS total_elevation").
		ColumnExpr("AVG(a.average_heartrate) AS avg_heartrate").
		ColumnExpr("AVG(a.average_cadence) AS avg_cadence").
		Where("a.start_date >= ?", start.UTC()).
		Where("a.start_date < ?", end.UTC()).
		GroupExpr("u.id, u.nickname, u.name").
		OrderExpr("total_distance DESC").
		Scan(ctx, &stats)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// GetFastestRunInRange returns the user's Run with the lowest moving time whose
// distance lies in [minDistance, maxDistance], or nil when there is none.
func (r *Activity) GetFastestRunInRange(ctx context.Context, userID int, minDistance, maxDistance float64) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.NewSelect().
		Model(&activity).
		Where("user_id = ?", userID).
		Where("type = ?", model.ActivityTypeRun).
		Where("distance >= ?", minDistance).
		Where("distance <= ?", maxDistance).
		Order("moving_time ASC", "start_date ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &activity, nil
}
