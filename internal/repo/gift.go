package repo

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/repo/selector"
)

type Gift struct {
	db     *bun.DB
	selQ   selector.S[model.GiftQuota]
	selLog selector.S[model.GiftLog]
}

func NewGift(db *bun.DB) *Gift {
	return &Gift{
		db:     db,
		selQ:   selector.New[model.GiftQuota](db),
		selLog: selector.New[model.GiftLog](db),
	}
}

// GetOrCreateQuota returns the user's quota row for day, inserting it with maxCount
// when absent. Concurrent first calls race on the primary key; the losers' inserts
// are no-ops and every caller reads back the single surviving row.
func (r *Gift) GetOrCreateQuota(ctx context.Context, idb bun.IDB, userID int, day string, maxCount int) (*model.GiftQuota, error) {
	if idb == nil {
		idb = r.db
	}
	_, err := idb.NewInsert().
		Model(&model.GiftQuota{
			UserID:    userID,
			Day:       day,
			MaxCount:  maxCount,
			UsedCount: 0,
		}).
		On("CONFLICT (user_id, day) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return r.selQ.With(idb).SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("gq.user_id = ?", userID).Where("gq.day = ?", day)
	})
}

// ConsumeQuota increments used_count only while it is below max_count and
// reports whether a unit was consumed.
func (r *Gift) ConsumeQuota(ctx context.Context, idb bun.IDB, userID int, day string) (bool, error) {
	res, err := idb.NewUpdate().
		Model((*model.GiftQuota)(nil)).
		Set("used_count = used_count + 1").
		Where("user_id = ?", userID).
		Where("day = ?", day).
		Where("used_count < max_count").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *Gift) CreateLog(ctx context.Context, idb bun.IDB, log *model.GiftLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	_, err := idb.NewInsert().Model(log).Exec(ctx)
	return err
}

func (r *Gift) GetLogsByChallengeID(ctx context.Context, challengeID int) ([]*model.GiftLog, error) {
	return r.selLog.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("gl.challenge_id = ?", challengeID).
			Order("gl.created_at DESC", "gl.id DESC")
	})
}

// GetLogsInRange streams logs with from <= created_at < until into fn, ordered by id.
func (r *Gift) GetLogsInRange(ctx context.Context, from, until time.Time, fn func(*model.GiftLog) error) error {
	rows, err := r.db.NewSelect().
		Model((*model.GiftLog)(nil)).
		Where("created_at >= ?", from.UTC()).
		Where("created_at < ?", until.UTC()).
		Order("id ASC").
		Rows(ctx)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var log model.GiftLog
		if err := r.db.ScanRow(ctx, rows, &log); err != nil {
			return err
		}
		if err := fn(&log); err != nil {
			return err
		}
	}
	return rows.Err()
}
