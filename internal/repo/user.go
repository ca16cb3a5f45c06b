package repo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/repo/selector"
)

type User struct {
	db  *bun.DB
	sel selector.S[model.User]
}

func NewUser(db *bun.DB) *User {
	return &User{
		db:  db,
		sel: selector.New[model.User](db),
	}
}

func (r *User) GetUsers(ctx context.Context) ([]*model.User, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("id ASC")
	})
}

func (r *User) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("id = ?", id)
	})
}

func (r *User) GetUserByStravaID(ctx context.Context, stravaID string) (*model.User, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("strava_id = ?", stravaID)
	})
}

func (r *User) CreateUser(ctx context.Context, user *model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	_, err := r.db.NewInsert().
		Model(user).
		Exec(ctx)
	return err
}

func (r *User) UpdateNickname(ctx context.Context, id int, nickname string) error {
	res, err := r.db.NewUpdate().
		Model((*model.User)(nil)).
		Set("nickname = ?", null.NewString(nickname, nickname != "")).
		Where("id = ?", id).
		Exec(ctx)
	return expectAffected(res, err)
}

func (r *User) UpdateTokens(ctx context.Context, id int, accessToken, refreshToken null.String) error {
	res, err := r.db.NewUpdate().
		Model((*model.User)(nil)).
		Set("access_token = ?", accessToken).
		Set("refresh_token = ?", refreshToken).
		Where("id = ?", id).
		Exec(ctx)
	return expectAffected(res, err)
}

func (r *User) MarkFullSyncDone(ctx context.Context, id int) error {
	_, err := r.db.NewUpdate().
		Model((*model.User)(nil)).
		Set("full_sync_done = ?", true).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// DeleteUser removes the user along with their activities and challenge entries.
// Gift logs are an audit trail and are kept.
func (r *User) DeleteUser(ctx context.Context, id int) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*model.Activity)(nil)).Where("user_id = ?", id).Exec(ctx); err != nil {
			return errors.Wrap(err, "delete activities")
		}
		if _, err := tx.NewDelete().Model((*model.ChallengeParticipant)(nil)).Where("user_id = ?", id).Exec(ctx); err != nil {
			return errors.Wrap(err, "delete challenge participation")
		}
		if _, err := tx.NewDelete().Model((*model.GiftQuota)(nil)).Where("user_id = ?", id).Exec(ctx); err != nil {
			return errors.Wrap(err, "delete gift quotas")
		}
		res, err := tx.NewDelete().Model((*model.User)(nil)).Where("id = ?", id).Exec(ctx)
		return expectAffected(res, err)
	})
}
