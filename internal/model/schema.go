package model

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Tables lists every persisted model in creation order.
func Tables() []any {
	return []any{
		(*User)(nil),
		(*Activity)(nil),
		(*Competition)(nil),
		(*CompetitionParticipant)(nil),
		(*Challenge)(nil),
		(*ChallengeParticipant)(nil),
		(*GiftQuota)(nil),
		(*GiftLog)(nil),
	}
}

type index struct {
	name    string
	model   any
	columns []string
}

var indexes = []index{
	{"activities_user_id_start_date_idx", (*Activity)(nil), []string{"user_id", "start_date"}},
	{"activities_start_date_idx", (*Activity)(nil), []string{"start_date"}},
	{"competition_participants_competition_id_idx", (*CompetitionParticipant)(nil), []string{"competition_id"}},
	{"gift_logs_challenge_id_idx", (*GiftLog)(nil), []string{"challenge_id"}},
	{"gift_logs_created_at_idx", (*GiftLog)(nil), []string{"created_at"}},
}

// CreateSchema creates every table and index that does not exist yet. It is
// safe to run repeatedly.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, m := range Tables() {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrapf(err, "create table for %T", m)
		}
	}
	for _, idx := range indexes {
		if _, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			IfNotExists().
			Column(idx.columns...).
			Exec(ctx); err != nil {
			return errors.Wrapf(err, "create index %s", idx.name)
		}
	}
	return nil
}
