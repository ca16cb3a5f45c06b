package repo

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/repo/selector"
)

type Competition struct {
	db  *bun.DB
	sel selector.S[model.Competition]
}

func NewCompetition(db *bun.DB) *Competition {
	return &Competition{
		db:  db,
		sel: selector.New[model.Competition](db),
	}
}

func orderParticipants(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("cp.id ASC")
}

// GetCompetitions returns every competition, latest date first, with participants
// in insertion order.
func (r *Competition) GetCompetitions(ctx context.Context) ([]*model.Competition, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Participants", orderParticipants).
			Order("c.date DESC", "c.id DESC")
	})
}

func (r *Competition) GetCompetitionByID(ctx context.Context, id int) (*model.Competition, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Participants", orderParticipants).
			Where("c.id = ?", id)
	})
}

// CreateCompetition inserts the competition and its participants atomically.
func (r *Competition) CreateCompetition(ctx context.Context, competition *model.Competition) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(competition).Exec(ctx); err != nil {
			return errors.Wrap(err, "insert competition")
		}
		return insertParticipants(ctx, tx, competition)
	})
}

// UpdateCompetition rewrites date and name and replaces the participant list wholesale.
func (r *Competition) UpdateCompetition(ctx context.Context, competition *model.Competition) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(competition).
			Column("date", "name").
			WherePK().
			Exec(ctx)
		if err := expectAffected(res, err); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*model.CompetitionParticipant)(nil)).
			Where("competition_id = ?", competition.ID).
			Exec(ctx); err != nil {
			return errors.Wrap(err, "delete participants")
		}
		return insertParticipants(ctx, tx, competition)
	})
}

func insertParticipants(ctx context.Context, tx bun.Tx, competition *model.Competition) error {
	if len(competition.Participants) == 0 {
		return nil
	}
	for _, p := range competition.Participants {
		p.ID = 0
		p.CompetitionID = competition.ID
	}
	if _, err := tx.NewInsert().Model(&competition.Participants).Exec(ctx); err != nil {
		return errors.Wrap(err, "insert participants")
	}
	return nil
}

func (r *Competition) DeleteCompetition(ctx context.Context, id int) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*model.CompetitionParticipant)(nil)).
			Where("competition_id = ?", id).
			Exec(ctx); err != nil {
			return errors.Wrap(err, "delete participants")
		}
		res, err := tx.NewDelete().Model((*model.Competition)(nil)).Where("id = ?", id).Exec(ctx)
		return expectAffected(res, err)
	})
}

func (r *Competition) AddParticipant(ctx context.Context, participant *model.CompetitionParticipant) error {
	_, err := r.db.NewInsert().Model(participant).Exec(ctx)
	return err
}

func (r *Competition) RemoveParticipant(ctx context.Context, competitionID, participantID int) error {
	res, err := r.db.NewDelete().
		Model((*model.CompetitionParticipant)(nil)).
		Where("id = ?", participantID).
		Where("competition_id = ?", competitionID).
		Exec(ctx)
	return expectAffected(res, err)
}

// SetParticipantResult records a match. It only writes when the participant has
// no result yet and reports whether a row was written, so concurrent matchers
// never overwrite each other.
func (r *Competition) SetParticipantResult(ctx context.Context, participantID int, activityID, result string) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*model.CompetitionParticipant)(nil)).
		Set("result = ?", result).
		Set("activity_id = ?", activityID).
		Where("id = ?", participantID).
		WhereGroup(" AND ", func(q *bun.UpdateQuery) *bun.UpdateQuery {
			return q.Where("result IS NULL").WhereOr("result = ''")
		}).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
