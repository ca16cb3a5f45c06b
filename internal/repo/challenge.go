package repo

import (
	"context"

	"github.com/uptrace/bun"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/repo/selector"
)

type Challenge struct {
	db     *bun.DB
	sel    selector.S[model.Challenge]
	selPar selector.S[model.ChallengeParticipant]
}

func NewChallenge(db *bun.DB) *Challenge {
	return &Challenge{
		db:     db,
		sel:    selector.New[model.Challenge](db),
		selPar: selector.New[model.ChallengeParticipant](db),
	}
}

func (r *Challenge) GetChallenges(ctx context.Context) ([]*model.Challenge, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("ch.start_date DESC", "ch.id DESC")
	})
}

func (r *Challenge) GetChallengeByID(ctx context.Context, id int) (*model.Challenge, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("ch.id = ?", id)
	})
}

func (r *Challenge) CreateChallenge(ctx context.Context, challenge *model.Challenge) error {
	_, err := r.db.NewInsert().Model(challenge).Exec(ctx)
	return err
}

// JoinChallenge adds the user to the challenge. Joining again only replaces the
// target distance.
func (r *Challenge) JoinChallenge(ctx context.Context, participant *model.ChallengeParticipant) error {
	_, err := r.db.NewInsert().
		Model(participant).
		On("CONFLICT (challenge_id, user_id) DO UPDATE").
		Set("target_distance = EXCLUDED.target_distance").
		Exec(ctx)
	return err
}

// GetParticipants lists the participants with their user, in join order.
func (r *Challenge) GetParticipants(ctx context.Context, challengeID int) ([]*model.ChallengeParticipant, error) {
	return r.selPar.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("User").
			Where("chp.challenge_id = ?", challengeID).
			Order("chp.id ASC")
	})
}

func (r *Challenge) GetParticipant(ctx context.Context, idb bun.IDB, challengeID, userID int) (*model.ChallengeParticipant, error) {
	return r.selPar.With(idb).SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("chp.challenge_id = ?", challengeID).
			Where("chp.user_id = ?", userID)
	})
}

// AdjustTarget adds delta kilometers to the participant's target relative to the
// stored value, so concurrent adjustments compose instead of overwriting.
// Returns ErrNotFound when the user is not in the challenge.
func (r *Challenge) AdjustTarget(ctx context.Context, idb bun.IDB, challengeID, userID int, delta float64) error {
	res, err := idb.NewUpdate().
		Model((*model.ChallengeParticipant)(nil)).
		Set("target_distance = target_distance + ?", delta).
		Where("challenge_id = ?", challengeID).
		Where("user_id = ?", userID).
		Exec(ctx)
	return expectAffected(res, err)
}
