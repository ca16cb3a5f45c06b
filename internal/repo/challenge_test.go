package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/pkg/rcerr"
	"runclub.dev/backend/internal/pkg/testentry"
)

func TestJoinChallengeIsIdempotent(t *testing.T) {
	db := testentry.DB(t)
	ctx := context.Background()
	r := NewChallenge(db)
	u := seedUser(t, db, "Kim", "1001")

	ch := &model.Challenge{Name: "May 100K", StartDate: "2024-05-01", EndDate: "2024-05-31"}
	require.NoError(t, r.CreateChallenge(ctx, ch))

	require.NoError(t, r.JoinChallenge(ctx, &model.ChallengeParticipant{ChallengeID: ch.ID, UserID: u.ID, TargetDistance: 100}))
	require.NoError(t, r.JoinChallenge(ctx, &model.ChallengeParticipant{ChallengeID: ch.ID, UserID: u.ID, TargetDistance: 120}))

	participants, err := r.GetParticipants(ctx, ch.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, 120.0, participants[0].TargetDistance)
	require.NotNil(t, participants[0].User)
	assert.Equal(t, "Kim", participants[0].User.Name)
}

func TestAdjustTargetIsRelative(t *testing.T) {
	db := testentry.DB(t)
	ctx := context.Background()
	r := NewChallenge(db)
	u := seedUser(t, db, "Lee", "1002")

	ch := &model.Challenge{Name: "June", StartDate: "2024-06-01", EndDate: "2024-06-30"}
	require.NoError(t, r.CreateChallenge(ctx, ch))
	require.NoError(t, r.JoinChallenge(ctx, &model.ChallengeParticipant{ChallengeID: ch.ID, UserID: u.ID, TargetDistance: 10}))

	require.NoError(t, r.AdjustTarget(ctx, db, ch.ID, u.ID, -4))
	require.NoError(t, r.AdjustTarget(ctx, db, ch.ID, u.ID, -7.5))

	p, err := r.GetParticipant(ctx, db, ch.ID, u.ID)
	require.NoError(t, err)
	assert.InDelta(t, -1.5, p.TargetDistance, 1e-9)

	assert.ErrorIs(t, r.AdjustTarget(ctx, db, ch.ID, u.ID+100, 1), rcerr.ErrNotFound)
}

func TestGetChallengeByIDNotFound(t *testing.T) {
	db := testentry.DB(t)
	_, err := NewChallenge(db).GetChallengeByID(context.Background(), 42)
	assert.ErrorIs(t, err, rcerr.ErrNotFound)
}
