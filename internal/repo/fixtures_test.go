package repo

import (
	"context"
	"testing"
	"time"

	"github.com/dchest/uniuri"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"runclub.dev/backend/internal/model"
)

func seedUser(t *testing.T, db *bun.DB, name, stravaID string) *model.User {
	t.Helper()
	u := &model.User{Name: name, StravaID: stravaID}
	require.NoError(t, NewUser(db).CreateUser(context.Background(), u))
	return u
}

func seedRun(t *testing.T, db *bun.DB, userID int, name string, distance float64, movingTime int, start time.Time) *model.Activity {
	t.Helper()
	a := &model.Activity{
		UserID:      userID,
		ActivityID:  "act-" + uniuri.NewLen(16),
		Name:        name,
		Type:        model.ActivityTypeRun,
		Distance:    distance,
		MovingTime:  movingTime,
		ElapsedTime: movingTime,
		StartDate:   start,
	}
	require.NoError(t, NewActivity(db).UpsertActivity(context.Background(), a))
	return a
}
