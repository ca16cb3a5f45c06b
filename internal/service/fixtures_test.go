package service

import (
	"context"
	"testing"
	"time"

	"github.com/dchest/uniuri"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"runclub.dev/backend/internal/app/appconfig"
	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/pkg/localday"
	"runclub.dev/backend/internal/repo"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		ConfigSpec: appconfig.ConfigSpec{
			GiftQuotaMax:          3,
			SyncFullWindow:        43800 * time.Hour,
			SyncIncrementalWindow: 8760 * time.Hour,
			SyncActivityFilter:    `Type == "Run" && !Private`,
			StravaPageSize:        2,
		},
	}
}

// localTime builds an instant from a wall clock reading in the club's zone.
func localTime(t *testing.T, date string, hour, min, sec int) time.Time {
	t.Helper()
	start, err := localday.StartOf(date)
	require.NoError(t, err)
	return start.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute + time.Duration(sec)*time.Second)
}

func seedUser(t *testing.T, db *bun.DB, name, stravaID string) *model.User {
	t.Helper()
	u := &model.User{Name: name, StravaID: stravaID}
	require.NoError(t, repo.NewUser(db).CreateUser(context.Background(), u))
	return u
}

func seedActivity(t *testing.T, db *bun.DB, userID int, typ, name string, distance float64, movingTime int, start time.Time) *model.Activity {
	t.Helper()
	a := &model.Activity{
		UserID:      userID,
		ActivityID:  "svc-" + uniuri.NewLen(16),
		Name:        name,
		Type:        typ,
		Distance:    distance,
		MovingTime:  movingTime,
		ElapsedTime: movingTime,
		StartDate:   start,
	}
	require.NoError(t, repo.NewActivity(db).UpsertActivity(context.Background(), a))
	return a
}

func seedRun(t *testing.T, db *bun.DB, userID int, name string, distance float64, movingTime int, start time.Time) *model.Activity {
	t.Helper()
	return seedActivity(t, db, userID, model.ActivityTypeRun, name, distance, movingTime, start)
}

func seedChallenge(t *testing.T, db *bun.DB, start, end string, targets map[int]float64) *model.Challenge {
	t.Helper()
	ctx := context.Background()
	r := repo.NewChallenge(db)
	ch := &model.Challenge{Name: "Spring Mileage", StartDate: start, EndDate: end}
	require.NoError(t, r.CreateChallenge(ctx, ch))
	for userID, target := range targets {
		require.NoError(t, r.JoinChallenge(ctx, &model.ChallengeParticipant{
			ChallengeID:    ch.ID,
			UserID:         userID,
			TargetDistance: target,
		}))
	}
	return ch
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
